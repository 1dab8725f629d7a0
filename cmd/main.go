package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yungbote/courseplanner-backend/internal/clients/redis"
	"github.com/yungbote/courseplanner-backend/internal/db"
	"github.com/yungbote/courseplanner-backend/internal/handlers"
	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/middleware"
	"github.com/yungbote/courseplanner-backend/internal/observability"
	"github.com/yungbote/courseplanner-backend/internal/repos"
	"github.com/yungbote/courseplanner-backend/internal/server"
	"github.com/yungbote/courseplanner-backend/internal/services"
	"github.com/yungbote/courseplanner-backend/internal/sse"
	"github.com/yungbote/courseplanner-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: utils.GetEnv("SERVICE_NAME", "courseplanner-backend", log),
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	teacherRepo := repos.NewTeacherRepo(thePG, log)
	teacherTokenRepo := repos.NewTeacherTokenRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	halfDayRepo := repos.NewHalfDayRepo(thePG, log)
	activityRepo := repos.NewActivityRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	publish := func(msg sse.SSEMessage) { sseHub.Broadcast(msg) }
	sseBus, err := redis.NewSSEBus(log)
	if err != nil {
		log.Warn("Redis SSE bus unavailable; broadcasting in-process only", "error", err)
	} else {
		defer sseBus.Close()
		if err := sseBus.StartForwarder(context.Background(), sseHub.Broadcast); err != nil {
			log.Warn("Redis SSE forwarder failed to start", "error", err)
		} else {
			publish = func(msg sse.SSEMessage) {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := sseBus.Publish(ctx, msg); err != nil {
					log.Warn("Redis SSE publish failed; falling back to local hub", "error", err)
					sseHub.Broadcast(msg)
				}
			}
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, teacherRepo, teacherTokenRepo)
	courseService := services.NewCourseService(thePG, log, courseRepo, halfDayRepo, activityRepo)
	scheduleService := services.NewScheduleService(thePG, log, courseRepo, halfDayRepo)
	activityService := services.NewActivityService(thePG, log, courseRepo, halfDayRepo, activityRepo, scheduleService)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	courseHandler := handlers.NewCourseHandler(log, courseService)
	scheduleHandler := handlers.NewScheduleHandler(log, scheduleService, activityService)
	activityHandler := handlers.NewActivityHandler(log, activityService)
	sseHandler := handlers.NewSSEHandler(log, sseHub)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	sseMiddleware := middleware.NewSSEMiddleware(log, publish)

	// Router
	var origins []string
	if raw := utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	router := server.NewRouter(server.RouterConfig{
		ServiceName:     utils.GetEnv("SERVICE_NAME", "courseplanner-backend", log),
		AllowedOrigins:  origins,
		AuthHandler:     authHandler,
		CourseHandler:   courseHandler,
		ScheduleHandler: scheduleHandler,
		ActivityHandler: activityHandler,
		SSEHandler:      sseHandler,
		AuthMiddleware:  authMiddleware,
		SSEMiddleware:   sseMiddleware,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
