package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/courseplanner-backend/internal/handlers"
	"github.com/yungbote/courseplanner-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName     string
	AllowedOrigins  []string
	AuthHandler     *handlers.AuthHandler
	CourseHandler   *handlers.CourseHandler
	ScheduleHandler *handlers.ScheduleHandler
	ActivityHandler *handlers.ActivityHandler
	SSEHandler      *handlers.SSEHandler
	AuthMiddleware  *middleware.AuthMiddleware
	SSEMiddleware   *middleware.SSEMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Refresh-Token"},
		AllowCredentials: true,
	}))
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "courseplanner-backend"
	}
	router.Use(otelgin.Middleware(serviceName))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.Use(cfg.SSEMiddleware.AttachAndFlush())

	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/teacher", cfg.AuthHandler.GetTeacher)

	// Courses
	protected.GET("/courses", cfg.CourseHandler.ListTeacherCourses)
	protected.POST("/courses", cfg.CourseHandler.CreateCourse)
	protected.GET("/courses/:id", cfg.CourseHandler.GetCourse)
	protected.PUT("/courses/:id", cfg.CourseHandler.UpdateCourse)
	protected.DELETE("/courses/:id", cfg.CourseHandler.DeleteCourse)

	// Schedule
	protected.GET("/courses/:id/schedule", cfg.ScheduleHandler.GetSchedule)
	protected.POST("/courses/:id/reschedule", cfg.ScheduleHandler.Reschedule)

	// Activities
	protected.POST("/half-days/:id/activities", cfg.ActivityHandler.AppendActivity)
	protected.PUT("/activities/:id", cfg.ActivityHandler.EditActivity)
	protected.POST("/activities/:id/move", cfg.ActivityHandler.MoveActivity)
	protected.DELETE("/activities/:id", cfg.ActivityHandler.DeleteActivity)

	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)

	return router
}
