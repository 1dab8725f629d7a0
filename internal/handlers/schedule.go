package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/services"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

const dateLayout = "2006-01-02"

type ScheduleHandler struct {
	log             *logger.Logger
	scheduleService services.ScheduleService
	activityService services.ActivityService
}

func NewScheduleHandler(
	log *logger.Logger,
	scheduleService services.ScheduleService,
	activityService services.ActivityService,
) *ScheduleHandler {
	return &ScheduleHandler{
		log:             log.With("handler", "ScheduleHandler"),
		scheduleService: scheduleService,
		activityService: activityService,
	}
}

// GetSchedule returns the course's materialized half-day grid together with
// every activity, grouped client-side by half_day_id.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}

	ctx := c.Request.Context()
	var (
		halfDays   []*types.HalfDay
		activities []*types.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		halfDays, err = h.scheduleService.EnsureHalfDays(gctx, nil, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		activities, err = h.activityService.ListForCourse(gctx, nil, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.log.Error("GetSchedule failed", "error", err, "course_id", courseID)
		RespondError(c, http.StatusNotFound, "load_schedule_failed", err)
		return
	}

	RespondOK(c, gin.H{"half_days": halfDays, "activities": activities})
}

func (h *ScheduleHandler) Reschedule(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}

	var req struct {
		FromWeek     int    `json:"from_week"`
		NewStartDate string `json:"new_start_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	newStart, err := time.Parse(dateLayout, req.NewStartDate)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_start_date",
			fmt.Errorf("new_start_date must be formatted %s", dateLayout))
		return
	}

	halfDays, err := h.scheduleService.Reschedule(c.Request.Context(), nil, courseID, req.FromWeek, newStart)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "reschedule_failed", err)
		return
	}
	RespondOK(c, gin.H{"half_days": halfDays})
}
