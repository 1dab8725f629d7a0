package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/services"
)

type ActivityHandler struct {
	log             *logger.Logger
	activityService services.ActivityService
}

func NewActivityHandler(log *logger.Logger, activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		log:             log.With("handler", "ActivityHandler"),
		activityService: activityService,
	}
}

func (h *ActivityHandler) AppendActivity(c *gin.Context) {
	halfDayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_half_day_id", err)
		return
	}

	var req services.CreateActivityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	activity, err := h.activityService.Append(c.Request.Context(), nil, halfDayID, req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "create_activity_failed", err)
		return
	}
	RespondOK(c, gin.H{"activity": activity})
}

func (h *ActivityHandler) EditActivity(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_activity_id", err)
		return
	}

	var req services.UpdateActivityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	activity, err := h.activityService.Edit(c.Request.Context(), nil, activityID, req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "update_activity_failed", err)
		return
	}
	RespondOK(c, gin.H{"activity": activity})
}

// MoveActivity relocates an activity. position is a 0-based insertion index;
// omitted means append to the target half-day.
func (h *ActivityHandler) MoveActivity(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_activity_id", err)
		return
	}

	var req struct {
		TargetHalfDayID uuid.UUID `json:"target_half_day_id"`
		Position        *int      `json:"position,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	position, err := h.activityService.Move(c.Request.Context(), nil, activityID, req.TargetHalfDayID, req.Position)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "move_activity_failed", err)
		return
	}
	RespondOK(c, gin.H{"activity_id": activityID, "position": position})
}

func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_activity_id", err)
		return
	}

	if err := h.activityService.Delete(c.Request.Context(), nil, activityID); err != nil {
		RespondError(c, http.StatusBadRequest, "delete_activity_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
