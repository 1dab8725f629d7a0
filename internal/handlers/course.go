package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

func (h *CourseHandler) ListTeacherCourses(c *gin.Context) {
	courses, err := h.courseService.GetTeacherCourses(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("ListTeacherCourses failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "load_courses_failed", err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), nil, req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "create_course_failed", err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}

	course, err := h.courseService.GetCourse(c.Request.Context(), nil, courseID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "course_not_found", err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}

	var req services.UpdateCourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	course, err := h.courseService.UpdateCourse(c.Request.Context(), nil, courseID, req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "update_course_failed", err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}

	if err := h.courseService.DeleteCourse(c.Request.Context(), nil, courseID); err != nil {
		RespondError(c, http.StatusBadRequest, "delete_course_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
