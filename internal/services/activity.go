package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/normalization"
	"github.com/yungbote/courseplanner-backend/internal/repos"
	"github.com/yungbote/courseplanner-backend/internal/requestdata"
	"github.com/yungbote/courseplanner-backend/internal/sse"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

type CreateActivityInput struct {
	Objective       string               `json:"objective"`
	Description     string               `json:"description"`
	DurationMinutes int                  `json:"duration_minutes"`
	Format          types.ActivityFormat `json:"format"`
	Materials       string               `json:"materials"`
}

// UpdateActivityInput carries partial content edits. WeekNumber/SlotIndex
// together re-home the activity onto another half-day of the same course.
type UpdateActivityInput struct {
	Objective       *string               `json:"objective,omitempty"`
	Description     *string               `json:"description,omitempty"`
	DurationMinutes *int                  `json:"duration_minutes,omitempty"`
	Format          *types.ActivityFormat `json:"format,omitempty"`
	Materials       *string               `json:"materials,omitempty"`
	WeekNumber      *int                  `json:"week_number,omitempty"`
	SlotIndex       *int                  `json:"slot_index,omitempty"`
}

type ActivityService interface {
	Append(ctx context.Context, tx *gorm.DB, halfDayID uuid.UUID, input CreateActivityInput) (*types.Activity, error)
	Move(ctx context.Context, tx *gorm.DB, activityID, targetHalfDayID uuid.UUID, requestedPosition *int) (int, error)
	Edit(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, input UpdateActivityInput) (*types.Activity, error)
	Delete(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) error
	ListForCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Activity, error)
}

type activityService struct {
	db              *gorm.DB
	log             *logger.Logger
	courseRepo      repos.CourseRepo
	halfDayRepo     repos.HalfDayRepo
	activityRepo    repos.ActivityRepo
	scheduleService ScheduleService
}

func NewActivityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	halfDayRepo repos.HalfDayRepo,
	activityRepo repos.ActivityRepo,
	scheduleService ScheduleService,
) ActivityService {
	return &activityService{
		db:              db,
		log:             baseLog.With("service", "ActivityService"),
		courseRepo:      courseRepo,
		halfDayRepo:     halfDayRepo,
		activityRepo:    activityRepo,
		scheduleService: scheduleService,
	}
}

func validateCreateActivityInput(input *CreateActivityInput) error {
	input.Objective = normalization.TrimInputString(input.Objective)
	if input.Objective == "" {
		return fmt.Errorf("an objective is required")
	}
	if input.DurationMinutes <= 0 {
		return fmt.Errorf("duration must be a positive number of minutes")
	}
	if !input.Format.Valid() {
		return fmt.Errorf("unknown activity format %q", input.Format)
	}
	return nil
}

// loadOwnedHalfDay resolves a half-day and checks that its course belongs to
// the calling teacher. Everything the sequencer touches goes through here.
func (s *activityService) loadOwnedHalfDay(ctx context.Context, tx *gorm.DB, halfDayID uuid.UUID) (*types.HalfDay, *types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TeacherID == uuid.Nil {
		return nil, nil, fmt.Errorf("not authenticated")
	}
	if halfDayID == uuid.Nil {
		return nil, nil, fmt.Errorf("missing half-day id")
	}

	halfDays, err := s.halfDayRepo.GetByIDs(ctx, tx, []uuid.UUID{halfDayID})
	if err != nil {
		return nil, nil, fmt.Errorf("load half-day: %w", err)
	}
	if len(halfDays) == 0 || halfDays[0] == nil {
		return nil, nil, fmt.Errorf("half-day not found")
	}
	halfDay := halfDays[0]

	courses, err := s.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{halfDay.CourseID})
	if err != nil {
		return nil, nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 || courses[0] == nil || courses[0].TeacherID != rd.TeacherID {
		return nil, nil, fmt.Errorf("half-day not found")
	}
	return halfDay, courses[0], nil
}

func (s *activityService) loadOwnedActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (*types.Activity, *types.HalfDay, *types.Course, error) {
	if activityID == uuid.Nil {
		return nil, nil, nil, fmt.Errorf("missing activity id")
	}

	activities, err := s.activityRepo.GetByIDs(ctx, tx, []uuid.UUID{activityID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load activity: %w", err)
	}
	if len(activities) == 0 || activities[0] == nil {
		return nil, nil, nil, fmt.Errorf("activity not found")
	}
	activity := activities[0]

	halfDay, course, err := s.loadOwnedHalfDay(ctx, tx, activity.HalfDayID)
	if err != nil {
		return nil, nil, nil, err
	}
	return activity, halfDay, course, nil
}

// Append creates an activity at the end of its half-day's ordering. The
// position is assigned up front (count+1) so the sequencer never persists a
// NULL position itself.
func (s *activityService) Append(ctx context.Context, tx *gorm.DB, halfDayID uuid.UUID, input CreateActivityInput) (*types.Activity, error) {
	if err := validateCreateActivityInput(&input); err != nil {
		return nil, err
	}

	halfDay, course, err := s.loadOwnedHalfDay(ctx, tx, halfDayID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	activity := &types.Activity{
		ID:              uuid.New(),
		HalfDayID:       halfDay.ID,
		Objective:       input.Objective,
		Description:     input.Description,
		DurationMinutes: input.DurationMinutes,
		Format:          input.Format,
		Materials:       input.Materials,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		siblings, err := s.activityRepo.ListByHalfDayID(ctx, txx, halfDay.ID, true)
		if err != nil {
			return fmt.Errorf("load half-day activities: %w", err)
		}
		position := len(siblings) + 1
		activity.Position = &position

		if _, err := s.activityRepo.Create(ctx, txx, []*types.Activity{activity}); err != nil {
			return fmt.Errorf("create activity: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("Append failed", "error", err, "half_day_id", halfDayID)
		return nil, err
	}

	queueSSE(ctx, course.TeacherID, sse.SSEEventActivityCreated, map[string]interface{}{
		"activity": activity,
	})
	return activity, nil
}

// moveLocked is the shared core of Move and the re-homing branch of Edit. It
// runs inside the caller's transaction: reads the target ordering under a row
// lock, inserts the activity at the clamped index, re-homes it, and rewrites
// positions on the target (and the vacated source when they differ). Returns
// the 0-based insertion index actually used.
func (s *activityService) moveLocked(ctx context.Context, txx *gorm.DB, activity *types.Activity, targetHalfDayID uuid.UUID, requestedPosition *int) (int, error) {
	sourceHalfDayID := activity.HalfDayID

	targetList, err := s.activityRepo.ListByHalfDayID(ctx, txx, targetHalfDayID, true)
	if err != nil {
		return 0, fmt.Errorf("load target activities: %w", err)
	}

	ordered := make([]uuid.UUID, 0, len(targetList)+1)
	for _, a := range targetList {
		if a.ID == activity.ID {
			// same-half-day move: pull it out, it is reinserted below
			continue
		}
		ordered = append(ordered, a.ID)
	}

	effective := len(ordered)
	if requestedPosition != nil {
		effective = *requestedPosition
		if effective < 0 {
			effective = 0
		}
		if effective > len(ordered) {
			effective = len(ordered)
		}
	}

	ordered = append(ordered[:effective], append([]uuid.UUID{activity.ID}, ordered[effective:]...)...)

	if sourceHalfDayID != targetHalfDayID {
		if err := s.activityRepo.UpdateFields(ctx, txx, activity.ID, map[string]interface{}{
			"half_day_id": targetHalfDayID,
			"updated_at":  time.Now(),
		}); err != nil {
			return 0, fmt.Errorf("re-home activity: %w", err)
		}
	}

	// Full rewrite, not a delta patch: restores contiguity even when legacy
	// rows left gaps or NULLs behind.
	for i, id := range ordered {
		if err := s.activityRepo.UpdatePosition(ctx, txx, id, i+1); err != nil {
			return 0, fmt.Errorf("resequence target: %w", err)
		}
	}

	if sourceHalfDayID != targetHalfDayID {
		if err := s.resequence(ctx, txx, sourceHalfDayID); err != nil {
			return 0, fmt.Errorf("resequence source: %w", err)
		}
	}
	return effective, nil
}

// resequence rewrites a half-day's positions back to 1..N in canonical order.
func (s *activityService) resequence(ctx context.Context, txx *gorm.DB, halfDayID uuid.UUID) error {
	list, err := s.activityRepo.ListByHalfDayID(ctx, txx, halfDayID, true)
	if err != nil {
		return err
	}
	for i, a := range list {
		if a.Position != nil && *a.Position == i+1 {
			continue
		}
		if err := s.activityRepo.UpdatePosition(ctx, txx, a.ID, i+1); err != nil {
			return err
		}
	}
	return nil
}

// Move relocates an activity into the target half-day at an optional 0-based
// insertion index (clamped to the list bounds; absent means append) and
// returns the 1-based position actually applied. Both orderings come out
// contiguous, all inside one transaction.
func (s *activityService) Move(ctx context.Context, tx *gorm.DB, activityID, targetHalfDayID uuid.UUID, requestedPosition *int) (int, error) {
	activity, _, course, err := s.loadOwnedActivity(ctx, tx, activityID)
	if err != nil {
		return 0, err
	}

	targetHalfDay, targetCourse, err := s.loadOwnedHalfDay(ctx, tx, targetHalfDayID)
	if err != nil {
		return 0, err
	}
	if targetCourse.ID != course.ID {
		return 0, fmt.Errorf("half-day not found")
	}

	var effective int
	err = runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		var mvErr error
		effective, mvErr = s.moveLocked(ctx, txx, activity, targetHalfDay.ID, requestedPosition)
		return mvErr
	})
	if err != nil {
		s.log.Error("Move failed", "error", err, "activity_id", activityID, "target_half_day_id", targetHalfDayID)
		return 0, err
	}

	queueSSE(ctx, course.TeacherID, sse.SSEEventActivityMoved, map[string]interface{}{
		"activity_id":  activity.ID,
		"half_day_id":  targetHalfDay.ID,
		"position":     effective + 1,
	})
	return effective + 1, nil
}

// Edit updates content fields in place. A (week, slot) key resolving to a
// different half-day triggers the move path for the destination; content-only
// edits never touch position.
func (s *activityService) Edit(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, input UpdateActivityInput) (*types.Activity, error) {
	activity, _, course, err := s.loadOwnedActivity(ctx, tx, activityID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Objective != nil {
		objective := normalization.TrimInputString(*input.Objective)
		if objective == "" {
			return nil, fmt.Errorf("an objective is required")
		}
		fields["objective"] = objective
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.DurationMinutes != nil {
		if *input.DurationMinutes <= 0 {
			return nil, fmt.Errorf("duration must be a positive number of minutes")
		}
		fields["duration_minutes"] = *input.DurationMinutes
	}
	if input.Format != nil {
		if !input.Format.Valid() {
			return nil, fmt.Errorf("unknown activity format %q", *input.Format)
		}
		fields["format"] = *input.Format
	}
	if input.Materials != nil {
		fields["materials"] = *input.Materials
	}

	var targetHalfDayID uuid.UUID
	if input.WeekNumber != nil || input.SlotIndex != nil {
		if input.WeekNumber == nil || input.SlotIndex == nil {
			return nil, fmt.Errorf("week number and slot index must be given together")
		}
		if *input.WeekNumber < 1 || *input.WeekNumber > types.CourseWeeks {
			return nil, fmt.Errorf("week number must be between 1 and %d", types.CourseWeeks)
		}
		if *input.SlotIndex < 0 || *input.SlotIndex >= types.SlotsPerWeek {
			return nil, fmt.Errorf("slot index must be between 0 and %d", types.SlotsPerWeek-1)
		}

		// Resolve through the materializer so a sparse legacy schedule still
		// yields a destination row.
		if _, err := s.scheduleService.EnsureHalfDays(ctx, tx, course.ID); err != nil {
			return nil, err
		}
		target, err := s.halfDayRepo.GetByCourseWeekSlot(ctx, tx, course.ID, *input.WeekNumber, *input.SlotIndex)
		if err != nil {
			return nil, fmt.Errorf("load target half-day: %w", err)
		}
		if target == nil {
			return nil, fmt.Errorf("half-day not found")
		}
		if target.ID != activity.HalfDayID {
			targetHalfDayID = target.ID
		}
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
	}

	err = runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		if len(fields) > 0 {
			if err := s.activityRepo.UpdateFields(ctx, txx, activity.ID, fields); err != nil {
				return fmt.Errorf("update activity: %w", err)
			}
		}
		if targetHalfDayID != uuid.Nil {
			if _, err := s.moveLocked(ctx, txx, activity, targetHalfDayID, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("Edit failed", "error", err, "activity_id", activityID)
		return nil, err
	}

	updated, err := s.activityRepo.GetByIDs(ctx, tx, []uuid.UUID{activity.ID})
	if err != nil || len(updated) == 0 {
		return nil, fmt.Errorf("reload activity: %w", err)
	}

	queueSSE(ctx, course.TeacherID, sse.SSEEventActivityUpdated, map[string]interface{}{
		"activity": updated[0],
	})
	return updated[0], nil
}

// Delete removes the activity and closes the gap it leaves behind, keeping
// the half-day's positions contiguous.
func (s *activityService) Delete(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) error {
	activity, halfDay, course, err := s.loadOwnedActivity(ctx, tx, activityID)
	if err != nil {
		return err
	}

	err = runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		if err := s.activityRepo.SoftDeleteByIDs(ctx, txx, []uuid.UUID{activity.ID}); err != nil {
			return fmt.Errorf("delete activity: %w", err)
		}
		return s.resequence(ctx, txx, halfDay.ID)
	})
	if err != nil {
		s.log.Error("Delete failed", "error", err, "activity_id", activityID)
		return err
	}

	queueSSE(ctx, course.TeacherID, sse.SSEEventActivityDeleted, map[string]interface{}{
		"activity_id": activity.ID,
		"half_day_id": halfDay.ID,
	})
	return nil
}

// ListForCourse returns every activity of the course in canonical order,
// grouped by the half-day ordering of GetByCourseIDs.
func (s *activityService) ListForCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Activity, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TeacherID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}

	courses, err := s.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 || courses[0] == nil || courses[0].TeacherID != rd.TeacherID {
		return nil, fmt.Errorf("course not found")
	}

	halfDays, err := s.halfDayRepo.GetByCourseIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load half-days: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(halfDays))
	for _, hd := range halfDays {
		ids = append(ids, hd.ID)
	}
	return s.activityRepo.ListByHalfDayIDs(ctx, tx, ids)
}
