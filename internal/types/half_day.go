package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CourseWeeks  = 5
	SlotsPerWeek = 3
)

// HalfDay is one schedulable unit of a course week. SessionDate and Period are
// derived from the owning course's start anchor; only the reschedule path may
// overwrite them once written.
type HalfDay struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_half_day_course_week_slot,unique,priority:1" json:"course_id"`
	Course      *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	WeekNumber  int            `gorm:"column:week_number;not null;index:idx_half_day_course_week_slot,unique,priority:2" json:"week_number"`
	SlotIndex   int            `gorm:"column:slot_index;not null;index:idx_half_day_course_week_slot,unique,priority:3" json:"slot_index"`
	SessionDate time.Time      `gorm:"column:session_date;type:date;not null" json:"session_date"`
	Period      Period         `gorm:"column:period;not null" json:"period"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty"`
}

func (HalfDay) TableName() string { return "half_day" }
