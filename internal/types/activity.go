package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityFormat string

const (
	FormatPlenary      ActivityFormat = "plenary"
	FormatGroupWork    ActivityFormat = "group_work"
	FormatPairWork     ActivityFormat = "pair_work"
	FormatIndividual   ActivityFormat = "individual"
	FormatDiscussion   ActivityFormat = "discussion"
	FormatPractice     ActivityFormat = "practice"
	FormatPresentation ActivityFormat = "presentation"
)

func (f ActivityFormat) Valid() bool {
	switch f {
	case FormatPlenary, FormatGroupWork, FormatPairWork, FormatIndividual,
		FormatDiscussion, FormatPractice, FormatPresentation:
		return true
	}
	return false
}

// Activity is one planned unit of work inside a half-day. Position is 1-based
// and contiguous within its half-day; NULL only on legacy rows, which sort
// after every positioned row.
type Activity struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	HalfDayID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"half_day_id"`
	HalfDay         *HalfDay       `gorm:"constraint:OnDelete:CASCADE;foreignKey:HalfDayID;references:ID" json:"half_day,omitempty"`
	Objective       string         `gorm:"column:objective;not null" json:"objective"`
	Description     string         `gorm:"column:description" json:"description"`
	DurationMinutes int            `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	Format          ActivityFormat `gorm:"column:format;not null" json:"format"`
	Materials       string         `gorm:"column:materials" json:"materials"`
	Position        *int           `gorm:"column:position" json:"position,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Activity) TableName() string { return "activity" }
