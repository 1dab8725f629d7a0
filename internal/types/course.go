package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course is a fixed-length training course: five weeks of three half-day
// sessions each. StartDate/StartPeriod anchor the derived half-day calendar;
// they change only through the reschedule path.
type Course struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher     *Teacher       `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Room        string         `gorm:"column:room" json:"room"`
	ModuleRefs  datatypes.JSON `gorm:"column:module_refs;type:jsonb" json:"module_refs"`
	StartDate   *time.Time     `gorm:"column:start_date;type:date" json:"start_date,omitempty"`
	StartPeriod Period         `gorm:"column:start_period;not null;default:'morning'" json:"start_period"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }
