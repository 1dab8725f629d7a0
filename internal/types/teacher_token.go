package types

import (
	"time"

	"github.com/google/uuid"
)

type TeacherToken struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID    uuid.UUID `gorm:"type:uuid;index;not null" json:"teacher_id"`
	Teacher      *Teacher  `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	AccessToken  string    `gorm:"uniqueIndex;not null;column:access_token" json:"access_token"`
	RefreshToken string    `gorm:"uniqueIndex;not null;column:refresh_token" json:"refresh_token"`
	ExpiresAt    time.Time `gorm:"column:expires_at" json:"expires_at"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (TeacherToken) TableName() string { return "teacher_token" }
