package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	NotificationGradeProgression = "grade_progression"
	NotificationLessonReminder   = "lesson_reminder"
	NotificationSystemAlert      = "system_alert"
)

type Notification struct {
	ID       uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	AgencyID *uuid.UUID        `gorm:"type:uuid" json:"agency_id"`
	LessonID *uuid.UUID        `gorm:"type:uuid" json:"lesson_id"`
	Type     string            `gorm:"size:30;not null;default:'system_alert'" json:"type"`
	Title    string            `gorm:"size:100;not null" json:"title"`
	Message  string            `gorm:"type:text;not null" json:"message"`
	IsRead   bool              `gorm:"not null;default:false" json:"is_read"`
	Metadata datatypes.JSONMap `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
