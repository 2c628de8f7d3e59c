package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attendance is one dated occurrence of a lesson. IsAttended only ever moves
// from false to true.
type Attendance struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_lesson_date" json:"lesson_id"`
	TutorID    *uuid.UUID `gorm:"type:uuid;index:idx_attendance_tutor_date" json:"tutor_id"`
	Date       time.Time  `gorm:"type:date;not null;uniqueIndex:idx_attendance_lesson_date;index:idx_attendance_tutor_date" json:"date"`
	IsAttended bool       `gorm:"not null;default:false" json:"is_attended"`
	IsPaid     bool       `gorm:"not null;default:false" json:"is_paid"`

	Lesson Lesson `gorm:"foreignKey:LessonID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Attendance) TableName() string {
	return "attendance"
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
