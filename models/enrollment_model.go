package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment is valid on every calendar day in [StartDate, EndDate]. Rows are
// never updated; re-enrolling creates a new row.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:unique_student_lesson_enrollment" json:"student_id"`
	LessonID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:unique_student_lesson_enrollment" json:"lesson_id"`
	StartDate time.Time `gorm:"type:date;not null;uniqueIndex:unique_student_lesson_enrollment;index:idx_enrollment_dates" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_enrollment_dates" json:"end_date"`

	Student User   `gorm:"foreignKey:StudentID" json:"-"`
	Lesson  Lesson `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "student_lessons"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
