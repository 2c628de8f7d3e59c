package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson is a weekly slot. CurrentCap mirrors the number of live enrollments
// and is only written while the lesson row is locked.
type Lesson struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AgencyID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"agency_id"`
	SubjectID   uuid.UUID  `gorm:"type:uuid;not null" json:"subject_id"`
	TutorID     *uuid.UUID `gorm:"type:uuid" json:"tutor_id"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description *string    `gorm:"size:255" json:"description"`
	LessonType  string     `gorm:"size:10" json:"lesson_type"`
	DayOfWeek   string     `gorm:"size:10;not null" json:"day_of_week"`
	StartTime   string     `gorm:"type:time;not null" json:"start_time"`
	EndTime     string     `gorm:"type:time;not null" json:"end_time"`
	StudentRate float64    `gorm:"type:numeric(10,2);not null" json:"student_rate"`
	TutorRate   float64    `gorm:"type:numeric(10,2);not null" json:"tutor_rate"`
	TotalCap    int        `gorm:"not null;check:total_cap >= 1" json:"total_cap"`
	CurrentCap  int        `gorm:"not null;default:0;check:current_cap >= 0" json:"current_cap"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`

	// EndDate is the last day of the course; the day after, enrolled students
	// are offered the next grade.
	EndDate                *time.Time        `gorm:"type:date;index" json:"end_date"`
	ProgressionTemplate    datatypes.JSONMap `json:"progression_template,omitempty"`
	ProgressionSubmittedAt *time.Time        `json:"progression_submitted_at"`
	ProgressionSent        bool              `gorm:"not null;default:false" json:"progression_sent"`

	Subject Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Tutor   *User   `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
