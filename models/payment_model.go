package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentPayment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID    uuid.UUID `gorm:"type:uuid;not null;index" json:"lesson_id"`
	StudentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Amount      float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	PlatformFee float64   `gorm:"type:numeric(10,2);not null" json:"platform_fee"`
	PaymentDate time.Time `gorm:"not null" json:"payment_date"`

	Lesson Lesson `gorm:"foreignKey:LessonID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *StudentPayment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// TutorPayment is one payout to a tutor covering Sessions attended sessions
// of a lesson.
type TutorPayment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TutorID     uuid.UUID `gorm:"type:uuid;not null;index" json:"tutor_id"`
	AgencyID    uuid.UUID `gorm:"type:uuid;not null;index" json:"agency_id"`
	LessonID    uuid.UUID `gorm:"type:uuid;not null" json:"lesson_id"`
	Sessions    int       `gorm:"not null" json:"sessions"`
	Amount      float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaymentDate time.Time `gorm:"not null;index" json:"payment_date"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *TutorPayment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
