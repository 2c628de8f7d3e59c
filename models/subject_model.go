package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subject struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	GradeLevel  *string   `gorm:"size:50" json:"grade_level"`
	Category    string    `gorm:"size:50" json:"category"`
	Description *string   `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
}

func (s *Subject) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
