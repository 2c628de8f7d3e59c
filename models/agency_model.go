package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Agency struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	IsActive bool      `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Agency) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
