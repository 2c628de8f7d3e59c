package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent     = "student"
	RoleTutor       = "tutor"
	RoleAdmin       = "admin"
	RoleAgencyAdmin = "agency_admin"
)

type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName   string     `gorm:"size:255;not null" json:"full_name"`
	Email      string     `gorm:"size:100;not null;unique" json:"email"`
	Password   string     `gorm:"not null" json:"-"`
	Role       string     `gorm:"size:20;not null;default:'student'" json:"role"`
	AgencyID   *uuid.UUID `gorm:"type:uuid;index" json:"agency_id"`
	GradeLevel *string    `gorm:"size:50" json:"grade_level"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
