package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tutiful/tutiful_backend/models"
	"github.com/tutiful/tutiful_backend/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

type NewUser struct {
	FullName   string
	Email      string
	Password   string
	Role       string
	AgencyID   *uuid.UUID
	GradeLevel *string
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Create hashes the password and inserts the user. Nothing else ever writes
// the password column.
func (s *UserService) Create(ctx context.Context, in NewUser) (models.User, error) {
	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.User{}, errors.Wrap(err, "hash password")
	}
	user := models.User{
		FullName:   in.FullName,
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Password:   hashed,
		Role:       in.Role,
		AgencyID:   in.AgencyID,
		GradeLevel: in.GradeLevel,
		IsActive:   true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, dbError(err, "create user")
	}
	return user, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, dbError(err, "load user")
	}
	if !utils.CheckPassword(user.Password, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
