package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tutiful/tutiful_backend/models"
	"github.com/tutiful/tutiful_backend/scheduling"
)

const (
	reminderLead   = 60 * time.Minute
	reminderSpread = 5 * time.Minute
)

// Pusher delivers a stored notification to a connected user.
type Pusher interface {
	Push(n models.Notification)
}

type NotificationService struct {
	db     *gorm.DB
	pusher Pusher
	loc    *time.Location
}

func NewNotificationService(db *gorm.DB, pusher Pusher, loc *time.Location) *NotificationService {
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationService{db: db, pusher: pusher, loc: loc}
}

// SendLessonReminders notifies the tutor and every enrolled student of each
// lesson starting in [now+60m, now+65m). Running it every five minutes covers
// each lesson exactly once.
func (s *NotificationService) SendLessonReminders(ctx context.Context, now time.Time) (int, error) {
	db := s.db.WithContext(ctx)
	local := now.In(s.loc)
	from, to := now.Add(reminderLead), now.Add(reminderLead+reminderSpread)

	var lessons []models.Lesson
	if err := db.Where("is_active = ? AND LOWER(day_of_week) = ?", true, scheduling.WeekdayName(local.Weekday())).
		Find(&lessons).Error; err != nil {
		return 0, dbError(err, "list lessons")
	}

	today := scheduling.DateOnly(now)
	var batch []models.Notification
	for _, l := range lessons {
		slot, err := lessonSlot(l)
		if err != nil {
			log.Printf("Skipping reminder: %v", err)
			continue
		}
		start := slot.Start.On(local, s.loc)
		if start.Before(from) || !start.Before(to) {
			continue
		}

		var studentIDs []uuid.UUID
		if err := liveOn(db, today).Model(&models.Enrollment{}).
			Where("lesson_id = ?", l.ID).
			Pluck("student_id", &studentIDs).Error; err != nil {
			return 0, dbError(err, "list enrolled students")
		}
		recipients := studentIDs
		if l.TutorID != nil {
			recipients = append(recipients, *l.TutorID)
		}

		lessonID, agencyID := l.ID, l.AgencyID
		for _, uid := range recipients {
			batch = append(batch, models.Notification{
				UserID:   uid,
				AgencyID: &agencyID,
				LessonID: &lessonID,
				Type:     models.NotificationLessonReminder,
				Title:    "Lesson starts in 1 hour",
				Message:  fmt.Sprintf("%s starts at %s.", l.Title, start.Format("15:04")),
				Metadata: datatypes.JSONMap{
					"lesson_id":  l.ID.String(),
					"start_time": start.Format(time.RFC3339),
				},
			})
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}

	if err := db.Create(&batch).Error; err != nil {
		return 0, dbError(err, "create notifications")
	}
	if s.pusher != nil {
		for _, n := range batch {
			s.pusher.Push(n)
		}
	}
	log.Printf("Sent %d lesson reminder(s).", len(batch))
	return len(batch), nil
}

// Unread lists a user's unread notifications, newest first.
func (s *NotificationService) Unread(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var out []models.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at desc").
		Find(&out).Error; err != nil {
		return nil, dbError(err, "list notifications")
	}
	return out, nil
}
