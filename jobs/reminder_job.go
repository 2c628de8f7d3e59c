package jobs

import (
	"context"
	"log"
	"time"

	"github.com/tutiful/tutiful_backend/logger"
	"github.com/tutiful/tutiful_backend/services"
)

func SendLessonReminders(svc *services.NotificationService) func() {
	return func() {
		log.Println("Running job: SendLessonReminders...")
		if _, err := svc.SendLessonReminders(context.Background(), time.Now()); err != nil {
			logger.Error(err, map[string]interface{}{"job": "lesson_reminders"})
		}
	}
}
