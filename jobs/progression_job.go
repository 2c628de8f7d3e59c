package jobs

import (
	"context"
	"log"
	"time"

	"github.com/tutiful/tutiful_backend/logger"
	"github.com/tutiful/tutiful_backend/services"
)

func SendGradeProgression(svc *services.NotificationService) func() {
	return func() {
		log.Println("Running job: SendGradeProgression...")
		sent, err := svc.SendGradeProgression(context.Background(), time.Now())
		if err != nil {
			logger.Error(err, map[string]interface{}{"job": "grade_progression", "sent": sent})
		}
	}
}
