package jobs

import (
	"context"
	"log"

	"github.com/tutiful/tutiful_backend/logger"
	"github.com/tutiful/tutiful_backend/services"
)

// MaterializeAttendance keeps weeksAhead weeks of attendance rows in place
// for every lesson that has a tutor.
func MaterializeAttendance(svc *services.AttendanceService, weeksAhead int) func() {
	return func() {
		log.Println("Running job: MaterializeAttendance...")
		created, err := svc.Materialize(context.Background(), weeksAhead)
		if err != nil {
			logger.Error(err, map[string]interface{}{"job": "materialize_attendance"})
			return
		}
		log.Printf("Created %d attendance record(s).", created)
	}
}

// ReconcileOccupancy drops lapsed enrollments from each lesson's occupancy.
func ReconcileOccupancy(svc *services.EnrollmentService) func() {
	return func() {
		log.Println("Running job: ReconcileOccupancy...")
		changed, err := svc.ReconcileOccupancy(context.Background())
		if err != nil {
			logger.Error(err, map[string]interface{}{"job": "reconcile_occupancy"})
			return
		}
		log.Printf("Corrected occupancy on %d lesson(s).", changed)
	}
}
