package jobs

import (
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	config "github.com/tutiful/tutiful_backend/configs"
	"github.com/tutiful/tutiful_backend/services"
)

type Services struct {
	Enrollments   *services.EnrollmentService
	Attendance    *services.AttendanceService
	Notifications *services.NotificationService
}

// Schedule registers every background job on c using the CRON_* settings.
func Schedule(c *cron.Cron, s Services) error {
	entries := []struct {
		key string
		fn  func()
	}{
		{"CRON_ATTENDANCE", MaterializeAttendance(s.Attendance, config.Int("ATTENDANCE_WEEKS_AHEAD"))},
		{"CRON_RECONCILE", ReconcileOccupancy(s.Enrollments)},
		{"CRON_REMINDERS", SendLessonReminders(s.Notifications)},
		{"CRON_PROGRESSION", SendGradeProgression(s.Notifications)},
	}
	for _, e := range entries {
		if _, err := c.AddFunc(config.Config(e.key), e.fn); err != nil {
			return errors.Wrapf(err, "schedule %s", e.key)
		}
	}
	return nil
}
