package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tutiful/tutiful_backend/database/dbtest"
	"github.com/tutiful/tutiful_backend/models"
)

// Monday 4 March 2024, 10:00 in Singapore.
var monday = time.Date(2024, time.March, 4, 2, 0, 0, 0, time.UTC)

func singapore(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Singapore")
	require.NoError(t, err)
	return loc
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

type fixture struct {
	db      *gorm.DB
	agency  models.Agency
	subject models.Subject
	tutor   models.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)

	f := &fixture{db: db}
	f.agency = models.Agency{Name: "Bright Minds", IsActive: true}
	require.NoError(t, db.Create(&f.agency).Error)

	f.subject = models.Subject{Name: "Mathematics", GradeLevel: strPtr("Primary 4"), IsActive: true}
	require.NoError(t, db.Create(&f.subject).Error)

	f.tutor = f.user(t, models.RoleTutor, nil)
	return f
}

func strPtr(s string) *string { return &s }

func (f *fixture) user(t *testing.T, role string, grade *string) models.User {
	t.Helper()
	id := uuid.New()
	u := models.User{
		ID:         id,
		FullName:   fmt.Sprintf("%s %s", role, id.String()[:8]),
		Email:      fmt.Sprintf("%s@example.com", id),
		Password:   "x",
		Role:       role,
		AgencyID:   &f.agency.ID,
		GradeLevel: grade,
		IsActive:   true,
	}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) student(t *testing.T) models.User {
	return f.user(t, models.RoleStudent, strPtr("Primary 4"))
}

type lessonOpt func(*models.Lesson)

func withCap(n int) lessonOpt { return func(l *models.Lesson) { l.TotalCap = n } }
func withoutTutor() lessonOpt { return func(l *models.Lesson) { l.TutorID = nil } }
func withSubject(id uuid.UUID) lessonOpt { return func(l *models.Lesson) { l.SubjectID = id } }
func withRates(student, tutor float64) lessonOpt {
	return func(l *models.Lesson) { l.StudentRate, l.TutorRate = student, tutor }
}

func (f *fixture) lesson(t *testing.T, day, start, end string, opts ...lessonOpt) models.Lesson {
	t.Helper()
	tutorID := f.tutor.ID
	l := models.Lesson{
		AgencyID:    f.agency.ID,
		SubjectID:   f.subject.ID,
		TutorID:     &tutorID,
		Title:       fmt.Sprintf("%s %s", day, start),
		LessonType:  "group",
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		StudentRate: 50,
		TutorRate:   30,
		TotalCap:    5,
		IsActive:    true,
	}
	for _, opt := range opts {
		opt(&l)
	}
	require.NoError(t, f.db.Create(&l).Error)
	return l
}

func (f *fixture) reload(t *testing.T, l models.Lesson) models.Lesson {
	t.Helper()
	var out models.Lesson
	require.NoError(t, f.db.First(&out, "id = ?", l.ID).Error)
	return out
}

func (f *fixture) enrollments(t *testing.T, lessonID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Enrollment{}).Where("lesson_id = ?", lessonID).Count(&n).Error)
	return n
}

func (f *fixture) enrollmentService(now time.Time) *EnrollmentService {
	svc := NewEnrollmentService(f.db, 1)
	svc.now = fixedClock(now)
	return svc
}
