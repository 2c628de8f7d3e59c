package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutiful/tutiful_backend/models"
)

func TestEnroll_fillsLessonThenRejects(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	lesson := f.lesson(t, "Monday", "10:00:00", "11:00:00", withCap(2))
	a, b, c := f.student(t), f.student(t), f.student(t)
	ctx := context.Background()

	res, err := svc.Enroll(ctx, a.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, EnrollResult{StudentID: a.ID, LessonID: lesson.ID}, res)
	assert.Equal(t, 1, f.reload(t, lesson).CurrentCap)

	_, err = svc.Enroll(ctx, b.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.reload(t, lesson).CurrentCap)

	_, err = svc.Enroll(ctx, c.ID, lesson.ID)
	assert.True(t, errors.Is(err, ErrCapacityExceeded), "got %v", err)
	assert.Equal(t, 2, f.reload(t, lesson).CurrentCap)
	assert.EqualValues(t, 2, f.enrollments(t, lesson.ID))
}

func TestEnroll_storesEnrollmentPeriod(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(time.Date(2024, time.January, 31, 23, 30, 0, 0, time.UTC))
	lesson := f.lesson(t, "Wednesday", "16:00:00", "17:00:00")
	s := f.student(t)

	_, err := svc.Enroll(context.Background(), s.ID, lesson.ID)
	require.NoError(t, err)

	var e models.Enrollment
	require.NoError(t, f.db.First(&e, "student_id = ?", s.ID).Error)
	assert.Equal(t, "2024-01-31", e.StartDate.UTC().Format("2006-01-02"))
	// 31 Jan + 1 month normalises past the end of February
	assert.Equal(t, "2024-03-02", e.EndDate.UTC().Format("2006-01-02"))
}

func TestEnroll_rejections(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	ctx := context.Background()

	base := f.lesson(t, "Monday", "10:00:00", "11:00:00")
	s := f.student(t)
	_, err := svc.Enroll(ctx, s.ID, base.ID)
	require.NoError(t, err)

	secondary := models.Subject{Name: "Physics", GradeLevel: strPtr("Secondary 3"), IsActive: true}
	require.NoError(t, f.db.Create(&secondary).Error)

	tests := []struct {
		name    string
		student uuid.UUID
		lesson  uuid.UUID
		want    error
	}{
		{
			name:    "already enrolled",
			student: s.ID,
			lesson:  base.ID,
			want:    ErrAlreadyEnrolled,
		},
		{
			name:    "overlapping lesson",
			student: s.ID,
			lesson:  f.lesson(t, "monday", "10:30:00", "11:30:00").ID,
			want:    ErrScheduleConflict,
		},
		{
			name:    "enclosing lesson",
			student: s.ID,
			lesson:  f.lesson(t, "Monday", "09:00", "12:00").ID,
			want:    ErrScheduleConflict,
		},
		{
			name:    "grade mismatch",
			student: s.ID,
			lesson:  f.lesson(t, "Friday", "10:00:00", "11:00:00", withSubject(secondary.ID)).ID,
			want:    ErrGradeMismatch,
		},
		{
			name:    "unknown student",
			student: uuid.New(),
			lesson:  base.ID,
			want:    ErrNotFound,
		},
		{
			name:    "tutor is not a student",
			student: f.tutor.ID,
			lesson:  base.ID,
			want:    ErrNotFound,
		},
		{
			name:    "unknown lesson",
			student: s.ID,
			lesson:  uuid.New(),
			want:    ErrNotFound,
		},
		{
			name:    "broken schedule",
			student: s.ID,
			lesson:  f.lesson(t, "Someday", "10:00:00", "11:00:00").ID,
			want:    ErrInvalidSchedule,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Enroll(ctx, tc.student, tc.lesson)
			assert.True(t, errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		})
	}
}

func TestEnroll_notFoundMessages(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	lesson := f.lesson(t, "Monday", "10:00:00", "11:00:00")

	_, err := svc.Enroll(context.Background(), uuid.New(), lesson.ID)
	assert.EqualError(t, err, "student not found")

	_, err = svc.Enroll(context.Background(), f.student(t).ID, uuid.New())
	assert.EqualError(t, err, "lesson not found")
}

func TestEnroll_backToBackLessonsDoNotClash(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	ctx := context.Background()
	s := f.student(t)

	first := f.lesson(t, "Monday", "10:00:00", "11:00:00")
	next := f.lesson(t, "Monday", "11:00:00", "12:00:00")
	otherDay := f.lesson(t, "Tuesday", "10:00:00", "11:00:00")

	for _, l := range []models.Lesson{first, next, otherDay} {
		_, err := svc.Enroll(ctx, s.ID, l.ID)
		require.NoError(t, err, l.Title)
	}
}

func TestEnroll_expiredEnrollmentDoesNotCount(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	lesson := f.lesson(t, "Monday", "10:00:00", "11:00:00", withCap(1))
	old, s := f.student(t), f.student(t)

	require.NoError(t, f.db.Create(&models.Enrollment{
		StudentID: old.ID,
		LessonID:  lesson.ID,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	_, err := svc.Enroll(context.Background(), s.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.reload(t, lesson).CurrentCap)
}

func TestEnroll_concurrentRequestsNeverOverfill(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	lesson := f.lesson(t, "Monday", "10:00:00", "11:00:00", withCap(3))

	students := make([]models.User, 10)
	for i := range students {
		students[i] = f.student(t)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for _, s := range students {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := svc.Enroll(context.Background(), id, lesson.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrCapacityExceeded):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(s.ID)
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, 7, full)
	assert.Equal(t, 3, f.reload(t, lesson).CurrentCap)
	assert.EqualValues(t, 3, f.enrollments(t, lesson.ID))
}

func TestEnroll_seedsAttendanceOnFirstEnrollment(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	ctx := context.Background()

	withTutor := f.lesson(t, "Monday", "10:00:00", "11:00:00")
	noTutor := f.lesson(t, "Tuesday", "10:00:00", "11:00:00", withoutTutor())

	_, err := svc.Enroll(ctx, f.student(t).ID, withTutor.ID)
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, f.student(t).ID, withTutor.ID)
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, f.student(t).ID, noTutor.ID)
	require.NoError(t, err)

	var dates []time.Time
	require.NoError(t, f.db.Model(&models.Attendance{}).
		Where("lesson_id = ?", withTutor.ID).
		Order("date asc").
		Pluck("date", &dates).Error)
	require.Len(t, dates, 5)
	assert.Equal(t, "2024-03-04", dates[0].UTC().Format("2006-01-02"))
	assert.Equal(t, "2024-04-01", dates[4].UTC().Format("2006-01-02"))

	var none int64
	require.NoError(t, f.db.Model(&models.Attendance{}).Where("lesson_id = ?", noTutor.ID).Count(&none).Error)
	assert.Zero(t, none)
}

func TestEnroll_seedsAttendanceFromScheduleDate(t *testing.T) {
	f := setup(t)
	// Sunday 20:30 UTC is already Monday morning in Singapore
	svc := f.enrollmentService(time.Date(2024, 3, 3, 20, 30, 0, 0, time.UTC)).WithLocation(singapore(t))
	lesson := f.lesson(t, "Sunday", "10:00:00", "11:00:00")

	_, err := svc.Enroll(context.Background(), f.student(t).ID, lesson.ID)
	require.NoError(t, err)

	var dates []time.Time
	require.NoError(t, f.db.Model(&models.Attendance{}).
		Where("lesson_id = ?", lesson.ID).
		Order("date asc").
		Pluck("date", &dates).Error)
	require.Len(t, dates, 4)
	assert.Equal(t, "2024-03-10", dates[0].UTC().Format("2006-01-02"))
	assert.Equal(t, "2024-03-31", dates[3].UTC().Format("2006-01-02"))

	var e models.Enrollment
	require.NoError(t, f.db.First(&e, "lesson_id = ?", lesson.ID).Error)
	assert.Equal(t, "2024-03-03", e.StartDate.UTC().Format("2006-01-02"))
}

func TestNewEnrollmentService_defaultIsolation(t *testing.T) {
	svc := NewEnrollmentService(nil, 1)
	assert.Empty(t, svc.txOptions, "a blocked enrollment must re-read committed rows after the lock is released")

	svc.WithTxOptions(&sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	require.Len(t, svc.txOptions, 1)
	assert.Equal(t, sql.LevelRepeatableRead, svc.txOptions[0].Isolation)

	svc.WithTxOptions(nil)
	assert.Empty(t, svc.txOptions)
}

func TestUnenroll(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	ctx := context.Background()
	lesson := f.lesson(t, "Monday", "10:00:00", "11:00:00", withCap(1))
	a, b := f.student(t), f.student(t)

	_, err := svc.Enroll(ctx, a.ID, lesson.ID)
	require.NoError(t, err)

	_, err = svc.Unenroll(ctx, a.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.reload(t, lesson).CurrentCap)
	assert.EqualValues(t, 0, f.enrollments(t, lesson.ID))

	_, err = svc.Unenroll(ctx, a.ID, lesson.ID)
	assert.True(t, errors.Is(err, ErrNotEnrolled), "got %v", err)

	// the freed seat can be taken again
	_, err = svc.Enroll(ctx, b.ID, lesson.ID)
	require.NoError(t, err)
}

func TestUnenroll_neverDropsBelowZero(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	lesson := f.lesson(t, "Monday", "10:00:00", "11:00:00")
	s := f.student(t)

	require.NoError(t, f.db.Create(&models.Enrollment{
		StudentID: s.ID,
		LessonID:  lesson.ID,
		StartDate: monday.Truncate(24 * time.Hour),
		EndDate:   monday.Truncate(24*time.Hour).AddDate(0, 1, 0),
	}).Error)

	_, err := svc.Unenroll(context.Background(), s.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.reload(t, lesson).CurrentCap)
}

func TestStatus(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	ctx := context.Background()
	lesson := f.lesson(t, "Monday", "10:00:00", "11:00:00")
	s := f.student(t)

	st, err := svc.Status(ctx, s.ID, lesson.ID)
	require.NoError(t, err)
	assert.False(t, st.IsEnrolled)
	assert.Nil(t, st.EnrollmentDate)

	_, err = svc.Enroll(ctx, s.ID, lesson.ID)
	require.NoError(t, err)

	st, err = svc.Status(ctx, s.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, st.IsEnrolled)
	require.NotNil(t, st.EnrollmentDate)
	assert.Equal(t, "2024-03-04", st.EnrollmentDate.UTC().Format("2006-01-02"))

	// a month and a day later the enrollment has lapsed
	svc.now = fixedClock(monday.AddDate(0, 1, 1))
	st, err = svc.Status(ctx, s.ID, lesson.ID)
	require.NoError(t, err)
	assert.False(t, st.IsEnrolled)

	_, err = svc.Status(ctx, s.ID, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReconcileOccupancy(t *testing.T) {
	f := setup(t)
	svc := f.enrollmentService(monday)
	ctx := context.Background()
	lesson := f.lesson(t, "Monday", "10:00:00", "11:00:00")
	quiet := f.lesson(t, "Friday", "10:00:00", "11:00:00")

	for i := 0; i < 2; i++ {
		_, err := svc.Enroll(ctx, f.student(t).ID, lesson.ID)
		require.NoError(t, err)
	}

	// after the enrollment period both seats lapse
	svc.now = fixedClock(monday.AddDate(0, 2, 0))
	changed, err := svc.ReconcileOccupancy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 0, f.reload(t, lesson).CurrentCap)
	assert.Equal(t, 0, f.reload(t, quiet).CurrentCap)

	changed, err = svc.ReconcileOccupancy(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}
