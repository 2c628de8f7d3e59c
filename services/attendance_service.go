package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tutiful/tutiful_backend/analytics"
	"github.com/tutiful/tutiful_backend/models"
	"github.com/tutiful/tutiful_backend/scheduling"
)

// Session is an attendance row together with its marking window and the
// status derived from it.
type Session struct {
	models.Attendance
	scheduling.Window
	Status scheduling.Status `json:"status"`
}

type LessonSessions struct {
	LessonID uuid.UUID                `json:"lesson_id"`
	Classes  []Session                `json:"classes"`
	Summary  analytics.SessionSummary `json:"summary"`
}

type MarkResult struct {
	Session Session                  `json:"attendance"`
	Classes []Session                `json:"classes"`
	Summary analytics.SessionSummary `json:"summary"`
}

type AttendanceService struct {
	db  *gorm.DB
	now func() time.Time
	loc *time.Location
}

func NewAttendanceService(db *gorm.DB, loc *time.Location) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{db: db, now: time.Now, loc: loc}
}

func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

func (s *AttendanceService) session(a models.Attendance, l models.Lesson, now time.Time) (Session, error) {
	w, err := scheduling.ComputeWindow(a.Date, l.StartTime, l.EndTime, s.loc)
	if err != nil {
		return Session{}, errors.Wrapf(ErrInvalidSchedule, "lesson %s: %v", l.ID, err)
	}
	return Session{Attendance: a, Window: w, Status: scheduling.DeriveStatus(now, a.IsAttended, w)}, nil
}

// MarkAttended records that the lesson took place on the attendance record's
// date. Only the assigned tutor may mark, only once, and only inside the
// session's marking window.
func (s *AttendanceService) MarkAttended(ctx context.Context, lessonID, attendanceID, tutorID uuid.UUID) (MarkResult, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	var record models.Attendance
	if err := db.First(&record, "id = ?", attendanceID).Error; err != nil {
		return MarkResult{}, lookupError(err, "attendance record")
	}
	if record.LessonID != lessonID {
		return MarkResult{}, notFound("attendance record")
	}

	var lesson models.Lesson
	if err := db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		return MarkResult{}, lookupError(err, "lesson")
	}
	if lesson.TutorID != nil && *lesson.TutorID != tutorID {
		return MarkResult{}, ErrUnauthorized
	}
	if record.IsAttended {
		return MarkResult{}, ErrAlreadyMarked
	}

	sess, err := s.session(record, lesson, now)
	if err != nil {
		return MarkResult{}, err
	}
	if !sess.Window.Contains(now) {
		return MarkResult{}, ErrOutsideWindow
	}

	// a concurrent mark for the same record matches zero rows here
	res := db.Model(&models.Attendance{}).
		Where("id = ? AND is_attended = ?", record.ID, false).
		Updates(map[string]interface{}{"is_attended": true, "tutor_id": tutorID})
	if res.Error != nil {
		return MarkResult{}, dbError(res.Error, "mark attendance")
	}
	if res.RowsAffected == 0 {
		return MarkResult{}, ErrAlreadyMarked
	}

	record.IsAttended = true
	record.TutorID = &tutorID
	sess.Attendance = record
	sess.Status = scheduling.StatusAttended

	all, err := s.sessionsFor(db, lesson, now)
	if err != nil {
		return MarkResult{}, err
	}

	log.Printf("✅ Attendance %s marked by tutor %s", record.ID, tutorID)
	return MarkResult{Session: sess, Classes: all.Classes, Summary: all.Summary}, nil
}

// LessonSessions lists every attendance record of the lesson, oldest first.
func (s *AttendanceService) LessonSessions(ctx context.Context, lessonID uuid.UUID) (LessonSessions, error) {
	db := s.db.WithContext(ctx)
	var lesson models.Lesson
	if err := db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		return LessonSessions{}, lookupError(err, "lesson")
	}
	return s.sessionsFor(db, lesson, s.now())
}

func (s *AttendanceService) sessionsFor(db *gorm.DB, lesson models.Lesson, now time.Time) (LessonSessions, error) {
	var records []models.Attendance
	if err := db.Where("lesson_id = ?", lesson.ID).Order("date asc").Find(&records).Error; err != nil {
		return LessonSessions{}, dbError(err, "list attendance")
	}

	out := LessonSessions{LessonID: lesson.ID, Classes: make([]Session, 0, len(records))}
	statuses := make([]scheduling.Status, 0, len(records))
	for _, r := range records {
		sess, err := s.session(r, lesson, now)
		if err != nil {
			return LessonSessions{}, err
		}
		out.Classes = append(out.Classes, sess)
		statuses = append(statuses, sess.Status)
	}
	out.Summary = analytics.SummarizeSessions(statuses)
	return out, nil
}

// Materialize creates the missing attendance rows of every active lesson with
// a tutor, from today through weeksAhead weeks. It returns the number of rows
// inserted.
func (s *AttendanceService) Materialize(ctx context.Context, weeksAhead int) (int, error) {
	if weeksAhead < 1 {
		weeksAhead = 1
	}
	from := scheduling.LocalDate(s.now(), s.loc)
	to := from.AddDate(0, 0, 7*weeksAhead)

	var lessons []models.Lesson
	if err := s.db.WithContext(ctx).
		Where("is_active = ? AND tutor_id IS NOT NULL", true).
		Find(&lessons).Error; err != nil {
		return 0, dbError(err, "list lessons")
	}

	created := 0
	for _, l := range lessons {
		slot, err := lessonSlot(l)
		if err != nil {
			log.Printf("Skipping lesson: %v", err)
			continue
		}
		n, err := createSessions(s.db.WithContext(ctx), l, slot.Day, from, to)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

// createSessions inserts one attendance row per matching weekday in [from, to].
// Dates that already have a row are left alone.
func createSessions(tx *gorm.DB, lesson models.Lesson, day time.Weekday, from, to time.Time) (int, error) {
	dates := scheduling.Occurrences(day, from, to)
	if len(dates) == 0 {
		return 0, nil
	}
	rows := make([]models.Attendance, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, models.Attendance{LessonID: lesson.ID, TutorID: lesson.TutorID, Date: d})
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return 0, dbError(res.Error, "create attendance")
	}
	return int(res.RowsAffected), nil
}
