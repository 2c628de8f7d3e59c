package services

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tutiful/tutiful_backend/models"
	"github.com/tutiful/tutiful_backend/scheduling"
)

type EnrollResult struct {
	StudentID uuid.UUID `json:"studentId"`
	LessonID  uuid.UUID `json:"lessonId"`
}

type EnrollmentStatus struct {
	IsEnrolled     bool       `json:"isEnrolled"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
}

// EnrollmentService owns every write to student_lessons and to
// lessons.current_cap. Both are only changed while the lesson row is locked.
type EnrollmentService struct {
	db        *gorm.DB
	now       func() time.Time
	loc       *time.Location
	months    int
	txOptions []*sql.TxOptions
}

// NewEnrollmentService runs its transactions at the driver's default isolation
// level (READ COMMITTED on Postgres). A call blocked on the lesson lock then
// sees the committed enrollments of the call it waited for.
func NewEnrollmentService(db *gorm.DB, months int) *EnrollmentService {
	if months < 1 {
		months = 1
	}
	return &EnrollmentService{
		db:     db,
		now:    time.Now,
		loc:    time.UTC,
		months: months,
	}
}

// WithClock replaces the time source.
func (s *EnrollmentService) WithClock(now func() time.Time) *EnrollmentService {
	s.now = now
	return s
}

// WithLocation sets the zone whose calendar date starts a lesson's first
// attendance rows.
func (s *EnrollmentService) WithLocation(loc *time.Location) *EnrollmentService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// WithTxOptions sets the options every transaction begins with; nil uses the
// driver default isolation level.
func (s *EnrollmentService) WithTxOptions(opts *sql.TxOptions) *EnrollmentService {
	if opts == nil {
		s.txOptions = nil
	} else {
		s.txOptions = []*sql.TxOptions{opts}
	}
	return s
}

// enrollmentWindow is [today, today + months] on the UTC calendar.
func (s *EnrollmentService) enrollmentWindow() (time.Time, time.Time) {
	today := scheduling.DateOnly(s.now())
	return today, today.AddDate(0, s.months, 0)
}

func liveOn(tx *gorm.DB, day time.Time) *gorm.DB {
	return tx.Where("start_date <= ? AND end_date >= ?", day, day)
}

func lockLesson(tx *gorm.DB, lessonID uuid.UUID) (models.Lesson, error) {
	var lesson models.Lesson
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lesson, "id = ?", lessonID).Error
	if err != nil {
		return models.Lesson{}, lookupError(err, "lesson")
	}
	return lesson, nil
}

func loadStudent(tx *gorm.DB, studentID uuid.UUID) (models.User, error) {
	var student models.User
	if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
		return models.User{}, lookupError(err, "student")
	}
	if student.Role != models.RoleStudent {
		return models.User{}, notFound("student")
	}
	return student, nil
}

func lessonSlot(l models.Lesson) (scheduling.Slot, error) {
	slot, err := scheduling.NewSlot(l.DayOfWeek, l.StartTime, l.EndTime)
	if err != nil {
		return scheduling.Slot{}, errors.Wrapf(ErrInvalidSchedule, "lesson %s: %v", l.ID, err)
	}
	return slot, nil
}

// Enroll books the student into the lesson for one enrollment period starting
// today. Capacity, duplicate, grade and clash checks run against the state
// seen under the lesson row lock, so concurrent calls for the same lesson are
// applied one after another.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, lessonID uuid.UUID) (EnrollResult, error) {
	today, endDate := s.enrollmentWindow()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lesson, err := lockLesson(tx, lessonID)
		if err != nil {
			return err
		}
		student, err := loadStudent(tx, studentID)
		if err != nil {
			return err
		}
		target, err := lessonSlot(lesson)
		if err != nil {
			return err
		}

		var occupancy int64
		if err := liveOn(tx, today).Model(&models.Enrollment{}).
			Where("lesson_id = ?", lesson.ID).
			Count(&occupancy).Error; err != nil {
			return dbError(err, "count enrollments")
		}
		if occupancy >= int64(lesson.TotalCap) {
			return ErrCapacityExceeded
		}

		var existing int64
		if err := liveOn(tx, today).Model(&models.Enrollment{}).
			Where("student_id = ? AND lesson_id = ?", student.ID, lesson.ID).
			Count(&existing).Error; err != nil {
			return dbError(err, "check enrollment")
		}
		if existing > 0 {
			return ErrAlreadyEnrolled
		}

		if err := checkGradeLevel(tx, student, lesson); err != nil {
			return err
		}

		var current []models.Enrollment
		if err := liveOn(tx, today).Preload("Lesson").
			Where("student_id = ?", student.ID).
			Find(&current).Error; err != nil {
			return dbError(err, "load current enrollments")
		}
		for _, e := range current {
			other, err := lessonSlot(e.Lesson)
			if err != nil {
				log.Printf("Skipping clash check against %v", err)
				continue
			}
			if target.Overlaps(other) {
				return ErrScheduleConflict
			}
		}

		if occupancy == 0 {
			from := scheduling.LocalDate(s.now(), s.loc)
			if err := seedAttendance(tx, lesson, target.Day, from, from.AddDate(0, s.months, 0)); err != nil {
				return err
			}
		}

		enrollment := models.Enrollment{
			StudentID: student.ID,
			LessonID:  lesson.ID,
			StartDate: today,
			EndDate:   endDate,
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyEnrolled
			}
			return dbError(err, "create enrollment")
		}

		if err := tx.Model(&lesson).Update("current_cap", occupancy+1).Error; err != nil {
			return dbError(err, "update lesson occupancy")
		}
		return nil
	}, s.txOptions...)
	if err != nil {
		return EnrollResult{}, txError(err)
	}

	log.Printf("✅ Student %s enrolled in lesson %s until %s", studentID, lessonID, endDate.Format("2006-01-02"))
	return EnrollResult{StudentID: studentID, LessonID: lessonID}, nil
}

func checkGradeLevel(tx *gorm.DB, student models.User, lesson models.Lesson) error {
	if student.GradeLevel == nil || *student.GradeLevel == "" {
		return nil
	}
	var subject models.Subject
	res := tx.Limit(1).Find(&subject, "id = ?", lesson.SubjectID)
	if res.Error != nil {
		return dbError(res.Error, "load subject")
	}
	if res.RowsAffected == 0 || subject.GradeLevel == nil || *subject.GradeLevel == "" {
		return nil
	}
	if *subject.GradeLevel != *student.GradeLevel {
		return ErrGradeMismatch
	}
	return nil
}

// seedAttendance creates the lesson's sessions for the first enrollment period
// when the lesson has a tutor and no sessions exist yet.
func seedAttendance(tx *gorm.DB, lesson models.Lesson, day time.Weekday, from, to time.Time) error {
	if lesson.TutorID == nil {
		return nil
	}
	var sessions int64
	if err := tx.Model(&models.Attendance{}).Where("lesson_id = ?", lesson.ID).Count(&sessions).Error; err != nil {
		return dbError(err, "count attendance")
	}
	if sessions > 0 {
		return nil
	}
	_, err := createSessions(tx, lesson, day, from, to)
	return err
}

// Unenroll removes the student's live enrollment and releases the seat.
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, lessonID uuid.UUID) (EnrollResult, error) {
	today, _ := s.enrollmentWindow()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lesson, err := lockLesson(tx, lessonID)
		if err != nil {
			return err
		}
		student, err := loadStudent(tx, studentID)
		if err != nil {
			return err
		}

		var enrollment models.Enrollment
		res := liveOn(tx, today).
			Where("student_id = ? AND lesson_id = ?", student.ID, lesson.ID).
			Limit(1).Find(&enrollment)
		if res.Error != nil {
			return dbError(res.Error, "load enrollment")
		}
		if res.RowsAffected == 0 {
			return ErrNotEnrolled
		}

		if err := tx.Delete(&enrollment).Error; err != nil {
			return dbError(err, "delete enrollment")
		}

		occupancy := lesson.CurrentCap - 1
		if occupancy < 0 {
			occupancy = 0
		}
		if err := tx.Model(&lesson).Update("current_cap", occupancy).Error; err != nil {
			return dbError(err, "update lesson occupancy")
		}
		return nil
	}, s.txOptions...)
	if err != nil {
		return EnrollResult{}, txError(err)
	}

	log.Printf("Student %s unenrolled from lesson %s", studentID, lessonID)
	return EnrollResult{StudentID: studentID, LessonID: lessonID}, nil
}

// Status reports whether the student holds a live enrollment in the lesson today.
func (s *EnrollmentService) Status(ctx context.Context, studentID, lessonID uuid.UUID) (EnrollmentStatus, error) {
	today, _ := s.enrollmentWindow()
	db := s.db.WithContext(ctx)

	if _, err := loadStudent(db, studentID); err != nil {
		return EnrollmentStatus{}, err
	}
	var lesson models.Lesson
	if err := db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		return EnrollmentStatus{}, lookupError(err, "lesson")
	}

	var enrollment models.Enrollment
	res := liveOn(db, today).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		Order("start_date desc").
		Limit(1).Find(&enrollment)
	if res.Error != nil {
		return EnrollmentStatus{}, dbError(res.Error, "load enrollment")
	}
	if res.RowsAffected == 0 {
		return EnrollmentStatus{}, nil
	}
	start := enrollment.StartDate
	return EnrollmentStatus{IsEnrolled: true, EnrollmentDate: &start}, nil
}

// ReconcileOccupancy resets current_cap on every active lesson to the number
// of enrollments live today. Enrollments lapse by date without any write, so
// the counter would otherwise only ever go up.
func (s *EnrollmentService) ReconcileOccupancy(ctx context.Context) (int, error) {
	today, _ := s.enrollmentWindow()

	var lessonIDs []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("is_active = ?", true).
		Pluck("id", &lessonIDs).Error; err != nil {
		return 0, dbError(err, "list lessons")
	}

	changed := 0
	for _, id := range lessonIDs {
		var updated bool
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			lesson, err := lockLesson(tx, id)
			if err != nil {
				return err
			}
			var live int64
			if err := liveOn(tx, today).Model(&models.Enrollment{}).
				Where("lesson_id = ?", id).
				Count(&live).Error; err != nil {
				return dbError(err, "count enrollments")
			}
			if int(live) == lesson.CurrentCap {
				return nil
			}
			updated = true
			return dbError(tx.Model(&lesson).Update("current_cap", live).Error, "update lesson occupancy")
		}, s.txOptions...)
		if err != nil {
			return changed, errors.Wrapf(txError(err), "reconcile lesson %s", id)
		}
		if updated {
			changed++
		}
	}
	return changed, nil
}
