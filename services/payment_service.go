package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tutiful/tutiful_backend/models"
)

type Payout struct {
	LessonID uuid.UUID `json:"lesson_id"`
	Sessions int       `json:"sessions"`
	Amount   float64   `json:"amount"`
}

// PaymentService records money in from students and money out to tutors.
// It never talks to a payment provider.
type PaymentService struct {
	db      *gorm.DB
	now     func() time.Time
	feeRate float64
}

func NewPaymentService(db *gorm.DB, feeRate float64) *PaymentService {
	if feeRate < 0 || feeRate > 1 {
		feeRate = 0
	}
	return &PaymentService{db: db, now: time.Now, feeRate: feeRate}
}

func agencyLesson(db *gorm.DB, agencyID, lessonID uuid.UUID) (models.Lesson, error) {
	var lesson models.Lesson
	if err := db.First(&lesson, "id = ? AND agency_id = ?", lessonID, agencyID).Error; err != nil {
		return models.Lesson{}, lookupError(err, "lesson")
	}
	return lesson, nil
}

// RecordStudentPayment stores a payment received for a lesson and splits off
// the platform fee.
func (s *PaymentService) RecordStudentPayment(ctx context.Context, agencyID, lessonID, studentID uuid.UUID, amount float64) (models.StudentPayment, error) {
	db := s.db.WithContext(ctx)
	lesson, err := agencyLesson(db, agencyID, lessonID)
	if err != nil {
		return models.StudentPayment{}, err
	}
	if _, err := loadStudent(db, studentID); err != nil {
		return models.StudentPayment{}, err
	}

	p := models.StudentPayment{
		LessonID:    lesson.ID,
		StudentID:   studentID,
		Amount:      round2(amount),
		PlatformFee: round2(amount * s.feeRate),
		PaymentDate: s.now().UTC(),
	}
	if err := db.Create(&p).Error; err != nil {
		return models.StudentPayment{}, dbError(err, "create payment")
	}
	return p, nil
}

// PayTutor settles every attended, unpaid session of the lesson at the
// lesson's tutor rate and records one payment per tutor who took them.
func (s *PaymentService) PayTutor(ctx context.Context, agencyID, lessonID uuid.UUID) (Payout, error) {
	out := Payout{LessonID: lessonID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lesson, err := agencyLesson(tx, agencyID, lessonID)
		if err != nil {
			return err
		}
		var sessions []models.Attendance
		if err := tx.Select("id", "tutor_id").
			Where("lesson_id = ? AND is_attended = ? AND is_paid = ?", lesson.ID, true, false).
			Find(&sessions).Error; err != nil {
			return dbError(err, "list unpaid sessions")
		}
		if len(sessions) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(sessions))
		perTutor := make(map[uuid.UUID]int)
		var order []uuid.UUID
		for _, a := range sessions {
			ids = append(ids, a.ID)
			tutor := a.TutorID
			if tutor == nil {
				tutor = lesson.TutorID
			}
			if tutor == nil {
				continue
			}
			if _, seen := perTutor[*tutor]; !seen {
				order = append(order, *tutor)
			}
			perTutor[*tutor]++
		}

		res := tx.Model(&models.Attendance{}).
			Where("id IN ? AND is_paid = ?", ids, false).
			Update("is_paid", true)
		if res.Error != nil {
			return dbError(res.Error, "mark sessions paid")
		}
		if int(res.RowsAffected) != len(ids) {
			return ErrConcurrentUpdate
		}
		out.Sessions = len(ids)
		out.Amount = round2(lesson.TutorRate * float64(out.Sessions))

		paidAt := s.now().UTC()
		for _, tutorID := range order {
			p := models.TutorPayment{
				TutorID:     tutorID,
				AgencyID:    lesson.AgencyID,
				LessonID:    lesson.ID,
				Sessions:    perTutor[tutorID],
				Amount:      round2(lesson.TutorRate * float64(perTutor[tutorID])),
				PaymentDate: paidAt,
			}
			if err := tx.Create(&p).Error; err != nil {
				return dbError(err, "record tutor payment")
			}
		}
		return nil
	})
	if err != nil {
		return Payout{}, txError(err)
	}
	return out, nil
}
