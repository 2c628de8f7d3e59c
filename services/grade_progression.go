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

// ProgressionTemplate is what an agency submits, once per lesson, to shape
// the grade progression notice its students get when the lesson ends.
type ProgressionTemplate struct {
	SelectedLessonIDs []uuid.UUID `json:"selected_lesson_ids"`
	CustomMessage     string      `json:"custom_message"`
}

type NextGradeLesson struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Tutor          string    `json:"tutor"`
	DayOfWeek      string    `json:"day_of_week"`
	TimeSlot       string    `json:"time_slot"`
	AvailableSpots int       `json:"available_spots"`
}

type NextGradeOptions struct {
	CurrentGrade string            `json:"current_grade"`
	NextGrade    string            `json:"next_grade"`
	SubjectName  string            `json:"subject_name"`
	Lessons      []NextGradeLesson `json:"available_next_grade_lessons"`
}

func (t ProgressionTemplate) jsonMap(submittedBy uuid.UUID) datatypes.JSONMap {
	ids := make([]string, 0, len(t.SelectedLessonIDs))
	for _, id := range t.SelectedLessonIDs {
		ids = append(ids, id.String())
	}
	return datatypes.JSONMap{
		"selected_lesson_ids": ids,
		"custom_message":      t.CustomMessage,
		"submitted_by":        submittedBy.String(),
	}
}

// templateFrom reads a stored template back. Values loaded from the database
// come back as []interface{}, values built in memory as []string.
func templateFrom(m datatypes.JSONMap) ProgressionTemplate {
	var out ProgressionTemplate
	if m == nil {
		return out
	}
	out.CustomMessage, _ = m["custom_message"].(string)

	var raw []string
	switch ids := m["selected_lesson_ids"].(type) {
	case []string:
		raw = ids
	case []interface{}:
		for _, v := range ids {
			if s, ok := v.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			out.SelectedLessonIDs = append(out.SelectedLessonIDs, id)
		}
	}
	return out
}

func gradeOf(subject models.Subject) string {
	if subject.GradeLevel == nil {
		return ""
	}
	return *subject.GradeLevel
}

// openNextGradeLessons lists active lessons of the agency with a free seat.
// With a selection only those lessons are considered; otherwise the lessons
// of the same subject at the next grade.
func openNextGradeLessons(db *gorm.DB, lesson models.Lesson, subject models.Subject, next string, selected []uuid.UUID) ([]models.Lesson, error) {
	q := db.Preload("Tutor").
		Where("agency_id = ? AND is_active = ? AND current_cap < total_cap", lesson.AgencyID, true)
	if len(selected) > 0 {
		q = q.Where("id IN ?", selected)
	} else {
		var nextSubject models.Subject
		res := db.Where("name = ? AND grade_level = ? AND is_active = ?", subject.Name, next, true).
			Limit(1).Find(&nextSubject)
		if res.Error != nil {
			return nil, dbError(res.Error, "load next grade subject")
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
		q = q.Where("subject_id = ?", nextSubject.ID)
	}

	var out []models.Lesson
	if err := q.Order("title asc").Find(&out).Error; err != nil {
		return nil, dbError(err, "list next grade lessons")
	}
	return out, nil
}

// NextGradeOptions shows what the students of a lesson could move on to.
func (s *NotificationService) NextGradeOptions(ctx context.Context, agencyID, lessonID uuid.UUID) (NextGradeOptions, error) {
	db := s.db.WithContext(ctx)
	lesson, err := agencyLesson(db, agencyID, lessonID)
	if err != nil {
		return NextGradeOptions{}, err
	}
	var subject models.Subject
	if err := db.First(&subject, "id = ?", lesson.SubjectID).Error; err != nil {
		return NextGradeOptions{}, lookupError(err, "subject")
	}

	out := NextGradeOptions{
		CurrentGrade: gradeOf(subject),
		SubjectName:  subject.Name,
		Lessons:      []NextGradeLesson{},
	}
	next, ok := models.NextGradeLevel(out.CurrentGrade)
	if !ok {
		return out, nil
	}
	out.NextGrade = next

	lessons, err := openNextGradeLessons(db, lesson, subject, next, nil)
	if err != nil {
		return NextGradeOptions{}, err
	}
	for _, l := range lessons {
		tutor := "No tutor assigned"
		if l.Tutor != nil {
			tutor = l.Tutor.FullName
		}
		out.Lessons = append(out.Lessons, NextGradeLesson{
			ID:             l.ID,
			Title:          l.Title,
			Tutor:          tutor,
			DayOfWeek:      l.DayOfWeek,
			TimeSlot:       l.StartTime + " - " + l.EndTime,
			AvailableSpots: l.TotalCap - l.CurrentCap,
		})
	}
	return out, nil
}

// SaveProgressionTemplate stores the lesson's template. It can be submitted
// only once.
func (s *NotificationService) SaveProgressionTemplate(ctx context.Context, agencyID, lessonID, submittedBy uuid.UUID, tmpl ProgressionTemplate) (ProgressionTemplate, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lesson, err := lockLesson(tx, lessonID)
		if err != nil {
			return err
		}
		if lesson.AgencyID != agencyID {
			return notFound("lesson")
		}
		if lesson.ProgressionSubmittedAt != nil {
			return ErrTemplateSubmitted
		}

		if len(tmpl.SelectedLessonIDs) > 0 {
			var found int64
			if err := tx.Model(&models.Lesson{}).
				Where("id IN ? AND agency_id = ?", tmpl.SelectedLessonIDs, agencyID).
				Count(&found).Error; err != nil {
				return dbError(err, "check selected lessons")
			}
			if int(found) != len(tmpl.SelectedLessonIDs) {
				return notFound("selected lesson")
			}
		}

		now := time.Now().UTC()
		return dbError(tx.Model(&lesson).Updates(map[string]interface{}{
			"progression_template":     tmpl.jsonMap(submittedBy),
			"progression_submitted_at": now,
		}).Error, "save progression template")
	})
	if err != nil {
		return ProgressionTemplate{}, txError(err)
	}
	return tmpl, nil
}

// SendGradeProgression offers the next grade to every student of each lesson
// whose course ended yesterday in the schedule zone. Each lesson is handled at
// most once.
func (s *NotificationService) SendGradeProgression(ctx context.Context, now time.Time) (int, error) {
	today := scheduling.LocalDate(now, s.loc)
	yesterday := today.AddDate(0, 0, -1)

	var lessons []models.Lesson
	if err := s.db.WithContext(ctx).Preload("Subject").
		Where("is_active = ? AND progression_sent = ? AND end_date >= ? AND end_date < ?", true, false, yesterday, today).
		Find(&lessons).Error; err != nil {
		return 0, dbError(err, "list ended lessons")
	}

	sent := 0
	var firstErr error
	for _, l := range lessons {
		batch, err := s.progressLesson(ctx, l, today)
		if err != nil {
			log.Printf("Grade progression for lesson %s failed: %v", l.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if s.pusher != nil {
			for _, n := range batch {
				s.pusher.Push(n)
			}
		}
		sent += len(batch)
	}
	if sent > 0 {
		log.Printf("Sent %d grade progression notification(s).", sent)
	}
	return sent, firstErr
}

func (s *NotificationService) progressLesson(ctx context.Context, l models.Lesson, today time.Time) ([]models.Notification, error) {
	var batch []models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// claim the lesson first so overlapping runs cannot both send
		res := tx.Model(&models.Lesson{}).
			Where("id = ? AND progression_sent = ?", l.ID, false).
			Update("progression_sent", true)
		if res.Error != nil {
			return dbError(res.Error, "claim lesson")
		}
		if res.RowsAffected == 0 {
			return nil
		}

		current := gradeOf(l.Subject)
		next, ok := models.NextGradeLevel(current)
		if !ok {
			return nil
		}
		tmpl := templateFrom(l.ProgressionTemplate)
		options, err := openNextGradeLessons(tx, l, l.Subject, next, tmpl.SelectedLessonIDs)
		if err != nil {
			return err
		}

		var studentIDs []uuid.UUID
		if err := tx.Model(&models.Enrollment{}).
			Where("lesson_id = ?", l.ID).
			Distinct("student_id").
			Pluck("student_id", &studentIDs).Error; err != nil {
			return dbError(err, "list enrolled students")
		}
		if len(studentIDs) == 0 {
			return nil
		}

		message := tmpl.CustomMessage
		if message == "" {
			message = fmt.Sprintf("Congratulations on completing %s %s! You're ready for %s %s. Check out available classes for the next level!",
				l.Subject.Name, current, l.Subject.Name, next)
		}
		available := make([]string, 0, len(options))
		for _, o := range options {
			available = append(available, o.ID.String())
		}
		var target interface{}
		if len(available) > 0 {
			target = available[0]
		}

		lessonID, agencyID := l.ID, l.AgencyID
		for _, id := range studentIDs {
			batch = append(batch, models.Notification{
				UserID:   id,
				AgencyID: &agencyID,
				LessonID: &lessonID,
				Type:     models.NotificationGradeProgression,
				Title:    fmt.Sprintf("🎓 Ready for %s!", next),
				Message:  message,
				Metadata: datatypes.JSONMap{
					"current_grade":        current,
					"next_grade":           next,
					"subject_name":         l.Subject.Name,
					"available_lesson_ids": available,
					"target_lesson_id":     target,
					"sent_automatically":   true,
					"sent_date":            today.Format("2006-01-02"),
					"template_used":        l.ProgressionSubmittedAt != nil,
				},
			})
		}
		return dbError(tx.Create(&batch).Error, "create notifications")
	})
	if err != nil {
		return nil, txError(err)
	}
	return batch, nil
}
