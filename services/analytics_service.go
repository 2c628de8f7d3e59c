package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tutiful/tutiful_backend/analytics"
	"github.com/tutiful/tutiful_backend/models"
	"github.com/tutiful/tutiful_backend/scheduling"
)

type RevenueSummary struct {
	StudentRevenue     float64                `json:"student_revenue"`
	TutorPaymentsPaid  float64                `json:"tutor_payments_paid"`
	NetRevenue         float64                `json:"net_revenue"`
	PaymentsReceived   float64                `json:"payments_received"`
	PlatformFees       float64                `json:"platform_fees"`
	TotalSubscriptions int                    `json:"total_subscriptions"`
	RevenueByGrade     []analytics.NamedValue `json:"revenue_by_grade"`
}

type LessonAttendance struct {
	LessonID uuid.UUID `json:"lesson_id"`
	Title    string    `json:"title"`
	analytics.SessionSummary
}

type AttendanceOverview struct {
	Overall analytics.SessionSummary `json:"overall"`
	Lessons []LessonAttendance       `json:"lessons"`
}

// AnalyticsService loads agency data and hands it to the analytics reducers.
type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
	loc *time.Location
}

func NewAnalyticsService(db *gorm.DB, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{db: db, now: time.Now, loc: loc}
}

func (s *AnalyticsService) agencyLessons(db *gorm.DB, agencyID uuid.UUID) ([]models.Lesson, error) {
	var agency models.Agency
	if err := db.First(&agency, "id = ?", agencyID).Error; err != nil {
		return nil, lookupError(err, "agency")
	}
	var lessons []models.Lesson
	if err := db.Preload("Subject").Where("agency_id = ?", agencyID).Find(&lessons).Error; err != nil {
		return nil, dbError(err, "list lessons")
	}
	return lessons, nil
}

func lessonIDs(lessons []models.Lesson) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	return ids
}

func (s *AnalyticsService) RevenueSummary(ctx context.Context, agencyID uuid.UUID) (RevenueSummary, error) {
	db := s.db.WithContext(ctx)
	lessons, err := s.agencyLessons(db, agencyID)
	if err != nil {
		return RevenueSummary{}, err
	}
	out := RevenueSummary{RevenueByGrade: []analytics.NamedValue{}}
	if len(lessons) == 0 {
		return out, nil
	}

	paidSessions := make(map[uuid.UUID]int64, len(lessons))
	var rows []struct {
		LessonID uuid.UUID
		Paid     int64
	}
	if err := db.Model(&models.Attendance{}).
		Select("lesson_id, count(*) as paid").
		Where("lesson_id IN ? AND is_paid = ?", lessonIDs(lessons), true).
		Group("lesson_id").
		Scan(&rows).Error; err != nil {
		return RevenueSummary{}, dbError(err, "count paid sessions")
	}
	for _, r := range rows {
		paidSessions[r.LessonID] = r.Paid
	}

	items := make([]analytics.Categorized, 0, len(lessons))
	for _, l := range lessons {
		revenue := l.StudentRate * float64(l.CurrentCap)
		out.StudentRevenue += revenue
		out.TutorPaymentsPaid += l.TutorRate * float64(paidSessions[l.ID])
		out.TotalSubscriptions += l.CurrentCap
		items = append(items, analytics.Categorized{
			Category: analytics.GradeCategory(l.Subject.GradeLevel),
			Value:    revenue,
		})
	}

	var payments struct {
		Amount float64
		Fees   float64
	}
	if err := db.Model(&models.StudentPayment{}).
		Select("coalesce(sum(amount), 0) as amount, coalesce(sum(platform_fee), 0) as fees").
		Where("lesson_id IN ?", lessonIDs(lessons)).
		Scan(&payments).Error; err != nil {
		return RevenueSummary{}, dbError(err, "sum payments")
	}

	out.StudentRevenue = round2(out.StudentRevenue)
	out.TutorPaymentsPaid = round2(out.TutorPaymentsPaid)
	out.NetRevenue = round2(out.StudentRevenue - out.TutorPaymentsPaid)
	out.PaymentsReceived = round2(payments.Amount)
	out.PlatformFees = round2(payments.Fees)
	out.RevenueByGrade = analytics.RevenueByCategory(items)
	return out, nil
}

// RevenueGrowth buckets attended sessions by period. Each session contributes
// its lesson's studentRate x currentCap.
func (s *AnalyticsService) RevenueGrowth(ctx context.Context, agencyID uuid.UUID, period analytics.Period) ([]analytics.GrowthBucket, error) {
	db := s.db.WithContext(ctx)
	lessons, err := s.agencyLessons(db, agencyID)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return []analytics.GrowthBucket{}, nil
	}
	byID := make(map[uuid.UUID]models.Lesson, len(lessons))
	for _, l := range lessons {
		byID[l.ID] = l
	}

	var attended []models.Attendance
	if err := db.Where("lesson_id IN ? AND is_attended = ?", lessonIDs(lessons), true).
		Find(&attended).Error; err != nil {
		return nil, dbError(err, "list attended sessions")
	}

	points := make([]analytics.Point, 0, len(attended))
	for _, a := range attended {
		l := byID[a.LessonID]
		points = append(points, analytics.Point{At: scheduling.DateOnly(a.Date), Value: l.StudentRate * float64(l.CurrentCap)})
	}
	return analytics.GrowthRates(analytics.GroupByPeriod(points, period)), nil
}

// SubscriptionGrowth buckets the agency's active lessons by creation date;
// each lesson contributes its current enrollment count.
func (s *AnalyticsService) SubscriptionGrowth(ctx context.Context, agencyID uuid.UUID, period analytics.Period) ([]analytics.GrowthBucket, error) {
	lessons, err := s.agencyLessons(s.db.WithContext(ctx), agencyID)
	if err != nil {
		return nil, err
	}
	points := make([]analytics.Point, 0, len(lessons))
	for _, l := range lessons {
		if !l.IsActive {
			continue
		}
		points = append(points, analytics.Point{At: l.CreatedAt.In(s.loc), Value: float64(l.CurrentCap)})
	}
	if len(points) == 0 {
		return []analytics.GrowthBucket{}, nil
	}
	return analytics.GrowthRates(analytics.GroupByPeriod(points, period)), nil
}

// AttendanceOverview derives every session's status at now and summarises
// per lesson and across the agency.
func (s *AnalyticsService) AttendanceOverview(ctx context.Context, agencyID uuid.UUID) (AttendanceOverview, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	lessons, err := s.agencyLessons(db, agencyID)
	if err != nil {
		return AttendanceOverview{}, err
	}
	out := AttendanceOverview{Lessons: make([]LessonAttendance, 0, len(lessons))}
	if len(lessons) == 0 {
		return out, nil
	}

	var records []models.Attendance
	if err := db.Where("lesson_id IN ?", lessonIDs(lessons)).Order("date asc").Find(&records).Error; err != nil {
		return AttendanceOverview{}, dbError(err, "list attendance")
	}
	perLesson := make(map[uuid.UUID][]scheduling.Status, len(lessons))
	var all []scheduling.Status
	byID := make(map[uuid.UUID]models.Lesson, len(lessons))
	for _, l := range lessons {
		byID[l.ID] = l
	}
	for _, r := range records {
		l := byID[r.LessonID]
		w, err := scheduling.ComputeWindow(r.Date, l.StartTime, l.EndTime, s.loc)
		if err != nil {
			continue
		}
		st := scheduling.DeriveStatus(now, r.IsAttended, w)
		perLesson[l.ID] = append(perLesson[l.ID], st)
		all = append(all, st)
	}

	for _, l := range lessons {
		out.Lessons = append(out.Lessons, LessonAttendance{
			LessonID:       l.ID,
			Title:          l.Title,
			SessionSummary: analytics.SummarizeSessions(perLesson[l.ID]),
		})
	}
	out.Overall = analytics.SummarizeSessions(all)
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
