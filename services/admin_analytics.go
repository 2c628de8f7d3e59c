package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tutiful/tutiful_backend/analytics"
	"github.com/tutiful/tutiful_backend/models"
)

// AdminRevenueSummary is the platform's view of money in and out. Platform
// revenue is the fee share of student payments.
type AdminRevenueSummary struct {
	StudentRevenue     float64                `json:"student_revenue"`
	PlatformRevenue    float64                `json:"platform_revenue"`
	TutorPaymentsPaid  float64                `json:"tutor_payments_paid"`
	NetRevenue         float64                `json:"net_revenue"`
	TotalSubscriptions int                    `json:"total_subscriptions"`
	TotalLessons       int                    `json:"total_lessons"`
	TotalAgencies      int                    `json:"total_agencies"`
	PaidSessions       int                    `json:"paid_sessions"`
	RevenueByGrade     []analytics.NamedValue `json:"revenue_by_grade"`
	RevenueByAgency    []analytics.NamedValue `json:"revenue_by_agency"`
}

type TutorPaymentLine struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	LessonID    uuid.UUID `json:"lesson_id"`
	AgencyName  string    `json:"agency_name"`
	Sessions    int       `json:"sessions"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
}

type TutorPayments struct {
	TutorID       uuid.UUID          `json:"tutor_id"`
	TutorName     string             `json:"tutor_name"`
	TutorEmail    string             `json:"tutor_email"`
	AgencyName    string             `json:"agency_name"`
	TotalSessions int                `json:"total_sessions"`
	TotalAmount   float64            `json:"total_amount"`
	AverageRate   float64            `json:"average_rate"`
	Payments      []TutorPaymentLine `json:"payments"`
}

type AgencyStats struct {
	AgencyID          uuid.UUID `json:"agency_id"`
	AgencyName        string    `json:"agency_name"`
	Revenue           float64   `json:"revenue"`
	TutorCount        int       `json:"tutor_count"`
	StudentCount      int       `json:"student_count"`
	LessonCount       int       `json:"lesson_count"`
	SubscriptionCount int       `json:"subscription_count"`
	JoinedDate        time.Time `json:"joined_date"`
}

type PlatformFeeTransaction struct {
	ID           uuid.UUID `json:"id"`
	StudentID    uuid.UUID `json:"student_id"`
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	LessonID     uuid.UUID `json:"lesson_id"`
	LessonTitle  string    `json:"lesson_title"`
	SubjectName  string    `json:"subject_name"`
	AgencyID     uuid.UUID `json:"agency_id"`
	AgencyName   string    `json:"agency_name"`
	TutorName    string    `json:"tutor_name"`
	TotalAmount  float64   `json:"total_amount"`
	PlatformFee  float64   `json:"platform_fee"`
	PaymentDate  time.Time `json:"payment_date"`
}

const unknownAgency = "Unknown Agency"

// paidWithin narrows q to rows whose column falls inside r.
func (s *AnalyticsService) paidWithin(q *gorm.DB, column string, r analytics.TimeRange) *gorm.DB {
	from, to, ok := r.Bounds(s.now(), s.loc)
	if !ok {
		return q
	}
	return q.Where(column+" >= ? AND "+column+" < ?", from.UTC(), to.UTC())
}

func agencyNames(db *gorm.DB) (map[uuid.UUID]models.Agency, error) {
	var agencies []models.Agency
	if err := db.Order("created_at asc").Find(&agencies).Error; err != nil {
		return nil, dbError(err, "list agencies")
	}
	out := make(map[uuid.UUID]models.Agency, len(agencies))
	for _, a := range agencies {
		out[a.ID] = a
	}
	return out, nil
}

func usersByID(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, dbError(err, "list users")
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func nameOr(names map[uuid.UUID]models.Agency, id uuid.UUID) string {
	if a, ok := names[id]; ok {
		return a.Name
	}
	return unknownAgency
}

// AdminRevenueSummary totals every agency's payments inside r.
func (s *AnalyticsService) AdminRevenueSummary(ctx context.Context, r analytics.TimeRange) (AdminRevenueSummary, error) {
	db := s.db.WithContext(ctx)
	out := AdminRevenueSummary{
		RevenueByGrade:  []analytics.NamedValue{},
		RevenueByAgency: []analytics.NamedValue{},
	}

	var payments []models.StudentPayment
	if err := s.paidWithin(db.Preload("Lesson.Subject"), "payment_date", r).
		Find(&payments).Error; err != nil {
		return AdminRevenueSummary{}, dbError(err, "list student payments")
	}
	var payouts []models.TutorPayment
	if err := s.paidWithin(db, "payment_date", r).Find(&payouts).Error; err != nil {
		return AdminRevenueSummary{}, dbError(err, "list tutor payments")
	}
	agencies, err := agencyNames(db)
	if err != nil {
		return AdminRevenueSummary{}, err
	}
	var lessons int64
	if err := db.Model(&models.Lesson{}).Where("is_active = ?", true).Count(&lessons).Error; err != nil {
		return AdminRevenueSummary{}, dbError(err, "count lessons")
	}

	byGrade := make([]analytics.Categorized, 0, len(payments))
	byAgency := make([]analytics.Categorized, 0, len(payments))
	for _, p := range payments {
		out.StudentRevenue += p.Amount
		out.PlatformRevenue += p.PlatformFee
		byGrade = append(byGrade, analytics.Categorized{
			Category: analytics.GradeCategory(p.Lesson.Subject.GradeLevel),
			Value:    p.PlatformFee,
		})
		byAgency = append(byAgency, analytics.Categorized{
			Category: nameOr(agencies, p.Lesson.AgencyID),
			Value:    p.PlatformFee,
		})
	}
	for _, p := range payouts {
		out.TutorPaymentsPaid += p.Amount
		out.PaidSessions += p.Sessions
	}

	out.StudentRevenue = round2(out.StudentRevenue)
	out.PlatformRevenue = round2(out.PlatformRevenue)
	out.TutorPaymentsPaid = round2(out.TutorPaymentsPaid)
	out.NetRevenue = round2(out.PlatformRevenue - out.TutorPaymentsPaid)
	out.TotalSubscriptions = len(payments)
	out.TotalLessons = int(lessons)
	out.TotalAgencies = len(agencies)
	if len(payments) > 0 {
		out.RevenueByGrade = analytics.RevenueByCategory(byGrade)
		out.RevenueByAgency = analytics.RevenueByCategory(byAgency)
	}
	return out, nil
}

// AdminTutorPayments groups the payouts inside r by tutor, largest total first.
func (s *AnalyticsService) AdminTutorPayments(ctx context.Context, r analytics.TimeRange) ([]TutorPayments, error) {
	db := s.db.WithContext(ctx)
	var payouts []models.TutorPayment
	if err := s.paidWithin(db, "payment_date", r).Order("payment_date asc").
		Find(&payouts).Error; err != nil {
		return nil, dbError(err, "list tutor payments")
	}
	if len(payouts) == 0 {
		return []TutorPayments{}, nil
	}
	agencies, err := agencyNames(db)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(payouts))
	for _, p := range payouts {
		ids = append(ids, p.TutorID)
	}
	tutors, err := usersByID(db, ids)
	if err != nil {
		return nil, err
	}

	byTutor := make(map[uuid.UUID]*TutorPayments)
	var order []uuid.UUID
	for _, p := range payouts {
		agency := nameOr(agencies, p.AgencyID)
		t, ok := byTutor[p.TutorID]
		if !ok {
			t = &TutorPayments{TutorID: p.TutorID, TutorName: "Unknown Tutor", AgencyName: agency}
			if u, found := tutors[p.TutorID]; found {
				t.TutorName, t.TutorEmail = u.FullName, u.Email
			}
			byTutor[p.TutorID] = t
			order = append(order, p.TutorID)
		}
		t.TotalSessions += p.Sessions
		t.TotalAmount += p.Amount
		t.Payments = append(t.Payments, TutorPaymentLine{
			PaymentID:   p.ID,
			LessonID:    p.LessonID,
			AgencyName:  agency,
			Sessions:    p.Sessions,
			Amount:      p.Amount,
			PaymentDate: p.PaymentDate,
		})
	}

	out := make([]TutorPayments, 0, len(order))
	for _, id := range order {
		t := byTutor[id]
		t.TotalAmount = round2(t.TotalAmount)
		if t.TotalSessions > 0 {
			t.AverageRate = round2(t.TotalAmount / float64(t.TotalSessions))
		}
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalAmount > out[j].TotalAmount })
	return out, nil
}

// AdminAgencyStats ranks agencies by what they kept from payments inside r.
func (s *AnalyticsService) AdminAgencyStats(ctx context.Context, r analytics.TimeRange) ([]AgencyStats, error) {
	db := s.db.WithContext(ctx)
	var agencies []models.Agency
	if err := db.Order("created_at asc").Find(&agencies).Error; err != nil {
		return nil, dbError(err, "list agencies")
	}

	var revenue []struct {
		AgencyID uuid.UUID
		Revenue  float64
		Payments int
	}
	q := db.Model(&models.StudentPayment{}).
		Select("lessons.agency_id as agency_id, coalesce(sum(student_payments.amount - student_payments.platform_fee), 0) as revenue, count(*) as payments").
		Joins("JOIN lessons ON lessons.id = student_payments.lesson_id").
		Group("lessons.agency_id")
	if err := s.paidWithin(q, "student_payments.payment_date", r).Scan(&revenue).Error; err != nil {
		return nil, dbError(err, "sum agency revenue")
	}

	var people []struct {
		AgencyID uuid.UUID
		Role     string
		Total    int
	}
	if err := db.Model(&models.User{}).
		Select("agency_id, role, count(*) as total").
		Where("agency_id IS NOT NULL AND role IN ?", []string{models.RoleTutor, models.RoleStudent}).
		Group("agency_id, role").
		Scan(&people).Error; err != nil {
		return nil, dbError(err, "count users")
	}

	var lessons []struct {
		AgencyID uuid.UUID
		Total    int
	}
	if err := db.Model(&models.Lesson{}).
		Select("agency_id, count(*) as total").
		Where("is_active = ?", true).
		Group("agency_id").
		Scan(&lessons).Error; err != nil {
		return nil, dbError(err, "count lessons")
	}

	stats := make(map[uuid.UUID]*AgencyStats, len(agencies))
	out := make([]AgencyStats, len(agencies))
	for i, a := range agencies {
		out[i] = AgencyStats{AgencyID: a.ID, AgencyName: a.Name, JoinedDate: a.CreatedAt}
		stats[a.ID] = &out[i]
	}
	for _, row := range revenue {
		if st, ok := stats[row.AgencyID]; ok {
			st.Revenue = round2(row.Revenue)
			st.SubscriptionCount = row.Payments
		}
	}
	for _, row := range people {
		st, ok := stats[row.AgencyID]
		if !ok {
			continue
		}
		if row.Role == models.RoleTutor {
			st.TutorCount = row.Total
		} else {
			st.StudentCount = row.Total
		}
	}
	for _, row := range lessons {
		if st, ok := stats[row.AgencyID]; ok {
			st.LessonCount = row.Total
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out, nil
}

// AdminPlatformFeeTransactions lists the student payments inside r, newest
// first, with the fee the platform took from each.
func (s *AnalyticsService) AdminPlatformFeeTransactions(ctx context.Context, r analytics.TimeRange) ([]PlatformFeeTransaction, error) {
	db := s.db.WithContext(ctx)
	var payments []models.StudentPayment
	if err := s.paidWithin(db.Preload("Lesson.Subject").Preload("Lesson.Tutor"), "payment_date", r).
		Order("payment_date desc").
		Find(&payments).Error; err != nil {
		return nil, dbError(err, "list student payments")
	}
	out := make([]PlatformFeeTransaction, 0, len(payments))
	if len(payments) == 0 {
		return out, nil
	}
	agencies, err := agencyNames(db)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.StudentID)
	}
	students, err := usersByID(db, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range payments {
		tx := PlatformFeeTransaction{
			ID:          p.ID,
			StudentID:   p.StudentID,
			StudentName: "Student " + p.StudentID.String()[:8],
			LessonID:    p.LessonID,
			LessonTitle: p.Lesson.Title,
			SubjectName: p.Lesson.Subject.Name,
			AgencyID:    p.Lesson.AgencyID,
			AgencyName:  nameOr(agencies, p.Lesson.AgencyID),
			TutorName:   "Unknown Tutor",
			TotalAmount: p.Amount,
			PlatformFee: p.PlatformFee,
			PaymentDate: p.PaymentDate,
		}
		if u, ok := students[p.StudentID]; ok {
			tx.StudentName, tx.StudentEmail = u.FullName, u.Email
		}
		if p.Lesson.Tutor != nil {
			tx.TutorName = p.Lesson.Tutor.FullName
		}
		out = append(out, tx)
	}
	return out, nil
}
