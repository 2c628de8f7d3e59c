package analytics

import (
	"math"

	"github.com/tutiful/tutiful_backend/scheduling"
)

type SessionSummary struct {
	Total          int `json:"total_sessions"`
	Attended       int `json:"attended"`
	Pending        int `json:"pending"`
	Upcoming       int `json:"upcoming"`
	Missed         int `json:"missed"`
	AttendanceRate int `json:"attendance_rate"`
	MissedRate     int `json:"missed_rate"`
}

// SummarizeSessions counts statuses. Rates are whole percentages of the
// sessions that are already decided (attended or missed).
func SummarizeSessions(statuses []scheduling.Status) SessionSummary {
	var s SessionSummary
	for _, st := range statuses {
		s.Total++
		switch st {
		case scheduling.StatusAttended:
			s.Attended++
		case scheduling.StatusPending:
			s.Pending++
		case scheduling.StatusUpcoming:
			s.Upcoming++
		case scheduling.StatusMissed:
			s.Missed++
		}
	}
	if decided := s.Attended + s.Missed; decided > 0 {
		s.AttendanceRate = int(math.Round(float64(s.Attended) / float64(decided) * 100))
		s.MissedRate = 100 - s.AttendanceRate
	}
	return s
}
