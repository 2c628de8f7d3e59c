package analytics

import "time"

// TimeRange filters admin dashboards by payment date.
type TimeRange string

const (
	AllTime   TimeRange = "all_time"
	Today     TimeRange = "today"
	ThisWeek  TimeRange = "this_week"
	ThisMonth TimeRange = "this_month"
	ThisYear  TimeRange = "this_year"
)

// ParseTimeRange defaults to AllTime for anything unrecognised.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case Today, ThisWeek, ThisMonth, ThisYear:
		return TimeRange(s)
	default:
		return AllTime
	}
}

// Bounds returns the half-open interval [from, to) of r around now, in loc.
// Weeks start on Sunday. ok is false for AllTime.
func (r TimeRange) Bounds(now time.Time, loc *time.Location) (from, to time.Time, ok bool) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()
	switch r {
	case Today:
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
		to = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	case ThisWeek:
		from = time.Date(y, m, d-int(local.Weekday()), 0, 0, 0, 0, loc)
		to = time.Date(y, m, d-int(local.Weekday())+7, 0, 0, 0, 0, loc)
	case ThisMonth:
		from = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		to = time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
	case ThisYear:
		from = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		to = time.Date(y+1, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
