package scheduling

import (
	"fmt"
	"time"
)

// MarkingGrace is how long before the start and after the end of a session a
// tutor may still record attendance.
const MarkingGrace = time.Hour

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusPending  Status = "pending"
	StatusMissed   Status = "missed"
	StatusAttended Status = "attended"
)

// Window is the closed interval in which attendance may be marked.
type Window struct {
	Start time.Time `json:"window_start"`
	End   time.Time `json:"window_end"`
}

// ComputeWindow combines the session date with the lesson clock times in loc
// and widens the result by MarkingGrace on both sides.
func ComputeWindow(date time.Time, startTime, endTime string, loc *time.Location) (Window, error) {
	if date.IsZero() {
		return Window{}, fmt.Errorf("session date is missing")
	}
	if loc == nil {
		loc = time.UTC
	}
	start, err := ParseClock(startTime)
	if err != nil {
		return Window{}, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return Window{}, err
	}

	// the date column is a calendar day; read it in UTC so a driver-side zone
	// cannot shift it to the previous day
	day := DateOnly(date)
	return Window{
		Start: start.On(day, loc).Add(-MarkingGrace),
		End:   end.On(day, loc).Add(MarkingGrace),
	}, nil
}

// Contains reports whether now lies in [Start, End].
func (w Window) Contains(now time.Time) bool {
	return !now.Before(w.Start) && !now.After(w.End)
}

// DeriveStatus evaluates the session state at now. Attended is terminal; the
// other three depend only on where now sits relative to the window.
func DeriveStatus(now time.Time, attended bool, w Window) Status {
	switch {
	case attended:
		return StatusAttended
	case now.Before(w.Start):
		return StatusUpcoming
	case now.After(w.End):
		return StatusMissed
	default:
		return StatusPending
	}
}
