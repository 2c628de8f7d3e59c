// Package scheduling holds the calendar arithmetic shared by enrollment,
// attendance and reminders. Nothing here touches the database.
package scheduling

import (
	"fmt"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts a case-insensitive English day name.
func ParseWeekday(day string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		return 0, fmt.Errorf("invalid day of week: %q", day)
	}
	return wd, nil
}

// WeekdayName is the inverse of ParseWeekday.
func WeekdayName(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

// Clock is a time of day as an offset from midnight.
type Clock time.Duration

var clockLayouts = []string{"15:04:05.999999999", "15:04:05", "15:04", time.RFC3339Nano}

// ParseClock reads a time-of-day column. Drivers hand TIME values back either
// as "HH:MM[:SS[.frac]]" or as a timestamp on the zero date.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second +
			time.Duration(t.Nanosecond())
		return Clock(d), nil
	}
	return 0, fmt.Errorf("invalid time of day: %q", s)
}

func (c Clock) String() string {
	d := time.Duration(c)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	sec := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// On places the clock time on the calendar date of day, in loc. The result
// reads as that wall-clock time even on days with a DST shift.
func (c Clock) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	v := time.Duration(c)
	h := v / time.Hour
	mins := (v % time.Hour) / time.Minute
	sec := (v % time.Minute) / time.Second
	ns := v % time.Second
	return time.Date(y, m, d, int(h), int(mins), int(sec), int(ns), loc)
}

// Slot is a weekly recurring [Start, End) range.
type Slot struct {
	Day   time.Weekday
	Start Clock
	End   Clock
}

// NewSlot validates and builds a Slot from stored column values.
func NewSlot(day, start, end string) (Slot, error) {
	wd, err := ParseWeekday(day)
	if err != nil {
		return Slot{}, err
	}
	s, err := ParseClock(start)
	if err != nil {
		return Slot{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Slot{}, err
	}
	if e <= s {
		return Slot{}, fmt.Errorf("end time %s must be after start time %s", e, s)
	}
	return Slot{Day: wd, Start: s, End: e}, nil
}

// Overlaps reports whether two weekly slots clash. Ranges are half-open, so
// back-to-back slots (one ends when the other starts) do not clash.
func (s Slot) Overlaps(o Slot) bool {
	return s.Day == o.Day && s.Start < o.End && s.End > o.Start
}

// DateOnly truncates t to midnight UTC of its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LocalDate is the calendar date of t in loc, as a UTC midnight.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Occurrences lists the dates in [from, to] falling on wd, as UTC midnights.
func Occurrences(wd time.Weekday, from, to time.Time) []time.Time {
	from, to = DateOnly(from), DateOnly(to)
	offset := (int(wd) - int(from.Weekday()) + 7) % 7
	var out []time.Time
	for d := from.AddDate(0, 0, offset); !d.After(to); d = d.AddDate(0, 0, 7) {
		out = append(out, d)
	}
	return out
}
