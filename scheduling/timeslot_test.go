package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlot(t *testing.T, day, start, end string) Slot {
	t.Helper()
	s, err := NewSlot(day, start, end)
	require.NoError(t, err)
	return s
}

func TestSlot_Overlaps(t *testing.T) {
	a := mustSlot(t, "monday", "09:00:00", "10:00:00")

	tests := []struct {
		name string
		b    Slot
		want bool
	}{
		{name: "partial overlap", b: mustSlot(t, "Monday", "09:30:00", "10:30:00"), want: true},
		{name: "contained", b: mustSlot(t, "monday", "09:15:00", "09:45:00"), want: true},
		{name: "containing", b: mustSlot(t, "monday", "08:00:00", "11:00:00"), want: true},
		{name: "identical", b: mustSlot(t, "monday", "09:00:00", "10:00:00"), want: true},
		{name: "touching after", b: mustSlot(t, "monday", "10:00:00", "11:00:00"), want: false},
		{name: "touching before", b: mustSlot(t, "monday", "08:00:00", "09:00:00"), want: false},
		{name: "other day", b: mustSlot(t, "tuesday", "09:30:00", "10:30:00"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a), "overlap must be symmetric")
		})
	}
}

func TestNewSlot_invalid(t *testing.T) {
	tests := []struct {
		name, day, start, end string
	}{
		{name: "unknown day", day: "someday", start: "09:00", end: "10:00"},
		{name: "end before start", day: "monday", start: "10:00", end: "09:00"},
		{name: "empty end", day: "monday", start: "10:00", end: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSlot(tt.day, tt.start, tt.end)
			assert.Error(t, err)
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "09:00", want: "09:00:00"},
		{in: "09:05:30", want: "09:05:30"},
		{in: "17:45:00.000000", want: "17:45:00"},
		{in: "0000-01-01T08:15:00Z", want: "08:15:00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseClock(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
		})
	}
}

func TestOccurrences(t *testing.T) {
	// 2024-03-04 is a Monday
	from := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	got := Occurrences(time.Wednesday, from, to)
	require.Len(t, got, 4)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), got[0])
	assert.Equal(t, time.Date(2024, 3, 27, 0, 0, 0, 0, time.UTC), got[3])

	got = Occurrences(time.Monday, from, to)
	require.Len(t, got, 4)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), got[0])

	assert.Empty(t, Occurrences(time.Monday, to, from))
}

func TestLocalDate(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*60*60)
	// 20:30 UTC on the 3rd is already the 4th in Singapore
	at := time.Date(2024, 3, 3, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), LocalDate(at, sgt))
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), LocalDate(at, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), LocalDate(at, nil))
}
