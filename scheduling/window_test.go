package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeWindow(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	w, err := ComputeWindow(date, "09:00:00", "10:00:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC), w.End)
}

func TestComputeWindow_localZone(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*60*60)
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	w, err := ComputeWindow(date, "09:00", "10:30", sgt)
	require.NoError(t, err)
	assert.True(t, w.Start.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.End.Equal(time.Date(2024, 3, 4, 3, 30, 0, 0, time.UTC)))
}

func TestComputeWindow_daylightSavingDays(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name       string
		date       time.Time
		start, end time.Time
	}{
		{
			name:  "clocks go forward",
			date:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			start: time.Date(2024, 3, 10, 8, 0, 0, 0, ny),
			end:   time.Date(2024, 3, 10, 11, 0, 0, 0, ny),
		},
		{
			name:  "clocks go back",
			date:  time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC),
			start: time.Date(2024, 11, 3, 8, 0, 0, 0, ny),
			end:   time.Date(2024, 11, 3, 11, 0, 0, 0, ny),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ComputeWindow(tt.date, "09:00:00", "10:00:00", ny)
			require.NoError(t, err)
			assert.True(t, w.Start.Equal(tt.start), "start %s, want %s", w.Start, tt.start)
			assert.True(t, w.End.Equal(tt.end), "end %s, want %s", w.End, tt.end)
		})
	}
}

func TestComputeWindow_invalid(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		date       time.Time
		start, end string
	}{
		{name: "zero date", start: "09:00:00", end: "10:00:00"},
		{name: "bad start", date: date, start: "nine", end: "10:00:00"},
		{name: "bad end", date: date, start: "09:00:00", end: "25:61"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeWindow(tt.date, tt.start, tt.end, time.UTC)
			assert.Error(t, err)
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	w, err := ComputeWindow(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), "09:00:00", "10:00:00", time.UTC)
	require.NoError(t, err)
	at := func(h, m, s int) time.Time { return time.Date(2024, 3, 4, h, m, s, 0, time.UTC) }

	tests := []struct {
		name     string
		now      time.Time
		attended bool
		want     Status
	}{
		{name: "before window", now: at(7, 59, 59), want: StatusUpcoming},
		{name: "window opens", now: at(8, 0, 0), want: StatusPending},
		{name: "during lesson", now: at(9, 30, 0), want: StatusPending},
		{name: "last second", now: at(10, 59, 59), want: StatusPending},
		{name: "window closes", now: at(11, 0, 0), want: StatusPending},
		{name: "after window", now: at(11, 0, 1), want: StatusMissed},
		{name: "attended early", now: at(7, 0, 0), attended: true, want: StatusAttended},
		{name: "attended in window", now: at(9, 0, 0), attended: true, want: StatusAttended},
		{name: "attended long after", now: at(23, 0, 0).AddDate(1, 0, 0), attended: true, want: StatusAttended},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.now, tt.attended, w))
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	w := Window{
		Start: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC),
	}
	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(w.End.Add(time.Nanosecond)))
}
