package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, 1, Int("ENROLLMENT_MONTHS"))
	assert.Equal(t, 4, Int("ATTENDANCE_WEEKS_AHEAD"))
	assert.Equal(t, 0.1, Float("PLATFORM_FEE_RATE"))
	assert.Equal(t, 30*time.Minute, Duration("DB_CONN_MAX_LIFETIME"))
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("ENROLLMENT_MONTHS", "3")
	assert.Equal(t, 3, Int("ENROLLMENT_MONTHS"))
}

func TestLocation(t *testing.T) {
	t.Cleanup(func() { Set("SCHEDULE_TIMEZONE", "Asia/Singapore") })

	Set("SCHEDULE_TIMEZONE", "Asia/Singapore")
	assert.Equal(t, "Asia/Singapore", Location().String())

	Set("SCHEDULE_TIMEZONE", "Mars/Olympus_Mons")
	assert.Equal(t, time.UTC, Location())
}
