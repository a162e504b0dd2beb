package sweetspot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

func TestPersonalizeFromSessions(t *testing.T) {
	sessions := []Interval{
		{Start: at(13, 10), End: at(14, 0)},
		{Start: at(8, 0), End: at(9, 0)},
		{Start: at(10, 30), End: at(11, 30)},
		{Start: at(0, 0).Add(-4 * time.Hour), End: at(0, 0).Add(-3 * time.Hour)},
	}

	pw := PersonalizeFromSessions(sessions, at(15, 0), DefaultPersonalizeOptions())

	require.NotNil(t, pw)
	assert.Equal(t, 95, pw.WakeWindow)
	assert.Equal(t, 2, pw.DataPoints)
}

func TestPersonalizeKeepsMostRecentSamples(t *testing.T) {
	var sessions []Interval
	start := at(6, 0)
	// Gaps of 60 then 120 minutes, alternating.
	for i := 0; i < 6; i++ {
		sessions = append(sessions, Interval{Start: start, End: start.Add(30 * time.Minute)})
		gap := 60
		if i%2 == 1 {
			gap = 120
		}
		start = start.Add(30*time.Minute + time.Duration(gap)*time.Minute)
	}
	opts := DefaultPersonalizeOptions()
	opts.MaxSamples = 2

	pw := PersonalizeFromSessions(sessions, at(23, 0), opts)

	require.NotNil(t, pw)
	assert.Equal(t, 2, pw.DataPoints)
	assert.Equal(t, 90, pw.WakeWindow)
}

func TestPersonalizeIgnoresOldAndOverlapping(t *testing.T) {
	now := at(12, 0)
	old := now.AddDate(0, 0, -10)
	sessions := []Interval{
		{Start: old, End: old.Add(time.Hour)},
		{Start: old.Add(2 * time.Hour), End: old.Add(3 * time.Hour)},
		{Start: at(8, 0), End: at(9, 0)},
		{Start: at(8, 30), End: at(9, 30)},
	}

	assert.Nil(t, PersonalizeFromSessions(sessions, now, DefaultPersonalizeOptions()))
	assert.Nil(t, PersonalizeFromSessions(sessions[:1], now, DefaultPersonalizeOptions()))
}

func TestLastSleepEnd(t *testing.T) {
	assert.True(t, LastSleepEnd(nil).IsZero())

	sessions := []Interval{
		{Start: at(8, 0), End: at(9, 0)},
		{Start: at(11, 0), End: at(11, 45)},
		{Start: at(10, 0), End: at(10, 30)},
	}
	assert.Equal(t, at(11, 45), LastSleepEnd(sessions))
}
