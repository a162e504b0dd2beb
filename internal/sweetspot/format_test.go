package sweetspot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m", FormatDuration(0))
	assert.Equal(t, "45m", FormatDuration(45))
	assert.Equal(t, "1h", FormatDuration(60))
	assert.Equal(t, "2h 5m", FormatDuration(125))
	assert.Equal(t, "26h 1m", FormatDuration(1561))
	assert.Equal(t, "0m", FormatDuration(-30))
}

func TestFormatTimeUntilSleep(t *testing.T) {
	assert.Equal(t, "in 30m", FormatTimeUntilSleep(30))
	assert.Equal(t, "in 1h 30m", FormatTimeUntilSleep(90))
	assert.Equal(t, "15m ago", FormatTimeUntilSleep(-15))
	assert.Equal(t, "2h 5m ago", FormatTimeUntilSleep(-125))
	assert.Equal(t, "0m ago", FormatTimeUntilSleep(0))
	for m := -500; m <= 500; m += 7 {
		assert.NotContains(t, FormatTimeUntilSleep(m), "-")
	}
}

func TestWakeWindowGuidance(t *testing.T) {
	assert.Equal(t, "1h 15m to 2h awake between sleeps", WakeWindowGuidance(3))
	assert.Equal(t, "3h to 5h awake between sleeps", WakeWindowGuidance(30))
	assert.Contains(t, WakeWindowGuidance(UnknownAge), "date of birth")
}

func TestStatusMessage(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	noHistory := e.Predict(Input{AgeMonths: 3}, now)
	assert.Equal(t, "Log a sleep to see the next sweet spot.", StatusMessage(noHistory))

	noAge := e.Predict(Input{AgeMonths: UnknownAge, LastSleepEnd: now.Add(-time.Hour)}, now)
	assert.Contains(t, StatusMessage(noAge), "date of birth")

	rested := e.Predict(Input{AgeMonths: 3, LastSleepEnd: now.Add(-30 * time.Minute)}, now)
	assert.Equal(t, "Well rested. Next nap sweet spot in 1h 30m.", StatusMessage(rested))

	open := e.Predict(Input{AgeMonths: 3, LastSleepEnd: now.Add(-100 * time.Minute)}, now)
	assert.Equal(t, "Sleep window is open. Aim for nap in 20m.", StatusMessage(open))

	closing := e.Predict(Input{AgeMonths: 3, LastSleepEnd: now.Add(-120 * time.Minute)}, now)
	assert.True(t, strings.HasPrefix(StatusMessage(closing), "Sleep window is open. Start winding down"))

	over := e.Predict(Input{AgeMonths: 3, LastSleepEnd: now.Add(-150 * time.Minute)}, now)
	assert.Equal(t, "Awake for 2h 30m, past the sweet spot. Try to settle for sleep now.", StatusMessage(over))
}
