package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var buf bytes.Buffer
	err := run(args, &buf, now)
	return buf.String(), err
}

func TestRunPredicts(t *testing.T) {
	out, err := runCLI(t, "-dob", "2025-12-01", "-last-wake", "90m")

	require.NoError(t, err)
	assert.Contains(t, out, "APPROACHING TIRED")
	assert.Contains(t, out, "Awake:      1h 30m")
	assert.Contains(t, out, "Next nap:   14:30 (in 30m)")
	assert.Contains(t, out, "Window:     1h 15m to 2h")
	assert.Contains(t, out, "Confidence: low")
}

func TestRunWithoutHistory(t *testing.T) {
	out, err := runCLI(t, "-dob", "2025-12-01")

	require.NoError(t, err)
	assert.Contains(t, out, "NO DATA")
	assert.Contains(t, out, "Log a sleep to see the next sweet spot.")
	assert.NotContains(t, out, "Awake:")
}

func TestRunPersonalized(t *testing.T) {
	out, err := runCLI(t, "-last-wake", "13:00", "-personalized", "100", "-points", "8")

	require.NoError(t, err)
	assert.Contains(t, out, "Confidence: high")
	assert.Contains(t, out, "in 40m")
}

func TestRunPrintsTable(t *testing.T) {
	out, err := runCLI(t, "-table")

	require.NoError(t, err)
	assert.Contains(t, out, "0-0m")
	assert.Contains(t, out, "12m+")
}

func TestRunLoadsTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte("breakpoints:\n  - {from_months: 0, min: 30, max: 45}\n"), 0o644))

	out, err := runCLI(t, "-table-file", path, "-dob", "2025-12-01", "-last-wake", "10m")

	require.NoError(t, err)
	assert.Contains(t, out, "Window:     30m to 45m")
}

func TestRunRejectsBadInput(t *testing.T) {
	_, err := runCLI(t, "-dob", "yesterday")
	assert.ErrorContains(t, err, "invalid -dob")

	_, err = runCLI(t, "-dob", "2027-01-01")
	assert.ErrorContains(t, err, "invalid -dob")

	_, err = runCLI(t, "-last-wake", "noonish")
	assert.ErrorContains(t, err, "invalid -last-wake")
}

func TestParseLastWakeClockRollsBack(t *testing.T) {
	got, err := parseLastWake("15:00", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-23*time.Hour), got)
}
