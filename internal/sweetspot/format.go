package sweetspot

import (
	"fmt"
	"strconv"
)

// FormatDuration renders minutes as "2h 5m", "2h" or "45m". Negative input
// renders as "0m".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return strconv.Itoa(m) + "m"
	case m == 0:
		return strconv.Itoa(h) + "h"
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FormatTimeUntilSleep renders a countdown for positive values and an
// overdue phrase otherwise.
func FormatTimeUntilSleep(minutesUntilSleep int) string {
	if minutesUntilSleep > 0 {
		return "in " + FormatDuration(minutesUntilSleep)
	}
	return FormatDuration(-minutesUntilSleep) + " ago"
}

func (t Table) Guidance(ageMonths int) string {
	if ageMonths < 0 {
		return "Add a date of birth to see age-based wake windows."
	}
	r := t.Lookup(ageMonths)
	return fmt.Sprintf("%s to %s awake between sleeps", FormatDuration(r.Min), FormatDuration(r.Max))
}

// WakeWindowGuidance uses DefaultTable.
func WakeWindowGuidance(ageMonths int) string {
	return DefaultTable.Guidance(ageMonths)
}

func StatusMessage(p Prediction) string {
	switch p.Status {
	case StatusWellRested:
		return fmt.Sprintf("Well rested. Next %s sweet spot %s.", p.SleepType, FormatTimeUntilSleep(p.MinutesUntilSleep))
	case StatusApproachingTired:
		if p.MinutesUntilSleep <= 0 {
			return "Sleep window is open. Start winding down now."
		}
		return fmt.Sprintf("Sleep window is open. Aim for %s %s.", p.SleepType, FormatTimeUntilSleep(p.MinutesUntilSleep))
	case StatusOvertired:
		return fmt.Sprintf("Awake for %s, past the sweet spot. Try to settle for sleep now.", FormatDuration(p.CurrentAwakeMinutes))
	default:
		if !p.HasSleepHistory {
			return "Log a sleep to see the next sweet spot."
		}
		return "Add a date of birth to get a sleep prediction."
	}
}
