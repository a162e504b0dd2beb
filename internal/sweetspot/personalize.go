package sweetspot

import (
	"math"
	"sort"
	"time"
)

// Interval is one recorded sleep.
type Interval struct {
	Start time.Time
	End   time.Time
}

type PersonalizeOptions struct {
	Lookback      time.Duration
	MaxGapMinutes int
	MaxSamples    int
}

func DefaultPersonalizeOptions() PersonalizeOptions {
	return PersonalizeOptions{
		Lookback:      7 * 24 * time.Hour,
		MaxGapMinutes: 360,
		MaxSamples:    10,
	}
}

// PersonalizeFromSessions averages the most recent awake gaps between
// consecutive sleeps. It returns nil when no gap qualifies.
func PersonalizeFromSessions(sessions []Interval, now time.Time, opts PersonalizeOptions) *PersonalizedWindow {
	if len(sessions) < 2 {
		return nil
	}
	sorted := make([]Interval, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	cutoff := now.Add(-opts.Lookback)
	var gaps []int
	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if prev.End.Before(cutoff) || next.Start.After(now) {
			continue
		}
		gap := int(next.Start.Sub(prev.End) / time.Minute)
		if gap <= 0 || gap > opts.MaxGapMinutes {
			continue
		}
		gaps = append(gaps, gap)
	}
	if len(gaps) == 0 {
		return nil
	}
	if opts.MaxSamples > 0 && len(gaps) > opts.MaxSamples {
		gaps = gaps[len(gaps)-opts.MaxSamples:]
	}

	total := 0
	for _, g := range gaps {
		total += g
	}
	return &PersonalizedWindow{
		WakeWindow: int(math.Round(float64(total) / float64(len(gaps)))),
		DataPoints: len(gaps),
	}
}

// LastSleepEnd returns the latest end time, or zero for no sessions. An end
// slightly ahead of the caller's clock is kept; Predict clamps the elapsed time.
func LastSleepEnd(sessions []Interval) time.Time {
	var last time.Time
	for _, s := range sessions {
		if s.End.After(last) {
			last = s.End
		}
	}
	return last
}
