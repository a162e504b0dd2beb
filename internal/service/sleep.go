package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/storage"
)

var validate = validator.New()

type SleepSessionRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Type      string    `json:"type,omitempty" validate:"omitempty,oneof=nap night"`
	Notes     string    `json:"notes,omitempty" validate:"max=500"`
}

func ValidateSleepSessionRequest(body *SleepSessionRequest) error {
	return validate.Struct(body)
}

// nightSleepMinimum is the duration from which an untyped session counts as night sleep.
const nightSleepMinimum = 4 * time.Hour

func CreateSleepSession(ctx context.Context, repo storage.SleepSessionRepository, baby *internal.Baby, body *SleepSessionRequest, now time.Time) (*internal.SleepSession, error) {
	kind := body.Type
	if kind == "" {
		kind = "nap"
		if body.EndTime.Sub(body.StartTime) >= nightSleepMinimum {
			kind = "night"
		}
	}
	session := &internal.SleepSession{
		ID:        uuid.NewString(),
		BabyID:    baby.ID,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Type:      kind,
		Notes:     body.Notes,
		CreatedAt: now,
	}
	if err := repo.SaveSleepSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

type SleepStats struct {
	TotalSleepMinutes24h int     `json:"total_sleep_minutes_24h"`
	NapCount24h          int     `json:"nap_count_24h"`
	AverageNapMinutes7d  float64 `json:"average_nap_minutes_7d"`
	NightCount7d         int     `json:"night_count_7d"`
}

// CalculateSleepStats only counts the part of each session inside the window.
func CalculateSleepStats(sessions []internal.SleepSession, now time.Time) SleepStats {
	day := now.Add(-24 * time.Hour)
	week := now.AddDate(0, 0, -7)
	var stats SleepStats
	napMinutes, napCount := 0, 0

	for _, s := range sessions {
		if s.EndTime.After(day) && s.StartTime.Before(now) {
			start, end := s.StartTime, s.EndTime
			if start.Before(day) {
				start = day
			}
			if end.After(now) {
				end = now
			}
			stats.TotalSleepMinutes24h += int(end.Sub(start) / time.Minute)
			if s.Type == "nap" {
				stats.NapCount24h++
			}
		}
		if s.StartTime.After(week) {
			switch s.Type {
			case "nap":
				napMinutes += int(s.EndTime.Sub(s.StartTime) / time.Minute)
				napCount++
			case "night":
				stats.NightCount7d++
			}
		}
	}
	if napCount > 0 {
		stats.AverageNapMinutes7d = float64(napMinutes) / float64(napCount)
	}
	return stats
}
