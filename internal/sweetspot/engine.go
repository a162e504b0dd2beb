package sweetspot

import (
	"math"
	"time"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type SleepType string

const (
	SleepTypeNap   SleepType = "nap"
	SleepTypeNight SleepType = "night"
)

// PersonalizedWindow is a wake window learned from the baby's own history.
type PersonalizedWindow struct {
	WakeWindow int `json:"wake_window"`
	DataPoints int `json:"data_points"`
}

type Input struct {
	// AgeMonths is UnknownAge when the date of birth is missing or invalid.
	AgeMonths int
	// LastSleepEnd is zero when no sleep has been logged yet.
	LastSleepEnd time.Time
	Personalized *PersonalizedWindow
}

// Prediction is the result of one Predict call. It is never mutated after
// being returned.
type Prediction struct {
	Status                 Status          `json:"status"`
	Confidence             Confidence      `json:"confidence"`
	SleepType              SleepType       `json:"sleep_type,omitempty"`
	HasSleepHistory        bool            `json:"has_sleep_history"`
	PredictedSleepTime     time.Time       `json:"predicted_sleep_time,omitzero"`
	MinutesUntilSleep      int             `json:"minutes_until_sleep"`
	CurrentAwakeMinutes    int             `json:"current_awake_minutes"`
	RecommendedRange       WakeWindowRange `json:"recommended_range,omitzero"`
	PersonalizedWakeWindow int             `json:"personalized_wake_window,omitempty"`
	HasHistoricalData      bool            `json:"has_historical_data"`
	HistoricalDataPoints   int             `json:"historical_data_points"`
	GeneratedAt            time.Time       `json:"generated_at"`
}

// Ready reports whether the prediction carries a predicted sleep time.
func (p Prediction) Ready() bool {
	return p.Status != StatusNoData
}

type EngineConfig struct {
	Table Table
	// MinDataPoints is the sample count at which a personalized window
	// replaces the age default. With fewer samples the prediction uses the
	// age range at low confidence, while HasHistoricalData and
	// HistoricalDataPoints still report the samples that were seen.
	MinDataPoints int
	// HighConfidencePoints is the sample count for high confidence.
	HighConfidencePoints int
	// Night band in local hours, [NightStartHour, NightEndHour), may wrap midnight.
	NightStartHour int
	NightEndHour   int
	Location       *time.Location
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Table:                DefaultTable,
		MinDataPoints:        3,
		HighConfidencePoints: 7,
		NightStartHour:       19,
		NightEndHour:         6,
		Location:             time.UTC,
	}
}

// Engine is stateless once built and safe for concurrent use.
type Engine struct {
	cfg EngineConfig
}

// Validate reports a malformed wake window table. An empty table is allowed
// and means DefaultTable.
func (c EngineConfig) Validate() error {
	if len(c.Table) == 0 {
		return nil
	}
	return c.Table.Validate()
}

// NewEngine fills unset or invalid fields from DefaultEngineConfig. Callers
// that need to reject a bad table should check Validate first.
func NewEngine(cfg EngineConfig) *Engine {
	def := DefaultEngineConfig()
	if len(cfg.Table) == 0 || cfg.Table.Validate() != nil {
		cfg.Table = def.Table
	}
	if cfg.MinDataPoints <= 0 {
		cfg.MinDataPoints = def.MinDataPoints
	}
	if cfg.HighConfidencePoints < cfg.MinDataPoints {
		cfg.HighConfidencePoints = cfg.MinDataPoints
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	if cfg.NightStartHour < 0 || cfg.NightStartHour > 23 {
		cfg.NightStartHour = def.NightStartHour
	}
	if cfg.NightEndHour < 0 || cfg.NightEndHour > 23 {
		cfg.NightEndHour = def.NightEndHour
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Table() Table { return e.cfg.Table }

func (e *Engine) Predict(in Input, now time.Time) Prediction {
	p := Prediction{
		Status:          StatusNoData,
		Confidence:      ConfidenceLow,
		HasSleepHistory: !in.LastSleepEnd.IsZero(),
		GeneratedAt:     now,
	}
	if in.Personalized != nil && in.Personalized.DataPoints > 0 {
		p.HasHistoricalData = true
		p.HistoricalDataPoints = in.Personalized.DataPoints
	}
	if !p.HasSleepHistory {
		if in.AgeMonths >= 0 {
			p.RecommendedRange = e.cfg.Table.Lookup(in.AgeMonths)
		}
		return p
	}

	p.CurrentAwakeMinutes = awakeMinutes(in.LastSleepEnd, now)

	window, confidence, ok := e.effectiveWindow(in)
	if !ok {
		return p
	}
	p.RecommendedRange = window
	p.Confidence = confidence
	if confidence != ConfidenceLow {
		p.PersonalizedWakeWindow = in.Personalized.WakeWindow
	}

	p.PredictedSleepTime = in.LastSleepEnd.Add(time.Duration(window.Max) * time.Minute)
	p.MinutesUntilSleep = roundHalfUp(p.PredictedSleepTime.Sub(now).Minutes())
	p.Status = ClassifyRange(p.CurrentAwakeMinutes, window)
	p.SleepType = e.sleepType(p.PredictedSleepTime)
	return p
}

func (e *Engine) effectiveWindow(in Input) (WakeWindowRange, Confidence, bool) {
	pw := in.Personalized
	if pw != nil && pw.WakeWindow > 0 && pw.DataPoints >= e.cfg.MinDataPoints {
		// Without an age there is no guideline width; open the window at 75%.
		width := pw.WakeWindow / 4
		if in.AgeMonths >= 0 {
			width = e.cfg.Table.Lookup(in.AgeMonths).Width()
		}
		r := WakeWindowRange{Min: max(pw.WakeWindow-width, 1), Max: pw.WakeWindow}
		if pw.DataPoints >= e.cfg.HighConfidencePoints {
			return r, ConfidenceHigh, true
		}
		return r, ConfidenceMedium, true
	}
	if in.AgeMonths < 0 {
		return WakeWindowRange{}, ConfidenceLow, false
	}
	return e.cfg.Table.Lookup(in.AgeMonths), ConfidenceLow, true
}

func (e *Engine) sleepType(t time.Time) SleepType {
	h := t.In(e.cfg.Location).Hour()
	start, end := e.cfg.NightStartHour, e.cfg.NightEndHour
	var night bool
	if start <= end {
		night = h >= start && h < end
	} else {
		night = h >= start || h < end
	}
	if night {
		return SleepTypeNight
	}
	return SleepTypeNap
}

func awakeMinutes(lastSleepEnd, now time.Time) int {
	d := now.Sub(lastSleepEnd)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
