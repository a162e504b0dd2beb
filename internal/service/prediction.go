package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/maypok86/otter/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/observability"
	"github.com/keyurgolani/BabyNest-sub006/internal/realtime"
	"github.com/keyurgolani/BabyNest-sub006/internal/storage"
	"github.com/keyurgolani/BabyNest-sub006/internal/sweetspot"
)

// history is what the service derives from a baby's sleep log.
type history struct {
	lastSleepEnd time.Time
	personalized *sweetspot.PersonalizedWindow
}

// PredictionReport is a prediction plus the copy rendered for it.
type PredictionReport struct {
	BabyID        string               `json:"baby_id"`
	AgeMonths     *int                 `json:"age_months,omitempty"`
	Prediction    sweetspot.Prediction `json:"prediction"`
	Countdown     string               `json:"countdown,omitempty"`
	StatusMessage string               `json:"status_message"`
	Guidance      string               `json:"guidance"`
}

func (r PredictionReport) Update() realtime.Update {
	return realtime.Update{
		BabyID:        r.BabyID,
		Prediction:    r.Prediction,
		Countdown:     r.Countdown,
		StatusMessage: r.StatusMessage,
	}
}

type PredictionOptions struct {
	Engine      sweetspot.EngineConfig
	Personalize sweetspot.PersonalizeOptions
	CacheTTL    time.Duration
	// Clock defaults to time.Now.
	Clock         func() time.Time
	RetryAttempts uint
	RetryDelay    time.Duration
}

type PredictionService struct {
	babies storage.BabyRepository
	sleep  storage.SleepSessionRepository
	engine *sweetspot.Engine
	cache  *otter.Cache[string, history]
	opts   PredictionOptions
	logger internal.Logger

	// generations is bumped by Invalidate. A history fetched under an older
	// generation is never cached.
	genMu       sync.Mutex
	generations map[string]uint64
}

// staleRefetches bounds how often history is re-read when invalidations keep
// racing the fetch.
const staleRefetches = 2

func NewPredictionService(babies storage.BabyRepository, sleep storage.SleepSessionRepository, logger internal.Logger, opts PredictionOptions) *PredictionService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}
	if opts.Personalize == (sweetspot.PersonalizeOptions{}) {
		opts.Personalize = sweetspot.DefaultPersonalizeOptions()
	}
	if len(opts.Engine.Table) > 0 {
		if err := opts.Engine.Table.Validate(); err != nil {
			logger.Warnw("invalid wake window table, using the default", "error", err)
		}
	}
	return &PredictionService{
		babies: babies,
		sleep:  sleep,
		engine: sweetspot.NewEngine(opts.Engine),
		cache: otter.Must(&otter.Options[string, history]{
			MaximumSize:      10_000,
			ExpiryCalculator: otter.ExpiryWriting[string, history](opts.CacheTTL),
		}),
		opts:        opts,
		logger:      logger.With("component", "prediction_service"),
		generations: make(map[string]uint64),
	}
}

func (s *PredictionService) Now() time.Time { return s.opts.Clock() }

// BabyFor loads a baby on behalf of caregiver. It returns ErrNotFound or
// ErrForbidden when the caregiver may not see it.
func (s *PredictionService) BabyFor(ctx context.Context, caregiver *internal.Caregiver, babyID string) (*internal.Baby, error) {
	baby, err := s.fetchBaby(ctx, babyID)
	if err != nil {
		return nil, err
	}
	if baby.CaregiverID != caregiver.ID {
		return nil, internal.ErrForbidden
	}
	return baby, nil
}

// GetPrediction loads the caregiver's baby and its sleep history and predicts
// the next sleep. Missing birth dates or sleep history produce a no-data
// prediction.
func (s *PredictionService) GetPrediction(ctx context.Context, caregiver *internal.Caregiver, babyID string) (PredictionReport, error) {
	baby, err := s.BabyFor(ctx, caregiver, babyID)
	if err != nil {
		return PredictionReport{}, err
	}
	return s.Report(ctx, baby)
}

// Report predicts for an already loaded baby.
func (s *PredictionService) Report(ctx context.Context, baby *internal.Baby) (PredictionReport, error) {
	ctx, span := observability.Tracer().Start(ctx, "PredictionService.Report")
	defer span.End()
	span.SetAttributes(attribute.String("baby.id", baby.ID))

	now := s.opts.Clock()
	h, err := s.history(ctx, baby.ID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "history fetch failed")
		s.logger.Errorw("failed to load sleep history", "baby_id", baby.ID, "error", err)
		return PredictionReport{}, err
	}

	age, ageErr := sweetspot.AgeInMonths(baby.DateOfBirth, now)
	p := s.engine.Predict(sweetspot.Input{
		AgeMonths:    age,
		LastSleepEnd: h.lastSleepEnd,
		Personalized: h.personalized,
	}, now)
	span.SetAttributes(
		attribute.String("prediction.status", string(p.Status)),
		attribute.String("prediction.confidence", string(p.Confidence)),
	)

	report := PredictionReport{
		BabyID:        baby.ID,
		Prediction:    p,
		StatusMessage: sweetspot.StatusMessage(p),
		Guidance:      s.engine.Table().Guidance(age),
	}
	if ageErr == nil {
		report.AgeMonths = &age
	}
	if p.Ready() {
		report.Countdown = sweetspot.FormatTimeUntilSleep(p.MinutesUntilSleep)
	}
	return report, nil
}

// Invalidate drops cached history so the next prediction sees new sessions.
// Fetches already in flight for babyID are not cached.
func (s *PredictionService) Invalidate(babyID string) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generations[babyID]++
	s.cache.Invalidate(babyID)
}

// SessionLogged invalidates babyID here and on every instance sharing bus,
// then publishes the fresh prediction.
func (s *PredictionService) SessionLogged(ctx context.Context, bus realtime.Bus, baby *internal.Baby) error {
	s.Invalidate(baby.ID)
	if err := bus.PublishInvalidation(ctx, baby.ID); err != nil {
		s.logger.Warnw("failed to broadcast invalidation", "baby_id", baby.ID, "error", err)
	}
	return s.Publish(ctx, bus, baby)
}

func (s *PredictionService) Publish(ctx context.Context, bus realtime.Bus, baby *internal.Baby) error {
	report, err := s.Report(ctx, baby)
	if err != nil {
		return err
	}
	return bus.Publish(ctx, report.Update())
}

func (s *PredictionService) Guidance(ageMonths int) string {
	return s.engine.Table().Guidance(ageMonths)
}

func (s *PredictionService) Table() sweetspot.Table {
	return s.engine.Table()
}

func (s *PredictionService) history(ctx context.Context, babyID string, now time.Time) (history, error) {
	for attempt := 0; ; attempt++ {
		if h, ok := s.cache.GetIfPresent(babyID); ok {
			return h, nil
		}
		gen := s.generation(babyID)
		sessions, err := s.fetchSessions(ctx, babyID)
		if err != nil {
			return history{}, err
		}
		intervals := make([]sweetspot.Interval, len(sessions))
		for i, ss := range sessions {
			intervals[i] = sweetspot.Interval{Start: ss.StartTime, End: ss.EndTime}
		}
		h := history{
			lastSleepEnd: sweetspot.LastSleepEnd(intervals),
			personalized: sweetspot.PersonalizeFromSessions(intervals, now, s.opts.Personalize),
		}
		if s.store(babyID, gen, h) || attempt == staleRefetches {
			return h, nil
		}
		s.logger.Debugw("history invalidated during fetch, reloading", "baby_id", babyID)
	}
}

func (s *PredictionService) generation(babyID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[babyID]
}

// store caches h unless babyID was invalidated after gen was read.
func (s *PredictionService) store(babyID string, gen uint64, h history) bool {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[babyID] != gen {
		return false
	}
	s.cache.Set(babyID, h)
	return true
}

func (s *PredictionService) retryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(s.opts.RetryAttempts),
		retry.Delay(s.opts.RetryDelay),
		retry.MaxDelay(2 * time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, internal.ErrNotFound) && !errors.Is(err, context.Canceled)
		}),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warnw("retrying storage read", "attempt", n+1, "error", err)
		}),
	}
}

func (s *PredictionService) fetchBaby(ctx context.Context, babyID string) (*internal.Baby, error) {
	var baby *internal.Baby
	err := retry.Do(func() error {
		var err error
		baby, err = s.babies.GetBaby(ctx, babyID)
		return err
	}, s.retryOptions(ctx)...)
	return baby, err
}

func (s *PredictionService) fetchSessions(ctx context.Context, babyID string) ([]internal.SleepSession, error) {
	var sessions []internal.SleepSession
	err := retry.Do(func() error {
		var err error
		sessions, err = s.sleep.ListSleepSessions(ctx, babyID)
		return err
	}, s.retryOptions(ctx)...)
	return sessions, err
}
