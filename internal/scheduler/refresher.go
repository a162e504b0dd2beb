package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"
	"golang.org/x/sync/errgroup"

	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/realtime"
	"github.com/keyurgolani/BabyNest-sub006/internal/service"
	"github.com/keyurgolani/BabyNest-sub006/internal/storage"
)

// Refresher recomputes every baby's prediction on a cron schedule and
// publishes the results, so countdowns stay current for stream subscribers.
type Refresher struct {
	cron        *cron.Cron
	schedule    string
	babies      storage.BabyRepository
	predictions *service.PredictionService
	bus         realtime.Bus
	logger      internal.Logger
	timeout     time.Duration
	parallelism int

	mu      sync.Mutex
	running bool
}

func NewRefresher(schedule string, babies storage.BabyRepository, predictions *service.PredictionService, bus realtime.Bus, logger internal.Logger) (*Refresher, error) {
	r := &Refresher{
		cron:        cron.New(),
		schedule:    schedule,
		babies:      babies,
		predictions: predictions,
		bus:         bus,
		logger:      logger.With("component", "refresher"),
		timeout:     30 * time.Second,
		parallelism: 8,
	}
	if err := r.cron.AddFunc(schedule, r.tick); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Refresher) Start() {
	r.logger.Infow("starting prediction refresher", "schedule", r.schedule)
	r.cron.Start()
}

func (r *Refresher) Stop() {
	r.cron.Stop()
}

// tick skips a run while the previous one is still going.
func (r *Refresher) tick() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		r.logger.Warnw("previous refresh still running, skipping")
		return
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	n, err := r.RefreshAll(ctx)
	if err != nil {
		r.logger.Warnw("prediction refresh finished with errors", "published", n, "error", err)
		return
	}
	r.logger.Debugw("prediction refresh finished", "published", n)
}

// RefreshAll publishes a fresh prediction for every baby, a few at a time.
// A failure for one baby does not stop the others; the errors are joined.
func (r *Refresher) RefreshAll(ctx context.Context) (int, error) {
	babies, err := r.babies.ListBabies(ctx)
	if err != nil {
		return 0, fmt.Errorf("list babies: %w", err)
	}

	var (
		mu        sync.Mutex
		published int
		errs      []error
	)
	var g errgroup.Group
	g.SetLimit(r.parallelism)
	for i := range babies {
		baby := &babies[i]
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = r.predictions.Publish(ctx, r.bus, baby)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("baby %s: %w", baby.ID, err))
				return nil
			}
			published++
			return nil
		})
	}
	_ = g.Wait()
	return published, errors.Join(errs...)
}
