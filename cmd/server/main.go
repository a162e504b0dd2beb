package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/api"
	"github.com/keyurgolani/BabyNest-sub006/internal/auth"
	"github.com/keyurgolani/BabyNest-sub006/internal/config"
	"github.com/keyurgolani/BabyNest-sub006/internal/observability"
	"github.com/keyurgolani/BabyNest-sub006/internal/realtime"
	"github.com/keyurgolani/BabyNest-sub006/internal/scheduler"
	"github.com/keyurgolani/BabyNest-sub006/internal/service"
	"github.com/keyurgolani/BabyNest-sub006/internal/storage"
	"github.com/keyurgolani/BabyNest-sub006/internal/sweetspot"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, logger, observability.TracingConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.Env,
	})

	repos, err := storage.NewRepositories(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	engineCfg, err := engineConfig(cfg)
	if err != nil {
		logger.Fatalf("failed to load wake window table: %v", err)
	}
	predictions := service.NewPredictionService(repos.Babies, repos.Sleep, logger, service.PredictionOptions{
		Engine:   engineCfg,
		CacheTTL: cfg.CacheTTL,
	})

	bus := newBus(ctx, cfg, logger)
	bus.OnInvalidate(predictions.Invalidate)

	refresher, err := scheduler.NewRefresher(cfg.RefreshSchedule, repos.Babies, predictions, bus, logger)
	if err != nil {
		logger.Fatalf("failed to schedule refresher: %v", err)
	}
	refresher.Start()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	app := api.NewApp(logger, repos.Babies, repos.Sleep, predictions, bus)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(app, auth.NewProvider(cfg, logger), cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infow("server listening", "addr", cfg.HTTPAddr, "env", cfg.Env, "storage", cfg.DBType)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	refresher.Stop()
	// Stream handlers only return once their subscriptions close.
	if err := bus.Close(); err != nil {
		logger.Warnw("bus close failed", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("http shutdown failed", "error", err)
	}
	if err := repos.Close(); err != nil {
		logger.Warnw("storage close failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warnw("tracing shutdown failed", "error", err)
	}
}

func engineConfig(cfg *config.Config) (sweetspot.EngineConfig, error) {
	ec := sweetspot.DefaultEngineConfig()
	if cfg.WakeWindowTable != "" {
		table, err := sweetspot.LoadTableYAML(cfg.WakeWindowTable)
		if err != nil {
			return ec, err
		}
		ec.Table = table
	}
	ec.MinDataPoints = cfg.MinDataPoints
	ec.HighConfidencePoints = cfg.HighConfidencePoints
	ec.NightStartHour = cfg.NightStartHour
	ec.NightEndHour = cfg.NightEndHour
	ec.Location = cfg.Location()
	return ec, ec.Validate()
}

// newBus uses Redis when configured and falls back to the in-process hub.
func newBus(ctx context.Context, cfg *config.Config, logger internal.Logger) realtime.Bus {
	if cfg.RedisAddr == "" {
		return realtime.NewHub()
	}
	bus, err := realtime.NewRedisBus(ctx, cfg.RedisAddr, cfg.RedisChannel, logger)
	if err != nil {
		logger.Warnw("redis unavailable, using in-process bus", "addr", cfg.RedisAddr, "error", err)
		return realtime.NewHub()
	}
	logger.Infow("using redis bus", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
	return bus
}
