package api

import (
	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/realtime"
	"github.com/keyurgolani/BabyNest-sub006/internal/service"
	"github.com/keyurgolani/BabyNest-sub006/internal/storage"
)

type App interface {
	Logger() internal.Logger
	BabyRepo() storage.BabyRepository
	SleepRepo() storage.SleepSessionRepository
	Predictions() *service.PredictionService
	Bus() realtime.Bus
}

type app struct {
	logger      internal.Logger
	babies      storage.BabyRepository
	sleep       storage.SleepSessionRepository
	predictions *service.PredictionService
	bus         realtime.Bus
}

func NewApp(logger internal.Logger, babies storage.BabyRepository, sleep storage.SleepSessionRepository, predictions *service.PredictionService, bus realtime.Bus) App {
	return &app{logger: logger, babies: babies, sleep: sleep, predictions: predictions, bus: bus}
}

func (a *app) Logger() internal.Logger                   { return a.logger }
func (a *app) BabyRepo() storage.BabyRepository          { return a.babies }
func (a *app) SleepRepo() storage.SleepSessionRepository { return a.sleep }
func (a *app) Predictions() *service.PredictionService   { return a.predictions }
func (a *app) Bus() realtime.Bus                         { return a.bus }
