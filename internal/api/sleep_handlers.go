package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/service"
)

func PostSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby, ok := loadBaby(c, app)
		if !ok {
			return
		}

		var body service.SleepSessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := service.ValidateSleepSessionRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Validation failed")
			return
		}

		ctx := c.Request.Context()
		predictions := app.Predictions()
		session, err := service.CreateSleepSession(ctx, app.SleepRepo(), baby, &body, predictions.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to save sleep session")
			return
		}

		if err := predictions.SessionLogged(ctx, app.Bus(), baby); err != nil {
			app.Logger().Warnw("failed to publish prediction after new session", "baby_id", baby.ID, "error", err)
		}
		HandleCreated(c, app.Logger(), session)
	}
}

func GetSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby, ok := loadBaby(c, app)
		if !ok {
			return
		}
		sessions, err := app.SleepRepo().ListSleepSessions(c.Request.Context(), baby.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to fetch sleep sessions")
			return
		}
		if sessions == nil {
			sessions = []internal.SleepSession{}
		}
		HandleSuccess(c, app.Logger(), sessions, nil)
	}
}

func GetSleepStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby, ok := loadBaby(c, app)
		if !ok {
			return
		}
		sessions, err := app.SleepRepo().ListSleepSessions(c.Request.Context(), baby.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to fetch sleep sessions for stats")
			return
		}
		stats := service.CalculateSleepStats(sessions, app.Predictions().Now())
		HandleSuccess(c, app.Logger(), stats, nil)
	}
}
