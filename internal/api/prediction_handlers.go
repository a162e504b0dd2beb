package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/keyurgolani/BabyNest-sub006/internal/sweetspot"
)

const streamHeartbeat = 15 * time.Second

func GetPrediction(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby, ok := loadBaby(c, app)
		if !ok {
			return
		}
		report, err := app.Predictions().Report(c.Request.Context(), baby)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to compute prediction")
			return
		}
		HandleSuccess(c, app.Logger(), report, nil)
	}
}

// StreamPrediction sends the current prediction as a server-sent event and
// then every update published for the baby until the client goes away.
func StreamPrediction(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby, ok := loadBaby(c, app)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		updates, unsubscribe := app.Bus().Subscribe(ctx, baby.ID)
		defer unsubscribe()

		report, err := app.Predictions().Report(ctx, baby)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to compute prediction")
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
		c.SSEvent("prediction", report.Update())
		c.Writer.Flush()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
				c.Writer.Flush()
			case u, ok := <-updates:
				if !ok {
					return
				}
				c.SSEvent("prediction", u)
				c.Writer.Flush()
			}
		}
	}
}

type guidanceResponse struct {
	AgeMonths *int                       `json:"age_months,omitempty"`
	Guidance  string                     `json:"guidance"`
	Range     *sweetspot.WakeWindowRange `json:"range,omitempty"`
}

// GetGuidance answers without an age as well, with the generic guidance line.
func GetGuidance(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		table := app.Predictions().Table()
		raw := c.Query("age_months")
		if raw == "" {
			HandleSuccess(c, app.Logger(), guidanceResponse{Guidance: table.Guidance(sweetspot.UnknownAge)}, nil)
			return
		}
		age, err := strconv.Atoi(raw)
		if err != nil || age < 0 {
			if err == nil {
				err = errors.New("negative age")
			}
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "age_months must be a non-negative integer")
			return
		}
		r := table.Lookup(age)
		HandleSuccess(c, app.Logger(), guidanceResponse{AgeMonths: &age, Guidance: table.Guidance(age), Range: &r}, nil)
	}
}
