package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/auth"
	"github.com/keyurgolani/BabyNest-sub006/internal/service"
)

func PostBaby(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		caregiver, ok := auth.CaregiverFrom(c)
		if !ok {
			HandleError(c, app.Logger(), errors.New("no caregiver"), http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req service.BabyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		now := app.Predictions().Now()
		if err := service.ValidateBabyRequest(&req, now); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Validation failed")
			return
		}

		baby, err := service.CreateBaby(c.Request.Context(), app.BabyRepo(), caregiver, &req, now)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to save baby")
			return
		}
		HandleCreated(c, app.Logger(), baby)
	}
}

func GetBabies(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		caregiver, ok := auth.CaregiverFrom(c)
		if !ok {
			HandleError(c, app.Logger(), errors.New("no caregiver"), http.StatusUnauthorized, "Unauthorized")
			return
		}
		babies, err := app.BabyRepo().ListBabiesByCaregiver(c.Request.Context(), caregiver.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to fetch babies")
			return
		}
		if babies == nil {
			babies = []internal.Baby{}
		}
		HandleSuccess(c, app.Logger(), babies, nil)
	}
}

// loadBaby resolves :id for the authenticated caregiver and writes the error
// response itself when that fails.
func loadBaby(c *gin.Context, app App) (*internal.Baby, bool) {
	caregiver, ok := auth.CaregiverFrom(c)
	if !ok {
		HandleError(c, app.Logger(), errors.New("no caregiver"), http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	baby, err := app.Predictions().BabyFor(c.Request.Context(), caregiver, c.Param("id"))
	if err != nil {
		msg := "Failed to load baby"
		if errors.Is(err, internal.ErrNotFound) || errors.Is(err, internal.ErrForbidden) {
			msg = "Baby not accessible"
		}
		HandleError(c, app.Logger(), err, http.StatusInternalServerError, msg)
		return nil, false
	}
	return baby, true
}
