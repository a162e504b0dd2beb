package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/response"
)

// HandleError writes the error envelope. Sentinel errors from the storage and
// service layers override the fallback status.
func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	status = statusFor(err, status)
	requestID := c.GetString("request_id")
	if status >= http.StatusInternalServerError {
		logger.Errorw(msg, "request_id", requestID, "error", err)
	} else {
		logger.Warnw(msg, "request_id", requestID, "status", status, "error", err)
	}
	var resp response.APIResponse
	switch status {
	case http.StatusBadRequest:
		resp = response.BadRequest(msg + ": " + err.Error())
	case http.StatusForbidden:
		resp = response.Forbidden(msg)
	case http.StatusNotFound:
		resp = response.NotFound(msg)
	case http.StatusInternalServerError:
		resp = response.InternalError(msg)
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.AbortWithStatusJSON(status, resp)
}

func statusFor(err error, fallback int) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, internal.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, internal.ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	}
	return fallback
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data any, meta map[string]any) {
	logger.Debugw("success", "request_id", c.GetString("request_id"), "path", c.FullPath())
	c.JSON(http.StatusOK, response.Success(data, meta))
}

func HandleCreated(c *gin.Context, logger internal.Logger, data any) {
	logger.Infow("created", "request_id", c.GetString("request_id"), "path", c.FullPath())
	c.JSON(http.StatusCreated, response.Success(data, nil))
}
