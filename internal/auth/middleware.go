package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/config"
	"github.com/keyurgolani/BabyNest-sub006/internal/response"
)

const CaregiverKey = "caregiver"

// AuthMiddleware resolves the bearer token to a caregiver. Browsers cannot set
// headers on EventSource requests, so an access_token query parameter is
// accepted as well.
func AuthMiddleware(provider Provider, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			var caregiver *internal.Caregiver
			var err error
			if cfg.Env == "development" {
				caregiver, err = provider.ValidateTokenLocal(token)
			} else {
				caregiver, err = provider.ValidateTokenRemote(c.Request.Context(), token)
			}
			if err == nil {
				c.Set(CaregiverKey, caregiver)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.NewAppError(http.StatusUnauthorized, "Unauthorized"))
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(c.Query("access_token"))
}

// CaregiverFrom returns the caregiver stored by AuthMiddleware.
func CaregiverFrom(c *gin.Context) (*internal.Caregiver, bool) {
	v, ok := c.Get(CaregiverKey)
	if !ok {
		return nil, false
	}
	caregiver, ok := v.(*internal.Caregiver)
	return caregiver, ok && caregiver != nil
}

// NewProvider picks the local provider in development and the remote one otherwise.
func NewProvider(cfg *config.Config, logger internal.Logger) Provider {
	if cfg.Env == "development" {
		return NewLocalAuthProvider(cfg.AuthToken, logger)
	}
	return NewRemoteAuthProvider(cfg.AuthServiceURL, logger)
}
