package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/keyurgolani/BabyNest-sub006/internal/auth"
	"github.com/keyurgolani/BabyNest-sub006/internal/config"
)

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

func NewRouter(app App, provider auth.Provider, cfg *config.Config) *gin.Engine {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.OtelServiceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger(app.Logger()))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := r.Group("/")
	protected.Use(auth.AuthMiddleware(provider, cfg))
	protected.POST("/babies", PostBaby(app))
	protected.GET("/babies", GetBabies(app))
	protected.POST("/babies/:id/sleep", PostSleep(app))
	protected.GET("/babies/:id/sleep", GetSleep(app))
	protected.GET("/babies/:id/sleep/stats", GetSleepStats(app))
	protected.GET("/babies/:id/prediction", GetPrediction(app))
	protected.GET("/babies/:id/prediction/stream", StreamPrediction(app))
	protected.GET("/guidance", GetGuidance(app))
	return r
}
