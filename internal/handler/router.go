// Package handler assembles the HTTP surface: the v1 JSON API, the legacy
// stub endpoints, health probes and metrics.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/config"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/handler/legacy"
	v1 "github.com/dmehra2102/prod-golang-projects/myhealth/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

type RouterDeps struct {
	Config   *config.Config
	Log      *zap.Logger
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	API      *v1.Handler
	Legacy   *legacy.Handler
	Ready    Pinger
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// A known path with the wrong method is a 405, not a legacy endpoint.
	r.HandleMethodNotAllowed = true
	r.Use(
		v1.Recovery(d.Log),
		v1.RequestID(),
		d.Metrics.Middleware(),
		v1.AccessLog(d.Log),
		cors.New(corsConfig(d.Config.CORS)),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if d.Ready == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			d.Log.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.HandlerFor(d.Gatherer)))

	limiter := v1.NewRateLimiter(rate.Limit(d.Config.RateLimit.RequestsPerSecond), d.Config.RateLimit.BurstSize)
	api := r.Group("/api/v1",
		v1.RateLimit(limiter, d.Log),
		v1.Session(d.Config.Session),
	)
	d.API.Register(api)

	r.NoRoute(d.Legacy.Dispatch)
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, v1.ErrorResponse{Error: "method not allowed"})
	})

	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: []string{v1.RequestIDHeader, v1.SessionIDHeader},
		MaxAge:        cfg.MaxAge,
	}
	if cfg.AllowsAllOrigins() {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
		cc.AllowCredentials = true
	}
	return cc
}
