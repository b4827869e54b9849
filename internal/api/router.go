package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"robot-factory-backend/config"
	"robot-factory-backend/internal/model"
	"robot-factory-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(mw.Recovery(log), mw.Logger(log))

	if cfg.RequestIPHeader != "" {
		r.RemoteIPHeaders = []string{cfg.RequestIPHeader}
	}

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Reports are cached per week and dropped whenever a robot is written.
	reportCache := mw.NewResponseCache(cfg.CacheTTL())
	h.store.OnRobotSaved(func(ctx context.Context, robot *model.Robot) error {
		reportCache.Invalidate()
		return nil
	})
	byWeek := reportCache.Handler(func(c *gin.Context) string {
		start, _ := h.reports.CurrentWeek()
		return c.Request.URL.Path + "@" + start.Format(time.RFC3339)
	})

	r.GET("/healthz", h.Health)

	api := r.Group("/")
	api.Use(rateLimiter)
	{
		// POST /robots/
		api.POST("/robots/", h.CreateRobot)

		// GET /download_weekly_report/
		api.GET("/download_weekly_report/", byWeek, h.DownloadWeeklyReport)
	}

	return r
}
