package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/stealthscrape/api/handler"
	"github.com/use-agent/stealthscrape/api/middleware"
	"github.com/use-agent/stealthscrape/cleaner"
	"github.com/use-agent/stealthscrape/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logger
//	Scrape:  Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(sc handler.PageScraper, cl *cleaner.Cleaner, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())

	r.GET("/health", handler.Health(sc, startTime))

	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/scrape", handler.Scrape(sc, cl, cfg.Scraper))

	return r
}
