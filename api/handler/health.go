package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/stealthscrape/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /health.
func Health(sc PageScraper, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         "healthy",
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			ActiveSessions: sc.ActiveSessions(),
			Version:        Version,
		})
	}
}
