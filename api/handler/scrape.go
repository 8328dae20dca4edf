package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/stealthscrape/api/middleware"
	"github.com/use-agent/stealthscrape/cleaner"
	"github.com/use-agent/stealthscrape/config"
	"github.com/use-agent/stealthscrape/models"
	"github.com/use-agent/stealthscrape/scraper"
)

// PageScraper is the part of *scraper.Scraper the handlers use.
type PageScraper interface {
	Scrape(ctx context.Context, url string) (*scraper.Result, error)
	ActiveSessions() int
}

// Scrape returns a handler for POST /scrape.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Scraper.Scrape → HTML + challenge verdict (owns the browser session).
//  3. Blocked + strict mode → soft failure, no HTML.
//  4. Optional cleaner pass (selectors, markdown).
//  5. Strict or permissive success shape.
func Scrape(sc PageScraper, cl *cleaner.Cleaner, cfg config.ScraperConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := slog.With("request_id", c.GetString(middleware.RequestIDKey))

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		bindErr := c.ShouldBindJSON(&req)
		req.Defaults()
		if req.URL == "" {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{Error: models.MsgMissingURL})
			return
		}
		if bindErr != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{Error: models.MsgInvalidRequest + ": " + bindErr.Error()})
			return
		}
		if req.CSSSelector != "" {
			if err := cleaner.ValidateSelector(req.CSSSelector); err != nil {
				c.JSON(http.StatusBadRequest, models.ScrapeResponse{Error: models.MsgInvalidRequest + ": css_selector: " + err.Error()})
				return
			}
		}

		log.Info("received scrape request", "url", req.URL)

		// ── 2. Scrape ───────────────────────────────────────────────
		result, err := sc.Scrape(c.Request.Context(), req.URL)
		if err != nil {
			respondError(c, log, req.URL, err)
			return
		}

		// ── 3. Blocked ──────────────────────────────────────────────
		if result.Blocked && cfg.ReportBlockedAsFailure {
			c.JSON(http.StatusOK, models.Failed(models.MsgBlocked))
			return
		}

		// ── 4. Post-process ─────────────────────────────────────────
		html, markdown := result.HTML, ""
		if req.NeedsPostProcessing() {
			out, err := cl.Process(result.HTML, &req)
			if err != nil {
				respondError(c, log, req.URL, models.NewScrapeError(models.ErrCodeInternal, "post-processing failed", err))
				return
			}
			html, markdown = out.HTML, out.Markdown
		}

		// ── 5. Respond ──────────────────────────────────────────────
		resp := models.ScrapeResponse{HTML: html}
		if cfg.ReportBlockedAsFailure {
			resp = models.Succeeded(html)
		}
		resp.Markdown = markdown

		log.Info("scrape completed",
			"url", req.URL,
			"blocked", result.Blocked,
			"total_ms", time.Since(start).Milliseconds(),
		)
		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps a ScrapeError to the HTTP status and the fixed client
// message for its class. Details stay in the log.
func respondError(c *gin.Context, log *slog.Logger, url string, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	status, msg := mapError(scrapeErr)
	if status >= http.StatusInternalServerError {
		log.Error("scrape failed", "url", url, "code", scrapeErr.Code, "error", scrapeErr)
	}
	c.JSON(status, models.ScrapeResponse{Error: msg})
}

// mapError translates error codes to HTTP status codes and client messages.
func mapError(e *models.ScrapeError) (int, string) {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest, models.MsgMissingURL
	case models.ErrCodeConfiguration:
		return http.StatusInternalServerError, models.MsgNoCredentials
	default:
		return http.StatusInternalServerError, models.MsgScrapeFailed
	}
}
