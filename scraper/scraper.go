package scraper

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/use-agent/stealthscrape/challenge"
	"github.com/use-agent/stealthscrape/config"
	"github.com/use-agent/stealthscrape/models"
)

const defaultNavigationTimeout = 60 * time.Second

// Scraper turns a URL into a classified Result. Every call owns its own
// browser session; nothing is pooled. It is safe for concurrent use.
type Scraper struct {
	launcher   Launcher
	poller     *challenge.Poller
	proxyCfg   config.ProxyConfig
	scraperCfg config.ScraperConfig
	active     atomic.Int32
}

// NewScraper wires a Scraper around the given launcher.
func NewScraper(launcher Launcher, proxyCfg config.ProxyConfig, scraperCfg config.ScraperConfig) *Scraper {
	if scraperCfg.NavigationTimeout <= 0 {
		scraperCfg.NavigationTimeout = defaultNavigationTimeout
	}
	return &Scraper{
		launcher:   launcher,
		poller:     challenge.NewPoller(scraperCfg.PollAttempts, scraperCfg.PollDelay),
		proxyCfg:   proxyCfg,
		scraperCfg: scraperCfg,
	}
}

// Poller exposes the challenge poller so callers can swap its sleep.
func (s *Scraper) Poller() *challenge.Poller {
	return s.poller
}

// ActiveSessions returns the number of browser sessions currently open.
func (s *Scraper) ActiveSessions() int {
	return int(s.active.Load())
}

// Scrape runs the full flow for one URL.
//
//  1. Credential guard   – fail before any browser work
//  2. Acquire session    – scoped; released on every exit path
//  3. Navigate           – bounded by NavigationTimeout, DOMContentLoaded
//  4. Poll               – wait for the interstitial title to clear
//  5. Extract + classify – final HTML against the block markers
func (s *Scraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	if targetURL == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "missing URL", nil)
	}

	// ── 1. Credential guard ───────────────────────────────────────────
	if !s.proxyCfg.HasCredentials() {
		return nil, models.NewScrapeError(
			models.ErrCodeConfiguration,
			"proxy credentials not configured",
			nil,
		)
	}

	var result *Result
	err := s.withSession(ctx, func(sess Session) error {
		// ── 3. Navigate ───────────────────────────────────────────────
		navCtx, cancel := context.WithTimeout(ctx, s.scraperCfg.NavigationTimeout)
		defer cancel()

		slog.Info("navigating with residential proxy", "url", targetURL)
		navStart := time.Now()
		if err := sess.Navigate(navCtx, targetURL); err != nil {
			return categorizeError(err, "navigation to target URL failed")
		}
		slog.Debug("navigation finished", "url", targetURL, "ms", time.Since(navStart).Milliseconds())

		// ── 4. Poll ───────────────────────────────────────────────────
		var lastTitle string
		outcome, err := s.poller.Wait(ctx, func(ctx context.Context) (string, error) {
			t, err := sess.Title(ctx)
			if err == nil {
				lastTitle = t
			}
			return t, err
		})
		if err != nil {
			return categorizeError(err, "failed while waiting for challenge to clear")
		}

		// ── 5. Extract + classify ─────────────────────────────────────
		html, err := sess.HTML(ctx)
		if err != nil {
			return categorizeError(err, "failed to extract page HTML")
		}

		blocked, marker := challenge.Classify(html, outcome.Resolved)
		result = &Result{
			HTML:    html,
			Title:   lastTitle,
			Outcome: outcome,
			Blocked: blocked,
			Marker:  marker,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Blocked {
		slog.Warn("challenge still blocking request",
			"url", targetURL,
			"marker", result.Marker,
			"resolved", result.Outcome.Resolved,
			"attempts", result.Outcome.Attempts,
		)
	} else {
		slog.Info("page scraped",
			"url", targetURL,
			"title", result.Title,
			"attempts", result.Outcome.Attempts,
			"bytes", len(result.HTML),
		)
	}
	return result, nil
}

// withSession acquires one session, runs fn and closes the session exactly
// once regardless of how fn returns.
func (s *Scraper) withSession(ctx context.Context, fn func(Session) error) error {
	// ── 2. Acquire session ────────────────────────────────────────────
	sess, err := s.launcher.Launch(ctx)
	if err != nil {
		var scrapeErr *models.ScrapeError
		if errors.As(err, &scrapeErr) {
			return scrapeErr
		}
		return models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}

	s.active.Add(1)
	defer func() {
		s.active.Add(-1)
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("browser session close failed", "error", closeErr)
		}
	}()

	return fn(sess)
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	var scrapeErr *models.ScrapeError
	switch {
	case errors.As(err, &scrapeErr):
		return scrapeErr
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
