package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/use-agent/stealthscrape/api/middleware"
	"github.com/use-agent/stealthscrape/challenge"
	"github.com/use-agent/stealthscrape/cleaner"
	"github.com/use-agent/stealthscrape/config"
	"github.com/use-agent/stealthscrape/scraper"
)

type stubScraper struct{}

func (stubScraper) Scrape(context.Context, string) (*scraper.Result, error) {
	return &scraper.Result{HTML: "<p>ok</p>", Outcome: challenge.Outcome{Resolved: true, Attempts: 1}}, nil
}

func (stubScraper) ActiveSessions() int { return 0 }

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		Scraper:   config.ScraperConfig{ReportBlockedAsFailure: true},
		Auth:      config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2},
	}
}

func post(r http.Handler, header, value string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(header, value)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthSkipsAuth(t *testing.T) {
	r := NewRouter(stubScraper{}, cleaner.NewCleaner(), testConfig(), time.Now())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_Auth(t *testing.T) {
	r := NewRouter(stubScraper{}, cleaner.NewCleaner(), testConfig(), time.Now())

	w := post(r, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, post(r, "X-API-Key", "wrong").Code)
	assert.Equal(t, http.StatusOK, post(r, "X-API-Key", "secret").Code)
	assert.Equal(t, http.StatusOK, post(r, "Authorization", "Bearer secret").Code)
}

func TestRouter_AuthDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = false
	r := NewRouter(stubScraper{}, cleaner.NewCleaner(), cfg, time.Now())

	w := post(r, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"html":"<p>ok</p>"}`, w.Body.String())
}

func TestRouter_RateLimit(t *testing.T) {
	r := NewRouter(stubScraper{}, cleaner.NewCleaner(), testConfig(), time.Now())

	assert.Equal(t, http.StatusOK, post(r, "X-API-Key", "secret").Code)
	assert.Equal(t, http.StatusOK, post(r, "X-API-Key", "secret").Code)

	w := post(r, "X-API-Key", "secret")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())
}
