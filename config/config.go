package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultUserAgent is a desktop Chrome UA presented by the stealth browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds all application configuration. It is built once at process
// start and passed by pointer into the components that need it.
type Config struct {
	Server    ServerConfig
	Proxy     ProxyConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3000
	Mode string // "debug", "release", "test"; default: "release"
}

// ProxyConfig is the residential proxy every browser session egresses through.
type ProxyConfig struct {
	// Server is the proxy address handed to Chromium's --proxy-server.
	Server string // default: "http://geo.iproyal.com:12321"

	Username string
	Password string
}

// HasCredentials reports whether both proxy credentials are set.
func (p ProxyConfig) HasCredentials() bool {
	return p.Username != "" && p.Password != ""
}

// BrowserConfig controls how each per-request Chromium instance is launched.
type BrowserConfig struct {
	Headless  bool // default: true
	NoSandbox bool // default: true (the service runs in containers)

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	UserAgent      string
	ViewportWidth  int // default: 1366
	ViewportHeight int // default: 768
}

// ScraperConfig controls navigation and challenge polling.
type ScraperConfig struct {
	// NavigationTimeout bounds page.Navigate plus the DOMContentLoaded wait.
	NavigationTimeout time.Duration // default: 60s

	// PollAttempts is the maximum number of title checks.
	PollAttempts int // default: 15

	// PollDelay is the wait before each title check.
	PollDelay time.Duration // default: 1s

	// ReportBlockedAsFailure selects the strict response shape: blocked pages
	// become {"success": false, "error": ...}. When false, the HTML is
	// returned regardless of classification.
	ReportBlockedAsFailure bool // default: true
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool // default: false
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting. Every request launches a
// whole browser, so the defaults are deliberately low.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 2
	Burst             int     // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over .env entries.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("HOST", "0.0.0.0"),
			Port: envIntOr("PORT", 3000),
			Mode: envOr("GIN_MODE", "release"),
		},
		Proxy: ProxyConfig{
			Server:   envOr("PROXY_SERVER", "http://geo.iproyal.com:12321"),
			Username: os.Getenv("PROXY_USER"),
			Password: os.Getenv("PROXY_PASS"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("BROWSER_HEADLESS", true),
			NoSandbox:      envBoolOr("BROWSER_NO_SANDBOX", true),
			BrowserBin:     os.Getenv("BROWSER_BIN"),
			UserAgent:      envOr("BROWSER_USER_AGENT", DefaultUserAgent),
			ViewportWidth:  envIntOr("BROWSER_VIEWPORT_WIDTH", 1366),
			ViewportHeight: envIntOr("BROWSER_VIEWPORT_HEIGHT", 768),
		},
		Scraper: ScraperConfig{
			NavigationTimeout:      envDurationOr("SCRAPER_NAV_TIMEOUT", 60*time.Second),
			PollAttempts:           envIntOr("SCRAPER_POLL_ATTEMPTS", 15),
			PollDelay:              envDurationOr("SCRAPER_POLL_DELAY", time.Second),
			ReportBlockedAsFailure: envBoolOr("SCRAPER_REPORT_BLOCKED_AS_FAILURE", true),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("AUTH_ENABLED", false),
			APIKeys: envSliceOr("API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("RATE_RPS", 2.0),
			Burst:             envIntOr("RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
