package models

// Fixed client-facing messages. Clients match on these strings.
const (
	MsgMissingURL     = "Missing URL"
	MsgNoCredentials  = "Proxy credentials not configured."
	MsgBlocked        = "Cloudflare is blocking the request."
	MsgScrapeFailed   = "Failed to scrape URL."
	MsgUnauthorized   = "Unauthorized"
	MsgRateLimited    = "Too many requests"
	MsgInvalidRequest = "Invalid request"
)

// ScrapeResponse is the response for POST /scrape.
//
// Success is a pointer so the permissive shape ({"html": ...}) can omit it
// while the strict shape always carries it, including when false.
type ScrapeResponse struct {
	Success *bool `json:"success,omitempty"`

	// HTML is the rendered page, possibly narrowed by the request's selectors.
	HTML string `json:"html,omitempty"`

	// Markdown is set when the request asked for output_format=markdown.
	Markdown string `json:"markdown,omitempty"`

	// Error is populated on every failure response.
	Error string `json:"error,omitempty"`
}

// Succeeded builds the strict success shape.
func Succeeded(html string) ScrapeResponse {
	ok := true
	return ScrapeResponse{Success: &ok, HTML: html}
}

// Failed builds the strict soft-failure shape.
func Failed(msg string) ScrapeResponse {
	ok := false
	return ScrapeResponse{Success: &ok, Error: msg}
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	Uptime         string `json:"uptime"`
	ActiveSessions int    `json:"active_sessions"`
	Version        string `json:"version"`
}
