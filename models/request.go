package models

import "strings"

// Output formats accepted by ScrapeRequest.OutputFormat.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// ScrapeRequest is the payload for POST /scrape.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url"`

	// CSSSelector narrows the returned HTML to the outer HTML of the matched
	// elements. The block check always runs on the full page.
	CSSSelector string `json:"css_selector,omitempty"`

	// IncludeTags keeps only elements matching these selectors.
	IncludeTags []string `json:"include_tags,omitempty"`

	// ExcludeTags removes elements matching these selectors.
	ExcludeTags []string `json:"exclude_tags,omitempty"`

	// OutputFormat adds a rendering next to the HTML.
	// Allowed: "html" (default), "markdown".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=html markdown"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	r.URL = strings.TrimSpace(r.URL)
	if r.OutputFormat == "" {
		r.OutputFormat = FormatHTML
	}
}

// NeedsPostProcessing reports whether any cleaner step was requested.
func (r *ScrapeRequest) NeedsPostProcessing() bool {
	return r.CSSSelector != "" || len(r.IncludeTags) > 0 || len(r.ExcludeTags) > 0 ||
		r.OutputFormat == FormatMarkdown
}
