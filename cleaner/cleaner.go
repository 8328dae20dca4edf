// Package cleaner post-processes the HTML of a resolved page: narrowing it
// to selected elements and optionally rendering it as Markdown.
package cleaner

import (
	"fmt"
	"net/url"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/use-agent/stealthscrape/models"
)

// Cleaner is created once and shared across requests (goroutine-safe).
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured Markdown converter.
func NewCleaner() *Cleaner {
	return &Cleaner{mdConverter: newMarkdownConverter()}
}

// Output is the post-processed page.
type Output struct {
	HTML     string
	Markdown string
}

// Process applies, in order: exclude/include tag filtering, the CSS
// selector, then Markdown rendering when requested.
func (c *Cleaner) Process(rawHTML string, req *models.ScrapeRequest) (*Output, error) {
	html := FilterContent(rawHTML, req.IncludeTags, req.ExcludeTags)

	if req.CSSSelector != "" {
		narrowed, err := ApplyCSSSelector(html, req.CSSSelector)
		if err != nil {
			return nil, fmt.Errorf("cleaner: css selector: %w", err)
		}
		html = narrowed
	}

	out := &Output{HTML: html}
	if req.OutputFormat == models.FormatMarkdown {
		md, err := ToMarkdown(c.mdConverter, html, baseDomain(req.URL))
		if err != nil {
			return nil, fmt.Errorf("cleaner: markdown: %w", err)
		}
		out.Markdown = md
	}
	return out, nil
}

// baseDomain returns scheme://host for resolving relative links, or "" when
// the URL does not parse.
func baseDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
