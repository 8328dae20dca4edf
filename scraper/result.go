package scraper

import "github.com/use-agent/stealthscrape/challenge"

// Result is what a single scrape produced. A blocked page is still a
// Result, not an error: the request itself went through.
type Result struct {
	// HTML is the final serialized document.
	HTML string

	// Title is the last title the poller read.
	Title string

	// Outcome is the challenge poll result.
	Outcome challenge.Outcome

	// Blocked is the classifier verdict over HTML and Outcome.
	Blocked bool

	// Marker names what triggered Blocked, for logs.
	Marker string
}
