package scraper

import "context"

// Session is one exclusively-owned browser with a single page in it.
// Implementations must tolerate Close being called after a failed Navigate.
type Session interface {
	// Navigate loads url and returns once DOMContentLoaded fired or ctx ended.
	Navigate(ctx context.Context, url string) error

	// Title returns the current document title.
	Title(ctx context.Context) (string, error)

	// HTML returns the current serialized document.
	HTML(ctx context.Context) (string, error)

	// Close releases the browser and everything it owns.
	Close() error
}

// Launcher opens a fresh Session. A failed Launch must not leave anything
// running behind.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}
