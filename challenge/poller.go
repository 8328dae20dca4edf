// Package challenge decides whether a navigated page is still sitting on an
// anti-bot interstitial and whether its final markup should count as blocked.
//
// The package never touches a browser. Callers hand it a title accessor and
// the final HTML, which keeps the polling and classification rules testable
// without Chromium.
package challenge

import (
	"context"
	"strings"
	"time"
)

const (
	// DefaultAttempts is the poll budget used when Poller.Attempts is unset.
	DefaultAttempts = 15

	// DefaultDelay is the wait before each title read.
	DefaultDelay = time.Second

	// TitleSentinel is present in the document title while the interstitial
	// is still running.
	TitleSentinel = "Just a moment"
)

// TitleFunc returns the current document title.
type TitleFunc func(ctx context.Context) (string, error)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Outcome is the result of a single poll run.
type Outcome struct {
	Resolved bool
	Attempts int
}

// Poller waits for the interstitial title to go away, up to a fixed number
// of attempts. The zero value is usable and applies the defaults.
type Poller struct {
	// Attempts is the maximum number of title reads. Default: 15.
	Attempts int

	// Delay is slept before every title read. Default: 1s.
	Delay time.Duration

	// Sleep overrides the wait primitive. Tests inject a fake here so no
	// real time passes.
	Sleep SleepFunc
}

// NewPoller creates a Poller with the given budget.
func NewPoller(attempts int, delay time.Duration) *Poller {
	return &Poller{Attempts: attempts, Delay: delay}
}

// Wait runs the poll loop. Each attempt sleeps Delay, then reads the title;
// the first title without the sentinel resolves the page and stops the loop.
//
// A title or sleep error aborts the loop and is returned alongside the
// outcome reached so far.
func (p *Poller) Wait(ctx context.Context, title TitleFunc) (Outcome, error) {
	attempts, delay, sleep := p.settings()

	var out Outcome
	for i := 1; i <= attempts; i++ {
		if err := sleep(ctx, delay); err != nil {
			return out, err
		}
		out.Attempts = i

		t, err := title(ctx)
		if err != nil {
			return out, err
		}
		if !strings.Contains(t, TitleSentinel) {
			out.Resolved = true
			return out, nil
		}
	}
	return out, nil
}

// MaxWait is the worst-case time Wait spends sleeping.
func (p *Poller) MaxWait() time.Duration {
	attempts, delay, _ := p.settings()
	return time.Duration(attempts) * delay
}

func (p *Poller) settings() (int, time.Duration, SleepFunc) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	delay := p.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return attempts, delay, sleep
}

// sleepContext sleeps for d or returns early with ctx.Err().
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
