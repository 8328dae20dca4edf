package scraper

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// rodSession is a Session backed by a dedicated Chromium process.
type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cancel   context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// Navigate loads url and waits for DOMContentLoaded.
//
// The lifecycle waiter MUST be registered before Navigate, otherwise a fast
// page fires the event before anyone listens and the wait hangs until ctx
// expires.
func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)

	waitDOM := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return err
	}
	waitDOM()

	return ctx.Err()
}

// Title reads the title from the CDP target info. If that call fails the
// title is parsed out of the current markup instead.
func (s *rodSession) Title(ctx context.Context) (string, error) {
	p := s.page.Context(ctx)

	info, err := p.Info()
	if err == nil {
		return info.Title, nil
	}

	html, htmlErr := p.HTML()
	if htmlErr != nil {
		return "", err
	}
	slog.Debug("target info unavailable, parsed title from markup", "error", err)
	return titleFromHTML(html), nil
}

// HTML returns the serialized document.
func (s *rodSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

// Close shuts the browser down, kills the process if it is still around and
// removes its temporary profile directory. Safe to call more than once.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.browser.Close()
		s.cancel()
		discardProcess(s.launcher)
	})
	return s.closeErr
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
