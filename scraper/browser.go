package scraper

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/stealthscrape/config"
	"github.com/use-agent/stealthscrape/models"
)

const acceptLanguage = "en-US,en;q=0.9"

// RodLauncher starts one stealth-configured Chromium per Launch call,
// routed through the configured proxy.
type RodLauncher struct {
	browserCfg config.BrowserConfig
	proxyCfg   config.ProxyConfig
}

// NewRodLauncher creates a RodLauncher.
func NewRodLauncher(browserCfg config.BrowserConfig, proxyCfg config.ProxyConfig) *RodLauncher {
	return &RodLauncher{browserCfg: browserCfg, proxyCfg: proxyCfg}
}

// newLauncher builds the Chromium command line.
func (l *RodLauncher) newLauncher() *launcher.Launcher {
	lc := launcher.New().
		Headless(l.browserCfg.Headless).
		NoSandbox(l.browserCfg.NoSandbox)

	if l.browserCfg.BrowserBin != "" {
		lc = lc.Bin(l.browserCfg.BrowserBin)
	}
	if l.proxyCfg.Server != "" {
		lc = lc.Proxy(l.proxyCfg.Server)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	lc.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	lc.Delete(flags.Flag("enable-automation"))
	lc.Set(flags.Flag("disable-setuid-sandbox"))
	lc.Set(flags.Flag("disable-dev-shm-usage"))
	lc.Set(flags.Flag("disable-features"), "TranslateUI")
	lc.Set(flags.Flag("disable-popup-blocking"))
	lc.Set(flags.Flag("disable-default-apps"))
	lc.Set(flags.Flag("no-first-run"))

	return lc
}

// Launch starts Chromium, connects to it, arms proxy authentication and
// opens a stealth page with the configured UA and viewport.
//
// With credentials set, every request of the session passes through the
// Fetch domain and auth challenges are answered for as long as the browser
// lives, not just the first one.
func (l *RodLauncher) Launch(ctx context.Context) (Session, error) {
	lc := l.newLauncher()

	controlURL, err := lc.Launch()
	if err != nil {
		discardProcess(lc)
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	// The browser lives on its own context so Close still works after the
	// request context is gone.
	browserCtx, cancel := context.WithCancel(context.Background())
	browser := rod.New().ControlURL(controlURL).Context(browserCtx)
	if err := browser.Connect(); err != nil {
		cancel()
		discardProcess(lc)
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	sess := &rodSession{launcher: lc, browser: browser, cancel: cancel}

	if l.proxyCfg.HasCredentials() {
		if err := armProxyAuth(browser, l.proxyCfg.Username, l.proxyCfg.Password); err != nil {
			_ = sess.Close()
			return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to enable proxy auth", err)
		}
	}

	page, err := stealth.Page(browser)
	if err != nil {
		_ = sess.Close()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to open stealth page", err)
	}
	sess.page = page

	l.configurePage(page.Context(ctx))
	return sess, nil
}

// configurePage applies UA, viewport and headers. Failures are logged and
// the page is used as is.
func (l *RodLauncher) configurePage(page *rod.Page) {
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      l.browserCfg.UserAgent,
		AcceptLanguage: acceptLanguage,
	}); err != nil {
		slog.Warn("failed to set user agent", "error", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             l.browserCfg.ViewportWidth,
		Height:            l.browserCfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Warn("failed to set viewport", "error", err)
	}

	if err := (proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{"Accept-Language": acceptLanguage}),
	}).Call(page); err != nil {
		slog.Warn("failed to set extra headers", "error", err)
	}
}
