// Package rod renders search pages in a headless Chromium before handing
// the HTML to the research pipeline. It is the heavier alternative to
// httpfetch for pages that only fill in their results with JavaScript.
package rod

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultIdleWait = 1500 * time.Millisecond
)

// navigationStatusJS reads the HTTP status of the top-level document.
// Browsers without responseStatus report 0.
const navigationStatusJS = `() => {
	const nav = performance.getEntriesByType("navigation")[0];
	return nav && nav.responseStatus ? nav.responseStatus : 0;
}`

var _ output.PageFetcherPort = (*Fetcher)(nil)

type Config struct {
	// Bin is the browser executable; empty means rod's own lookup.
	Bin       string
	NoSandbox bool
	Timeout   time.Duration
	IdleWait  time.Duration
	UserAgent string
}

func DefaultConfig() Config {
	return Config{
		NoSandbox: false,
		Timeout:   defaultTimeout,
		IdleWait:  defaultIdleWait,
	}
}

// Fetcher launches the browser lazily on the first fetch and keeps it for
// later ones. Close releases it.
type Fetcher struct {
	mu       sync.Mutex
	cfg      Config
	logger   output.LoggerPort
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func NewFetcher(cfg Config, logger output.LoggerPort) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.IdleWait < 0 {
		cfg.IdleWait = 0
	}
	return &Fetcher{
		cfg:    cfg,
		logger: logger.WithField("component", "rodfetch"),
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*entity.FetchedPage, error) {
	browser, err := f.ensureBrowser()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrNetwork, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: open page: %w", entity.ErrNetwork, err)
	}
	defer page.Close()

	if f.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.cfg.UserAgent}); err != nil {
			f.logger.Warn("Failed to override user agent", "error", err)
		}
	}

	start := time.Now()
	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("%w: navigate: %w", entity.ErrNetwork, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: wait load: %w", entity.ErrNetwork, err)
	}
	if f.cfg.IdleWait > 0 {
		// Best effort: result lists often render after the load event.
		_ = page.WaitIdle(f.cfg.IdleWait)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: read html: %w", entity.ErrNetwork, err)
	}

	status := http.StatusOK
	if obj, err := page.Eval(navigationStatusJS); err == nil {
		status = statusFromValue(obj.Value)
	}

	f.logger.Debug("Rendered page fetched",
		"url", url,
		"status", status,
		"bytes", len(html),
		"duration_ms", time.Since(start).Milliseconds())

	return &entity.FetchedPage{
		URL:        url,
		StatusCode: status,
		Body:       html,
	}, nil
}

// statusFromValue assumes 200 when the browser could not tell, since the
// page did load.
func statusFromValue(v gson.JSON) int {
	if v.Nil() {
		return http.StatusOK
	}
	if s := v.Int(); s > 0 {
		return s
	}
	return http.StatusOK
}

func (f *Fetcher) ensureBrowser() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	l := launcher.New().
		Headless(true).
		NoSandbox(f.cfg.NoSandbox).
		Set("disable-gpu")
	if f.cfg.Bin != "" {
		l = l.Bin(f.cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch headless browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect headless browser: %w", err)
	}

	f.logger.Info("Headless browser launched")
	f.browser = browser
	f.launcher = l
	return browser, nil
}

func (f *Fetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		_ = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher.Cleanup()
		f.launcher = nil
	}
}
