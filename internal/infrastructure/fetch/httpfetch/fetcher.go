// Package httpfetch fetches search pages directly over HTTP, posing as a
// desktop browser.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"

	"golang.org/x/time/rate"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultTimeout  = 10 * time.Second
	defaultMaxBody  = 4 << 20
	defaultInterval = 2 * time.Second
)

var _ output.PageFetcherPort = (*Fetcher)(nil)

type Config struct {
	UserAgent string
	Timeout   time.Duration
	// MinInterval spaces out consecutive fetches; bursts of identical
	// queries are what trips bot detection. Zero disables pacing.
	MinInterval time.Duration
	MaxBodySize int64
}

func DefaultConfig() Config {
	return Config{
		UserAgent:   DefaultUserAgent,
		Timeout:     defaultTimeout,
		MinInterval: defaultInterval,
		MaxBodySize: defaultMaxBody,
	}
}

type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     Config
	logger  output.LoggerPort
}

func New(cfg Config, logger output.LoggerPort) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBody
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		cfg:     cfg,
		logger:  logger.WithField("component", "httpfetch"),
	}
}

// Fetch returns the page for any HTTP status; only a failed round trip is
// an error. Callers decide what a non-200 page means.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*entity.FetchedPage, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", entity.ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", entity.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("Headless fetch failed", "url", url, "error", err)
		return nil, fmt.Errorf("%w: %w", entity.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", entity.ErrNetwork, err)
	}

	f.logger.Debug("Headless fetch completed",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds())

	return &entity.FetchedPage{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}
