// Package research answers free-form questions by reading a search results
// page and asking a language model to summarize it.
//
// The results page comes from the user's own browser when it is running,
// through the extension bridge, and from a headless fetch otherwise. The
// browser path looks like a normal user and is rarely challenged; the
// headless path is cheaper but can be met with a captcha.
package research

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"browser-bridge/internal/application/port/input"
	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"
	"browser-bridge/internal/infrastructure/prompts"
)

var _ input.Researcher = (*UseCase)(nil)

const (
	DefaultBrowserProcess   = "firefox"
	DefaultSearchURL        = "https://www.google.com/search?q="
	DefaultAttempts         = 3
	DefaultRetryWait        = 3 * time.Second
	DefaultBrowserMinChars  = 500
	DefaultHeadlessMinChars = 200
	DefaultMaxChars         = 8000
	defaultTemperature      = 0.2
)

const (
	MessageEmptyQuery = "What would you like me to research?"
	MessageBlocked    = "Stealth Research was blocked by Google security. Please open Firefox and try again (ensure the extension is active)."
	MessageNoContent  = "I tried both browser and network research but couldn't get any results. Please ensure Firefox is open with the Zyron extension for the best results."
	MessageCancelled  = "Research was cancelled before it finished."

	messageSynthesisFailed = "I found information via %s but had trouble processing it. Check that the language model server is running."
)

var DefaultBotMarkers = []string{"unusual traffic", "captcha"}

type Config struct {
	BrowserProcess   string
	SearchURL        string
	Attempts         int
	RetryWait        time.Duration
	BrowserMinChars  int
	HeadlessMinChars int
	MaxChars         int
	BotMarkers       []string
	Temperature      float32
	SystemPrompt     string
	UserTemplate     string
}

func DefaultConfig() Config {
	return Config{
		BrowserProcess:   DefaultBrowserProcess,
		SearchURL:        DefaultSearchURL,
		Attempts:         DefaultAttempts,
		RetryWait:        DefaultRetryWait,
		BrowserMinChars:  DefaultBrowserMinChars,
		HeadlessMinChars: DefaultHeadlessMinChars,
		MaxChars:         DefaultMaxChars,
		BotMarkers:       DefaultBotMarkers,
		Temperature:      defaultTemperature,
		SystemPrompt:     prompts.ResearchSystemPrompt,
		UserTemplate:     prompts.ResearchUserTemplate,
	}
}

type Dependencies struct {
	Browser   output.BrowserPort
	Fetcher   output.PageFetcherPort
	Extractor output.TextExtractorPort
	LLM       output.LLMPort
	Probe     output.ProcessProbePort
	Clock     output.ClockPort
	Logger    output.LoggerPort
	Metrics   output.MetricsPort
}

type UseCase struct {
	cfg       Config
	browser   output.BrowserPort
	fetcher   output.PageFetcherPort
	extractor output.TextExtractorPort
	llm       output.LLMPort
	probe     output.ProcessProbePort
	clock     output.ClockPort
	logger    output.LoggerPort
	metrics   output.MetricsPort
}

func New(cfg Config, deps Dependencies) *UseCase {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.BrowserProcess) == "" {
		cfg.BrowserProcess = def.BrowserProcess
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = def.SearchURL
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = def.RetryWait
	}
	if cfg.BrowserMinChars <= 0 {
		cfg.BrowserMinChars = def.BrowserMinChars
	}
	if cfg.HeadlessMinChars <= 0 {
		cfg.HeadlessMinChars = def.HeadlessMinChars
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = def.MaxChars
	}
	// A nil list means defaults; an empty non-nil list turns detection off.
	if cfg.BotMarkers == nil {
		cfg.BotMarkers = def.BotMarkers
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = def.SystemPrompt
	}
	if cfg.UserTemplate == "" {
		cfg.UserTemplate = def.UserTemplate
	}

	return &UseCase{
		cfg:       cfg,
		browser:   deps.Browser,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		llm:       deps.LLM,
		probe:     deps.Probe,
		clock:     deps.Clock,
		logger:    deps.Logger.WithField("component", "research"),
		metrics:   deps.Metrics,
	}
}

// PerformResearch runs Research and turns every failure into a message
// fit to show or speak to the user.
func (uc *UseCase) PerformResearch(ctx context.Context, query string) string {
	report, err := uc.Research(ctx, query)
	if err == nil {
		return report.Answer
	}
	return UserMessage(report, err)
}

// UserMessage maps a Research error to the text shown to the user.
func UserMessage(report *entity.ResearchReport, err error) string {
	switch {
	case errors.Is(err, entity.ErrEmptyQuery):
		return MessageEmptyQuery
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return MessageCancelled
	case errors.Is(err, entity.ErrBotDetected):
		return MessageBlocked
	case errors.Is(err, entity.ErrSynthesis):
		return fmt.Sprintf(messageSynthesisFailed, report.Strategy)
	default:
		return MessageNoContent
	}
}

// Research always returns a report, also on error. The error wraps
// ErrEmptyQuery, ErrBotDetected, ErrNoContent, ErrSynthesis or the context
// error.
func (uc *UseCase) Research(ctx context.Context, query string) (*entity.ResearchReport, error) {
	query = strings.TrimSpace(query)
	report := &entity.ResearchReport{
		Query:    query,
		Strategy: entity.StrategyNone,
	}
	if query == "" {
		return report, entity.ErrEmptyQuery
	}

	start := uc.clock.Now()
	report.SearchURL = uc.cfg.SearchURL + url.QueryEscape(query)
	log := uc.logger.WithField("query", query)
	log.Info("Starting research", "url", report.SearchURL)

	err := uc.run(ctx, report, log)

	uc.metrics.ResearchCompleted(ctx, string(report.Outcome), uc.clock.Now().Sub(start))
	log.Info("Research finished",
		"outcome", report.Outcome,
		"strategy", report.Strategy,
		"browser_attempts", report.BrowserAttempts,
		"headless_attempts", report.HeadlessAttempts,
		"content_chars", utf8.RuneCountInString(report.Content))

	return report, err
}

func (uc *UseCase) run(ctx context.Context, report *entity.ResearchReport, log output.LoggerPort) error {
	if uc.probe.IsRunning(ctx, uc.cfg.BrowserProcess) {
		log.Info("Browser is running, reading results through the extension", "process", uc.cfg.BrowserProcess)
		content, err := uc.browserAttempt(ctx, report, log)
		if err != nil {
			report.Outcome = entity.OutcomeNoContent
			return err
		}
		if content != "" {
			report.Content = content
			report.Strategy = entity.StrategyBrowser
		}
	} else {
		log.Info("Browser is not running", "process", uc.cfg.BrowserProcess)
	}

	if report.Content == "" {
		log.Info("Falling back to headless research")
		content, err := uc.headlessAttempt(ctx, report, log)
		switch {
		case errors.Is(err, entity.ErrBotDetected):
			log.Warn("Headless fetch blocked by bot detection", "error", err)
			report.Outcome = entity.OutcomeBlocked
			return err
		case ctx.Err() != nil:
			report.Outcome = entity.OutcomeNoContent
			return ctx.Err()
		case err != nil:
			log.Warn("Headless research failed", "error", err)
			report.Outcome = entity.OutcomeNoContent
			return fmt.Errorf("%w: %w", entity.ErrNoContent, err)
		}
		report.Content = content
		report.Strategy = entity.StrategyHeadless
	}

	return uc.synthesize(ctx, report, log)
}

func (uc *UseCase) browserAttempt(ctx context.Context, report *entity.ResearchReport, log output.LoggerPort) (string, error) {
	strategy := entity.StrategyBrowser.String()

	tab, err := uc.browser.CreateTab(ctx, report.SearchURL, false)
	if err != nil {
		log.Warn("Failed to create background tab, is the extension installed?", "error", err)
		uc.metrics.ResearchAttempt(ctx, strategy, "tab_failed")
		return "", ctx.Err()
	}
	report.TabID = tab
	log.Debug("Created background tab", "tab", tab)
	defer uc.closeTab(ctx, report, log)

	for attempt := 1; attempt <= uc.cfg.Attempts; attempt++ {
		report.BrowserAttempts = attempt
		if err := uc.sleep(ctx, uc.cfg.RetryWait); err != nil {
			return "", err
		}

		res, err := uc.browser.ReadPage(ctx, &tab)
		switch {
		case err != nil:
			log.Warn("Read failed", "attempt", attempt, "error", err)
			uc.metrics.ResearchAttempt(ctx, strategy, "read_failed")
		case !res.Success:
			log.Warn("Read failed", "attempt", attempt, "error", res.Error)
			uc.metrics.ResearchAttempt(ctx, strategy, "read_failed")
		case utf8.RuneCountInString(res.Content) < uc.cfg.BrowserMinChars:
			log.Debug("Content too short, page might still be loading",
				"attempt", attempt,
				"chars", utf8.RuneCountInString(res.Content))
			uc.metrics.ResearchAttempt(ctx, strategy, "too_short")
		default:
			log.Info("Content extracted via browser", "attempt", attempt, "chars", utf8.RuneCountInString(res.Content))
			uc.metrics.ResearchAttempt(ctx, strategy, "accepted")
			return res.Content, nil
		}
	}

	return "", nil
}

// closeTab runs even when ctx is already cancelled so the search tab does
// not linger in the user's browser.
func (uc *UseCase) closeTab(ctx context.Context, report *entity.ResearchReport, log output.LoggerPort) {
	if err := uc.browser.CloseTab(context.WithoutCancel(ctx), report.TabID); err != nil {
		log.Warn("Failed to close background tab", "tab", report.TabID, "error", err)
		return
	}
	report.TabClosed = true
}

func (uc *UseCase) headlessAttempt(ctx context.Context, report *entity.ResearchReport, log output.LoggerPort) (string, error) {
	strategy := entity.StrategyHeadless.String()
	report.HeadlessAttempts++

	page, err := uc.fetcher.Fetch(ctx, report.SearchURL)
	if err != nil {
		uc.metrics.ResearchAttempt(ctx, strategy, "network_error")
		return "", err
	}

	lower := strings.ToLower(page.Body)
	for _, marker := range uc.cfg.BotMarkers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			uc.metrics.ResearchAttempt(ctx, strategy, "blocked")
			return "", fmt.Errorf("%w: page contains %q", entity.ErrBotDetected, marker)
		}
	}

	if page.StatusCode != http.StatusOK {
		uc.metrics.ResearchAttempt(ctx, strategy, "network_error")
		return "", fmt.Errorf("%w: status %d", entity.ErrNetwork, page.StatusCode)
	}

	text := uc.extractor.ExtractText(page.Body, uc.cfg.MaxChars)
	if n := utf8.RuneCountInString(text); n < uc.cfg.HeadlessMinChars {
		uc.metrics.ResearchAttempt(ctx, strategy, "too_short")
		return "", fmt.Errorf("%w: %d characters, likely a block page", entity.ErrContentTooShort, n)
	}

	log.Info("Content extracted via headless fetch", "chars", utf8.RuneCountInString(text))
	uc.metrics.ResearchAttempt(ctx, strategy, "accepted")
	return text, nil
}

func (uc *UseCase) synthesize(ctx context.Context, report *entity.ResearchReport, log output.LoggerPort) error {
	data := prompts.NewResearchPromptData(report.Strategy.String(), report.Query, report.Content, uc.clock.Now())
	prompt, err := prompts.GenerateResearchPrompt(uc.cfg.UserTemplate, data)
	if err != nil {
		report.Outcome = entity.OutcomeSynthesisFailed
		return fmt.Errorf("%w: render prompt: %w", entity.ErrSynthesis, err)
	}

	log.Debug("Synthesizing answer", "strategy", report.Strategy, "prompt_chars", len(prompt))

	resp, err := uc.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: uc.cfg.SystemPrompt},
			{Role: entity.RoleUser, Content: prompt},
		},
		Temperature: uc.cfg.Temperature,
	})
	if err != nil {
		report.Outcome = entity.OutcomeSynthesisFailed
		log.Error("Synthesis failed", "error", err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, entity.ErrSynthesis) {
			err = fmt.Errorf("%w: %w", entity.ErrSynthesis, err)
		}
		return err
	}

	answer := strings.TrimSpace(resp.Message.Content)
	if answer == "" {
		report.Outcome = entity.OutcomeSynthesisFailed
		return fmt.Errorf("%w: empty answer", entity.ErrSynthesis)
	}

	report.Answer = answer
	report.Outcome = entity.OutcomeAnswered
	return nil
}

func (uc *UseCase) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-uc.clock.After(d):
		return nil
	}
}
