package di

import (
	"context"
	"fmt"
	"strings"

	"browser-bridge/internal/adapter/tool"
	"browser-bridge/internal/application/port/input"
	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/application/service"
	"browser-bridge/internal/infrastructure/browser/extension"
	"browser-bridge/internal/infrastructure/browser/rod"
	"browser-bridge/internal/infrastructure/clock"
	"browser-bridge/internal/infrastructure/fetch/httpfetch"
	"browser-bridge/internal/infrastructure/htmltext"
	"browser-bridge/internal/infrastructure/llm/ollama"
	"browser-bridge/internal/infrastructure/llm/openai"
	"browser-bridge/internal/infrastructure/logger"
	"browser-bridge/internal/infrastructure/mailbox"
	"browser-bridge/internal/infrastructure/metrics"
	"browser-bridge/internal/infrastructure/process"
	"browser-bridge/internal/usecase/research"

	"go.opentelemetry.io/otel"
)

const (
	EngineHTTP = "http"
	EngineRod  = "rod"

	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Container is one bridge session: build it, use it, Close it.
type Container struct {
	Logger     output.LoggerPort
	Mailbox    *mailbox.FileMailbox
	Commands   *extension.CommandChannel
	Browser    output.BrowserPort
	Researcher input.Researcher
	Tools      output.ToolRegistry

	closers []func()
}

type Config struct {
	MailboxDir   string
	WatchMailbox bool
	Reply        extension.ResultConfig

	Research research.Config

	HeadlessEngine string
	Fetch          httpfetch.Config
	RodNoSandbox   bool
	RodBin         string

	LLMProvider string
	LLM         openai.Config
	Ollama      ollama.Config

	Log logger.Config
}

func DefaultConfig() Config {
	mb := mailbox.DefaultConfig()
	return Config{
		MailboxDir:     mb.Dir,
		WatchMailbox:   mb.Watch,
		Reply:          extension.DefaultResultConfig(),
		Research:       research.DefaultConfig(),
		HeadlessEngine: EngineHTTP,
		Fetch:          httpfetch.DefaultConfig(),
		LLMProvider:    ProviderOpenAI,
		LLM:            openai.DefaultConfig(),
		Ollama:         ollama.DefaultConfig(),
		Log:            logger.DefaultConfig(),
	}
}

// ConfigFromEnv overlays environment settings on DefaultConfig.
func ConfigFromEnv(env output.ConfigPort) Config {
	cfg := DefaultConfig()

	cfg.MailboxDir = env.GetWithDefault("BRIDGE_MAILBOX_DIR", cfg.MailboxDir)
	cfg.WatchMailbox = env.GetBool("BRIDGE_WATCH_MAILBOX", cfg.WatchMailbox)
	cfg.Reply.Timeout = env.GetDuration("BRIDGE_REPLY_TIMEOUT", cfg.Reply.Timeout)
	cfg.Reply.PollInterval = env.GetDuration("BRIDGE_POLL_INTERVAL", cfg.Reply.PollInterval)
	cfg.Reply.SettleDelay = env.GetDuration("BRIDGE_SETTLE_DELAY", cfg.Reply.SettleDelay)

	cfg.Research.BrowserProcess = env.GetWithDefault("RESEARCH_BROWSER_PROCESS", cfg.Research.BrowserProcess)
	cfg.Research.SearchURL = env.GetWithDefault("SEARCH_URL_TEMPLATE", cfg.Research.SearchURL)
	cfg.Research.Attempts = env.GetInt("RESEARCH_ATTEMPTS", cfg.Research.Attempts)
	cfg.Research.RetryWait = env.GetDuration("RESEARCH_RETRY_WAIT", cfg.Research.RetryWait)
	cfg.Research.BrowserMinChars = env.GetInt("RESEARCH_BROWSER_MIN_CHARS", cfg.Research.BrowserMinChars)
	cfg.Research.HeadlessMinChars = env.GetInt("RESEARCH_HEADLESS_MIN_CHARS", cfg.Research.HeadlessMinChars)
	cfg.Research.MaxChars = env.GetInt("RESEARCH_MAX_CHARS", cfg.Research.MaxChars)

	cfg.HeadlessEngine = strings.ToLower(env.GetWithDefault("HEADLESS_ENGINE", cfg.HeadlessEngine))
	cfg.Fetch.Timeout = env.GetDuration("FETCH_TIMEOUT", cfg.Fetch.Timeout)
	cfg.Fetch.MinInterval = env.GetDuration("FETCH_MIN_INTERVAL", cfg.Fetch.MinInterval)
	cfg.Fetch.UserAgent = env.GetWithDefault("FETCH_USER_AGENT", cfg.Fetch.UserAgent)
	cfg.RodNoSandbox = env.GetBool("ROD_NO_SANDBOX", cfg.RodNoSandbox)
	cfg.RodBin = env.GetWithDefault("ROD_BROWSER_BIN", cfg.RodBin)

	cfg.LLMProvider = strings.ToLower(env.GetWithDefault("LLM_PROVIDER", cfg.LLMProvider))
	cfg.LLM.BaseURL = env.GetWithDefault("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = env.GetWithDefault("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = env.GetWithDefault("MODEL_NAME", cfg.LLM.Model)
	cfg.LLM.LogBodies = env.GetBool("LLM_LOG_BODIES", cfg.LLM.LogBodies)
	cfg.Ollama.ServerURL = env.GetWithDefault("OLLAMA_HOST", cfg.Ollama.ServerURL)
	cfg.Ollama.Model = cfg.LLM.Model

	cfg.Log.Level = env.GetWithDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = env.GetWithDefault("LOG_FILE", cfg.Log.File)
	cfg.Log.Console = env.GetBool("LOG_CONSOLE", cfg.Log.Console)

	return cfg
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	c := &Container{Logger: log}
	c.closers = append(c.closers, func() { _ = log.Close() })

	m, err := metrics.New(otel.GetMeterProvider())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	mb, err := mailbox.New(mailbox.Config{
		Dir:   cfg.MailboxDir,
		Watch: cfg.WatchMailbox,
	}, log)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open mailbox: %w", err)
	}
	c.Mailbox = mb
	c.closers = append(c.closers, func() { _ = mb.Close() })

	clk := clock.NewReal()
	results := extension.NewResultChannel(mb, clk, log, cfg.Reply)
	c.Commands = extension.NewCommandChannel(mb, results, clk, log, m, cfg.Reply.Timeout)
	c.Browser = extension.NewBridge(c.Commands, log)

	fetcher, err := c.newFetcher(cfg, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	llm, err := newLLM(cfg, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Researcher = research.New(cfg.Research, research.Dependencies{
		Browser:   c.Browser,
		Fetcher:   fetcher,
		Extractor: htmltext.NewExtractor(nil),
		LLM:       llm,
		Probe:     process.NewProbe(log),
		Clock:     clk,
		Logger:    log,
		Metrics:   m,
	})

	tools := service.NewToolRegistry()
	for _, t := range tool.BrowserTools(c.Browser, log) {
		tools.Register(t)
	}
	tools.Register(tool.NewResearchTool(c.Researcher, log))
	c.Tools = tools

	log.Debug("Container ready",
		"mailbox", cfg.MailboxDir,
		"headless_engine", cfg.HeadlessEngine,
		"llm_provider", cfg.LLMProvider,
		"model", cfg.LLM.Model)

	return c, nil
}

func (c *Container) newFetcher(cfg Config, log output.LoggerPort) (output.PageFetcherPort, error) {
	switch cfg.HeadlessEngine {
	case "", EngineHTTP:
		return httpfetch.New(cfg.Fetch, log), nil
	case EngineRod:
		rcfg := rod.DefaultConfig()
		rcfg.Bin = cfg.RodBin
		rcfg.NoSandbox = cfg.RodNoSandbox
		rcfg.Timeout = cfg.Fetch.Timeout
		rcfg.UserAgent = cfg.Fetch.UserAgent
		f := rod.NewFetcher(rcfg, log)
		c.closers = append(c.closers, f.Close)
		return f, nil
	default:
		return nil, fmt.Errorf("unknown headless engine %q (want %s or %s)", cfg.HeadlessEngine, EngineHTTP, EngineRod)
	}
}

func newLLM(cfg Config, log output.LoggerPort) (output.LLMPort, error) {
	switch cfg.LLMProvider {
	case "", ProviderOpenAI:
		llmCfg := cfg.LLM
		llmCfg.Logger = log
		return openai.NewAdapter(llmCfg), nil
	case ProviderOllama:
		ocfg := cfg.Ollama
		ocfg.Logger = log
		a, err := ollama.NewAdapter(ocfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q (want %s or %s)", cfg.LLMProvider, ProviderOpenAI, ProviderOllama)
	}
}

// Close releases resources in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
