package extension

import (
	"context"
	"time"

	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"
)

const (
	defaultReplyTimeout = 10 * time.Second
	defaultPollInterval = 200 * time.Millisecond
	defaultSettleDelay  = 100 * time.Millisecond
)

type ResultConfig struct {
	Timeout      time.Duration
	PollInterval time.Duration
	// SettleDelay gives the extension time to finish writing once the
	// result file shows up.
	SettleDelay time.Duration
}

func DefaultResultConfig() ResultConfig {
	return ResultConfig{
		Timeout:      defaultReplyTimeout,
		PollInterval: defaultPollInterval,
		SettleDelay:  defaultSettleDelay,
	}
}

// ResultChannel waits for the extension's reply in the inbound mailbox.
type ResultChannel struct {
	mailbox output.MailboxPort
	clock   output.ClockPort
	logger  output.LoggerPort
	cfg     ResultConfig
}

func NewResultChannel(mailbox output.MailboxPort, clock output.ClockPort, logger output.LoggerPort, cfg ResultConfig) *ResultChannel {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultReplyTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return &ResultChannel{
		mailbox: mailbox,
		clock:   clock,
		logger:  logger.WithField("component", "result_channel"),
		cfg:     cfg,
	}
}

// Clear removes a leftover result so it cannot be mistaken for the next
// reply. Safe on an empty mailbox.
func (c *ResultChannel) Clear() {
	if err := c.mailbox.ClearResult(); err != nil {
		c.logger.Warn("Failed to clear stale result", "error", err)
	}
}

// Await blocks until a result for id arrives, the timeout passes or ctx is
// done. A timeout is an ordinary failure result. A zero timeout means the
// configured default.
func (c *ResultChannel) Await(ctx context.Context, id string, timeout time.Duration) entity.Result {
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	deadline := c.clock.Now().Add(timeout)

	for {
		if err := ctx.Err(); err != nil {
			return entity.FailureResult("Cancelled waiting for browser response: " + err.Error())
		}

		if res, ok := c.take(ctx, id); ok {
			return res
		}

		remaining := deadline.Sub(c.clock.Now())
		if remaining <= 0 {
			c.logger.Warn("No reply from browser extension", "id", id, "timeout", timeout)
			return entity.TimeoutResult()
		}

		wait := c.cfg.PollInterval
		if remaining < wait {
			wait = remaining
		}

		select {
		case <-ctx.Done():
		case <-c.clock.After(wait):
		case <-c.mailbox.Changes():
		}
	}
}

// take reads the result slot once. Unparseable or empty payloads are left
// for the next poll; replies to other commands are discarded.
func (c *ResultChannel) take(ctx context.Context, id string) (entity.Result, bool) {
	if !c.mailbox.ResultReady() {
		return entity.Result{}, false
	}

	if c.cfg.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			return entity.Result{}, false
		case <-c.clock.After(c.cfg.SettleDelay):
		}
	}

	data, err := c.mailbox.ReadResult()
	if err != nil {
		c.logger.Debug("Result not readable yet", "error", err)
		return entity.Result{}, false
	}

	res, err := entity.ParseResult(data)
	if err != nil {
		c.logger.Debug("Result not parseable yet", "error", err, "size", len(data))
		return entity.Result{}, false
	}
	if res.Empty() {
		return entity.Result{}, false
	}

	if res.ID != "" && id != "" && res.ID != id {
		c.logger.Warn("Discarding reply to another command", "expected", id, "got", res.ID)
		if err := c.mailbox.RemoveResult(); err != nil {
			c.logger.Warn("Failed to discard stale result", "error", err)
		}
		return entity.Result{}, false
	}

	if err := c.mailbox.RemoveResult(); err != nil {
		c.logger.Warn("Failed to consume result", "error", err)
	}
	return res, true
}
