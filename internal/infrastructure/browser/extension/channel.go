package extension

import (
	"context"
	"fmt"
	"time"

	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"

	"github.com/google/uuid"
)

// CommandChannel delivers commands to the extension and, for
// reply-expecting actions, collects the answer. The inbound mailbox has a
// single slot, so at most one reply-expecting command is in flight; other
// callers queue on inflight.
type CommandChannel struct {
	mailbox      output.MailboxPort
	results      *ResultChannel
	clock        output.ClockPort
	logger       output.LoggerPort
	metrics      output.MetricsPort
	replyTimeout time.Duration
	newID        func() string

	inflight chan struct{}
}

func NewCommandChannel(
	mailbox output.MailboxPort,
	results *ResultChannel,
	clock output.ClockPort,
	logger output.LoggerPort,
	metrics output.MetricsPort,
	replyTimeout time.Duration,
) *CommandChannel {
	return &CommandChannel{
		mailbox:      mailbox,
		results:      results,
		clock:        clock,
		logger:       logger.WithField("component", "command_channel"),
		metrics:      metrics,
		replyTimeout: replyTimeout,
		newID:        uuid.NewString,
		inflight:     make(chan struct{}, 1),
	}
}

// Send queues a command. Fire-and-forget actions report success once the
// queue is written. The returned error is set only when the command never
// reached the mailbox; extension-side failures and timeouts come back as a
// failed Result.
func (c *CommandChannel) Send(ctx context.Context, action entity.Action, params map[string]any) (entity.Result, error) {
	if !action.Valid() {
		return entity.FailureResult("unknown action " + action.String()),
			fmt.Errorf("%w: %q", entity.ErrInvalidAction, action)
	}

	cmd := entity.NewCommand(c.newID(), action, params)

	if !action.ExpectsReply() {
		if err := c.mailbox.Append(cmd); err != nil {
			return c.failed(ctx, cmd, err)
		}
		c.metrics.CommandSent(ctx, action.String(), "queued")
		c.logger.Debug("Command queued", "action", action, "id", cmd.ID)
		return entity.SuccessResult(), nil
	}

	select {
	case c.inflight <- struct{}{}:
	case <-ctx.Done():
		c.metrics.CommandSent(ctx, action.String(), "cancelled")
		return entity.FailureResult("Cancelled before sending " + action.String()), ctx.Err()
	}
	defer func() { <-c.inflight }()

	// Clearing before the write means a fast reply cannot be deleted as stale.
	c.results.Clear()

	if err := c.mailbox.Append(cmd); err != nil {
		return c.failed(ctx, cmd, err)
	}

	start := c.clock.Now()
	res := c.results.Await(ctx, cmd.ID, c.replyTimeout)
	c.metrics.ReplyWait(ctx, action.String(), c.clock.Now().Sub(start), res.TimedOut())

	switch {
	case res.Success:
		c.metrics.CommandSent(ctx, action.String(), "ok")
	case res.TimedOut():
		c.metrics.CommandSent(ctx, action.String(), "timeout")
		c.logger.Warn("Browser did not answer", "action", action, "id", cmd.ID)
	default:
		c.metrics.CommandSent(ctx, action.String(), "failed")
		c.logger.Warn("Browser reported failure", "action", action, "id", cmd.ID, "error", res.Error)
	}

	return res, nil
}

func (c *CommandChannel) failed(ctx context.Context, cmd entity.Command, err error) (entity.Result, error) {
	c.metrics.CommandSent(ctx, cmd.Action.String(), "io_error")
	c.logger.Error("Failed to queue browser command", "action", cmd.Action, "id", cmd.ID, "error", err)
	return entity.FailureResult(err.Error()), fmt.Errorf("send %s: %w", cmd.Action, err)
}

// Pending exposes the outbound queue for diagnostics.
func (c *CommandChannel) Pending() ([]entity.Command, error) {
	return c.mailbox.Pending()
}
