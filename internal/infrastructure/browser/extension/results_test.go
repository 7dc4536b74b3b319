package extension

import (
	"context"
	"testing"
	"time"

	"browser-bridge/internal/domain/entity"
	"browser-bridge/internal/infrastructure/clock"
	"browser-bridge/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResultChannel(t *testing.T, mb *memMailbox, clk *clock.Fake) *ResultChannel {
	t.Helper()
	return NewResultChannel(mb, clk, logger.NewTestLogger(t), DefaultResultConfig())
}

func TestResultChannel_ClearOnEmptyMailboxIsNoop(t *testing.T) {
	mb := newMemMailbox()
	rc := newTestResultChannel(t, mb, clock.NewFake(time.Now()))

	rc.Clear()
	rc.Clear()

	assert.False(t, mb.ResultReady())
	assert.Equal(t, 2, mb.clears)
}

func TestResultChannel_TimeoutBound(t *testing.T) {
	for _, timeout := range []time.Duration{
		time.Millisecond,
		150 * time.Millisecond,
		333 * time.Millisecond,
		time.Second,
		10 * time.Second,
	} {
		t.Run(timeout.String(), func(t *testing.T) {
			mb := newMemMailbox()
			clk := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
			rc := newTestResultChannel(t, mb, clk)

			res := rc.Await(context.Background(), "cmd-1", timeout)

			assert.False(t, res.Success)
			assert.True(t, res.TimedOut())
			assert.Equal(t, entity.TimeoutMessage, res.Error)
			assert.ErrorIs(t, res.Err(), entity.ErrIPCTimeout)
			assert.LessOrEqual(t, clk.Elapsed(), timeout+defaultPollInterval)
			assert.GreaterOrEqual(t, clk.Elapsed(), timeout)
		})
	}
}

func TestResultChannel_DefaultTimeout(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	rc := newTestResultChannel(t, newMemMailbox(), clk)

	res := rc.Await(context.Background(), "", 0)

	assert.True(t, res.TimedOut())
	assert.Equal(t, 10*time.Second, clk.Elapsed())
}

func TestResultChannel_ReturnsMatchingResultAndConsumesIt(t *testing.T) {
	mb := newMemMailbox()
	mb.writeResult(map[string]any{"id": "cmd-1", "success": true, "content": "page text", "tabId": 42})
	clk := clock.NewFake(time.Unix(0, 0))
	rc := newTestResultChannel(t, mb, clk)

	res := rc.Await(context.Background(), "cmd-1", time.Second)

	require.True(t, res.Success)
	assert.Equal(t, "page text", res.Content)
	assert.Equal(t, entity.TabID("42"), res.TabID)
	assert.False(t, mb.ResultReady(), "consumed result must be deleted")
	assert.Equal(t, []time.Duration{defaultSettleDelay}, clk.Sleeps())
}

func TestResultChannel_AcceptsLegacyResultWithoutID(t *testing.T) {
	mb := newMemMailbox()
	mb.writeResult(map[string]any{"success": false, "error": "No active tab"})
	rc := newTestResultChannel(t, mb, clock.NewFake(time.Unix(0, 0)))

	res := rc.Await(context.Background(), "cmd-9", time.Second)

	assert.False(t, res.Success)
	assert.False(t, res.TimedOut())
	assert.Equal(t, "No active tab", res.Error)
	assert.ErrorIs(t, res.Err(), entity.ErrCommandFailed)
}

func TestResultChannel_DiscardsReplyToOtherCommand(t *testing.T) {
	mb := newMemMailbox()
	mb.writeResult(map[string]any{"id": "old", "success": true, "content": "stale"})
	rc := newTestResultChannel(t, mb, clock.NewFake(time.Unix(0, 0)))

	res := rc.Await(context.Background(), "new", time.Second)

	assert.True(t, res.TimedOut(), "stale reply must never be returned")
	assert.False(t, mb.ResultReady(), "stale reply must be deleted")
}

func TestResultChannel_StaleThenMatchingReply(t *testing.T) {
	mb := newMemMailbox()
	mb.writeResult(map[string]any{"id": "old", "success": true, "content": "stale"})
	mb.afterRemove = func() {
		mb.afterRemove = nil
		mb.writeResult(map[string]any{"id": "new", "success": true, "content": "fresh"})
	}
	rc := newTestResultChannel(t, mb, clock.NewFake(time.Unix(0, 0)))

	res := rc.Await(context.Background(), "new", time.Second)

	require.True(t, res.Success)
	assert.Equal(t, "fresh", res.Content)
}

func TestResultChannel_WaitsThroughEmptyAndPartialWrites(t *testing.T) {
	mb := newMemMailbox()
	rc := newTestResultChannel(t, mb, clock.NewFake(time.Unix(0, 0)))
	ctx := context.Background()

	mb.writeRaw([]byte(`{"success": tr`))
	_, ok := rc.take(ctx, "c")
	assert.False(t, ok, "half-written payload must not be accepted")
	assert.True(t, mb.ResultReady(), "half-written payload must be left for the writer")

	mb.writeRaw([]byte(`{}`))
	_, ok = rc.take(ctx, "c")
	assert.False(t, ok, "empty payload must not be accepted")

	mb.writeRaw([]byte(`{"id":"c","success":true,"content":"done"}`))
	res, ok := rc.take(ctx, "c")
	require.True(t, ok)
	assert.Equal(t, "done", res.Content)
}

func TestResultChannel_CancelledContext(t *testing.T) {
	rc := newTestResultChannel(t, newMemMailbox(), clock.NewFake(time.Unix(0, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := rc.Await(ctx, "x", time.Minute)

	assert.False(t, res.Success)
	assert.False(t, res.TimedOut())
	assert.Contains(t, res.Error, "Cancelled")
}

func TestResultChannel_RealClockWakesOnChange(t *testing.T) {
	mb := newMemMailbox()
	mb.changes = make(chan struct{}, 1)
	cfg := DefaultResultConfig()
	cfg.PollInterval = time.Hour
	cfg.SettleDelay = 0
	rc := NewResultChannel(mb, clock.NewReal(), logger.NewTestLogger(t), cfg)

	go func() {
		time.Sleep(20 * time.Millisecond)
		mb.writeResult(map[string]any{"id": "w", "success": true})
		mb.changes <- struct{}{}
	}()

	start := time.Now()
	res := rc.Await(context.Background(), "w", 5*time.Second)

	assert.True(t, res.Success)
	assert.Less(t, time.Since(start), 2*time.Second)
}
