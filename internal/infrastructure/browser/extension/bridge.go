// Package extension drives the user's own browser through the Zyron
// extension. Commands go out through the file mailbox and replies come back
// through its single result slot.
package extension

import (
	"context"
	"fmt"
	"strings"

	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"
)

var _ output.BrowserPort = (*Bridge)(nil)

type sender interface {
	Send(ctx context.Context, action entity.Action, params map[string]any) (entity.Result, error)
}

type Bridge struct {
	channel sender
	logger  output.LoggerPort
}

func NewBridge(channel sender, logger output.LoggerPort) *Bridge {
	return &Bridge{
		channel: channel,
		logger:  logger.WithField("component", "bridge"),
	}
}

func (b *Bridge) CreateTab(ctx context.Context, url string, active bool) (entity.TabID, error) {
	res, err := b.channel.Send(ctx, entity.ActionCreateTab, map[string]any{
		"url":    url,
		"active": active,
	})
	if err != nil {
		return "", fmt.Errorf("create tab: %w", err)
	}
	if !res.Success {
		return "", fmt.Errorf("create tab: %w", res.Err())
	}
	if res.TabID.IsZero() {
		return "", fmt.Errorf("create tab: %w: reply has no tabId", entity.ErrCommandFailed)
	}

	b.logger.Debug("Tab created", "tab", res.TabID, "active", active)
	return res.TabID, nil
}

// Navigate loads url in tab, or opens a new tab when tab is nil.
func (b *Bridge) Navigate(ctx context.Context, url string, tab *entity.TabID) (entity.Result, error) {
	if tab == nil || tab.IsZero() {
		return b.channel.Send(ctx, entity.ActionCreateTab, map[string]any{"url": url})
	}
	return b.channel.Send(ctx, entity.ActionNavigate, withTab(map[string]any{"url": url}, tab))
}

func (b *Bridge) CloseTab(ctx context.Context, tab entity.TabID) error {
	res, err := b.channel.Send(ctx, entity.ActionCloseTab, withTab(nil, &tab))
	if err != nil {
		return fmt.Errorf("close tab %s: %w", tab, err)
	}
	return res.Err()
}

func (b *Bridge) MuteTab(ctx context.Context, tab entity.TabID, mute bool) error {
	res, err := b.channel.Send(ctx, entity.ActionMuteTab, withTab(map[string]any{"value": mute}, &tab))
	if err != nil {
		return fmt.Errorf("mute tab %s: %w", tab, err)
	}
	return res.Err()
}

func (b *Bridge) Click(ctx context.Context, sel entity.Selector, tab *entity.TabID) (entity.Result, error) {
	if sel.IsZero() {
		return entity.FailureResult("empty selector"), fmt.Errorf("click: %w: empty selector", entity.ErrCommandFailed)
	}
	return b.channel.Send(ctx, entity.ActionClick, withTab(map[string]any{"selector": sel.String()}, tab))
}

func (b *Bridge) Type(ctx context.Context, sel entity.Selector, text string, tab *entity.TabID) (entity.Result, error) {
	if sel.IsZero() {
		return entity.FailureResult("empty selector"), fmt.Errorf("type: %w: empty selector", entity.ErrCommandFailed)
	}
	return b.channel.Send(ctx, entity.ActionType, withTab(map[string]any{
		"selector": sel.String(),
		"text":     text,
	}, tab))
}

func (b *Bridge) PressKey(ctx context.Context, sel entity.Selector, key string, tab *entity.TabID) (entity.Result, error) {
	return b.channel.Send(ctx, entity.ActionPressKey, withTab(map[string]any{
		"selector": sel.String(),
		"key":      key,
	}, tab))
}

func (b *Bridge) Scroll(ctx context.Context, direction string, tab *entity.TabID) (entity.Result, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction == "" {
		direction = "down"
	}
	return b.channel.Send(ctx, entity.ActionScroll, withTab(map[string]any{"direction": direction}, tab))
}

// ReadPage asks for the visible text of the page.
func (b *Bridge) ReadPage(ctx context.Context, tab *entity.TabID) (entity.Result, error) {
	return b.channel.Send(ctx, entity.ActionRead, withTab(nil, tab))
}

// ScanPage asks for the interactive elements of the page. The extension
// numbers them with data-zyron-id, which ByZyronID selectors refer to.
func (b *Bridge) ScanPage(ctx context.Context, tab *entity.TabID) (entity.Result, error) {
	return b.channel.Send(ctx, entity.ActionScan, withTab(nil, tab))
}

func withTab(params map[string]any, tab *entity.TabID) map[string]any {
	if params == nil {
		params = make(map[string]any, 1)
	}
	if tab != nil && !tab.IsZero() {
		params["tabId"] = *tab
	}
	return params
}
