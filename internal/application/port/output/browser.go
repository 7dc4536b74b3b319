package output

import (
	"context"

	"browser-bridge/internal/domain/entity"
)

// BrowserPort drives tabs of a browser the process does not own. A nil tab
// means "whatever tab the extension considers current".
type BrowserPort interface {
	CreateTab(ctx context.Context, url string, active bool) (entity.TabID, error)
	Navigate(ctx context.Context, url string, tab *entity.TabID) (entity.Result, error)
	CloseTab(ctx context.Context, tab entity.TabID) error
	MuteTab(ctx context.Context, tab entity.TabID, mute bool) error

	Click(ctx context.Context, sel entity.Selector, tab *entity.TabID) (entity.Result, error)
	Type(ctx context.Context, sel entity.Selector, text string, tab *entity.TabID) (entity.Result, error)
	PressKey(ctx context.Context, sel entity.Selector, key string, tab *entity.TabID) (entity.Result, error)
	Scroll(ctx context.Context, direction string, tab *entity.TabID) (entity.Result, error)

	ReadPage(ctx context.Context, tab *entity.TabID) (entity.Result, error)
	ScanPage(ctx context.Context, tab *entity.TabID) (entity.Result, error)
}
