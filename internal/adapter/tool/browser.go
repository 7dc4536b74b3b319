package tool

import (
	"context"
	"fmt"

	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"
)

var (
	_ output.ToolPort = (*NavigateTool)(nil)
	_ output.ToolPort = (*CreateTabTool)(nil)
	_ output.ToolPort = (*CloseTabTool)(nil)
	_ output.ToolPort = (*MuteTabTool)(nil)
	_ output.ToolPort = (*ClickTool)(nil)
	_ output.ToolPort = (*TypeTool)(nil)
	_ output.ToolPort = (*PressKeyTool)(nil)
	_ output.ToolPort = (*ScrollTool)(nil)
	_ output.ToolPort = (*ReadTool)(nil)
	_ output.ToolPort = (*ScanTool)(nil)
)

// BrowserTools returns every bridge-backed tool.
func BrowserTools(browser output.BrowserPort, logger output.LoggerPort) []output.ToolPort {
	return []output.ToolPort{
		NewNavigateTool(browser, logger),
		NewCreateTabTool(browser, logger),
		NewCloseTabTool(browser, logger),
		NewMuteTabTool(browser, logger),
		NewClickTool(browser, logger),
		NewTypeTool(browser, logger),
		NewPressKeyTool(browser, logger),
		NewScrollTool(browser, logger),
		NewReadTool(browser, logger),
		NewScanTool(browser, logger),
	}
}

type NavigateTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewNavigateTool(browser output.BrowserPort, logger output.LoggerPort) *NavigateTool {
	return &NavigateTool{browser: browser, logger: logger}
}

func (t *NavigateTool) Name() entity.ToolName { return entity.ToolBrowserNavigate }
func (t *NavigateTool) Description() string {
	return "Open a URL in the user's browser. With tab_id the tab is navigated; without it a new tab is opened and its id returned."
}
func (t *NavigateTool) Parameters() map[string]interface{} {
	return object([]string{"url"}, map[string]interface{}{
		"url":    prop("string", "URL to open"),
		"tab_id": tabProp,
	})
}

func (t *NavigateTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		URL   string        `json:"url"`
		TabID *entity.TabID `json:"tab_id"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		return "", err
	}
	if args.URL == "" {
		return "", fmt.Errorf("%s: url is required", t.Name())
	}

	res, err := t.browser.Navigate(ctx, args.URL, args.TabID)
	if err != nil {
		return "", err
	}
	if !res.TabID.IsZero() {
		return resultText(res, fmt.Sprintf("Opened %s in tab %s", args.URL, res.TabID))
	}
	return resultText(res, fmt.Sprintf("Navigated to %s", args.URL))
}

type CreateTabTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewCreateTabTool(browser output.BrowserPort, logger output.LoggerPort) *CreateTabTool {
	return &CreateTabTool{browser: browser, logger: logger}
}

func (t *CreateTabTool) Name() entity.ToolName { return entity.ToolBrowserCreateTab }
func (t *CreateTabTool) Description() string {
	return "Open a new tab and return its id. Background tabs (active=false) do not steal focus."
}
func (t *CreateTabTool) Parameters() map[string]interface{} {
	return object([]string{"url"}, map[string]interface{}{
		"url":    prop("string", "URL to open"),
		"active": prop("boolean", "Focus the new tab (default true)"),
	})
}

func (t *CreateTabTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		URL    string `json:"url"`
		Active *bool  `json:"active"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		return "", err
	}
	active := args.Active == nil || *args.Active

	tab, err := t.browser.CreateTab(ctx, args.URL, active)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Created tab %s", tab), nil
}

type CloseTabTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewCloseTabTool(browser output.BrowserPort, logger output.LoggerPort) *CloseTabTool {
	return &CloseTabTool{browser: browser, logger: logger}
}

func (t *CloseTabTool) Name() entity.ToolName { return entity.ToolBrowserCloseTab }
func (t *CloseTabTool) Description() string   { return "Close a browser tab." }
func (t *CloseTabTool) Parameters() map[string]interface{} {
	return object([]string{"tab_id"}, map[string]interface{}{"tab_id": tabProp})
}

func (t *CloseTabTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		TabID entity.TabID `json:"tab_id"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		return "", err
	}
	if args.TabID.IsZero() {
		return "", fmt.Errorf("%s: tab_id is required", t.Name())
	}
	if err := t.browser.CloseTab(ctx, args.TabID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Closed tab %s", args.TabID), nil
}

type MuteTabTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewMuteTabTool(browser output.BrowserPort, logger output.LoggerPort) *MuteTabTool {
	return &MuteTabTool{browser: browser, logger: logger}
}

func (t *MuteTabTool) Name() entity.ToolName { return entity.ToolBrowserMuteTab }
func (t *MuteTabTool) Description() string   { return "Mute or unmute a browser tab." }
func (t *MuteTabTool) Parameters() map[string]interface{} {
	return object([]string{"tab_id"}, map[string]interface{}{
		"tab_id": tabProp,
		"mute":   prop("boolean", "true to mute, false to unmute (default true)"),
	})
}

func (t *MuteTabTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		TabID entity.TabID `json:"tab_id"`
		Mute  *bool        `json:"mute"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		return "", err
	}
	if args.TabID.IsZero() {
		return "", fmt.Errorf("%s: tab_id is required", t.Name())
	}
	mute := args.Mute == nil || *args.Mute

	if err := t.browser.MuteTab(ctx, args.TabID, mute); err != nil {
		return "", err
	}
	if mute {
		return fmt.Sprintf("Muted tab %s", args.TabID), nil
	}
	return fmt.Sprintf("Unmuted tab %s", args.TabID), nil
}

type ClickTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewClickTool(browser output.BrowserPort, logger output.LoggerPort) *ClickTool {
	return &ClickTool{browser: browser, logger: logger}
}

func (t *ClickTool) Name() entity.ToolName { return entity.ToolBrowserClick }
func (t *ClickTool) Description() string {
	return "Click an element. Run browser_scan first to get element numbers."
}
func (t *ClickTool) Parameters() map[string]interface{} {
	return object([]string{"selector"}, map[string]interface{}{
		"selector": selectorProp,
		"tab_id":   tabProp,
	})
}

func (t *ClickTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Selector string        `json:"selector"`
		TabID    *entity.TabID `json:"tab_id"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		return "", err
	}

	res, err := t.browser.Click(ctx, entity.ParseSelector(args.Selector), args.TabID)
	if err != nil {
		return "", err
	}
	return resultText(res, "Click successful")
}

type TypeTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewTypeTool(browser output.BrowserPort, logger output.LoggerPort) *TypeTool {
	return &TypeTool{browser: browser, logger: logger}
}

func (t *TypeTool) Name() entity.ToolName { return entity.ToolBrowserType }
func (t *TypeTool) Description() string   { return "Type text into an input element." }
func (t *TypeTool) Parameters() map[string]interface{} {
	return object([]string{"selector", "text"}, map[string]interface{}{
		"selector": selectorProp,
		"text":     prop("string", "Text to type"),
		"tab_id":   tabProp,
	})
}

func (t *TypeTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Selector string        `json:"selector"`
		Text     string        `json:"text"`
		TabID    *entity.TabID `json:"tab_id"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		return "", err
	}

	res, err := t.browser.Type(ctx, entity.ParseSelector(args.Selector), args.Text, args.TabID)
	if err != nil {
		return "", err
	}
	return resultText(res, fmt.Sprintf("Typed into %s", args.Selector))
}

type PressKeyTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewPressKeyTool(browser output.BrowserPort, logger output.LoggerPort) *PressKeyTool {
	return &PressKeyTool{browser: browser, logger: logger}
}

func (t *PressKeyTool) Name() entity.ToolName { return entity.ToolBrowserPressKey }
func (t *PressKeyTool) Description() string {
	return "Press a key (for example Enter) on an element. Queued without waiting for the browser."
}
func (t *PressKeyTool) Parameters() map[string]interface{} {
	return object([]string{"key"}, map[string]interface{}{
		"selector": selectorProp,
		"key":      prop("string", "Key name, e.g. Enter or Escape"),
		"tab_id":   tabProp,
	})
}

func (t *PressKeyTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Selector string        `json:"selector"`
		Key      string        `json:"key"`
		TabID    *entity.TabID `json:"tab_id"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		return "", err
	}
	if args.Key == "" {
		return "", fmt.Errorf("%s: key is required", t.Name())
	}

	res, err := t.browser.PressKey(ctx, entity.ParseSelector(args.Selector), args.Key, args.TabID)
	if err != nil {
		return "", err
	}
	return resultText(res, fmt.Sprintf("Pressed %s", args.Key))
}

type ScrollTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewScrollTool(browser output.BrowserPort, logger output.LoggerPort) *ScrollTool {
	return &ScrollTool{browser: browser, logger: logger}
}

func (t *ScrollTool) Name() entity.ToolName { return entity.ToolBrowserScroll }
func (t *ScrollTool) Description() string   { return "Scroll the page." }
func (t *ScrollTool) Parameters() map[string]interface{} {
	return object(nil, map[string]interface{}{
		"direction": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"up", "down"},
			"description": "Scroll direction (default down)",
		},
		"tab_id": tabProp,
	})
}

func (t *ScrollTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Direction string        `json:"direction"`
		TabID     *entity.TabID `json:"tab_id"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		return "", err
	}

	res, err := t.browser.Scroll(ctx, args.Direction, args.TabID)
	if err != nil {
		return "", err
	}
	return resultText(res, "Scrolled")
}

type ReadTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewReadTool(browser output.BrowserPort, logger output.LoggerPort) *ReadTool {
	return &ReadTool{browser: browser, logger: logger}
}

func (t *ReadTool) Name() entity.ToolName { return entity.ToolBrowserRead }
func (t *ReadTool) Description() string   { return "Return the visible text of a page." }
func (t *ReadTool) Parameters() map[string]interface{} {
	return object(nil, map[string]interface{}{"tab_id": tabProp})
}

func (t *ReadTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		TabID *entity.TabID `json:"tab_id"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		return "", err
	}

	res, err := t.browser.ReadPage(ctx, args.TabID)
	if err != nil {
		return "", err
	}
	t.logger.Debug("Page read", "chars", len(res.Content), "success", res.Success)
	return resultText(res, "(empty page)")
}

type ScanTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewScanTool(browser output.BrowserPort, logger output.LoggerPort) *ScanTool {
	return &ScanTool{browser: browser, logger: logger}
}

func (t *ScanTool) Name() entity.ToolName { return entity.ToolBrowserScan }
func (t *ScanTool) Description() string {
	return "List the interactive elements of a page, each tagged with a number usable as a selector."
}
func (t *ScanTool) Parameters() map[string]interface{} {
	return object(nil, map[string]interface{}{"tab_id": tabProp})
}

func (t *ScanTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		TabID *entity.TabID `json:"tab_id"`
	}
	if err := parseArgs(t.Name(), arguments, &args); err != nil {
		return "", err
	}

	res, err := t.browser.ScanPage(ctx, args.TabID)
	if err != nil {
		return "", err
	}
	// Some extension builds return the element list as extra fields.
	if res.Success && res.Content == "" && len(res.Raw) > 0 {
		return string(res.Raw), nil
	}
	return resultText(res, "(no interactive elements)")
}
