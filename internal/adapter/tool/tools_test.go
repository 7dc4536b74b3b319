package tool

import (
	"context"
	"encoding/json"
	"testing"

	"browser-bridge/internal/domain/entity"
	"browser-bridge/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op       string
	url      string
	selector string
	text     string
	tab      *entity.TabID
	active   bool
	mute     bool
}

type fakeBrowser struct {
	calls  []call
	result entity.Result
	err    error
	newTab entity.TabID
}

func (b *fakeBrowser) record(c call) (entity.Result, error) {
	b.calls = append(b.calls, c)
	return b.result, b.err
}

func (b *fakeBrowser) last(t *testing.T) call {
	t.Helper()
	require.NotEmpty(t, b.calls)
	return b.calls[len(b.calls)-1]
}

func (b *fakeBrowser) CreateTab(_ context.Context, url string, active bool) (entity.TabID, error) {
	b.calls = append(b.calls, call{op: "create_tab", url: url, active: active})
	return b.newTab, b.err
}

func (b *fakeBrowser) Navigate(_ context.Context, url string, tab *entity.TabID) (entity.Result, error) {
	return b.record(call{op: "navigate", url: url, tab: tab})
}

func (b *fakeBrowser) CloseTab(_ context.Context, tab entity.TabID) error {
	b.calls = append(b.calls, call{op: "close_tab", tab: &tab})
	return b.err
}

func (b *fakeBrowser) MuteTab(_ context.Context, tab entity.TabID, mute bool) error {
	b.calls = append(b.calls, call{op: "mute_tab", tab: &tab, mute: mute})
	return b.err
}

func (b *fakeBrowser) Click(_ context.Context, sel entity.Selector, tab *entity.TabID) (entity.Result, error) {
	return b.record(call{op: "click", selector: sel.String(), tab: tab})
}

func (b *fakeBrowser) Type(_ context.Context, sel entity.Selector, text string, tab *entity.TabID) (entity.Result, error) {
	return b.record(call{op: "type", selector: sel.String(), text: text, tab: tab})
}

func (b *fakeBrowser) PressKey(_ context.Context, sel entity.Selector, key string, tab *entity.TabID) (entity.Result, error) {
	return b.record(call{op: "press_key", selector: sel.String(), text: key, tab: tab})
}

func (b *fakeBrowser) Scroll(_ context.Context, direction string, tab *entity.TabID) (entity.Result, error) {
	return b.record(call{op: "scroll", text: direction, tab: tab})
}

func (b *fakeBrowser) ReadPage(_ context.Context, tab *entity.TabID) (entity.Result, error) {
	return b.record(call{op: "read", tab: tab})
}

func (b *fakeBrowser) ScanPage(_ context.Context, tab *entity.TabID) (entity.Result, error) {
	return b.record(call{op: "scan", tab: tab})
}

type fakeResearcher struct {
	queries []string
	answer  string
}

func (r *fakeResearcher) PerformResearch(_ context.Context, query string) string {
	r.queries = append(r.queries, query)
	return r.answer
}

func (r *fakeResearcher) Research(context.Context, string) (*entity.ResearchReport, error) {
	return nil, nil
}

func TestBrowserTools_NamesAndSchemas(t *testing.T) {
	tools := BrowserTools(&fakeBrowser{}, logger.NewTestLogger(t))

	names := make([]entity.ToolName, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name())
		params := tool.Parameters()
		assert.Equal(t, "object", params["type"], tool.Name())
		assert.NotEmpty(t, tool.Description(), tool.Name())

		_, err := json.Marshal(params)
		assert.NoError(t, err, "schema of %s must be JSON", tool.Name())
	}

	assert.ElementsMatch(t, []entity.ToolName{
		entity.ToolBrowserNavigate, entity.ToolBrowserCreateTab, entity.ToolBrowserCloseTab,
		entity.ToolBrowserMuteTab, entity.ToolBrowserClick, entity.ToolBrowserType,
		entity.ToolBrowserPressKey, entity.ToolBrowserScroll, entity.ToolBrowserRead,
		entity.ToolBrowserScan,
	}, names)
}

func TestNavigateTool(t *testing.T) {
	b := &fakeBrowser{result: entity.Result{Success: true, TabID: "42"}}
	tool := NewNavigateTool(b, logger.NewTestLogger(t))

	out, err := tool.Execute(context.Background(), `{"url":"https://example.com"}`)
	require.NoError(t, err)
	assert.Equal(t, "Opened https://example.com in tab 42", out)
	assert.Nil(t, b.last(t).tab)

	b.result = entity.SuccessResult()
	out, err = tool.Execute(context.Background(), `{"url":"https://example.com","tab_id":7}`)
	require.NoError(t, err)
	assert.Equal(t, "Navigated to https://example.com", out)
	require.NotNil(t, b.last(t).tab)
	assert.Equal(t, entity.TabID("7"), *b.last(t).tab)

	_, err = tool.Execute(context.Background(), `{}`)
	assert.Error(t, err)
}

func TestCreateTabTool_DefaultsToActive(t *testing.T) {
	b := &fakeBrowser{newTab: "9"}
	tool := NewCreateTabTool(b, logger.NewTestLogger(t))

	out, err := tool.Execute(context.Background(), `{"url":"https://a.test"}`)
	require.NoError(t, err)
	assert.Equal(t, "Created tab 9", out)
	assert.True(t, b.last(t).active)

	_, err = tool.Execute(context.Background(), `{"url":"https://a.test","active":false}`)
	require.NoError(t, err)
	assert.False(t, b.last(t).active)
}

func TestClickTool_ParsesSelector(t *testing.T) {
	tests := []struct {
		args string
		want string
	}{
		{`{"selector":"12"}`, `[data-zyron-id="12"]`},
		{`{"selector":"#submit"}`, `#submit`},
		{`{"selector":" 3 "}`, `[data-zyron-id="3"]`},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			b := &fakeBrowser{result: entity.SuccessResult()}
			tool := NewClickTool(b, logger.NewTestLogger(t))

			out, err := tool.Execute(context.Background(), tt.args)
			require.NoError(t, err)
			assert.Equal(t, "Click successful", out)
			assert.Equal(t, tt.want, b.last(t).selector)
		})
	}
}

func TestTypeAndPressKeyTools(t *testing.T) {
	b := &fakeBrowser{result: entity.SuccessResult()}
	log := logger.NewTestLogger(t)

	_, err := NewTypeTool(b, log).Execute(context.Background(), `{"selector":"5","text":"hello","tab_id":"3"}`)
	require.NoError(t, err)
	c := b.last(t)
	assert.Equal(t, "type", c.op)
	assert.Equal(t, `[data-zyron-id="5"]`, c.selector)
	assert.Equal(t, "hello", c.text)
	assert.Equal(t, entity.TabID("3"), *c.tab)

	out, err := NewPressKeyTool(b, log).Execute(context.Background(), `{"selector":"input[name=q]","key":"Enter"}`)
	require.NoError(t, err)
	assert.Equal(t, "Pressed Enter", out)
	assert.Equal(t, "input[name=q]", b.last(t).selector)

	_, err = NewPressKeyTool(b, log).Execute(context.Background(), `{"selector":"x"}`)
	assert.Error(t, err)
}

func TestReadTool_FailedResultIsError(t *testing.T) {
	b := &fakeBrowser{result: entity.TimeoutResult()}
	tool := NewReadTool(b, logger.NewTestLogger(t))

	_, err := tool.Execute(context.Background(), ``)

	assert.ErrorIs(t, err, entity.ErrIPCTimeout)
}

func TestReadTool_ReturnsContent(t *testing.T) {
	b := &fakeBrowser{result: entity.Result{Success: true, Content: "Hello page"}}
	tool := NewReadTool(b, logger.NewTestLogger(t))

	out, err := tool.Execute(context.Background(), `{"tab_id":11}`)
	require.NoError(t, err)
	assert.Equal(t, "Hello page", out)
}

func TestScanTool_FallsBackToRawPayload(t *testing.T) {
	raw := []byte(`{"success":true,"elements":[{"id":1,"tag":"a"}]}`)
	res, err := entity.ParseResult(raw)
	require.NoError(t, err)

	b := &fakeBrowser{result: res}
	out, err := NewScanTool(b, logger.NewTestLogger(t)).Execute(context.Background(), `{}`)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), out)
}

func TestCloseAndMuteTools(t *testing.T) {
	b := &fakeBrowser{}
	log := logger.NewTestLogger(t)

	out, err := NewCloseTabTool(b, log).Execute(context.Background(), `{"tab_id":4}`)
	require.NoError(t, err)
	assert.Equal(t, "Closed tab 4", out)

	_, err = NewCloseTabTool(b, log).Execute(context.Background(), `{}`)
	assert.Error(t, err, "tab_id is required")

	out, err = NewMuteTabTool(b, log).Execute(context.Background(), `{"tab_id":4,"mute":false}`)
	require.NoError(t, err)
	assert.Equal(t, "Unmuted tab 4", out)
	assert.False(t, b.last(t).mute)

	out, err = NewMuteTabTool(b, log).Execute(context.Background(), `{"tab_id":4}`)
	require.NoError(t, err)
	assert.Equal(t, "Muted tab 4", out)
}

func TestScrollTool(t *testing.T) {
	b := &fakeBrowser{result: entity.SuccessResult()}

	out, err := NewScrollTool(b, logger.NewTestLogger(t)).Execute(context.Background(), `{"direction":"up"}`)
	require.NoError(t, err)
	assert.Equal(t, "Scrolled", out)
	assert.Equal(t, "up", b.last(t).text)
}

func TestInvalidArguments(t *testing.T) {
	_, err := NewClickTool(&fakeBrowser{}, logger.NewTestLogger(t)).Execute(context.Background(), `{not json`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser_click: invalid arguments")
}

func TestResearchTool(t *testing.T) {
	r := &fakeResearcher{answer: "42"}
	tool := NewResearchTool(r, logger.NewTestLogger(t))

	out, err := tool.Execute(context.Background(), `{"query":"meaning of life"}`)
	require.NoError(t, err)
	assert.Equal(t, "42", out)
	assert.Equal(t, []string{"meaning of life"}, r.queries)
	assert.Equal(t, entity.ToolResearch, tool.Name())
}
