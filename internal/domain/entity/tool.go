package entity

type ToolName string

const (
	ToolBrowserNavigate  ToolName = "browser_navigate"
	ToolBrowserCreateTab ToolName = "browser_create_tab"
	ToolBrowserCloseTab  ToolName = "browser_close_tab"
	ToolBrowserMuteTab   ToolName = "browser_mute_tab"
	ToolBrowserClick     ToolName = "browser_click"
	ToolBrowserType      ToolName = "browser_type"
	ToolBrowserPressKey  ToolName = "browser_press_key"
	ToolBrowserScroll    ToolName = "browser_scroll"
	ToolBrowserRead      ToolName = "browser_read"
	ToolBrowserScan      ToolName = "browser_scan"

	ToolResearch ToolName = "research"
)

func (t ToolName) String() string {
	return string(t)
}

type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}
