package userinteraction

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"browser-bridge/internal/domain/entity"

	"github.com/fatih/color"
)

// Console is the terminal front end of the bridge CLI.
type Console struct {
	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func NewConsole(in io.Reader, out, errOut io.Writer) *Console {
	return &Console{
		reader: bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
}

func (c *Console) AskQuery(prompt string) (string, error) {
	fmt.Fprintf(c.out, "\n%s\n> ", prompt)

	line, err := c.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read user input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func (c *Console) ShowResearchStart(query string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(c.out, "\n🔍 Researching: %s\n", query)
}

func (c *Console) ShowReport(report *entity.ResearchReport) {
	if report == nil {
		return
	}
	dim := color.New(color.Faint)

	if report.BrowserAttempts > 0 {
		closed := "closed"
		if !report.TabClosed {
			closed = "left open"
		}
		dim.Fprintf(c.out, "   → Browser: %d read attempt(s), tab %s %s\n", report.BrowserAttempts, report.TabID, closed)
	}
	if report.HeadlessAttempts > 0 {
		dim.Fprintf(c.out, "   → Headless: %d fetch\n", report.HeadlessAttempts)
	}
	if report.Strategy != entity.StrategyNone {
		green := color.New(color.FgGreen)
		green.Fprintf(c.out, "   ✓ %s (%d chars)\n", report.Strategy, utf8.RuneCountInString(report.Content))
	}
}

func (c *Console) ShowAnswer(answer string, ok bool) {
	if ok {
		color.New(color.FgGreen, color.Bold).Fprintln(c.out, "\nANSWER:")
	} else {
		color.New(color.FgYellow, color.Bold).Fprintln(c.out, "\n⚠️")
	}
	fmt.Fprintln(c.out, answer)
}

func (c *Console) ShowToolStart(toolName, arguments string) {
	icon, name := getToolDisplay(toolName)

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(c.out, "\n%s %s\n", icon, name)

	summary := formatToolArguments(toolName, arguments)
	if summary != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(c.out, "   %s\n", summary)
	}
}

func (c *Console) ShowToolResult(toolName, result string, isError bool) {
	if isError {
		red := color.New(color.FgRed)
		red.Fprint(c.errOut, "❌ Error: ")

		dim := color.New(color.Faint)
		dim.Fprintln(c.errOut, truncate(result, 300))
		return
	}

	green := color.New(color.FgGreen)
	green.Fprintf(c.out, "✓ %s\n", formatToolResult(toolName, result))
}

func (c *Console) ShowTools(defs []entity.ToolDefinition) {
	bold := color.New(color.Bold)
	for _, d := range defs {
		icon, _ := getToolDisplay(d.Name)
		bold.Fprintf(c.out, "%s %s\n", icon, d.Name)
		fmt.Fprintf(c.out, "   %s\n", d.Description)
	}
}

func (c *Console) ShowQueue(cmds []entity.Command) {
	if len(cmds) == 0 {
		color.New(color.Faint).Fprintln(c.out, "Command queue is empty.")
		return
	}
	for i, cmd := range cmds {
		params, _ := json.Marshal(cmd.Params)
		fmt.Fprintf(c.out, "%3d. %-10s %s %s\n", i+1, cmd.Action, cmd.ID, truncate(string(params), 100))
	}
}

func (c *Console) ShowError(err error) {
	color.New(color.FgRed, color.Bold).Fprintf(c.errOut, "Error: %v\n", err)
}

func getToolDisplay(toolName string) (string, string) {
	displays := map[string][2]string{
		"browser_navigate":   {"🌐", "Navigate"},
		"browser_create_tab": {"➕", "New tab"},
		"browser_close_tab":  {"✖️", "Close tab"},
		"browser_mute_tab":   {"🔇", "Mute tab"},
		"browser_click":      {"🖱️", "Click"},
		"browser_type":       {"✏️", "Type"},
		"browser_press_key":  {"⏎", "Key press"},
		"browser_scroll":     {"📜", "Scroll"},
		"browser_read":       {"📖", "Read page"},
		"browser_scan":       {"🔍", "Scan page"},
		"research":           {"🔎", "Research"},
	}

	if display, ok := displays[toolName]; ok {
		return display[0], display[1]
	}
	return "🔧", toolName
}

func formatToolArguments(toolName, arguments string) string {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ""
	}

	var parts []string
	if url, ok := args["url"].(string); ok {
		parts = append(parts, "URL: "+url)
	}
	if sel, ok := args["selector"].(string); ok {
		parts = append(parts, "Selector: "+truncate(entity.ParseSelector(sel).String(), 60))
	}
	if text, ok := args["text"].(string); ok {
		parts = append(parts, "Text: "+truncate(text, 30))
	}
	if key, ok := args["key"].(string); ok {
		parts = append(parts, "Key: "+key)
	}
	if query, ok := args["query"].(string); ok {
		parts = append(parts, "Query: "+truncate(query, 80))
	}
	if tab, ok := args["tab_id"]; ok && tab != nil {
		parts = append(parts, fmt.Sprintf("Tab: %v", tab))
	}
	if toolName == "browser_scroll" {
		direction, _ := args["direction"].(string)
		switch direction {
		case "up":
			parts = append(parts, "⬆️ Up")
		default:
			parts = append(parts, "⬇️ Down")
		}
	}

	return strings.Join(parts, " | ")
}

func formatToolResult(toolName, result string) string {
	switch toolName {
	case "browser_read", "browser_scan":
		return fmt.Sprintf("%d chars\n%s", utf8.RuneCountInString(result), result)
	case "research":
		return result
	}
	return truncate(result, 100)
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
