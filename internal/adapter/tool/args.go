package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"browser-bridge/internal/domain/entity"
)

func parseArgs(name entity.ToolName, arguments string, v any) error {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}
	if err := json.Unmarshal([]byte(arguments), v); err != nil {
		return fmt.Errorf("%s: invalid arguments: %w", name, err)
	}
	return nil
}

func object(required []string, props map[string]interface{}) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

var (
	tabProp = map[string]interface{}{
		"type":        []string{"integer", "string"},
		"description": "Browser tab id. Omit to use the tab the extension considers current.",
	}
	selectorProp = prop("string",
		"CSS selector, or the number shown next to an element by browser_scan")
)

// resultText turns a bridge Result into tool output. Failed and timed out
// results become errors.
func resultText(res entity.Result, fallback string) (string, error) {
	if err := res.Err(); err != nil {
		return "", err
	}
	if res.Content != "" {
		return res.Content, nil
	}
	return fallback, nil
}
