package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type Action string

const (
	ActionNavigate  Action = "navigate"
	ActionCreateTab Action = "create_tab"
	ActionCloseTab  Action = "close_tab"
	ActionMuteTab   Action = "mute_tab"
	ActionClick     Action = "click"
	ActionType      Action = "type"
	ActionScroll    Action = "scroll"
	ActionRead      Action = "read"
	ActionScan      Action = "scan"
	ActionPressKey  Action = "press_key"
)

// ExpectsReply reports whether the extension answers this action through
// the inbound mailbox.
func (a Action) ExpectsReply() bool {
	switch a {
	case ActionRead, ActionScan, ActionCreateTab, ActionClick, ActionType, ActionScroll:
		return true
	}
	return false
}

func (a Action) Valid() bool {
	switch a {
	case ActionNavigate, ActionCreateTab, ActionCloseTab, ActionMuteTab, ActionClick,
		ActionType, ActionScroll, ActionRead, ActionScan, ActionPressKey:
		return true
	}
	return false
}

func (a Action) String() string {
	return string(a)
}

// Command is one entry of the outbound mailbox. On the wire the params are
// flattened next to "action" and "id".
type Command struct {
	ID     string
	Action Action
	Params map[string]any
}

func NewCommand(id string, action Action, params map[string]any) Command {
	copied := make(map[string]any, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return Command{ID: id, Action: action, Params: copied}
}

func (c Command) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(c.Params)+2)
	for k, v := range c.Params {
		flat[k] = v
	}
	flat["action"] = string(c.Action)
	if c.ID != "" {
		flat["id"] = c.ID
	}
	return json.Marshal(flat)
}

func (c *Command) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	action, _ := flat["action"].(string)
	if action == "" {
		return fmt.Errorf("command without action")
	}
	id, _ := flat["id"].(string)

	delete(flat, "action")
	delete(flat, "id")

	c.ID = id
	c.Action = Action(action)
	c.Params = flat
	return nil
}

// TabID identifies a browser tab. Firefox hands out integers, but the value
// is kept opaque.
type TabID string

func (t TabID) String() string {
	return string(t)
}

func (t TabID) IsZero() bool {
	return t == ""
}

func (t TabID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(t), 10, 64); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(string(t))
}

func (t *TabID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*t = TabID(num.String())
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tab id must be a number or string: %w", err)
	}
	*t = TabID(s)
	return nil
}
