package entity

import (
	"encoding/json"
	"fmt"
)

const TimeoutMessage = "Timeout waiting for browser response"

// Result is what the extension writes to the inbound mailbox for a
// reply-expecting command.
type Result struct {
	ID      string `json:"id,omitempty"`
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
	TabID   TabID  `json:"tabId,omitempty"`

	// Raw holds the full payload, including fields the bridge does not model.
	Raw json.RawMessage `json:"-"`

	timedOut bool
}

func ParseResult(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, err
	}
	r.Raw = append(json.RawMessage(nil), data...)
	return r, nil
}

func SuccessResult() Result {
	return Result{Success: true}
}

func FailureResult(msg string) Result {
	return Result{Success: false, Error: msg}
}

func TimeoutResult() Result {
	return Result{Success: false, Error: TimeoutMessage, timedOut: true}
}

func (r Result) TimedOut() bool {
	return r.timedOut
}

// Empty reports a payload with nothing in it, e.g. "{}" written before the
// extension filled it in.
func (r Result) Empty() bool {
	return !r.Success && r.Content == "" && r.Error == "" && r.TabID.IsZero() && r.ID == ""
}

// Err converts a failed result into an error for callers that prefer one.
func (r Result) Err() error {
	switch {
	case r.Success:
		return nil
	case r.timedOut:
		return ErrIPCTimeout
	case r.Error != "":
		return fmt.Errorf("%w: %s", ErrCommandFailed, r.Error)
	default:
		return ErrCommandFailed
	}
}
