package entity

import "errors"

var (
	ErrTransportIO     = errors.New("mailbox transport i/o failed")
	ErrIPCTimeout      = errors.New("timeout waiting for browser response")
	ErrCommandFailed   = errors.New("browser command failed")
	ErrInvalidAction   = errors.New("invalid browser action")
	ErrContentTooShort = errors.New("content too short")
	ErrBotDetected     = errors.New("blocked by bot detection")
	ErrNetwork         = errors.New("network fetch failed")
	ErrSynthesis       = errors.New("answer synthesis failed")
	ErrNoContent       = errors.New("no usable content")
	ErrEmptyQuery      = errors.New("empty research query")
)
