package output

import "browser-bridge/internal/domain/entity"

// MailboxPort is the shared-storage exchange with the browser extension:
// an outbound command queue and a single inbound result slot.
type MailboxPort interface {
	// Append adds a command to the outbound queue atomically.
	Append(cmd entity.Command) error
	Pending() ([]entity.Command, error)

	ResultReady() bool
	ReadResult() ([]byte, error)
	RemoveResult() error
	ClearResult() error

	// Changes signals possible inbound activity. May be nil.
	Changes() <-chan struct{}

	Close() error
}
