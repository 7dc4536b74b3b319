package extension

import (
	"encoding/json"
	"sync"

	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"
)

var _ output.MailboxPort = (*memMailbox)(nil)

// memMailbox keeps both mailboxes in memory. onAppend plays the extension:
// it runs after each append, outside the lock.
type memMailbox struct {
	mu        sync.Mutex
	queue     []entity.Command
	result    []byte
	hasResult bool
	reads     int
	clears    int
	appendErr error
	onAppend  func(cmd entity.Command)
	// afterRemove runs after the result slot is emptied, outside the lock.
	afterRemove func()
	changes     chan struct{}
}

func newMemMailbox() *memMailbox {
	return &memMailbox{}
}

func (m *memMailbox) Append(cmd entity.Command) error {
	m.mu.Lock()
	if m.appendErr != nil {
		err := m.appendErr
		m.mu.Unlock()
		return err
	}
	m.queue = append(m.queue, cmd)
	hook := m.onAppend
	m.mu.Unlock()

	if hook != nil {
		hook(cmd)
	}
	return nil
}

func (m *memMailbox) Pending() ([]entity.Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Command(nil), m.queue...), nil
}

func (m *memMailbox) ResultReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasResult
}

func (m *memMailbox) ReadResult() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if !m.hasResult {
		return nil, entity.ErrTransportIO
	}
	return append([]byte(nil), m.result...), nil
}

func (m *memMailbox) RemoveResult() error {
	m.mu.Lock()
	m.result = nil
	m.hasResult = false
	hook := m.afterRemove
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (m *memMailbox) ClearResult() error {
	m.mu.Lock()
	m.clears++
	m.mu.Unlock()
	return m.RemoveResult()
}

func (m *memMailbox) Changes() <-chan struct{} {
	return m.changes
}

func (m *memMailbox) Close() error {
	return nil
}

func (m *memMailbox) writeResult(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	m.writeRaw(data)
}

func (m *memMailbox) writeRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = data
	m.hasResult = true
}

func (m *memMailbox) commands() []entity.Command {
	cmds, _ := m.Pending()
	return cmds
}
