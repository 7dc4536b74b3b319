// Package mailbox implements the file-backed exchange with the browser
// extension's native-messaging host: a JSON array of pending commands and a
// single JSON result slot, both living in a shared temporary directory.
package mailbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultCommandFile = "zyron_firefox_commands.json"
	DefaultResultFile  = "zyron_nav_result.json"
)

var _ output.MailboxPort = (*FileMailbox)(nil)

type Config struct {
	Dir         string
	CommandFile string
	ResultFile  string
	// Watch enables fsnotify wake-ups for the result slot.
	Watch bool
}

func DefaultConfig() Config {
	return Config{
		Dir:         os.TempDir(),
		CommandFile: DefaultCommandFile,
		ResultFile:  DefaultResultFile,
		Watch:       true,
	}
}

type FileMailbox struct {
	mu          sync.Mutex
	dir         string
	commandPath string
	resultPath  string
	resultName  string
	logger      output.LoggerPort

	watcher   *fsnotify.Watcher
	changes   chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func New(cfg Config, logger output.LoggerPort) (*FileMailbox, error) {
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
	if cfg.CommandFile == "" {
		cfg.CommandFile = DefaultCommandFile
	}
	if cfg.ResultFile == "" {
		cfg.ResultFile = DefaultResultFile
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create mailbox dir: %w: %w", entity.ErrTransportIO, err)
	}

	m := &FileMailbox{
		dir:         cfg.Dir,
		commandPath: filepath.Join(cfg.Dir, cfg.CommandFile),
		resultPath:  filepath.Join(cfg.Dir, cfg.ResultFile),
		resultName:  cfg.ResultFile,
		logger:      logger.WithField("component", "mailbox"),
		done:        make(chan struct{}),
	}

	if cfg.Watch {
		if err := m.startWatcher(); err != nil {
			// Polling still works without the watcher.
			m.logger.Warn("Result watcher unavailable", "dir", cfg.Dir, "error", err)
		}
	}

	return m, nil
}

func (m *FileMailbox) CommandPath() string { return m.commandPath }
func (m *FileMailbox) ResultPath() string  { return m.resultPath }

func (m *FileMailbox) Append(cmd entity.Command) error {
	encoded, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode command %s: %w", cmd.Action, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.readQueue()
	queue = append(queue, encoded)

	data, err := json.Marshal(queue)
	if err != nil {
		return fmt.Errorf("encode command queue: %w", err)
	}

	if err := writeAtomic(m.commandPath, data); err != nil {
		m.logger.Error("Failed to queue browser command", "action", cmd.Action, "error", err)
		return fmt.Errorf("write command queue: %w: %w", entity.ErrTransportIO, err)
	}

	m.logger.Debug("Command queued", "action", cmd.Action, "id", cmd.ID, "queueLen", len(queue))
	return nil
}

func (m *FileMailbox) Pending() ([]entity.Command, error) {
	m.mu.Lock()
	queue := m.readQueue()
	m.mu.Unlock()

	commands := make([]entity.Command, 0, len(queue))
	for _, raw := range queue {
		var cmd entity.Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			m.logger.Debug("Skipping malformed queue entry", "error", err)
			continue
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

// readQueue returns the raw queue entries. Missing, unreadable or non-list
// content counts as an empty queue. Entries are kept raw so that anything
// another writer put there survives our rewrite.
func (m *FileMailbox) readQueue() []json.RawMessage {
	data, err := os.ReadFile(m.commandPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("Command queue unreadable, treating as empty", "error", err)
		}
		return nil
	}

	var queue []json.RawMessage
	if err := json.Unmarshal(data, &queue); err != nil {
		m.logger.Debug("Command queue is not a list, treating as empty", "error", err)
		return nil
	}
	return queue
}

func (m *FileMailbox) ResultReady() bool {
	_, err := os.Stat(m.resultPath)
	return err == nil
}

func (m *FileMailbox) ReadResult() ([]byte, error) {
	data, err := os.ReadFile(m.resultPath)
	if err != nil {
		return nil, fmt.Errorf("read result: %w: %w", entity.ErrTransportIO, err)
	}
	return data, nil
}

func (m *FileMailbox) RemoveResult() error {
	if err := os.Remove(m.resultPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove result: %w: %w", entity.ErrTransportIO, err)
	}
	return nil
}

// ClearResult drops a result left over from an earlier exchange. It is a
// no-op on an empty slot.
func (m *FileMailbox) ClearResult() error {
	return m.RemoveResult()
}

func (m *FileMailbox) Changes() <-chan struct{} {
	if m.changes == nil {
		return nil
	}
	return m.changes
}

func (m *FileMailbox) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.done)
		if m.watcher != nil {
			err = m.watcher.Close()
		}
		m.wg.Wait()
	})
	return err
}

func (m *FileMailbox) startWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(m.dir); err != nil {
		_ = w.Close()
		return err
	}

	m.watcher = w
	m.changes = make(chan struct{}, 1)

	m.wg.Add(1)
	go m.watch()
	return nil
}

func (m *FileMailbox) watch() {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != m.resultName {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			select {
			case m.changes <- struct{}{}:
			default:
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("Result watcher error", "error", err)
		}
	}
}

// writeAtomic replaces path with data via a temp file in the same directory,
// so a reader never observes a half-written queue.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
