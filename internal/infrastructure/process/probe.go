// Package process answers whether a named program is currently running.
package process

import (
	"context"
	"fmt"
	"strings"

	"browser-bridge/internal/application/port/output"

	ps "github.com/shirou/gopsutil/v4/process"
)

var _ output.ProcessProbePort = (*Probe)(nil)

// Probe matches process names case-insensitively by substring, so "firefox"
// also finds "firefox-bin" and "firefox.exe".
type Probe struct {
	logger output.LoggerPort
	// list is swapped out in tests.
	list func(ctx context.Context) ([]string, error)
}

func NewProbe(logger output.LoggerPort) *Probe {
	return &Probe{
		logger: logger.WithField("component", "process"),
		list:   listNames,
	}
}

func (p *Probe) IsRunning(ctx context.Context, name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return false
	}

	names, err := p.list(ctx)
	if err != nil {
		p.logger.Warn("Process listing failed", "error", err)
		return false
	}

	for _, n := range names {
		if strings.Contains(strings.ToLower(n), needle) {
			return true
		}
	}
	return false
}

// listNames returns the names of all visible processes. Processes that exit
// or deny access while being listed are skipped.
func listNames(ctx context.Context) ([]string, error) {
	procs, err := ps.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	names := make([]string, 0, len(procs))
	for _, proc := range procs {
		name, err := proc.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
