// Package tools drives the diagnostic tool panels: a remote shell
// terminal, one-shot network diagnostics, and an HTTP probe. Exactly
// one tool is selected at a time but switching away never discards
// another tool's session or results.
package tools

import (
	"sync"

	"github.com/obscuranet/ghostshell/internal/logging"
)

// ToolKind names one of the selectable tool panels.
type ToolKind string

const (
	ToolShell ToolKind = "shell"
	ToolDiag  ToolKind = "diagnostics"
	ToolProbe ToolKind = "probe"
)

// ManagerBridge is everything the tool panels need from the backend.
type ManagerBridge interface {
	ShellBridge
	DiagBridge
	ProbeBridge
}

// Manager owns the three tool sessions and the active-tool selector.
type Manager struct {
	shell *ShellSession
	diag  *Diagnostics
	probe *Probe

	mu     sync.RWMutex
	active ToolKind
}

// NewManager creates the tool sessions with the shell selected.
func NewManager(backend ManagerBridge, logger *logging.Logger) *Manager {
	return &Manager{
		shell:  NewShellSession(backend, logger),
		diag:   NewDiagnostics(backend, logger),
		probe:  NewProbe(backend, logger),
		active: ToolShell,
	}
}

// Select switches the active tool. The previous tool's state survives
// the switch.
func (m *Manager) Select(tool ToolKind) {
	m.mu.Lock()
	m.active = tool
	m.mu.Unlock()
}

// Active returns the currently selected tool.
func (m *Manager) Active() ToolKind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Shell returns the remote shell session.
func (m *Manager) Shell() *ShellSession { return m.shell }

// Diagnostics returns the network diagnostics panel.
func (m *Manager) Diagnostics() *Diagnostics { return m.diag }

// Probe returns the HTTP probe.
func (m *Manager) Probe() *Probe { return m.probe }
