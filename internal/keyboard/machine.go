// Package keyboard drives the on-screen secure keyboard. Key
// semantics live backend-side; this machine tracks modifier state,
// the shuffle flag, and the local input buffer.
package keyboard

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/logging"
)

// Bridge is the subset of backend commands the keyboard needs.
type Bridge interface {
	GetVirtualKeyboardLayout(ctx context.Context, shuffled bool) (*bridge.KeyboardLayout, error)
	ProcessVirtualKey(ctx context.Context, key string, isShift, isCaps bool) (*bridge.KeyResult, error)
}

// Submit is called with the buffer contents when Enter resolves.
type Submit func(text string)

// Machine is the virtual keyboard state machine. The input buffer is
// local only; accepted characters are forwarded to the submit callback
// on Enter, never persisted backend-side.
type Machine struct {
	backend Bridge
	logger  *logging.Logger

	mu       sync.RWMutex
	layout   *bridge.KeyboardLayout
	shift    bool
	caps     bool
	shuffled bool
	buffer   []rune
	onSubmit Submit
}

// NewMachine creates a keyboard with no layout loaded.
func NewMachine(backend Bridge, onSubmit Submit, logger *logging.Logger) *Machine {
	return &Machine{
		backend:  backend,
		logger:   logger.Named("keyboard"),
		onSubmit: onSubmit,
	}
}

// Open loads a fresh layout for the current shuffle flag. Called when
// the keyboard panel opens.
func (m *Machine) Open(ctx context.Context) error {
	m.mu.RLock()
	shuffled := m.shuffled
	m.mu.RUnlock()
	return m.loadLayout(ctx, shuffled)
}

// SetShuffled toggles key shuffling and reloads the layout.
func (m *Machine) SetShuffled(ctx context.Context, shuffled bool) error {
	m.mu.Lock()
	m.shuffled = shuffled
	m.mu.Unlock()
	return m.loadLayout(ctx, shuffled)
}

func (m *Machine) loadLayout(ctx context.Context, shuffled bool) error {
	layout, err := m.backend.GetVirtualKeyboardLayout(ctx, shuffled)
	if err != nil {
		return fmt.Errorf("load keyboard layout: %w", err)
	}

	m.mu.Lock()
	m.layout = layout
	m.mu.Unlock()
	m.logger.Debug("keyboard layout loaded",
		zap.String("layout_id", layout.LayoutID),
		zap.Bool("shuffled", layout.IsShuffled))
	return nil
}

// Press sends one physical key with the current modifier state and
// applies the tagged outcome.
func (m *Machine) Press(ctx context.Context, key string) error {
	m.mu.RLock()
	shift, caps := m.shift, m.caps
	m.mu.RUnlock()

	result, err := m.backend.ProcessVirtualKey(ctx, key, shift, caps)
	if err != nil {
		return fmt.Errorf("process key: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch result.Type {
	case bridge.KeyOutcomeCharacter:
		m.buffer = append(m.buffer, []rune(result.Char)...)
		// one-shot shift releases after the character it modified
		m.shift = false
	case bridge.KeyOutcomeBackspace:
		if len(m.buffer) > 0 {
			m.buffer = m.buffer[:len(m.buffer)-1]
		}
	case bridge.KeyOutcomeEnter:
		text := string(m.buffer)
		m.buffer = m.buffer[:0]
		if m.onSubmit != nil {
			m.mu.Unlock()
			m.onSubmit(text)
			m.mu.Lock()
		}
	case bridge.KeyOutcomeTab:
		m.buffer = append(m.buffer, '\t')
	case bridge.KeyOutcomeModifier:
		switch result.Modifier {
		case "shift":
			m.shift = result.Active
		case "caps":
			m.caps = result.Active
		}
	default:
		m.logger.Warn("unknown key outcome", zap.String("type", result.Type))
	}
	return nil
}

// Clear drops the buffer without submitting.
func (m *Machine) Clear() {
	m.mu.Lock()
	m.buffer = m.buffer[:0]
	m.mu.Unlock()
}

// Buffer returns the current buffer contents.
func (m *Machine) Buffer() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return string(m.buffer)
}

// Layout returns the loaded layout, nil before Open.
func (m *Machine) Layout() *bridge.KeyboardLayout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layout
}

// Modifiers returns the shift and caps flags.
func (m *Machine) Modifiers() (shift, caps bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shift, m.caps
}

// Shuffled reports whether the shuffled layout is selected.
func (m *Machine) Shuffled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shuffled
}
