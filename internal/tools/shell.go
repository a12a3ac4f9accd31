package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/logging"
	"go.uber.org/zap"
)

// ShellState tracks the remote shell connection lifecycle.
type ShellState int

const (
	ShellDisconnected ShellState = iota
	ShellConnecting
	ShellConnected
)

func (s ShellState) String() string {
	switch s {
	case ShellConnecting:
		return "connecting"
	case ShellConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ShellBridge is the subset of backend commands the shell session needs.
type ShellBridge interface {
	SSHConnect(ctx context.Context, host string, port uint16, username, password string) (*bridge.SSHConnectionInfo, error)
	SSHExecute(ctx context.Context, connectionID, command string) (*bridge.SSHCommandResult, error)
	SSHDisconnect(ctx context.Context, connectionID string) error
}

// ShellSession drives one remote shell terminal. The output log is
// append-only; lines are never removed or reordered.
type ShellSession struct {
	backend ShellBridge
	logger  *logging.Logger

	mu           sync.RWMutex
	state        ShellState
	connectionID string
	host         string
	port         uint16
	username     string
	output       []string
}

// NewShellSession creates a disconnected shell session.
func NewShellSession(backend ShellBridge, logger *logging.Logger) *ShellSession {
	return &ShellSession{
		backend: backend,
		logger:  logger.Named("shell"),
	}
}

// Connect dials the remote host. The "connecting" line lands in the
// transcript before the backend call resolves so the terminal shows
// progress immediately.
func (s *ShellSession) Connect(ctx context.Context, host string, port uint16, username, password string) error {
	s.mu.Lock()
	if s.state != ShellDisconnected {
		s.mu.Unlock()
		return fmt.Errorf("shell session already %s", s.state)
	}
	s.state = ShellConnecting
	s.output = append(s.output, fmt.Sprintf("Connecting to %s@%s:%d...", username, host, port))
	s.mu.Unlock()

	info, err := s.backend.SSHConnect(ctx, host, port, username, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = ShellDisconnected
		s.output = append(s.output, fmt.Sprintf("Connection failed: %v", err))
		s.logger.Warn("ssh connect failed", zap.String("host", host), zap.Error(err))
		return err
	}

	s.state = ShellConnected
	s.connectionID = info.ID
	s.host = host
	s.port = port
	s.username = username
	s.output = append(s.output, fmt.Sprintf("Connected to %s@%s:%d", username, host, port))
	s.logger.Info("ssh connected",
		zap.String("host", host),
		zap.String("connection_id", info.ID))
	return nil
}

// Execute runs one command on the remote host. The command is echoed
// into the transcript before dispatch. Blank commands are ignored.
func (s *ShellSession) Execute(ctx context.Context, command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil
	}

	s.mu.Lock()
	if s.state != ShellConnected {
		s.mu.Unlock()
		return fmt.Errorf("shell session not connected")
	}
	connID := s.connectionID
	s.output = append(s.output, "$ "+command)
	s.mu.Unlock()

	result, err := s.backend.SSHExecute(ctx, connID, command)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.output = append(s.output, fmt.Sprintf("Error: %v", err))
		return err
	}
	if result.Stdout != "" {
		s.output = append(s.output, strings.Split(strings.TrimRight(result.Stdout, "\n"), "\n")...)
	}
	if result.Stderr != "" {
		s.output = append(s.output, strings.Split(strings.TrimRight(result.Stderr, "\n"), "\n")...)
	}
	return nil
}

// Disconnect tears down the connection and returns to Disconnected.
// The backend call failing does not keep the session alive.
func (s *ShellSession) Disconnect(ctx context.Context) {
	s.mu.Lock()
	if s.state != ShellConnected {
		s.mu.Unlock()
		return
	}
	connID := s.connectionID
	s.mu.Unlock()

	if err := s.backend.SSHDisconnect(ctx, connID); err != nil {
		s.logger.Debug("ssh disconnect notify failed", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ShellDisconnected
	s.connectionID = ""
	s.output = append(s.output, "Disconnected")
}

// State returns the current lifecycle state.
func (s *ShellSession) State() ShellState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ConnectionID returns the backend connection handle, empty when
// disconnected.
func (s *ShellSession) ConnectionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectionID
}

// Output returns a snapshot of the transcript.
func (s *ShellSession) Output() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.output))
	copy(out, s.output)
	return out
}
