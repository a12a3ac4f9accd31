package bridge

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned when the breaker rejects a call before
	// it reaches the backend.
	ErrUnavailable = errors.New("bridge unavailable")
)

// Invoker dispatches one command to the privacy backend.
type Invoker interface {
	Invoke(ctx context.Context, command string, params map[string]interface{}) ([]byte, error)
}

// CommandError is a backend rejection of a specific command.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s rejected: %s", e.Command, e.Message)
}

// envelope is the backend response wrapper for every command.
type envelope struct {
	Success bool   `json:"success"`
	Data    rawMsg `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// rawMsg defers decoding of the data payload to the typed wrappers.
type rawMsg []byte

func (m *rawMsg) UnmarshalJSON(data []byte) error {
	*m = append((*m)[:0], data...)
	return nil
}

func (m rawMsg) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}
