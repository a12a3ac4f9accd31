package authgate

import (
	"context"
	"fmt"
	"sync"

	"github.com/obscuranet/ghostshell/internal/bridge"
)

// LogsBridge is the subset of backend commands the log store needs.
type LogsBridge interface {
	GetEncryptedLogs(ctx context.Context) ([]bridge.LogEntry, error)
}

// LogStore mirrors the decrypted audit log for the logs panel. It is
// only populated behind the logs gate.
type LogStore struct {
	backend LogsBridge

	mu      sync.RWMutex
	entries []bridge.LogEntry
}

// NewLogStore creates an empty log store.
func NewLogStore(backend LogsBridge) *LogStore {
	return &LogStore{backend: backend}
}

// Load replaces the mirror from the backend. This is the logs domain's
// post-unlock data-load sequence.
func (s *LogStore) Load(ctx context.Context) error {
	entries, err := s.backend.GetEncryptedLogs(ctx)
	if err != nil {
		return fmt.Errorf("load audit log: %w", err)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Clear drops the mirror; called when the panel closes so decrypted
// entries do not outlive the unlock.
func (s *LogStore) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

// Entries returns a snapshot of the decrypted audit log.
func (s *LogStore) Entries() []bridge.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]bridge.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
