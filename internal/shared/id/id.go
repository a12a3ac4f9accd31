// Package id provides centralized ID generation for the shell.
//
// ULIDs are used for all locally generated identifiers: they are
// lexicographically sortable, which keeps request logs and diagnostic
// runs readable in time order, and the typed wrappers prevent one kind
// of ID from being passed where another is expected. IDs minted by the
// backend (SSH connection ids, download ids, keyboard layout ids) are
// carried as plain strings in the bridge types.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID correlates one bridge round-trip in logs.
type RequestID string

// RunID identifies a single diagnostic run (ping, port scan, DNS lookup).
type RunID string

// TabID identifies a browsing tab for its lifetime.
type TabID string

const (
	requestPrefix = "req"
	runPrefix     = "run"
	tabPrefix     = "tab"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand entropy.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy
// source, useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewRequestID generates a bridge request ID.
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(requestPrefix))
}

// NewRunID generates a diagnostic run ID.
func NewRunID() RunID {
	return RunID(Default().GenerateWithPrefix(runPrefix))
}

// NewTabID generates a tab ID.
func NewTabID() TabID {
	return TabID(Default().GenerateWithPrefix(tabPrefix))
}

func (id RequestID) String() string { return string(id) }
func (id RunID) String() string     { return string(id) }
func (id TabID) String() string     { return string(id) }

// IsValid checks if an ID string is a valid ULID, with or without a
// type prefix such as "tab_" or "run_".
func IsValid(id string) bool {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	_, err := ulid.Parse(id)
	return err == nil
}
