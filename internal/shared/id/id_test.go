package id

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewRequestID().String(), "req_"))
	assert.True(t, strings.HasPrefix(NewRunID().String(), "run_"))
	assert.True(t, strings.HasPrefix(NewTabID().String(), "tab_"))
}

func TestUniqueness(t *testing.T) {
	seen := make(map[TabID]bool)
	for i := 0; i < 1000; i++ {
		id := NewTabID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestConcurrentGeneration(t *testing.T) {
	g := NewGenerator()

	var wg sync.WaitGroup
	results := make(chan string, 100)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				results <- g.GenerateWithPrefix("req")
			}
		}()
	}

	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for id := range results {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}

func TestIsValid(t *testing.T) {
	raw := Default().Generate().String()
	assert.True(t, IsValid(raw))
	assert.True(t, IsValid(NewTabID().String()))
	assert.True(t, IsValid(NewRunID().String()))
	assert.False(t, IsValid("not-a-ulid"))
	assert.False(t, IsValid("tab_not-a-ulid"))
}
