package bridge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func TestBreakerClosedAllowsCalls(t *testing.T) {
	b := NewBreaker(BreakerSettings{})

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(BreakerSettings{
		ReadyToTrip: func(counts BreakerCounts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	for i := 0; i < 3; i++ {
		err := b.Do(func() error { return errBackend })
		assert.ErrorIs(t, err, errBackend)
	}

	assert.Equal(t, StateOpen, b.State())

	// Open breaker rejects without invoking.
	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, called)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := NewBreaker(BreakerSettings{
		MaxRequests: 1,
		Timeout:     10 * time.Millisecond,
		ReadyToTrip: func(counts BreakerCounts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	})

	require.Error(t, b.Do(func() error { return errBackend }))
	require.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, b.State())

	// One success in half-open closes the circuit again.
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker(BreakerSettings{
		MaxRequests: 1,
		Timeout:     10 * time.Millisecond,
		ReadyToTrip: func(counts BreakerCounts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	})

	require.Error(t, b.Do(func() error { return errBackend }))
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	require.Error(t, b.Do(func() error { return errBackend }))
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerStateChangeCallback(t *testing.T) {
	var transitions []string
	b := NewBreaker(BreakerSettings{
		ReadyToTrip: func(counts BreakerCounts) bool {
			return counts.ConsecutiveFailures >= 1
		},
		OnStateChange: func(from, to BreakerState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	require.Error(t, b.Do(func() error { return errBackend }))
	assert.Equal(t, []string{"closed->open"}, transitions)
}
