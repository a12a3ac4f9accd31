package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/logging"
)

type mockBackend struct {
	mu          sync.Mutex
	fingerprint bridge.Fingerprint
	geolocation bridge.Geolocation
	userAgent   bridge.UserAgent
	regenerated bridge.Identity
	fpErr       error
	geoErr      error
	uaErr       error
	regenErr    error
}

func (m *mockBackend) GetFakeFingerprint(ctx context.Context) (*bridge.Fingerprint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fpErr != nil {
		return nil, m.fpErr
	}
	fp := m.fingerprint
	return &fp, nil
}

func (m *mockBackend) GetFakeGeolocation(ctx context.Context) (*bridge.Geolocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.geoErr != nil {
		return nil, m.geoErr
	}
	geo := m.geolocation
	return &geo, nil
}

func (m *mockBackend) GetFakeUserAgent(ctx context.Context) (*bridge.UserAgent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uaErr != nil {
		return nil, m.uaErr
	}
	ua := m.userAgent
	return &ua, nil
}

func (m *mockBackend) RegenerateIdentity(ctx context.Context) (*bridge.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.regenErr != nil {
		return nil, m.regenErr
	}
	identity := m.regenerated
	return &identity, nil
}

func newBackend() *mockBackend {
	return &mockBackend{
		fingerprint: bridge.Fingerprint{SessionID: "sess-old", WebGLVendor: "Apple Inc."},
		geolocation: bridge.Geolocation{City: "Vienna", CountryCode: "AT"},
		userAgent:   bridge.UserAgent{BrowserName: "Firefox", Full: "Mozilla/5.0"},
		regenerated: bridge.Identity{Fingerprint: bridge.Fingerprint{SessionID: "sess-new"}},
	}
}

func TestInitializeAdoptsSessionID(t *testing.T) {
	backend := newBackend()
	c := NewController(backend, logging.NewNop())

	require.NoError(t, c.Initialize(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, "sess-old", snap.ID)
	assert.Equal(t, "Vienna", snap.Geolocation.City)
	assert.Equal(t, "Firefox", snap.UserAgent.BrowserName)
}

func TestInitializePartialFailureAppliesNothing(t *testing.T) {
	backend := newBackend()
	backend.geoErr = errors.New("geo backend down")
	c := NewController(backend, logging.NewNop())

	require.Error(t, c.Initialize(context.Background()))

	snap := c.Snapshot()
	assert.Empty(t, snap.ID)
	assert.Empty(t, snap.Fingerprint.SessionID, "no partial overwrite on group failure")
	assert.Empty(t, snap.UserAgent.BrowserName)
}

func TestRegenerateReplacesTriple(t *testing.T) {
	backend := newBackend()
	c := NewController(backend, logging.NewNop())
	require.NoError(t, c.Initialize(context.Background()))

	backend.fingerprint = bridge.Fingerprint{SessionID: "sess-new", WebGLVendor: "Mesa/X.org"}
	backend.geolocation = bridge.Geolocation{City: "Tokyo", CountryCode: "JP"}

	require.NoError(t, c.Regenerate(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, "sess-new", snap.ID)
	assert.Equal(t, "Tokyo", snap.Geolocation.City)
	assert.Equal(t, "Mesa/X.org", snap.Fingerprint.WebGLVendor)
}

func TestRegenerateDetailFailureKeepsPriorDetails(t *testing.T) {
	backend := newBackend()
	c := NewController(backend, logging.NewNop())
	require.NoError(t, c.Initialize(context.Background()))

	// The regenerate call itself succeeds; the detail refresh fails.
	backend.uaErr = errors.New("ua backend down")

	require.Error(t, c.Regenerate(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, "sess-new", snap.ID, "id updates from the regenerate call itself")
	assert.Equal(t, "sess-old", snap.Fingerprint.SessionID, "prior fingerprint retained")
	assert.Equal(t, "Vienna", snap.Geolocation.City, "prior geolocation retained")
	assert.Equal(t, "Firefox", snap.UserAgent.BrowserName, "prior user agent retained")
}

func TestRegenerateCallFailureChangesNothing(t *testing.T) {
	backend := newBackend()
	c := NewController(backend, logging.NewNop())
	require.NoError(t, c.Initialize(context.Background()))

	backend.regenErr = errors.New("backend down")
	require.Error(t, c.Regenerate(context.Background()))

	assert.Equal(t, "sess-old", c.ID())
}
