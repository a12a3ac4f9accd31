package authgate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscuranet/ghostshell/internal/logging"
)

type mockAuthBridge struct {
	settingsPassword string
	logsPassword     string
	unlockErr        error
	settingsLocks    int
	logsLocks        int
	lockErr          error
}

func (m *mockAuthBridge) UnlockSettings(ctx context.Context, password string) (bool, error) {
	if m.unlockErr != nil {
		return false, m.unlockErr
	}
	return password == m.settingsPassword, nil
}

func (m *mockAuthBridge) LockSettings(ctx context.Context) error {
	m.settingsLocks++
	return m.lockErr
}

func (m *mockAuthBridge) UnlockLogs(ctx context.Context, password string) (bool, error) {
	if m.unlockErr != nil {
		return false, m.unlockErr
	}
	return password == m.logsPassword, nil
}

func (m *mockAuthBridge) LockLogs(ctx context.Context) error {
	m.logsLocks++
	return m.lockErr
}

func newAuthBridge() *mockAuthBridge {
	return &mockAuthBridge{settingsPassword: "settings-pw", logsPassword: "logs-pw"}
}

func TestUnlockSuccessRunsLoader(t *testing.T) {
	backend := newAuthBridge()
	loaded := false
	g := NewGate(DomainSettings, backend, func(ctx context.Context) error {
		loaded = true
		return nil
	}, logging.NewNop())

	require.True(t, g.Unlock(context.Background(), "settings-pw"))
	assert.True(t, g.Unlocked())
	assert.True(t, loaded)
	assert.Empty(t, g.LastError())
}

func TestUnlockWrongPassword(t *testing.T) {
	g := NewGate(DomainSettings, newAuthBridge(), nil, logging.NewNop())

	assert.False(t, g.Unlock(context.Background(), "wrong"))
	assert.False(t, g.Unlocked())
	assert.Equal(t, "incorrect password", g.LastError())
}

func TestUnlockErrorClearsOnNextAttempt(t *testing.T) {
	backend := newAuthBridge()
	g := NewGate(DomainSettings, backend, nil, logging.NewNop())
	ctx := context.Background()

	require.False(t, g.Unlock(ctx, "wrong"))
	require.NotEmpty(t, g.LastError())

	require.True(t, g.Unlock(ctx, "settings-pw"))
	assert.Empty(t, g.LastError())
}

func TestEmptyPasswordIgnoredBeforeDispatch(t *testing.T) {
	backend := newAuthBridge()
	backend.unlockErr = errors.New("should never be called")
	g := NewGate(DomainSettings, backend, nil, logging.NewNop())

	assert.False(t, g.Unlock(context.Background(), ""))
	assert.Empty(t, g.LastError(), "blank input never reaches the backend")
}

func TestBackendRejectionSurfacedInline(t *testing.T) {
	backend := newAuthBridge()
	backend.unlockErr = errors.New("bridge unavailable")
	g := NewGate(DomainLogs, backend, nil, logging.NewNop())

	assert.False(t, g.Unlock(context.Background(), "logs-pw"))
	assert.Contains(t, g.LastError(), "bridge unavailable")
}

func TestDomainsAreIndependent(t *testing.T) {
	backend := newAuthBridge()
	settings := NewGate(DomainSettings, backend, nil, logging.NewNop())
	logs := NewGate(DomainLogs, backend, nil, logging.NewNop())
	ctx := context.Background()

	require.True(t, settings.Unlock(ctx, "settings-pw"))
	assert.False(t, logs.Unlocked(), "unlocking settings never unlocks logs")

	require.True(t, logs.Unlock(ctx, "logs-pw"))
	settings.Lock(ctx)
	assert.False(t, settings.Unlocked())
	assert.True(t, logs.Unlocked(), "locking settings never locks logs")
}

func TestPanelCloseAutoLocks(t *testing.T) {
	backend := newAuthBridge()
	g := NewGate(DomainLogs, backend, nil, logging.NewNop())
	ctx := context.Background()

	require.True(t, g.Unlock(ctx, "logs-pw"))
	g.HandlePanelClose(ctx)

	assert.False(t, g.Unlocked())
	assert.Equal(t, 1, backend.logsLocks, "backend notified of the invalidated unlock")

	// Closing an already-locked panel does not re-notify.
	g.HandlePanelClose(ctx)
	assert.Equal(t, 1, backend.logsLocks)
}

func TestLockSwallowsBackendFailure(t *testing.T) {
	backend := newAuthBridge()
	backend.lockErr = errors.New("backend gone")
	g := NewGate(DomainSettings, backend, nil, logging.NewNop())
	ctx := context.Background()

	require.True(t, g.Unlock(ctx, "settings-pw"))
	g.Lock(ctx)
	assert.False(t, g.Unlocked(), "local lock always wins")
}

func TestLoaderFailureKeepsUnlockButSurfacesError(t *testing.T) {
	backend := newAuthBridge()
	g := NewGate(DomainSettings, backend, func(ctx context.Context) error {
		return errors.New("settings fetch failed")
	}, logging.NewNop())

	require.True(t, g.Unlock(context.Background(), "settings-pw"))
	assert.True(t, g.Unlocked())
	assert.Contains(t, g.LastError(), "settings fetch failed")
}
