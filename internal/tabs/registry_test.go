package tabs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscuranet/ghostshell/internal/logging"
)

type mockBridge struct {
	mu        sync.Mutex
	created   []string
	closed    []string
	createErr error
	closeErr  error
}

func (m *mockBridge) CreateBrowserTab(ctx context.Context, tabID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, tabID)
	return m.createErr
}

func (m *mockBridge) CloseBrowserTab(ctx context.Context, tabID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, tabID)
	return m.closeErr
}

func newTestRegistry(t *testing.T) (*Registry, *mockBridge) {
	t.Helper()
	bridge := &mockBridge{}
	return NewRegistry(bridge, logging.NewNop()), bridge
}

func TestRegistryStartsWithOneBlankTab(t *testing.T) {
	r, _ := newTestRegistry(t)

	require.Equal(t, 1, r.Len())
	active := r.Active()
	assert.Equal(t, "New Tab", active.Title)
	assert.Empty(t, active.URL)
	assert.True(t, active.IsSecure)
	assert.False(t, active.IsLoading)
}

func TestOpenActivatesNewTab(t *testing.T) {
	r, _ := newTestRegistry(t)

	tabID := r.Open()
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, tabID, r.Active().ID)
}

func TestRegistryNeverEmpty(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	first := r.Active().ID
	r.Close(ctx, first)

	require.Equal(t, 1, r.Len())
	assert.NotEqual(t, first, r.Active().ID, "closing the last tab must synthesize a fresh one")
}

func TestCloseActiveTabClampsIndex(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	// Three tabs; last one active.
	r.Open()
	last := r.Open()
	require.Equal(t, 2, r.ActiveIndex())

	// Closing the active last tab clamps to the new last index.
	r.Close(ctx, last)
	assert.Equal(t, 1, r.ActiveIndex())

	// Closing the active middle tab keeps the same index.
	mid := r.Active().ID
	r.Close(ctx, mid)
	assert.Equal(t, 1, r.ActiveIndex())
	assert.Equal(t, 2, r.Len())
}

func TestCloseBeforeActiveShiftsIndex(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	first := r.Active().ID
	r.Open()
	activeID := r.Open()

	r.Close(ctx, first)
	assert.Equal(t, activeID, r.Active().ID, "active tab must survive closing an earlier tab")
}

func TestCloseSwallowsBackendFailure(t *testing.T) {
	bridge := &mockBridge{closeErr: errors.New("webview gone")}
	r := NewRegistry(bridge, logging.NewNop())
	ctx := context.Background()

	tabID := r.Open()
	r.Close(ctx, tabID)

	assert.Equal(t, 1, r.Len(), "local removal must not block on backend failure")
	assert.Equal(t, []string{tabID.String()}, bridge.closed)
}

func TestCloseUnknownIDIsNoop(t *testing.T) {
	r, _ := newTestRegistry(t)
	before := r.List()

	r.Close(context.Background(), "tab_does_not_exist")
	assert.Equal(t, before, r.List())
}

func TestApplyMergesPartial(t *testing.T) {
	r, _ := newTestRegistry(t)
	tabID := r.Active().ID

	title := "DuckDuckGo"
	loading := true
	r.Apply(tabID, Update{Title: &title, IsLoading: &loading})

	tab, ok := r.Get(tabID)
	require.True(t, ok)
	assert.Equal(t, "DuckDuckGo", tab.Title)
	assert.True(t, tab.IsLoading)
	assert.True(t, tab.IsSecure, "untouched fields keep their values")
}

func TestApplyUnknownIDIsNoop(t *testing.T) {
	r, _ := newTestRegistry(t)

	title := "ghost"
	r.Apply("tab_missing", Update{Title: &title})
	assert.Equal(t, "New Tab", r.Active().Title)
}

func TestRegistryInvariantUnderChurn(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		r.Open()
	}
	for i := 0; i < 40; i++ {
		r.Close(ctx, r.Active().ID)
		require.GreaterOrEqual(t, r.Len(), 1)
		require.Less(t, r.ActiveIndex(), r.Len())
	}
}
