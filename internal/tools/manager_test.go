package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscuranet/ghostshell/internal/logging"
)

type mockToolBridge struct {
	mockShellBridge
	mockDiagBridge
	mockProbeBridge
}

func TestManagerSwitchPreservesState(t *testing.T) {
	backend := &mockToolBridge{}
	m := NewManager(backend, logging.NewNop())
	ctx := context.Background()

	assert.Equal(t, ToolShell, m.Active())

	require.NoError(t, m.Shell().Connect(ctx, "bastion", 22, "op", "pw"))
	require.NoError(t, m.Diagnostics().Ping(ctx, "example.com", 3))

	m.Select(ToolProbe)
	assert.Equal(t, ToolProbe, m.Active())

	assert.Equal(t, ShellConnected, m.Shell().State(), "shell survives tool switch")
	assert.NotNil(t, m.Diagnostics().Result(DiagPing), "diag results survive tool switch")

	m.Select(ToolShell)
	assert.Len(t, m.Shell().Output(), 2)
}
