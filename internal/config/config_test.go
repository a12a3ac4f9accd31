package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "7323", cfg.Server.Port)
	assert.Equal(t, "http://localhost:7324", cfg.Bridge.Endpoint)
	assert.Equal(t, 2*time.Second, cfg.Downloads.PollInterval)
	assert.Equal(t, 800*time.Millisecond, cfg.Navigation.SettleDelay)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BRIDGE_ENDPOINT", "http://localhost:1234")
	t.Setenv("DOWNLOAD_POLL_INTERVAL", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "http://localhost:1234", cfg.Bridge.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Downloads.PollInterval)
	// Unset variables fall back to struct defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ghostshell.toml")
	content := []byte("[server]\nport = \"8100\"\n\n[navigation]\nsearch_url = \"https://searx.local/?q=\"\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))

	assert.Equal(t, "8100", cfg.Server.Port)
	assert.Equal(t, "https://searx.local/?q=", cfg.Navigation.SearchURL)
	// Untouched sections keep their defaults.
	assert.Equal(t, "http://localhost:7324", cfg.Bridge.Endpoint)
}

func TestLoadFileOverridesEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Server.Port)

	path := filepath.Join(t.TempDir(), "ghostshell.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = \"8100\"\n"), 0o644))
	require.NoError(t, LoadFile(path, cfg))

	assert.Equal(t, "8100", cfg.Server.Port, "an explicit config file wins over the environment")
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	assert.NoError(t, LoadFile(filepath.Join(t.TempDir(), "absent.toml"), cfg))
}
