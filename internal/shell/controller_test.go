package shell

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/config"
	"github.com/obscuranet/ghostshell/internal/logging"
)

// scriptedInvoker answers bridge commands with canned JSON payloads
// and records everything dispatched.
type scriptedInvoker struct {
	mu        sync.Mutex
	responses map[string]string
	calls     []string
}

func (s *scriptedInvoker) Invoke(ctx context.Context, command string, params map[string]interface{}) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, command)
	if body, ok := s.responses[command]; ok {
		return []byte(body), nil
	}
	return []byte(`null`), nil
}

func (s *scriptedInvoker) called(command string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == command {
			n++
		}
	}
	return n
}

func newTestController(inv *scriptedInvoker) *Controller {
	return newTestControllerWithConfig(inv, config.Default())
}

func newTestControllerWithConfig(inv *scriptedInvoker, cfg *config.Config) *Controller {
	if inv.responses == nil {
		inv.responses = map[string]string{}
	}
	base := map[string]string{
		"get_fake_fingerprint":        `{"sessionId":"sess-1","hardwareConcurrency":8,"deviceMemory":8}`,
		"get_fake_geolocation":        `{"latitude":52.52,"longitude":13.4,"city":"Berlin","country":"Germany","country_code":"DE"}`,
		"get_fake_user_agent":         `{"full":"Mozilla/5.0","platform":"Linux","browserName":"Firefox"}`,
		"unlock_settings":             `true`,
		"unlock_logs":                 `true`,
		"get_all_settings":            `{"tor_enabled":false,"https_only":true}`,
		"get_whitelist":               `["example.com"]`,
		"get_encrypted_logs":          `[{"timestamp":1,"level":"info","category":"net","message":"ok"}]`,
		"get_downloads":               `[]`,
		"get_all_detected_videos":     `[]`,
		"get_virtual_keyboard_layout": `{"rows":[],"layout_id":"standard","is_shuffled":false}`,
		"check_whitelist":             `true`,
	}
	for k, v := range base {
		if _, ok := inv.responses[k]; !ok {
			inv.responses[k] = v
		}
	}
	return NewController(cfg, bridge.NewCommands(inv), nil, logging.NewNop())
}

func TestInitializeAdoptsIdentity(t *testing.T) {
	inv := &scriptedInvoker{}
	c := newTestController(inv)

	require.NoError(t, c.Initialize(context.Background()))
	assert.Equal(t, "sess-1", c.Identity.ID())
	assert.Equal(t, 1, c.Tabs.Len())
}

func TestUnlockRoutesToGateAndLoads(t *testing.T) {
	inv := &scriptedInvoker{}
	c := newTestController(inv)
	ctx := context.Background()

	require.True(t, c.Unlock(ctx, PanelSettings, "hunter2"))
	assert.True(t, c.SettingsGate.Unlocked())
	assert.Equal(t, 1, inv.called("get_all_settings"))

	require.True(t, c.Unlock(ctx, PanelLogs, "hunter2"))
	require.Len(t, c.Logs.Entries(), 1)

	assert.False(t, c.Unlock(ctx, PanelDownloads, "x"), "only gated panels unlock")
}

func TestClosePanelLocksAndClears(t *testing.T) {
	inv := &scriptedInvoker{}
	c := newTestController(inv)
	ctx := context.Background()

	require.True(t, c.Unlock(ctx, PanelLogs, "pw"))
	c.ClosePanel(ctx, PanelLogs)

	assert.False(t, c.LogsGate.Unlocked())
	assert.Empty(t, c.Logs.Entries())
	assert.Equal(t, 1, inv.called("lock_logs"))
}

func TestDownloadsPanelLifecycle(t *testing.T) {
	inv := &scriptedInvoker{}
	c := newTestController(inv)
	ctx := context.Background()

	require.NoError(t, c.OpenPanel(ctx, PanelDownloads))
	assert.True(t, c.PanelOpen(PanelDownloads))
	assert.True(t, c.Downloads.Polling())

	c.ClosePanel(ctx, PanelDownloads)
	assert.False(t, c.PanelOpen(PanelDownloads))
	assert.False(t, c.Downloads.Polling())
}

func TestDownloadsPollSurvivesOpeningRequest(t *testing.T) {
	inv := &scriptedInvoker{}
	cfg := config.Default()
	cfg.Downloads.PollInterval = 10 * time.Millisecond
	c := newTestControllerWithConfig(inv, cfg)

	// An HTTP handler's request context dies when the response is
	// written; the panel's poll loop must not die with it.
	reqCtx, finishRequest := context.WithCancel(context.Background())
	require.NoError(t, c.OpenPanel(reqCtx, PanelDownloads))
	finishRequest()

	require.Eventually(t, func() bool { return inv.called("get_downloads") >= 3 }, time.Second, 5*time.Millisecond,
		"poll ticks continue after the opening request finished")
	assert.True(t, c.Downloads.Polling())

	c.ClosePanel(context.Background(), PanelDownloads)
	assert.False(t, c.Downloads.Polling())
}

func TestKeyboardPanelLoadsLayout(t *testing.T) {
	inv := &scriptedInvoker{}
	c := newTestController(inv)

	require.NoError(t, c.OpenPanel(context.Background(), PanelKeyboard))
	require.NotNil(t, c.Keyboard.Layout())
	assert.Equal(t, "standard", c.Keyboard.Layout().LayoutID)
}

func TestTabLifecycleThroughController(t *testing.T) {
	inv := &scriptedInvoker{}
	c := newTestController(inv)
	ctx := context.Background()

	c.OpenTab()
	require.Equal(t, 2, c.Tabs.Len())

	active := c.Tabs.Active()
	c.CloseTab(ctx, string(active.ID))
	assert.Equal(t, 1, c.Tabs.Len())
	assert.Equal(t, 1, inv.called("close_browser_tab"))
}

func TestCheckWhitelistDelegates(t *testing.T) {
	inv := &scriptedInvoker{}
	c := newTestController(inv)

	ok, err := c.CheckWhitelist(context.Background(), "example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecordEventDelegates(t *testing.T) {
	inv := &scriptedInvoker{}
	c := newTestController(inv)

	require.NoError(t, c.RecordEvent(context.Background(), "info", "shell", "session started"))
	assert.Equal(t, 1, inv.called("add_log_entry"))
}
