// Package shell composes the browser shell: the tab registry, the
// rotating identity, the gated panels, the tool sessions, the download
// tracker, and the secure keyboard. Components never share mutable
// state; the controller owns panel lifecycles and fans work out.
package shell

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/obscuranet/ghostshell/internal/authgate"
	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/config"
	"github.com/obscuranet/ghostshell/internal/downloads"
	"github.com/obscuranet/ghostshell/internal/identity"
	"github.com/obscuranet/ghostshell/internal/keyboard"
	"github.com/obscuranet/ghostshell/internal/logging"
	"github.com/obscuranet/ghostshell/internal/monitoring"
	"github.com/obscuranet/ghostshell/internal/shared/id"
	"github.com/obscuranet/ghostshell/internal/tabs"
	"github.com/obscuranet/ghostshell/internal/tools"
)

// Panel names one of the openable panels.
type Panel string

const (
	PanelSettings  Panel = "settings"
	PanelLogs      Panel = "logs"
	PanelTools     Panel = "tools"
	PanelDownloads Panel = "downloads"
	PanelKeyboard  Panel = "keyboard"
)

// Controller is the top-level shell state.
type Controller struct {
	logger  *logging.Logger
	metrics *monitoring.Metrics

	commands *bridge.Commands

	Tabs      *tabs.Registry
	Navigator *tabs.Navigator
	Identity  *identity.Controller

	SettingsGate *authgate.Gate
	Settings     *authgate.SettingsStore
	LogsGate     *authgate.Gate
	Logs         *authgate.LogStore

	Tools     *tools.Manager
	Downloads *downloads.Tracker
	Keyboard  *keyboard.Machine

	mu   sync.Mutex
	open map[Panel]bool
}

// NewController wires the shell against one backend command set.
func NewController(cfg *config.Config, commands *bridge.Commands, metrics *monitoring.Metrics, logger *logging.Logger) *Controller {
	logger = logger.Named("shell")

	registry := tabs.NewRegistry(commands, logger)
	resolver := tabs.NewResolver(cfg.Navigation.SearchURL)

	settings := authgate.NewSettingsStore(commands, logger)
	logStore := authgate.NewLogStore(commands)

	c := &Controller{
		logger:    logger,
		metrics:   metrics,
		commands:  commands,
		Tabs:      registry,
		Navigator: tabs.NewNavigator(registry, resolver, commands, cfg.Navigation.SettleDelay, logger),
		Identity:  identity.NewController(commands, logger),
		Settings:  settings,
		Logs:      logStore,
		Tools:     tools.NewManager(commands, logger),
		Downloads: downloads.NewTracker(commands, cfg.Downloads.PollInterval, logger),
		open:      make(map[Panel]bool),
	}

	c.SettingsGate = authgate.NewGate(authgate.DomainSettings, commands, settings.Load, logger)
	c.LogsGate = authgate.NewGate(authgate.DomainLogs, commands, logStore.Load, logger)
	c.Keyboard = keyboard.NewMachine(commands, c.submitSecureText, logger)
	if metrics != nil {
		c.Downloads.SetPollHook(metrics.IncDownloadPolls)
	}
	return c
}

// Initialize fetches the starting identity. The tab registry already
// holds its blank tab; nothing else touches the backend until a panel
// opens.
func (c *Controller) Initialize(ctx context.Context) error {
	if err := c.Identity.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize shell: %w", err)
	}
	c.trackTabs()
	return nil
}

// metrics is optional; headless setups run without a collector.
func (c *Controller) trackTabs() {
	if c.metrics != nil {
		c.metrics.SetTabsOpen(c.Tabs.Len())
	}
}

// RotateIdentity regenerates the fake identity triple.
func (c *Controller) RotateIdentity(ctx context.Context) error {
	if err := c.Identity.Regenerate(ctx); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.IncIdentityRotations()
	}
	return nil
}

// OpenTab adds a blank tab and activates it.
func (c *Controller) OpenTab() {
	c.Tabs.Open()
	c.trackTabs()
}

// CloseTab removes a tab, keeping the registry non-empty.
func (c *Controller) CloseTab(ctx context.Context, tabID string) {
	c.Tabs.Close(ctx, id.TabID(tabID))
	c.trackTabs()
}

// Navigate resolves input and navigates the given tab.
func (c *Controller) Navigate(ctx context.Context, tabID, input string) (string, error) {
	return c.Navigator.Navigate(ctx, id.TabID(tabID), input)
}

// Unlock attempts to open a gated panel, recording the outcome.
func (c *Controller) Unlock(ctx context.Context, panel Panel, password string) bool {
	gate, ok := c.gateFor(panel)
	if !ok {
		return false
	}
	granted := gate.Unlock(ctx, password)
	if c.metrics != nil {
		c.metrics.RecordUnlock(string(gate.Domain()), granted)
	}
	return granted
}

// OpenPanel starts a panel's lifecycle: the downloads poll loop, the
// keyboard layout load. Opening an already-open panel restarts that
// lifecycle.
func (c *Controller) OpenPanel(ctx context.Context, panel Panel) error {
	c.mu.Lock()
	c.open[panel] = true
	c.mu.Unlock()

	switch panel {
	case PanelDownloads:
		c.Downloads.OpenPanel()
	case PanelKeyboard:
		if err := c.Keyboard.Open(ctx); err != nil {
			return err
		}
	}
	c.logger.Debug("panel opened", zap.String("panel", string(panel)))
	return nil
}

// ClosePanel ends a panel's lifecycle: gated panels auto-lock, the
// downloads poll stops, decrypted logs are dropped.
func (c *Controller) ClosePanel(ctx context.Context, panel Panel) {
	c.mu.Lock()
	c.open[panel] = false
	c.mu.Unlock()

	switch panel {
	case PanelSettings:
		c.SettingsGate.HandlePanelClose(ctx)
	case PanelLogs:
		c.LogsGate.HandlePanelClose(ctx)
		c.Logs.Clear()
	case PanelDownloads:
		c.Downloads.ClosePanel()
	}
	c.logger.Debug("panel closed", zap.String("panel", string(panel)))
}

// PanelOpen reports whether a panel is currently open.
func (c *Controller) PanelOpen(panel Panel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open[panel]
}

// LiveLogs fetches the current live security event feed.
func (c *Controller) LiveLogs(ctx context.Context) ([]bridge.SecurityLog, error) {
	return c.commands.GetLiveLogs(ctx)
}

// RecordEvent appends one entry to the backend audit log.
func (c *Controller) RecordEvent(ctx context.Context, level, category, message string) error {
	return c.commands.AddLogEntry(ctx, level, category, message)
}

// CheckWhitelist asks the backend whether a domain bypasses blocking.
func (c *Controller) CheckWhitelist(ctx context.Context, domain string) (bool, error) {
	return c.commands.CheckWhitelist(ctx, domain)
}

func (c *Controller) gateFor(panel Panel) (*authgate.Gate, bool) {
	switch panel {
	case PanelSettings:
		return c.SettingsGate, true
	case PanelLogs:
		return c.LogsGate, true
	default:
		return nil, false
	}
}

// submitSecureText receives completed secure keyboard input. The
// buffer is navigation input for the active tab.
func (c *Controller) submitSecureText(text string) {
	if text == "" {
		return
	}
	active := c.Tabs.Active()
	if _, err := c.Navigator.Navigate(context.Background(), active.ID, text); err != nil {
		c.logger.Debug("secure input navigation failed", zap.Error(err))
	}
}

// Shutdown stops background work: the download poll and any live shell
// connection.
func (c *Controller) Shutdown(ctx context.Context) {
	c.Downloads.ClosePanel()
	c.Tools.Shell().Disconnect(ctx)
	c.SettingsGate.HandlePanelClose(ctx)
	c.LogsGate.HandlePanelClose(ctx)
}
