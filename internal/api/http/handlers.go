package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/obscuranet/ghostshell/internal/authgate"
	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/shared/id"
	"github.com/obscuranet/ghostshell/internal/shell"
	"github.com/obscuranet/ghostshell/internal/tools"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	shell  *shell.Controller
	bridge *bridge.Client
}

// NewHandlers creates a new handler set
func NewHandlers(ctrl *shell.Controller, client *bridge.Client) *Handlers {
	return &Handlers{
		shell:  ctrl,
		bridge: client,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "ghostshell",
		"version": "0.3.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	breaker := "unknown"
	if h.bridge != nil {
		breaker = h.bridge.BreakerState().String()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"identity": gin.H{"session_id": h.shell.Identity.ID()},
		"tabs":     gin.H{"open": h.shell.Tabs.Len()},
		"bridge":   gin.H{"breaker": breaker},
	})
}

// --- Tabs ---

// ListTabs lists all tabs and the active index
func (h *Handlers) ListTabs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tabs":         h.shell.Tabs.List(),
		"active_index": h.shell.Tabs.ActiveIndex(),
	})
}

// OpenTab adds a blank tab
func (h *Handlers) OpenTab(c *gin.Context) {
	h.shell.OpenTab()
	c.JSON(http.StatusOK, gin.H{
		"active": h.shell.Tabs.Active(),
	})
}

// CloseTab removes a tab
func (h *Handlers) CloseTab(c *gin.Context) {
	tabID := c.Param("id")
	if !id.IsValid(tabID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed tab id"})
		return
	}
	h.shell.CloseTab(c.Request.Context(), tabID)
	c.JSON(http.StatusOK, gin.H{
		"tabs":         h.shell.Tabs.List(),
		"active_index": h.shell.Tabs.ActiveIndex(),
	})
}

// Navigate resolves input and navigates a tab
func (h *Handlers) Navigate(c *gin.Context) {
	tabID := c.Param("id")
	if !id.IsValid(tabID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed tab id"})
		return
	}

	var req struct {
		Input string `json:"input" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.shell.Navigate(c.Request.Context(), tabID, req.Input)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "url": url})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// --- Identity ---

// GetIdentity returns the active identity triple
func (h *Handlers) GetIdentity(c *gin.Context) {
	c.JSON(http.StatusOK, h.shell.Identity.Snapshot())
}

// RotateIdentity regenerates the identity triple
func (h *Handlers) RotateIdentity(c *gin.Context) {
	if err := h.shell.RotateIdentity(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.shell.Identity.Snapshot())
}

// --- Panels ---

func parsePanel(name string) (shell.Panel, bool) {
	switch shell.Panel(name) {
	case shell.PanelSettings, shell.PanelLogs, shell.PanelTools,
		shell.PanelDownloads, shell.PanelKeyboard:
		return shell.Panel(name), true
	}
	return "", false
}

// OpenPanel starts a panel lifecycle
func (h *Handlers) OpenPanel(c *gin.Context) {
	panel, ok := parsePanel(c.Param("panel"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown panel"})
		return
	}
	if err := h.shell.OpenPanel(c.Request.Context(), panel); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"panel": panel, "open": true})
}

// ClosePanel ends a panel lifecycle
func (h *Handlers) ClosePanel(c *gin.Context) {
	panel, ok := parsePanel(c.Param("panel"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown panel"})
		return
	}
	h.shell.ClosePanel(c.Request.Context(), panel)
	c.JSON(http.StatusOK, gin.H{"panel": panel, "open": false})
}

// UnlockPanel attempts to unlock a gated panel
func (h *Handlers) UnlockPanel(c *gin.Context) {
	panel, ok := parsePanel(c.Param("panel"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown panel"})
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	granted := h.shell.Unlock(c.Request.Context(), panel, req.Password)
	status := http.StatusOK
	if !granted {
		status = http.StatusForbidden
	}
	var lastErr string
	switch panel {
	case shell.PanelSettings:
		lastErr = h.shell.SettingsGate.LastError()
	case shell.PanelLogs:
		lastErr = h.shell.LogsGate.LastError()
	}
	c.JSON(status, gin.H{"unlocked": granted, "error": lastErr})
}

func (h *Handlers) requireGate(c *gin.Context, gate *authgate.Gate) bool {
	if !gate.Unlocked() {
		c.JSON(http.StatusForbidden, gin.H{"error": "panel locked"})
		return false
	}
	return true
}

// --- Settings (gated) ---

// GetSettings returns toggles and whitelist. The key list gives the
// panel a stable toggle order; the flags map carries the values.
func (h *Handlers) GetSettings(c *gin.Context) {
	if !h.requireGate(c, h.shell.SettingsGate) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"keys":      authgate.SettingKeys(),
		"settings":  h.shell.Settings.Flags(),
		"whitelist": h.shell.Settings.Whitelist(),
	})
}

// ToggleSetting flips one privacy toggle
func (h *Handlers) ToggleSetting(c *gin.Context) {
	if !h.requireGate(c, h.shell.SettingsGate) {
		return
	}
	value, err := h.shell.Settings.Toggle(c.Request.Context(), c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "value": value})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": value})
}

// ResetSettings restores backend defaults
func (h *Handlers) ResetSettings(c *gin.Context) {
	if !h.requireGate(c, h.shell.SettingsGate) {
		return
	}
	if err := h.shell.Settings.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": h.shell.Settings.Flags()})
}

// AddWhitelist adds a domain to the blocking whitelist
func (h *Handlers) AddWhitelist(c *gin.Context) {
	if !h.requireGate(c, h.shell.SettingsGate) {
		return
	}
	var req struct {
		Domain string `json:"domain" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.shell.Settings.AddWhitelist(c.Request.Context(), req.Domain); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"whitelist": h.shell.Settings.Whitelist()})
}

// RemoveWhitelist removes a domain from the whitelist
func (h *Handlers) RemoveWhitelist(c *gin.Context) {
	if !h.requireGate(c, h.shell.SettingsGate) {
		return
	}
	if err := h.shell.Settings.RemoveWhitelist(c.Request.Context(), c.Param("domain")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"whitelist": h.shell.Settings.Whitelist()})
}

// --- Logs (gated) ---

// GetAuditLog returns decrypted audit entries
func (h *Handlers) GetAuditLog(c *gin.Context) {
	if !h.requireGate(c, h.shell.LogsGate) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": h.shell.Logs.Entries()})
}

// --- Tools ---

// SelectTool switches the active tool panel
func (h *Handlers) SelectTool(c *gin.Context) {
	var req struct {
		Tool string `json:"tool" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch tools.ToolKind(req.Tool) {
	case tools.ToolShell, tools.ToolDiag, tools.ToolProbe:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tool"})
		return
	}
	h.shell.Tools.Select(tools.ToolKind(req.Tool))
	c.JSON(http.StatusOK, gin.H{"active": h.shell.Tools.Active()})
}

// ShellConnect dials the remote shell
func (h *Handlers) ShellConnect(c *gin.Context) {
	var req struct {
		Host     string `json:"host" binding:"required"`
		Port     uint16 `json:"port" binding:"required"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := h.shell.Tools.Shell()
	if err := sess.Connect(c.Request.Context(), req.Host, req.Port, req.Username, req.Password); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  err.Error(),
			"state":  sess.State().String(),
			"output": sess.Output(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":         sess.State().String(),
		"connection_id": sess.ConnectionID(),
		"output":        sess.Output(),
	})
}

// ShellExecute runs one remote command
func (h *Handlers) ShellExecute(c *gin.Context) {
	var req struct {
		Command string `json:"command"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := h.shell.Tools.Shell()
	if err := sess.Execute(c.Request.Context(), req.Command); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "output": sess.Output()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"output": sess.Output()})
}

// ShellDisconnect tears down the remote shell
func (h *Handlers) ShellDisconnect(c *gin.Context) {
	sess := h.shell.Tools.Shell()
	sess.Disconnect(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"state": sess.State().String(), "output": sess.Output()})
}

// RunDiagnostic runs one network diagnostic probe
func (h *Handlers) RunDiagnostic(c *gin.Context) {
	var req struct {
		Tool      string `json:"tool" binding:"required"`
		Host      string `json:"host"`
		Count     uint32 `json:"count"`
		Ports     string `json:"ports"`
		TimeoutMs uint64 `json:"timeout_ms"`
		Domain    string `json:"domain"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	diag := h.shell.Tools.Diagnostics()
	ctx := c.Request.Context()
	var tool tools.DiagTool
	var err error
	switch tools.DiagTool(req.Tool) {
	case tools.DiagPing:
		tool = tools.DiagPing
		count := req.Count
		if count == 0 {
			count = 4
		}
		err = diag.Ping(ctx, req.Host, count)
	case tools.DiagPortScan:
		tool = tools.DiagPortScan
		timeout := req.TimeoutMs
		if timeout == 0 {
			timeout = 1000
		}
		err = diag.PortScan(ctx, req.Host, tools.ParsePorts(req.Ports), timeout)
	case tools.DiagDNS:
		tool = tools.DiagDNS
		err = diag.DNSLookup(ctx, req.Domain)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown diagnostic tool"})
		return
	}

	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": diag.Result(tool)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": diag.Result(tool)})
}

// Probe issues one HTTP probe request
func (h *Handlers) Probe(c *gin.Context) {
	var req struct {
		URL     string            `json:"url" binding:"required"`
		Method  string            `json:"method"`
		Headers map[string]string `json:"headers"`
		Body    string            `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Method == "" {
		req.Method = "GET"
	}

	result := h.shell.Tools.Probe().Send(c.Request.Context(), req.URL, req.Method, req.Headers, req.Body)
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// --- Downloads ---

// ListDownloads returns the mirrored list, media and counters
func (h *Handlers) ListDownloads(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"downloads": h.shell.Downloads.Items(),
		"media":     h.shell.Downloads.Media(),
		"stats":     h.shell.Downloads.Stats(),
	})
}

// StartDownload creates and triggers a download job
func (h *Handlers) StartDownload(c *gin.Context) {
	var req struct {
		URL      string `json:"url" binding:"required"`
		Filename string `json:"filename"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.shell.Downloads.Start(c.Request.Context(), req.URL, req.Filename); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "downloads": h.shell.Downloads.Items()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloads": h.shell.Downloads.Items()})
}

// ControlDownload pauses, resumes or cancels a job
func (h *Handlers) ControlDownload(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	var err error
	switch c.Param("action") {
	case "pause":
		err = h.shell.Downloads.Pause(ctx, id)
	case "resume":
		err = h.shell.Downloads.Resume(ctx, id)
	case "cancel":
		err = h.shell.Downloads.Cancel(ctx, id)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown action"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloads": h.shell.Downloads.Items()})
}

// ClearCompletedDownloads drops finished jobs
func (h *Handlers) ClearCompletedDownloads(c *gin.Context) {
	if err := h.shell.Downloads.ClearCompleted(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloads": h.shell.Downloads.Items()})
}

// DownloadDirectory returns where finished files land
func (h *Handlers) DownloadDirectory(c *gin.Context) {
	dir, err := h.shell.Downloads.DownloadDir(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"directory": dir})
}

// GrabMedia downloads a detected media item
func (h *Handlers) GrabMedia(c *gin.Context) {
	var req struct {
		URL      string `json:"url" binding:"required"`
		Filename string `json:"filename" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.shell.Downloads.GrabMedia(c.Request.Context(), req.URL, req.Filename); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloads": h.shell.Downloads.Items()})
}

// --- Keyboard ---

// KeyboardState returns layout, modifiers and buffer
func (h *Handlers) KeyboardState(c *gin.Context) {
	shift, caps := h.shell.Keyboard.Modifiers()
	c.JSON(http.StatusOK, gin.H{
		"layout":   h.shell.Keyboard.Layout(),
		"shift":    shift,
		"caps":     caps,
		"shuffled": h.shell.Keyboard.Shuffled(),
		"buffer":   h.shell.Keyboard.Buffer(),
	})
}

// PressKey sends one virtual key press
func (h *Handlers) PressKey(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.shell.Keyboard.Press(c.Request.Context(), req.Key); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	shift, caps := h.shell.Keyboard.Modifiers()
	c.JSON(http.StatusOK, gin.H{
		"buffer": h.shell.Keyboard.Buffer(),
		"shift":  shift,
		"caps":   caps,
	})
}

// ShuffleKeyboard toggles layout shuffling
func (h *Handlers) ShuffleKeyboard(c *gin.Context) {
	var req struct {
		Shuffled *bool `json:"shuffled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.shell.Keyboard.SetShuffled(c.Request.Context(), *req.Shuffled); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"layout": h.shell.Keyboard.Layout()})
}

// --- Misc ---

// CheckWhitelist reports whether a domain bypasses blocking
func (h *Handlers) CheckWhitelist(c *gin.Context) {
	ok, err := h.shell.CheckWhitelist(c.Request.Context(), c.Query("domain"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"whitelisted": ok})
}
