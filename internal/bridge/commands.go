package bridge

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
)

// Commands exposes every backend command as a typed call. Each component
// depends on the subset it needs through its own narrow interface; this
// struct is the single place the command names and param keys live.
type Commands struct {
	inv Invoker
}

// NewCommands wraps an Invoker with typed command decoding.
func NewCommands(inv Invoker) *Commands {
	return &Commands{inv: inv}
}

func (c *Commands) call(ctx context.Context, command string, params map[string]interface{}, out interface{}) error {
	data, err := c.inv.Invoke(ctx, command, params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s result: %w", command, err)
	}
	return nil
}

// ---- Identity ----

func (c *Commands) GetFakeFingerprint(ctx context.Context) (*Fingerprint, error) {
	var fp Fingerprint
	if err := c.call(ctx, "get_fake_fingerprint", nil, &fp); err != nil {
		return nil, err
	}
	return &fp, nil
}

func (c *Commands) GetFakeGeolocation(ctx context.Context) (*Geolocation, error) {
	var geo Geolocation
	if err := c.call(ctx, "get_fake_geolocation", nil, &geo); err != nil {
		return nil, err
	}
	return &geo, nil
}

func (c *Commands) GetFakeUserAgent(ctx context.Context) (*UserAgent, error) {
	var ua UserAgent
	if err := c.call(ctx, "get_fake_user_agent", nil, &ua); err != nil {
		return nil, err
	}
	return &ua, nil
}

func (c *Commands) RegenerateIdentity(ctx context.Context) (*Identity, error) {
	var identity Identity
	if err := c.call(ctx, "regenerate_identity", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// ---- Tabs ----

func (c *Commands) CreateBrowserTab(ctx context.Context, tabID, url string) error {
	return c.call(ctx, "create_browser_tab", map[string]interface{}{
		"tab_id": tabID,
		"url":    url,
	}, nil)
}

func (c *Commands) CloseBrowserTab(ctx context.Context, tabID string) error {
	return c.call(ctx, "close_browser_tab", map[string]interface{}{
		"tab_id": tabID,
	}, nil)
}

// ---- Auth ----

func (c *Commands) UnlockSettings(ctx context.Context, password string) (bool, error) {
	var ok bool
	if err := c.call(ctx, "unlock_settings", map[string]interface{}{"password": password}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (c *Commands) LockSettings(ctx context.Context) error {
	return c.call(ctx, "lock_settings", nil, nil)
}

func (c *Commands) UnlockLogs(ctx context.Context, password string) (bool, error) {
	var ok bool
	if err := c.call(ctx, "unlock_logs", map[string]interface{}{"password": password}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (c *Commands) LockLogs(ctx context.Context) error {
	return c.call(ctx, "lock_logs", nil, nil)
}

// ---- Settings ----

func (c *Commands) GetAllSettings(ctx context.Context) (*BrowserSettings, error) {
	var s BrowserSettings
	if err := c.call(ctx, "get_all_settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Commands) SetSetting(ctx context.Context, key string, value bool) error {
	return c.call(ctx, "set_setting", map[string]interface{}{
		"key":   key,
		"value": value,
	}, nil)
}

func (c *Commands) GetSetting(ctx context.Context, key string) (bool, error) {
	var v bool
	if err := c.call(ctx, "get_setting", map[string]interface{}{"key": key}, &v); err != nil {
		return false, err
	}
	return v, nil
}

func (c *Commands) ResetSettings(ctx context.Context) (*BrowserSettings, error) {
	var s BrowserSettings
	if err := c.call(ctx, "reset_settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ---- Whitelist ----

func (c *Commands) GetWhitelist(ctx context.Context) ([]string, error) {
	var domains []string
	if err := c.call(ctx, "get_whitelist", nil, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

func (c *Commands) AddToWhitelist(ctx context.Context, domain string) error {
	return c.call(ctx, "add_to_whitelist", map[string]interface{}{"domain": domain}, nil)
}

func (c *Commands) RemoveFromWhitelist(ctx context.Context, domain string) error {
	return c.call(ctx, "remove_from_whitelist", map[string]interface{}{"domain": domain}, nil)
}

func (c *Commands) CheckWhitelist(ctx context.Context, domain string) (bool, error) {
	var ok bool
	if err := c.call(ctx, "check_whitelist", map[string]interface{}{"domain": domain}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ---- Logs ----

func (c *Commands) GetEncryptedLogs(ctx context.Context) ([]LogEntry, error) {
	var entries []LogEntry
	if err := c.call(ctx, "get_encrypted_logs", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Commands) GetLiveLogs(ctx context.Context) ([]SecurityLog, error) {
	var logs []SecurityLog
	if err := c.call(ctx, "get_live_logs", nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Commands) AddLogEntry(ctx context.Context, level, category, message string) error {
	return c.call(ctx, "add_log_entry", map[string]interface{}{
		"level":    level,
		"category": category,
		"message":  message,
	}, nil)
}

// ---- SSH ----

func (c *Commands) SSHConnect(ctx context.Context, host string, port uint16, username, password string) (*SSHConnectionInfo, error) {
	var info SSHConnectionInfo
	err := c.call(ctx, "ssh_connect", map[string]interface{}{
		"host":     host,
		"port":     port,
		"username": username,
		"password": password,
	}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Commands) SSHExecute(ctx context.Context, connectionID, command string) (*SSHCommandResult, error) {
	var result SSHCommandResult
	err := c.call(ctx, "ssh_execute", map[string]interface{}{
		"connection_id": connectionID,
		"command":       command,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Commands) SSHDisconnect(ctx context.Context, connectionID string) error {
	return c.call(ctx, "ssh_disconnect", map[string]interface{}{
		"connection_id": connectionID,
	}, nil)
}

// ---- Network diagnostics ----

func (c *Commands) NetworkPing(ctx context.Context, host string, count uint32) (*PingResult, error) {
	var result PingResult
	err := c.call(ctx, "network_ping", map[string]interface{}{
		"host":  host,
		"count": count,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Commands) NetworkPortScan(ctx context.Context, host string, ports []uint16, timeoutMs uint64) ([]PortScanResult, error) {
	var results []PortScanResult
	err := c.call(ctx, "network_port_scan", map[string]interface{}{
		"host":       host,
		"ports":      ports,
		"timeout_ms": timeoutMs,
	}, &results)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Commands) NetworkDNSLookup(ctx context.Context, domain string) (*DNSResult, error) {
	var result DNSResult
	err := c.call(ctx, "network_dns_lookup", map[string]interface{}{
		"domain": domain,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Commands) HTTPRequest(ctx context.Context, url, method string, headers map[string]string, body string) (*HTTPResult, error) {
	params := map[string]interface{}{
		"url":    url,
		"method": method,
	}
	if len(headers) > 0 {
		params["headers"] = headers
	}
	if body != "" {
		params["body"] = body
	}

	var result HTTPResult
	if err := c.call(ctx, "http_request", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ---- Keyboard ----

func (c *Commands) GetVirtualKeyboardLayout(ctx context.Context, shuffled bool) (*KeyboardLayout, error) {
	var layout KeyboardLayout
	err := c.call(ctx, "get_virtual_keyboard_layout", map[string]interface{}{
		"shuffled": shuffled,
	}, &layout)
	if err != nil {
		return nil, err
	}
	return &layout, nil
}

func (c *Commands) ProcessVirtualKey(ctx context.Context, key string, isShift, isCaps bool) (*KeyResult, error) {
	var result KeyResult
	err := c.call(ctx, "process_virtual_key", map[string]interface{}{
		"key":      key,
		"is_shift": isShift,
		"is_caps":  isCaps,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ---- Downloads ----

func (c *Commands) GetDownloads(ctx context.Context) ([]DownloadItem, error) {
	var items []DownloadItem
	if err := c.call(ctx, "get_downloads", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Commands) StartDownload(ctx context.Context, url, filename string) (*DownloadItem, error) {
	params := map[string]interface{}{"url": url}
	if filename != "" {
		params["filename"] = filename
	}

	var item DownloadItem
	if err := c.call(ctx, "start_download", params, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Commands) ExecuteDownload(ctx context.Context, id string) error {
	return c.call(ctx, "execute_download", map[string]interface{}{"id": id}, nil)
}

func (c *Commands) PauseDownload(ctx context.Context, id string) error {
	return c.call(ctx, "pause_download", map[string]interface{}{"id": id}, nil)
}

func (c *Commands) ResumeDownload(ctx context.Context, id string) error {
	return c.call(ctx, "resume_download", map[string]interface{}{"id": id}, nil)
}

func (c *Commands) CancelDownload(ctx context.Context, id string) error {
	return c.call(ctx, "cancel_download", map[string]interface{}{"id": id}, nil)
}

func (c *Commands) ClearCompletedDownloads(ctx context.Context) error {
	return c.call(ctx, "clear_completed_downloads", nil, nil)
}

func (c *Commands) GetDownloadDirectory(ctx context.Context) (string, error) {
	var dir string
	if err := c.call(ctx, "get_download_directory", nil, &dir); err != nil {
		return "", err
	}
	return dir, nil
}

func (c *Commands) GetAllDetectedVideos(ctx context.Context) ([]DetectedMedia, error) {
	var media []DetectedMedia
	if err := c.call(ctx, "get_all_detected_videos", nil, &media); err != nil {
		return nil, err
	}
	return media, nil
}

func (c *Commands) DownloadVideo(ctx context.Context, url, filename string) (*DownloadItem, error) {
	params := map[string]interface{}{"url": url}
	if filename != "" {
		params["filename"] = filename
	}

	var item DownloadItem
	if err := c.call(ctx, "download_video", params, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
