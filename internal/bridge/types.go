package bridge

// Wire types mirror the backend's serialized shapes. Identity and user
// agent objects use camelCase keys, everything else snake_case, matching
// what the backend emits.

// Fingerprint is the spoofed hardware/canvas/WebGL surface presented to
// visited sites.
type Fingerprint struct {
	SessionID           string   `json:"sessionId"`
	HardwareConcurrency uint32   `json:"hardwareConcurrency"`
	DeviceMemory        uint32   `json:"deviceMemory"`
	CanvasNoiseSeed     uint32   `json:"canvasNoiseSeed"`
	WebGLVendor         string   `json:"webglVendor"`
	WebGLRenderer       string   `json:"webglRenderer"`
	WebGLVersion        string   `json:"webglVersion"`
	AudioNoiseSeed      uint32   `json:"audioNoiseSeed"`
	InstalledFonts      []string `json:"installedFonts"`
	Plugins             []Plugin `json:"plugins"`
	MaxTouchPoints      uint32   `json:"maxTouchPoints"`
	TouchSupport        bool     `json:"touchSupport"`
}

// Plugin is one spoofed browser plugin entry.
type Plugin struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
}

// Geolocation is the spoofed GPS position.
type Geolocation struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Accuracy    float64 `json:"accuracy"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
}

// UserAgent is the spoofed user agent presented to visited sites.
type UserAgent struct {
	Full           string `json:"full"`
	AppVersion     string `json:"appVersion"`
	Platform       string `json:"platform"`
	Vendor         string `json:"vendor"`
	BrowserName    string `json:"browserName"`
	BrowserVersion string `json:"browserVersion"`
	OSName         string `json:"osName"`
	OSVersion      string `json:"osVersion"`
}

// Identity is the full triple returned by regenerate_identity.
type Identity struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	Geolocation Geolocation `json:"geolocation"`
	UserAgent   UserAgent   `json:"userAgent"`
}

// BrowserSettings is the backend-persisted feature-flag set.
type BrowserSettings struct {
	TorEnabled              bool `json:"tor_enabled"`
	HTTPSOnly               bool `json:"https_only"`
	BlockTrackers           bool `json:"block_trackers"`
	BlockMalware            bool `json:"block_malware"`
	ScanDownloads           bool `json:"scan_downloads"`
	BlockAds                bool `json:"block_ads"`
	StripMetadata           bool `json:"strip_metadata"`
	BlockWebRTC             bool `json:"block_webrtc"`
	FakeGeolocation         bool `json:"fake_geolocation"`
	SpoofFingerprint        bool `json:"spoof_fingerprint"`
	StripReferrer           bool `json:"strip_referrer"`
	PartitionStorage        bool `json:"partition_storage"`
	AutoRegenerateIdentity  bool `json:"auto_regenerate_identity"`
	SecureKeyboard          bool `json:"secure_keyboard"`
}

// LogEntry is one decrypted audit log record.
type LogEntry struct {
	Timestamp int64  `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
}

// SecurityLog is one live security event.
type SecurityLog struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	LogType   string `json:"log_type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	URL       string `json:"url,omitempty"`
	Domain    string `json:"domain,omitempty"`
}

// SSHConnectionInfo is the backend's view of an established connection.
type SSHConnectionInfo struct {
	ID          string `json:"id"`
	Host        string `json:"host"`
	Port        uint16 `json:"port"`
	Username    string `json:"username"`
	Connected   bool   `json:"connected"`
	ConnectedAt string `json:"connected_at,omitempty"`
}

// SSHCommandResult is one remote command execution result.
type SSHCommandResult struct {
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	ExitCode        int    `json:"exit_code"`
	ExecutionTimeMs uint64 `json:"execution_time_ms"`
}

// PingResult is the outcome of one ping run.
type PingResult struct {
	Host              string  `json:"host"`
	IP                string  `json:"ip,omitempty"`
	Reachable         bool    `json:"reachable"`
	LatencyMs         *uint64 `json:"latency_ms,omitempty"`
	PacketsSent       uint32  `json:"packets_sent"`
	PacketsReceived   uint32  `json:"packets_received"`
	PacketLossPercent float32 `json:"packet_loss_percent"`
}

// PortScanResult is one scanned port.
type PortScanResult struct {
	Host      string  `json:"host"`
	Port      uint16  `json:"port"`
	Open      bool    `json:"open"`
	Service   string  `json:"service,omitempty"`
	LatencyMs *uint64 `json:"latency_ms,omitempty"`
}

// DNSResult is one DNS lookup outcome.
type DNSResult struct {
	Domain       string   `json:"domain"`
	Addresses    []string `json:"addresses"`
	LookupTimeMs uint64   `json:"lookup_time_ms"`
	RecordType   string   `json:"record_type"`
}

// HTTPResult is one HTTP probe outcome. A synthesized error result
// carries StatusCode 0 and the error text in StatusText.
type HTTPResult struct {
	URL           string            `json:"url"`
	StatusCode    int               `json:"status_code"`
	StatusText    string            `json:"status_text"`
	Headers       map[string]string `json:"headers"`
	Body          string            `json:"body,omitempty"`
	LatencyMs     uint64            `json:"latency_ms"`
	ContentLength *uint64           `json:"content_length,omitempty"`
}

// DownloadState enumerates backend download job states.
type DownloadState string

const (
	DownloadPending     DownloadState = "pending"
	DownloadDownloading DownloadState = "downloading"
	DownloadPaused      DownloadState = "paused"
	DownloadScanning    DownloadState = "scanning"
	DownloadCompleted   DownloadState = "completed"
	DownloadFailed      DownloadState = "failed"
	DownloadCancelled   DownloadState = "cancelled"
)

// DownloadItem is the backend-owned download job. The tracker holds a
// read-mostly mirror of these.
type DownloadItem struct {
	ID             string        `json:"id"`
	URL            string        `json:"url"`
	Filename       string        `json:"filename"`
	SizeTotal      *uint64       `json:"size_total,omitempty"`
	SizeDownloaded uint64        `json:"size_downloaded"`
	State          DownloadState `json:"state"`
	ScanResult     string        `json:"scan_result,omitempty"`
	FileHash       string        `json:"file_hash,omitempty"`
	SpeedBps       uint64        `json:"speed_bps"`
	Error          string        `json:"error,omitempty"`
	CreatedAt      int64         `json:"created_at"`
	CompletedAt    *int64        `json:"completed_at,omitempty"`
}

// DetectedMedia is one passively observed playable media item.
type DetectedMedia struct {
	ID        string  `json:"id"`
	Title     string  `json:"title,omitempty"`
	URL       string  `json:"url"`
	PageURL   string  `json:"page_url"`
	MediaType string  `json:"media_type"`
	Duration  *uint64 `json:"duration,omitempty"`
	Size      *uint64 `json:"size,omitempty"`
}

// KeyboardLayout is one virtual keyboard layout revision.
type KeyboardLayout struct {
	Rows       [][]KeyInfo `json:"rows"`
	LayoutID   string      `json:"layout_id"`
	IsShuffled bool        `json:"is_shuffled"`
}

// KeyInfo describes a single key cap.
type KeyInfo struct {
	Key     string  `json:"key"`
	Display string  `json:"display"`
	KeyType string  `json:"key_type"`
	Width   float32 `json:"width"`
}

// Key outcome kinds returned by process_virtual_key.
const (
	KeyOutcomeCharacter = "character"
	KeyOutcomeBackspace = "backspace"
	KeyOutcomeEnter     = "enter"
	KeyOutcomeTab       = "tab"
	KeyOutcomeModifier  = "modifier"
)

// KeyResult is the tagged outcome of one virtual key press.
type KeyResult struct {
	Type     string `json:"type"`
	Char     string `json:"char,omitempty"`
	Modifier string `json:"modifier,omitempty"`
	Active   bool   `json:"active,omitempty"`
}
