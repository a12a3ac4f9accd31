package authgate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/logging"
)

// SettingsBridge is the subset of backend commands the settings store needs.
type SettingsBridge interface {
	GetAllSettings(ctx context.Context) (*bridge.BrowserSettings, error)
	SetSetting(ctx context.Context, key string, value bool) error
	ResetSettings(ctx context.Context) (*bridge.BrowserSettings, error)
	GetWhitelist(ctx context.Context) ([]string, error)
	AddToWhitelist(ctx context.Context, domain string) error
	RemoveFromWhitelist(ctx context.Context, domain string) error
}

// settingKeys is the fixed set of backend-persisted toggles.
var settingKeys = []string{
	"tor_enabled",
	"https_only",
	"block_trackers",
	"block_malware",
	"scan_downloads",
	"block_ads",
	"strip_metadata",
	"block_webrtc",
	"fake_geolocation",
	"spoof_fingerprint",
	"strip_referrer",
	"partition_storage",
	"auto_regenerate_identity",
	"secure_keyboard",
}

// SettingsStore mirrors the backend feature flags and tracker whitelist
// for the settings panel. Every toggle follows optimistic-update-with-
// rollback: flip locally, persist, revert the flip if persistence fails.
type SettingsStore struct {
	backend SettingsBridge
	logger  *logging.Logger

	mu        sync.RWMutex
	flags     map[string]bool
	whitelist []string
}

// NewSettingsStore creates an empty store; Load populates it after unlock.
func NewSettingsStore(backend SettingsBridge, logger *logging.Logger) *SettingsStore {
	return &SettingsStore{
		backend: backend,
		logger:  logger.Named("settings"),
		flags:   make(map[string]bool),
	}
}

// Load replaces the local mirror from the backend. This is the settings
// domain's post-unlock data-load sequence.
func (s *SettingsStore) Load(ctx context.Context) error {
	settings, err := s.backend.GetAllSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	whitelist, err := s.backend.GetWhitelist(ctx)
	if err != nil {
		return fmt.Errorf("load whitelist: %w", err)
	}

	s.mu.Lock()
	s.flags = flagMap(settings)
	s.whitelist = whitelist
	s.mu.Unlock()
	return nil
}

// Toggle optimistically flips one flag and persists it; a failed persist
// rolls the local flip back so the displayed value equals the pre-click
// value.
func (s *SettingsStore) Toggle(ctx context.Context, key string) (bool, error) {
	if !validSettingKey(key) {
		return false, fmt.Errorf("unknown setting: %s", key)
	}

	s.mu.Lock()
	current := s.flags[key]
	next := !current
	s.flags[key] = next
	s.mu.Unlock()

	if err := s.backend.SetSetting(ctx, key, next); err != nil {
		s.mu.Lock()
		s.flags[key] = current
		s.mu.Unlock()
		s.logger.Warn("toggle persist failed, rolled back",
			zap.String("key", key),
			zap.Error(err),
		)
		return current, fmt.Errorf("persist %s: %w", key, err)
	}

	return next, nil
}

// Flag returns the current value of one toggle.
func (s *SettingsStore) Flag(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.flags[key]
	return v, ok
}

// Flags returns a sorted-key snapshot of all toggles.
func (s *SettingsStore) Flags() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}

// Reset asks the backend to restore defaults and adopts the result.
func (s *SettingsStore) Reset(ctx context.Context) error {
	settings, err := s.backend.ResetSettings(ctx)
	if err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}

	s.mu.Lock()
	s.flags = flagMap(settings)
	s.mu.Unlock()
	return nil
}

// AddWhitelist adds a domain then refreshes the mirror. Blank domains
// are ignored before dispatch.
func (s *SettingsStore) AddWhitelist(ctx context.Context, domain string) error {
	if domain == "" {
		return nil
	}
	if err := s.backend.AddToWhitelist(ctx, domain); err != nil {
		return fmt.Errorf("whitelist add: %w", err)
	}
	return s.reloadWhitelist(ctx)
}

// RemoveWhitelist removes a domain then refreshes the mirror.
func (s *SettingsStore) RemoveWhitelist(ctx context.Context, domain string) error {
	if err := s.backend.RemoveFromWhitelist(ctx, domain); err != nil {
		return fmt.Errorf("whitelist remove: %w", err)
	}
	return s.reloadWhitelist(ctx)
}

// Whitelist returns a sorted snapshot of whitelisted domains.
func (s *SettingsStore) Whitelist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.whitelist))
	copy(out, s.whitelist)
	sort.Strings(out)
	return out
}

func (s *SettingsStore) reloadWhitelist(ctx context.Context) error {
	whitelist, err := s.backend.GetWhitelist(ctx)
	if err != nil {
		return fmt.Errorf("whitelist reload: %w", err)
	}

	s.mu.Lock()
	s.whitelist = whitelist
	s.mu.Unlock()
	return nil
}

func flagMap(s *bridge.BrowserSettings) map[string]bool {
	return map[string]bool{
		"tor_enabled":              s.TorEnabled,
		"https_only":               s.HTTPSOnly,
		"block_trackers":           s.BlockTrackers,
		"block_malware":            s.BlockMalware,
		"scan_downloads":           s.ScanDownloads,
		"block_ads":                s.BlockAds,
		"strip_metadata":           s.StripMetadata,
		"block_webrtc":             s.BlockWebRTC,
		"fake_geolocation":         s.FakeGeolocation,
		"spoof_fingerprint":        s.SpoofFingerprint,
		"strip_referrer":           s.StripReferrer,
		"partition_storage":        s.PartitionStorage,
		"auto_regenerate_identity": s.AutoRegenerateIdentity,
		"secure_keyboard":          s.SecureKeyboard,
	}
}

func validSettingKey(key string) bool {
	for _, k := range settingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// SettingKeys returns the fixed toggle key set.
func SettingKeys() []string {
	out := make([]string, len(settingKeys))
	copy(out, settingKeys)
	return out
}
