// Package downloads mirrors the backend download manager for the
// downloads panel. The backend owns job state; this tracker polls it
// while the panel is open and recomputes display counters from each
// fresh snapshot.
package downloads

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/logging"
)

// Bridge is the subset of backend commands the tracker needs.
type Bridge interface {
	GetDownloads(ctx context.Context) ([]bridge.DownloadItem, error)
	StartDownload(ctx context.Context, url, filename string) (*bridge.DownloadItem, error)
	ExecuteDownload(ctx context.Context, id string) error
	PauseDownload(ctx context.Context, id string) error
	ResumeDownload(ctx context.Context, id string) error
	CancelDownload(ctx context.Context, id string) error
	ClearCompletedDownloads(ctx context.Context) error
	GetDownloadDirectory(ctx context.Context) (string, error)
	GetAllDetectedVideos(ctx context.Context) ([]bridge.DetectedMedia, error)
	DownloadVideo(ctx context.Context, url, filename string) (*bridge.DownloadItem, error)
}

// Stats are the aggregate counters shown above the download list.
// They are always recomputed from a full snapshot, never incremented.
type Stats struct {
	Total          int `json:"total"`
	Scanned        int `json:"scanned"`
	ThreatsBlocked int `json:"threats_blocked"`
	Pending        int `json:"pending"`
	InProgress     int `json:"in_progress"`
}

// Tracker polls the backend download list while the panel is open.
type Tracker struct {
	backend  Bridge
	logger   *logging.Logger
	interval time.Duration

	mu       sync.RWMutex
	items    []bridge.DownloadItem
	media    []bridge.DetectedMedia
	stats    Stats
	cancel   context.CancelFunc
	pollHook func()
}

// NewTracker creates an idle tracker. Polling starts on OpenPanel.
func NewTracker(backend Bridge, interval time.Duration, logger *logging.Logger) *Tracker {
	return &Tracker{
		backend:  backend,
		logger:   logger.Named("downloads"),
		interval: interval,
	}
}

// SetPollHook registers a callback invoked on every refresh, used for
// poll instrumentation.
func (t *Tracker) SetPollHook(fn func()) {
	t.mu.Lock()
	t.pollHook = fn
	t.mu.Unlock()
}

// OpenPanel starts the poll loop. The loop's lifetime is the panel's,
// not the opening caller's: it is anchored to a fresh context so a
// finished request cannot take it down. ClosePanel is the only stop.
// Reopening an already-open panel restarts the cycle.
func (t *Tracker) OpenPanel() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	pollCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.mu.Unlock()

	go t.pollLoop(pollCtx)
}

// ClosePanel stops the poll loop. No tick fires after this returns.
func (t *Tracker) ClosePanel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Polling reports whether a poll loop is active.
func (t *Tracker) Polling() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cancel != nil
}

func (t *Tracker) pollLoop(ctx context.Context) {
	t.Refresh(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Refresh(ctx)
		}
	}
}

// Refresh replaces the local mirror from the backend. Both lists are
// fetched and the counters recomputed from the fresh snapshot; there
// is no incremental merge.
func (t *Tracker) Refresh(ctx context.Context) {
	t.mu.RLock()
	hook := t.pollHook
	t.mu.RUnlock()
	if hook != nil {
		hook()
	}

	items, err := t.backend.GetDownloads(ctx)
	if err != nil {
		t.logger.Debug("download poll failed", zap.Error(err))
		return
	}
	media, err := t.backend.GetAllDetectedVideos(ctx)
	if err != nil {
		t.logger.Debug("media poll failed", zap.Error(err))
		media = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = items
	if media != nil {
		t.media = media
	}
	t.stats = computeStats(items)
}

func computeStats(items []bridge.DownloadItem) Stats {
	var s Stats
	s.Total = len(items)
	for _, it := range items {
		if it.ScanResult != "" {
			s.Scanned++
		}
		if it.ScanResult == "infected" || it.ScanResult == "blocked" {
			s.ThreatsBlocked++
		}
		switch it.State {
		case bridge.DownloadPending:
			s.Pending++
		case bridge.DownloadDownloading, bridge.DownloadScanning:
			s.InProgress++
		}
	}
	return s
}

// Start creates a download job then triggers its execution. Creation
// and execution are independent backend calls; if execution fails
// after a successful create, the job is marked failed in the local
// mirror so the orphaned pending entry is visible rather than silently
// stuck. The next poll adopts whatever the backend says.
func (t *Tracker) Start(ctx context.Context, url, filename string) error {
	item, err := t.backend.StartDownload(ctx, url, filename)
	if err != nil {
		return fmt.Errorf("create download: %w", err)
	}

	if err := t.backend.ExecuteDownload(ctx, item.ID); err != nil {
		t.logger.Warn("download created but execution failed",
			zap.String("id", item.ID),
			zap.Error(err))
		failed := *item
		failed.State = bridge.DownloadFailed
		failed.Error = err.Error()
		t.mu.Lock()
		t.items = append(t.items, failed)
		t.stats = computeStats(t.items)
		t.mu.Unlock()
		return fmt.Errorf("execute download %s: %w", item.ID, err)
	}

	t.Refresh(ctx)
	return nil
}

// Pause pauses a running download and refreshes immediately.
func (t *Tracker) Pause(ctx context.Context, id string) error {
	return t.commandThenRefresh(ctx, "pause", id, t.backend.PauseDownload)
}

// Resume resumes a paused download and refreshes immediately.
func (t *Tracker) Resume(ctx context.Context, id string) error {
	return t.commandThenRefresh(ctx, "resume", id, t.backend.ResumeDownload)
}

// Cancel aborts a download and refreshes immediately.
func (t *Tracker) Cancel(ctx context.Context, id string) error {
	return t.commandThenRefresh(ctx, "cancel", id, t.backend.CancelDownload)
}

func (t *Tracker) commandThenRefresh(ctx context.Context, op, id string, fn func(context.Context, string) error) error {
	if err := fn(ctx, id); err != nil {
		return fmt.Errorf("%s download %s: %w", op, id, err)
	}
	t.Refresh(ctx)
	return nil
}

// ClearCompleted drops finished jobs backend-side and refreshes
// immediately.
func (t *Tracker) ClearCompleted(ctx context.Context) error {
	if err := t.backend.ClearCompletedDownloads(ctx); err != nil {
		return fmt.Errorf("clear completed downloads: %w", err)
	}
	t.Refresh(ctx)
	return nil
}

// GrabMedia downloads a detected media item through the video pipeline
// and refreshes immediately.
func (t *Tracker) GrabMedia(ctx context.Context, url, filename string) error {
	if _, err := t.backend.DownloadVideo(ctx, url, filename); err != nil {
		return fmt.Errorf("download video: %w", err)
	}
	t.Refresh(ctx)
	return nil
}

// DownloadDir returns the backend's download directory path.
func (t *Tracker) DownloadDir(ctx context.Context) (string, error) {
	return t.backend.GetDownloadDirectory(ctx)
}

// Items returns a snapshot of the mirrored download list.
func (t *Tracker) Items() []bridge.DownloadItem {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]bridge.DownloadItem, len(t.items))
	copy(out, t.items)
	return out
}

// Media returns a snapshot of the detected media list.
func (t *Tracker) Media() []bridge.DetectedMedia {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]bridge.DetectedMedia, len(t.media))
	copy(out, t.media)
	return out
}

// Stats returns the counters derived from the last snapshot.
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}
