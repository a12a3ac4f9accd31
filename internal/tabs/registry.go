package tabs

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/obscuranet/ghostshell/internal/logging"
	"github.com/obscuranet/ghostshell/internal/shared/id"
)

// Bridge is the subset of backend commands the registry needs.
type Bridge interface {
	CreateBrowserTab(ctx context.Context, tabID, url string) error
	CloseBrowserTab(ctx context.Context, tabID string) error
}

// Tab is one browsing tab. IsSecure derives from the URL scheme at
// navigation time and is not re-validated afterwards.
type Tab struct {
	ID            id.TabID `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	IsLoading     bool     `json:"is_loading"`
	IsSecure      bool     `json:"is_secure"`
	IsWhitelisted bool     `json:"is_whitelisted"`
}

// Update carries a partial tab mutation; nil fields are left untouched.
type Update struct {
	Title         *string
	URL           *string
	IsLoading     *bool
	IsSecure      *bool
	IsWhitelisted *bool
}

// Registry owns the ordered tab list and the active-tab pointer.
type Registry struct {
	mu        sync.RWMutex
	tabs      []*Tab
	activeIdx int
	bridge    Bridge
	logger    *logging.Logger
}

// NewRegistry creates a registry seeded with one blank active tab.
func NewRegistry(bridge Bridge, logger *logging.Logger) *Registry {
	r := &Registry{
		bridge: bridge,
		logger: logger.Named("tabs"),
	}
	r.tabs = append(r.tabs, blankTab())
	return r
}

func blankTab() *Tab {
	return &Tab{
		ID:       id.NewTabID(),
		Title:    "New Tab",
		URL:      "",
		IsSecure: true,
	}
}

// Open appends a blank tab and makes it active.
func (r *Registry) Open() id.TabID {
	r.mu.Lock()
	defer r.mu.Unlock()

	tab := blankTab()
	r.tabs = append(r.tabs, tab)
	r.activeIdx = len(r.tabs) - 1
	return tab.ID
}

// Close removes the tab. Backend teardown failure is swallowed; local
// removal must never block on the backend. The registry never shrinks to
// zero tabs.
func (r *Registry) Close(ctx context.Context, tabID id.TabID) {
	if err := r.bridge.CloseBrowserTab(ctx, tabID.String()); err != nil {
		r.logger.Debug("backend tab close failed", zap.String("tab_id", tabID.String()), zap.Error(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(tabID)
	if idx < 0 {
		return
	}

	wasActive := idx == r.activeIdx
	r.tabs = append(r.tabs[:idx], r.tabs[idx+1:]...)

	if len(r.tabs) == 0 {
		r.tabs = append(r.tabs, blankTab())
		r.activeIdx = 0
		return
	}

	if wasActive {
		// Clamp the old index into the shrunk list; never resolve a
		// now-stale id.
		if idx > len(r.tabs)-1 {
			r.activeIdx = len(r.tabs) - 1
		} else {
			r.activeIdx = idx
		}
	} else if idx < r.activeIdx {
		r.activeIdx--
	}
}

// Apply merges a partial update into the matching tab; no-op if absent.
func (r *Registry) Apply(tabID id.TabID, update Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(tabID)
	if idx < 0 {
		return
	}

	tab := r.tabs[idx]
	if update.Title != nil {
		tab.Title = *update.Title
	}
	if update.URL != nil {
		tab.URL = *update.URL
	}
	if update.IsLoading != nil {
		tab.IsLoading = *update.IsLoading
	}
	if update.IsSecure != nil {
		tab.IsSecure = *update.IsSecure
	}
	if update.IsWhitelisted != nil {
		tab.IsWhitelisted = *update.IsWhitelisted
	}
}

// Activate moves the active pointer to the given tab.
func (r *Registry) Activate(tabID id.TabID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(tabID)
	if idx < 0 {
		return false
	}
	r.activeIdx = idx
	return true
}

// Active returns a copy of the active tab.
func (r *Registry) Active() Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return *r.tabs[r.activeIdx]
}

// ActiveIndex returns the position of the active tab.
func (r *Registry) ActiveIndex() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.activeIdx
}

// Get returns a copy of the tab with the given id.
func (r *Registry) Get(tabID id.TabID) (Tab, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(tabID)
	if idx < 0 {
		return Tab{}, false
	}
	return *r.tabs[idx], true
}

// List returns an ordered snapshot of all tabs.
func (r *Registry) List() []Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tab, len(r.tabs))
	for i, tab := range r.tabs {
		out[i] = *tab
	}
	return out
}

// Len returns the number of open tabs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tabs)
}

// indexOf requires r.mu held.
func (r *Registry) indexOf(tabID id.TabID) int {
	for i, tab := range r.tabs {
		if tab.ID == tabID {
			return i
		}
	}
	return -1
}
