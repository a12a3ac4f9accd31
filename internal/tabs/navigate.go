package tabs

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/obscuranet/ghostshell/internal/logging"
	"github.com/obscuranet/ghostshell/internal/shared/id"
)

// Navigator drives tab loads: it resolves input, flags the tab loading,
// asks the backend to point the webview at the URL, and settles the tab
// after a fixed delay standing in for a real load-complete event.
type Navigator struct {
	registry *Registry
	resolver *Resolver
	bridge   Bridge
	settle   time.Duration
	logger   *logging.Logger

	mu  sync.Mutex
	gen map[id.TabID]uint64
}

// NewNavigator creates a navigator over the registry.
func NewNavigator(registry *Registry, resolver *Resolver, bridge Bridge, settle time.Duration, logger *logging.Logger) *Navigator {
	return &Navigator{
		registry: registry,
		resolver: resolver,
		bridge:   bridge,
		settle:   settle,
		logger:   logger.Named("nav"),
		gen:      make(map[id.TabID]uint64),
	}
}

// Navigate resolves input and loads it into the tab. The loading flag is
// set before the backend call and cleared only when the navigation
// settles or fails. Overlapping navigations on one tab are
// last-writer-wins: a stale settle never touches the tab.
func (n *Navigator) Navigate(ctx context.Context, tabID id.TabID, input string) (string, error) {
	resolved := n.resolver.Resolve(input)
	secure := strings.HasPrefix(resolved, "https://")

	generation := n.bump(tabID)

	loading := true
	n.registry.Apply(tabID, Update{
		URL:       &resolved,
		IsLoading: &loading,
		IsSecure:  &secure,
	})

	if err := n.bridge.CreateBrowserTab(ctx, tabID.String(), resolved); err != nil {
		n.logger.Warn("navigation failed",
			zap.String("tab_id", tabID.String()),
			zap.String("url", resolved),
			zap.Error(err),
		)
		if n.current(tabID) == generation {
			notLoading := false
			// Title stays untouched on failure.
			n.registry.Apply(tabID, Update{IsLoading: &notLoading})
		}
		return resolved, err
	}

	time.AfterFunc(n.settle, func() {
		if n.current(tabID) != generation {
			return
		}
		notLoading := false
		title := Hostname(resolved)
		n.registry.Apply(tabID, Update{IsLoading: &notLoading, Title: &title})
	})

	return resolved, nil
}

func (n *Navigator) bump(tabID id.TabID) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.gen[tabID]++
	return n.gen[tabID]
}

func (n *Navigator) current(tabID id.TabID) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.gen[tabID]
}
