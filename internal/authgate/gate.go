package authgate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/obscuranet/ghostshell/internal/logging"
)

// Domain names one independently locked protected panel.
type Domain string

const (
	DomainSettings Domain = "settings"
	DomainLogs     Domain = "logs"
)

// Bridge is the subset of backend commands the gates need.
type Bridge interface {
	UnlockSettings(ctx context.Context, password string) (bool, error)
	LockSettings(ctx context.Context) error
	UnlockLogs(ctx context.Context, password string) (bool, error)
	LockLogs(ctx context.Context) error
}

// Loader runs the domain's data-load sequence after a successful unlock.
type Loader func(ctx context.Context) error

// Gate is the unlock/lock state machine for one auth domain.
type Gate struct {
	domain  Domain
	backend Bridge
	loader  Loader
	logger  *logging.Logger

	mu        sync.Mutex
	unlocked  bool
	lastError string
}

// NewGate creates a locked gate for the given domain. The loader may be
// nil when the domain has no post-unlock data to fetch.
func NewGate(domain Domain, backend Bridge, loader Loader, logger *logging.Logger) *Gate {
	return &Gate{
		domain:  domain,
		backend: backend,
		loader:  loader,
		logger:  logger.Named("authgate").With(zap.String("domain", string(domain))),
	}
}

// Unlock verifies the password against the backend. On success the gate
// transitions to unlocked and the domain loader runs; on failure the
// gate stays locked and records a user-visible error that clears on the
// next attempt. An empty password is ignored before dispatch.
func (g *Gate) Unlock(ctx context.Context, password string) bool {
	g.mu.Lock()
	g.lastError = ""
	g.mu.Unlock()

	if password == "" {
		return false
	}

	ok, err := g.verify(ctx, password)
	if err != nil {
		g.logger.Warn("unlock call failed", zap.Error(err))
		g.setError(err.Error())
		return false
	}
	if !ok {
		g.setError("incorrect password")
		return false
	}

	g.mu.Lock()
	g.unlocked = true
	g.mu.Unlock()
	g.logger.Info("domain unlocked")

	if g.loader != nil {
		if err := g.loader(ctx); err != nil {
			// The unlock stands; the load failure is surfaced inline.
			g.logger.Warn("post-unlock load failed", zap.Error(err))
			g.setError(err.Error())
		}
	}
	return true
}

// Lock invalidates the unlock backend-side and resets to locked. Backend
// failure is swallowed; the local gate always ends up locked.
func (g *Gate) Lock(ctx context.Context) {
	if err := g.invalidate(ctx); err != nil {
		g.logger.Debug("backend lock failed", zap.Error(err))
	}

	g.mu.Lock()
	g.unlocked = false
	g.lastError = ""
	g.mu.Unlock()
}

// HandlePanelClose is the panel teardown hook: closing the owning panel
// always locks the domain.
func (g *Gate) HandlePanelClose(ctx context.Context) {
	if g.Unlocked() {
		g.Lock(ctx)
	}
}

// Unlocked reports the gate state.
func (g *Gate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.unlocked
}

// LastError returns the user-visible error from the most recent attempt.
func (g *Gate) LastError() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.lastError
}

// Domain returns the gate's domain.
func (g *Gate) Domain() Domain {
	return g.domain
}

func (g *Gate) verify(ctx context.Context, password string) (bool, error) {
	if g.domain == DomainLogs {
		return g.backend.UnlockLogs(ctx, password)
	}
	return g.backend.UnlockSettings(ctx, password)
}

func (g *Gate) invalidate(ctx context.Context) error {
	if g.domain == DomainLogs {
		return g.backend.LockLogs(ctx)
	}
	return g.backend.LockSettings(ctx)
}

func (g *Gate) setError(msg string) {
	g.mu.Lock()
	g.lastError = msg
	g.mu.Unlock()
}
