// Package identity owns the rotating fake identity triple
// (fingerprint, geolocation, user agent) and its regeneration protocol.
package identity

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/logging"
)

// Bridge is the subset of backend commands the controller needs.
type Bridge interface {
	GetFakeFingerprint(ctx context.Context) (*bridge.Fingerprint, error)
	GetFakeGeolocation(ctx context.Context) (*bridge.Geolocation, error)
	GetFakeUserAgent(ctx context.Context) (*bridge.UserAgent, error)
	RegenerateIdentity(ctx context.Context) (*bridge.Identity, error)
}

// Snapshot is a read-only copy of the current identity.
type Snapshot struct {
	ID          string             `json:"id"`
	Fingerprint bridge.Fingerprint `json:"fingerprint"`
	Geolocation bridge.Geolocation `json:"geolocation"`
	UserAgent   bridge.UserAgent   `json:"user_agent"`
}

// Controller holds the single process-wide identity. The triple is only
// ever replaced as a unit: if any of the three concurrent fetches fails,
// the prior values are retained untouched.
type Controller struct {
	backend Bridge
	logger  *logging.Logger

	mu          sync.RWMutex
	identityID  string
	fingerprint bridge.Fingerprint
	geolocation bridge.Geolocation
	userAgent   bridge.UserAgent
}

// NewController creates an identity controller.
func NewController(backend Bridge, logger *logging.Logger) *Controller {
	return &Controller{
		backend: backend,
		logger:  logger.Named("identity"),
	}
}

// Initialize fetches the triple concurrently and adopts the fingerprint
// session id as the identity id.
func (c *Controller) Initialize(ctx context.Context) error {
	fp, geo, ua, err := c.fetchTriple(ctx)
	if err != nil {
		return fmt.Errorf("identity initialize: %w", err)
	}

	c.mu.Lock()
	c.identityID = fp.SessionID
	c.fingerprint = *fp
	c.geolocation = *geo
	c.userAgent = *ua
	c.mu.Unlock()

	c.logger.Info("identity initialized", zap.String("session_id", fp.SessionID))
	return nil
}

// Regenerate requests a full identity replacement. The new session id is
// adopted as soon as the regenerate call succeeds; the detail triple is
// then re-fetched all-or-nothing, so a partial failure leaves the prior
// details displayed under the already-updated id.
func (c *Controller) Regenerate(ctx context.Context) error {
	identity, err := c.backend.RegenerateIdentity(ctx)
	if err != nil {
		return fmt.Errorf("identity regenerate: %w", err)
	}

	c.mu.Lock()
	c.identityID = identity.Fingerprint.SessionID
	c.mu.Unlock()

	fp, geo, ua, err := c.fetchTriple(ctx)
	if err != nil {
		c.logger.Warn("identity detail refresh failed, keeping prior details", zap.Error(err))
		return fmt.Errorf("identity refresh: %w", err)
	}

	c.mu.Lock()
	c.fingerprint = *fp
	c.geolocation = *geo
	c.userAgent = *ua
	c.mu.Unlock()

	c.logger.Info("identity regenerated", zap.String("session_id", identity.Fingerprint.SessionID))
	return nil
}

// fetchTriple dispatches the three detail fetches concurrently and joins
// them: one rejection fails the whole group and nothing is applied.
func (c *Controller) fetchTriple(ctx context.Context) (*bridge.Fingerprint, *bridge.Geolocation, *bridge.UserAgent, error) {
	var (
		fp  *bridge.Fingerprint
		geo *bridge.Geolocation
		ua  *bridge.UserAgent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fp, err = c.backend.GetFakeFingerprint(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		geo, err = c.backend.GetFakeGeolocation(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ua, err = c.backend.GetFakeUserAgent(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return fp, geo, ua, nil
}

// Snapshot returns a copy of the current identity.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		ID:          c.identityID,
		Fingerprint: c.fingerprint,
		Geolocation: c.geolocation,
		UserAgent:   c.userAgent,
	}
}

// ID returns the current identity id.
func (c *Controller) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.identityID
}
