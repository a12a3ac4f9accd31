package tools

import (
	"context"
	"sync"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/logging"
	"go.uber.org/zap"
)

// ProbeBridge is the subset of backend commands the HTTP probe needs.
type ProbeBridge interface {
	HTTPRequest(ctx context.Context, url, method string, headers map[string]string, body string) (*bridge.HTTPResult, error)
}

// Probe issues one-shot HTTP requests. A failed round trip still
// yields a renderable result: status code 0 with the error text as the
// status line, never a stale prior result.
type Probe struct {
	backend ProbeBridge
	logger  *logging.Logger

	mu     sync.RWMutex
	busy   bool
	result *bridge.HTTPResult
}

// NewProbe creates an idle HTTP probe.
func NewProbe(backend ProbeBridge, logger *logging.Logger) *Probe {
	return &Probe{
		backend: backend,
		logger:  logger.Named("probe"),
	}
}

// Send issues one request and stores the outcome. The returned result
// is always non-nil.
func (p *Probe) Send(ctx context.Context, url, method string, headers map[string]string, body string) *bridge.HTTPResult {
	p.mu.Lock()
	p.busy = true
	p.mu.Unlock()

	res, err := p.backend.HTTPRequest(ctx, url, method, headers, body)
	if err != nil {
		p.logger.Debug("http probe failed", zap.String("url", url), zap.Error(err))
		res = &bridge.HTTPResult{
			URL:        url,
			StatusCode: 0,
			StatusText: err.Error(),
			Headers:    map[string]string{},
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	p.result = res
	return res
}

// Busy reports whether a request is in flight.
func (p *Probe) Busy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.busy
}

// Result returns the last outcome, nil before the first request.
func (p *Probe) Result() *bridge.HTTPResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.result
}
