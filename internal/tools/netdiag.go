package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/logging"
	"github.com/obscuranet/ghostshell/internal/shared/id"
	"go.uber.org/zap"
)

// DiagTool names one of the network diagnostic tools.
type DiagTool string

const (
	DiagPing     DiagTool = "ping"
	DiagPortScan DiagTool = "port-scan"
	DiagDNS      DiagTool = "dns"
)

// DiagBridge is the subset of backend commands the diagnostics panel
// needs.
type DiagBridge interface {
	NetworkPing(ctx context.Context, host string, count uint32) (*bridge.PingResult, error)
	NetworkPortScan(ctx context.Context, host string, ports []uint16, timeoutMs uint64) ([]bridge.PortScanResult, error)
	NetworkDNSLookup(ctx context.Context, domain string) (*bridge.DNSResult, error)
}

// DiagResult is one tool-tagged run outcome. Exactly one of the result
// fields is set, matching Tool. ID distinguishes runs of the same tool
// so the panel can tell a replaced result from a repeated one.
type DiagResult struct {
	ID    id.RunID                `json:"id"`
	Tool  DiagTool                `json:"tool"`
	Ping  *bridge.PingResult      `json:"ping,omitempty"`
	Scan  []bridge.PortScanResult `json:"scan,omitempty"`
	DNS   *bridge.DNSResult       `json:"dns,omitempty"`
	Error string                  `json:"error,omitempty"`
}

// Diagnostics runs one-shot network probes. Each tool carries an
// independent busy latch so a run in flight disables only its own
// trigger, and each run replaces that tool's previous result.
type Diagnostics struct {
	backend DiagBridge
	logger  *logging.Logger

	mu      sync.RWMutex
	busy    map[DiagTool]bool
	results map[DiagTool]*DiagResult
}

// NewDiagnostics creates an idle diagnostics panel.
func NewDiagnostics(backend DiagBridge, logger *logging.Logger) *Diagnostics {
	return &Diagnostics{
		backend: backend,
		logger:  logger.Named("netdiag"),
		busy:    make(map[DiagTool]bool),
		results: make(map[DiagTool]*DiagResult),
	}
}

func (d *Diagnostics) acquire(tool DiagTool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy[tool] {
		return fmt.Errorf("%s already running", tool)
	}
	d.busy[tool] = true
	return nil
}

func (d *Diagnostics) settle(tool DiagTool, result *DiagResult) {
	result.ID = id.NewRunID()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.busy[tool] = false
	d.results[tool] = result
}

// Ping runs one ping probe against host.
func (d *Diagnostics) Ping(ctx context.Context, host string, count uint32) error {
	if err := d.acquire(DiagPing); err != nil {
		return err
	}

	res, err := d.backend.NetworkPing(ctx, host, count)
	if err != nil {
		d.settle(DiagPing, &DiagResult{Tool: DiagPing, Error: err.Error()})
		return err
	}
	d.settle(DiagPing, &DiagResult{Tool: DiagPing, Ping: res})
	return nil
}

// PortScan scans the given ports on host.
func (d *Diagnostics) PortScan(ctx context.Context, host string, ports []uint16, timeoutMs uint64) error {
	if err := d.acquire(DiagPortScan); err != nil {
		return err
	}

	res, err := d.backend.NetworkPortScan(ctx, host, ports, timeoutMs)
	if err != nil {
		d.settle(DiagPortScan, &DiagResult{Tool: DiagPortScan, Error: err.Error()})
		return err
	}
	d.settle(DiagPortScan, &DiagResult{Tool: DiagPortScan, Scan: res})
	d.logger.Debug("port scan complete",
		zap.String("host", host),
		zap.Int("ports", len(res)))
	return nil
}

// DNSLookup resolves domain.
func (d *Diagnostics) DNSLookup(ctx context.Context, domain string) error {
	if err := d.acquire(DiagDNS); err != nil {
		return err
	}

	res, err := d.backend.NetworkDNSLookup(ctx, domain)
	if err != nil {
		d.settle(DiagDNS, &DiagResult{Tool: DiagDNS, Error: err.Error()})
		return err
	}
	d.settle(DiagDNS, &DiagResult{Tool: DiagDNS, DNS: res})
	return nil
}

// Busy reports whether the given tool has a run in flight.
func (d *Diagnostics) Busy(tool DiagTool) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.busy[tool]
}

// Result returns the last run result for the given tool, nil if the
// tool has never run.
func (d *Diagnostics) Result(tool DiagTool) *DiagResult {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.results[tool]
}

// ParsePorts parses a comma-separated port list. Entries that are not
// valid port numbers are silently dropped.
func ParsePorts(input string) []uint16 {
	var ports []uint16
	for _, field := range strings.Split(input, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(field), 10, 16)
		if err != nil || n == 0 {
			continue
		}
		ports = append(ports, uint16(n))
	}
	return ports
}
