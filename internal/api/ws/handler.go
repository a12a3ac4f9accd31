// Package ws streams live security events to the shell frontend over
// WebSocket. The backend owns the event feed; this handler polls it
// and forwards entries the client has not seen yet.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/logging"
	"github.com/obscuranet/ghostshell/internal/monitoring"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The API binds to loopback; the shell frontend is the only client.
		return true
	},
}

// Feed supplies the live event list.
type Feed interface {
	LiveLogs(ctx context.Context) ([]bridge.SecurityLog, error)
}

// Handler manages WebSocket connections
type Handler struct {
	feed     Feed
	metrics  *monitoring.Metrics
	logger   *logging.Logger
	interval time.Duration
}

// NewHandler creates a new WebSocket handler
func NewHandler(feed Feed, metrics *monitoring.Metrics, logger *logging.Logger) *Handler {
	return &Handler{
		feed:     feed,
		metrics:  metrics,
		logger:   logger.Named("ws"),
		interval: time.Second,
	}
}

type outbound struct {
	Type     string               `json:"type"`
	ClientID string               `json:"client_id,omitempty"`
	Events   []bridge.SecurityLog `json:"events,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// HandleConnection handles WebSocket upgrade and the event push loop
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	h.logger.Debug("client connected", zap.String("client_id", clientID))

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Reader goroutine: only control traffic is expected; a read error
	// means the client went away.
	go func() {
		defer cancel()
		for {
			var msg struct {
				Type string `json:"type"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if h.metrics != nil {
				h.metrics.RecordWSMessage("in", msg.Type)
			}
		}
	}()

	h.send(conn, outbound{Type: "connected", ClientID: clientID})
	h.pushLoop(ctx, conn)
}

func (h *Handler) pushLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	seen := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		events, err := h.feed.LiveLogs(ctx)
		if err != nil {
			h.send(conn, outbound{Type: "error", Error: err.Error()})
			continue
		}

		fresh := events[:0:0]
		for _, ev := range events {
			if _, ok := seen[ev.ID]; ok {
				continue
			}
			seen[ev.ID] = struct{}{}
			fresh = append(fresh, ev)
		}
		if len(fresh) == 0 {
			continue
		}
		if !h.send(conn, outbound{Type: "security_events", Events: fresh}) {
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msg outbound) bool {
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("websocket write failed", zap.Error(err))
		return false
	}
	if h.metrics != nil {
		h.metrics.RecordWSMessage("out", msg.Type)
	}
	return true
}
