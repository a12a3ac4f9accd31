package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/logging"
)

type stubFeed struct {
	mu     sync.Mutex
	events []bridge.SecurityLog
}

func (s *stubFeed) LiveLogs(ctx context.Context) ([]bridge.SecurityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bridge.SecurityLog, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *stubFeed) add(ev bridge.SecurityLog) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

type inbound struct {
	Type     string               `json:"type"`
	ClientID string               `json:"client_id"`
	Events   []bridge.SecurityLog `json:"events"`
}

func TestStreamPushesOnlyFreshEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	feed := &stubFeed{}
	feed.add(bridge.SecurityLog{ID: "ev-1", Severity: "high", Message: "tracker blocked"})

	h := NewHandler(feed, nil, logging.NewNop())
	h.interval = 10 * time.Millisecond

	router := gin.New()
	router.GET("/stream", h.HandleConnection)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello inbound
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello.Type)
	assert.NotEmpty(t, hello.ClientID)

	var first inbound
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, "security_events", first.Type)
	require.Len(t, first.Events, 1)
	assert.Equal(t, "ev-1", first.Events[0].ID)

	feed.add(bridge.SecurityLog{ID: "ev-2", Severity: "low", Message: "referrer stripped"})

	var second inbound
	require.NoError(t, conn.ReadJSON(&second))
	require.Equal(t, "security_events", second.Type)
	require.Len(t, second.Events, 1, "already-seen events are not resent")
	assert.Equal(t, "ev-2", second.Events[0].ID)
}
