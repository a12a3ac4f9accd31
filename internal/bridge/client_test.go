package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscuranet/ghostshell/internal/logging"
)

func TestClientInvokeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoke/get_whitelist", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":["example.com"]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0, logging.NewNop())

	data, err := client.Invoke(context.Background(), "get_whitelist", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `["example.com"]`, string(data))
}

func TestClientInvokeCommandError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"error":"wrong password"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0, logging.NewNop())

	_, err := client.Invoke(context.Background(), "unlock_settings", map[string]interface{}{"password": "nope"})
	require.Error(t, err)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "unlock_settings", cmdErr.Command)
	assert.Equal(t, "wrong password", cmdErr.Message)
}

func TestClientBreakerOpensOnServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0, logging.NewNop(), WithBreaker(NewBreaker(BreakerSettings{
		ReadyToTrip: func(counts BreakerCounts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	})))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.Invoke(ctx, "get_downloads", nil)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	// Breaker tripped: the next call fails fast.
	_, err := client.Invoke(ctx, "get_downloads", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, StateOpen, client.BreakerState())
}
