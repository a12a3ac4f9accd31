package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/obscuranet/ghostshell/internal/logging"
	"github.com/obscuranet/ghostshell/internal/shared/id"
)

// Observer receives the outcome of every bridge call. Implemented by the
// monitoring package; nil observers are allowed.
type Observer interface {
	ObserveCommand(command string, duration time.Duration, err error)
}

// Client is the HTTP implementation of Invoker.
type Client struct {
	http     *resty.Client
	endpoint string
	breaker  *Breaker
	logger   *logging.Logger
	observer Observer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithObserver attaches a call observer.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) { c.observer = o }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *Breaker) ClientOption {
	return func(c *Client) { c.breaker = b }
}

// NewClient creates a bridge client for the given backend endpoint.
func NewClient(endpoint string, timeout time.Duration, logger *logging.Logger, opts ...ClientOption) *Client {
	httpClient := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{
		http:     httpClient,
		endpoint: endpoint,
		logger:   logger.Named("bridge"),
		breaker: NewBreaker(BreakerSettings{
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts BreakerCounts) bool {
				return counts.ConsecutiveFailures >= 5 ||
					(counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.5)
			},
		}),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker.settings.OnStateChange = func(from, to BreakerState) {
		c.logger.Warn("bridge breaker state change",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	return c
}

// Invoke dispatches one command and returns the raw data payload.
func (c *Client) Invoke(ctx context.Context, command string, params map[string]interface{}) ([]byte, error) {
	reqID := id.NewRequestID()
	start := time.Now()

	var data []byte
	err := c.breaker.Do(func() error {
		payload, err := sonic.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("X-Request-ID", reqID.String()).
			SetBody(payload).
			Post("/invoke/" + command)
		if err != nil {
			return fmt.Errorf("invoke %s: %w", command, err)
		}

		if resp.StatusCode() >= 500 {
			return fmt.Errorf("invoke %s: backend returned %d", command, resp.StatusCode())
		}

		var env envelope
		if err := sonic.Unmarshal(resp.Body(), &env); err != nil {
			return fmt.Errorf("decode %s response: %w", command, err)
		}

		if !env.Success {
			return &CommandError{Command: command, Message: env.Error}
		}

		data = env.Data
		return nil
	})

	elapsed := time.Since(start)
	if c.observer != nil {
		c.observer.ObserveCommand(command, elapsed, err)
	}

	if err != nil {
		c.logger.Debug("command failed",
			zap.String("command", command),
			zap.String("request_id", reqID.String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	return data, nil
}

// BreakerState exposes the breaker state for health reporting.
func (c *Client) BreakerState() BreakerState {
	return c.breaker.State()
}
