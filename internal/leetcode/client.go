package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/leet-stalk/backend/internal/domain"
	"github.com/leet-stalk/backend/internal/infrastructure"
)

// Client serializes outbound calls to the LeetCode GraphQL endpoint with a
// minimum inter-call spacing. It owns no business logic and performs no
// retries; retry policy belongs to the caller.
//
// All callers contend on one "next allowed time" cursor. A caller reserves
// its slot under the mutex and sleeps outside it, so two callers can never
// read an equally stale cursor and burst.
type Client struct {
	endpoint   string
	userAgent  string
	referer    string
	timeout    time.Duration
	httpClient *http.Client
	clock      clockwork.Clock
	metrics    *infrastructure.TelemetryMetrics
	logger     *zap.Logger

	mu          sync.Mutex
	minInterval time.Duration
	nextAllowed time.Time
}

// NewClient creates a rate-limited client for the configured endpoint. The
// clock is injectable so tests can assert spacing deterministically.
func NewClient(config *infrastructure.LeetCodeConfig, clock clockwork.Clock, metrics *infrastructure.TelemetryMetrics, logger *zap.Logger) *Client {
	return &Client{
		endpoint:    config.GraphQLEndpoint,
		userAgent:   config.UserAgent,
		referer:     config.Referer,
		timeout:     config.RequestTimeout,
		httpClient:  &http.Client{},
		clock:       clock,
		metrics:     metrics,
		logger:      logger,
		minInterval: config.MinInterval,
	}
}

// graphQLRequest is the wire shape of a query payload
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the generic envelope returned by the endpoint
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Call issues a single GraphQL query, waiting first for the shared spacing
// cursor. It returns the raw "data" object for the caller to decode.
func (c *Client) Call(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	if err := c.waitForSlot(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, domain.WrapError(err, "failed to encode graphql request")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.WrapError(err, "failed to build graphql request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.referer)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordCall(ctx, time.Since(start), 0)
		if isTimeout(err) {
			return nil, domain.ErrUpstreamTimeout
		}
		c.logger.Warn("LeetCode API transport failure", zap.Error(err))
		return nil, domain.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	c.recordCall(ctx, time.Since(start), resp.StatusCode)
	c.logger.Debug("LeetCode API call",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrUpstreamRateLimited
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("LeetCode API unexpected status", zap.Int("status", resp.StatusCode))
		return nil, domain.ErrUpstreamUnavailable
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, domain.ErrUpstreamTimeout
		}
		return nil, domain.ErrUpstreamUnavailable
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, domain.ErrMalformedUpstreamData
	}
	if len(envelope.Errors) > 0 {
		c.logger.Warn("LeetCode API graphql error",
			zap.String("message", envelope.Errors[0].Message),
		)
	}
	if envelope.Data == nil {
		return nil, domain.ErrMalformedUpstreamData
	}

	return envelope.Data, nil
}

// waitForSlot reserves the next allowed call time and sleeps until it
func (c *Client) waitForSlot(ctx context.Context) error {
	wait := c.reserve()
	if wait <= 0 {
		return nil
	}

	c.logger.Debug("Rate limiting outbound call", zap.Duration("wait", wait))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(wait):
		return nil
	}
}

// reserve advances the shared cursor by one interval and returns how long
// the caller must wait before its slot
func (c *Client) reserve() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.nextAllowed.Before(now) {
		c.nextAllowed = now
	}
	wait := c.nextAllowed.Sub(now)
	c.nextAllowed = c.nextAllowed.Add(c.minInterval)
	return wait
}

// recordCall records upstream call metrics when telemetry is wired. A zero
// status means the call never produced a response.
func (c *Client) recordCall(ctx context.Context, duration time.Duration, status int) {
	if c.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Int("http.status_code", status))
	c.metrics.UpstreamCallDuration.Record(ctx, duration.Seconds(), attrs)
	c.metrics.UpstreamCallCount.Add(ctx, 1, attrs)
}

// isTimeout reports whether a transport error was a timeout rather than a
// generic failure
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
