package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/juststeveking/lodestone/internal/status"
	"github.com/tidwall/gjson"
)

const maxBodySize = 1 << 20 // 1MB

// Checker queries the status of a game server
type Checker interface {
	Check(ctx context.Context, host string, port int) status.Outcome
}

// HTTPChecker queries a remote status endpoint over HTTP
type HTTPChecker struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewHTTPChecker creates a checker for endpoint.
// The timeout is applied per request through the context, not on the client.
func NewHTTPChecker(endpoint string, timeout time.Duration, logger *slog.Logger) *HTTPChecker {
	return &HTTPChecker{
		client:   &http.Client{},
		endpoint: endpoint,
		timeout:  timeout,
		logger:   logger,
	}
}

// Close closes the HTTP client's connection pool
func (h *HTTPChecker) Close() {
	if h != nil && h.client != nil {
		h.client.CloseIdleConnections()
	}
}

// Check issues one status request for host:port.
//
// Check never returns an error to the caller: transport failures, timeouts,
// non-2xx responses and undecodable bodies are logged and folded into a
// failed Outcome.
func (h *HTTPChecker) Check(ctx context.Context, host string, port int) status.Outcome {
	requestID := uuid.NewString()
	outcome := h.check(ctx, requestID, host, port)

	if !outcome.OK() {
		h.logger.Warn("status poll failed",
			"request_id", requestID,
			"host", host,
			"port", port,
			"kind", string(outcome.Kind),
			"error", outcome.Err,
		)
	}

	return outcome
}

func (h *HTTPChecker) check(ctx context.Context, requestID, host string, port int) status.Outcome {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	target, err := buildURL(h.endpoint, host, port)
	if err != nil {
		return status.Failure(status.KindTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return status.Failure(status.KindTransport, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := h.client.Do(req)
	if err != nil {
		return classify(ctx, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return status.Failure(status.KindHTTPStatus, &status.HTTPStatusError{Code: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return classify(ctx, fmt.Errorf("failed to read response body: %w", err))
	}

	parsed, err := decode(body)
	if err != nil {
		return status.Failure(status.KindDecode, err)
	}

	return status.Success(parsed)
}

// buildURL appends host and port to the endpoint, keeping any query it already has
func buildURL(endpoint, host string, port int) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	q := u.Query()
	q.Set("host", host)
	q.Set("port", strconv.Itoa(port))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// classify separates timeouts from other transport failures
func classify(ctx context.Context, err error) status.Outcome {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return status.Failure(status.KindTimeout, fmt.Errorf("%w: %v", status.ErrTimeout, err))
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return status.Failure(status.KindTimeout, fmt.Errorf("%w: %v", status.ErrTimeout, err))
	}

	return status.Failure(status.KindTransport, err)
}

// decode parses a 2xx body. Any JSON object is accepted and passed through;
// missing fields stay at their zero value.
func decode(body []byte) (status.ServerStatus, error) {
	var s status.ServerStatus

	if !gjson.ValidBytes(body) {
		return s, fmt.Errorf("%w: not valid JSON", status.ErrMalformedBody)
	}
	if !gjson.ParseBytes(body).IsObject() {
		return s, fmt.Errorf("%w: expected a JSON object", status.ErrMalformedBody)
	}

	if err := json.Unmarshal(body, &s); err != nil {
		return status.ServerStatus{}, fmt.Errorf("%w: %v", status.ErrMalformedBody, err)
	}

	return s, nil
}
