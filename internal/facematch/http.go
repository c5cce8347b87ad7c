package facematch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/logging"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	initialBackoff    = time.Second
	maxBackoff        = 30 * time.Second
)

// HTTPClient talks to a REST face-recognition service. Transport failures
// are retried with exponential backoff; domain failures (4xx) are not.
// Requests are rate-limited with a token bucket so a reconciliation sweep
// cannot exhaust the provider quota.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	timeout    time.Duration
	log        *logging.Logger
}

func NewHTTPClient(cfg Config, log *logging.Logger) *HTTPClient {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	retries := defaultMaxRetries
	if cfg.MaxRetries > 0 {
		retries = cfg.MaxRetries
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5.0
	}
	if log == nil {
		log = logging.Nop()
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		maxRetries: retries,
		timeout:    timeout,
		log:        log.Named("facematch"),
	}
}

func (c *HTTPClient) Verify(ctx context.Context, imageBase64, personName string) (*VerifyResult, error) {
	body := map[string]any{"image": imageBase64, "person_name": personName}
	raw, err := c.post(ctx, "/verify", body)
	if err != nil {
		return nil, err
	}
	var result VerifyResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &APIError{Endpoint: "/verify", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	result.Raw = raw
	return &result, nil
}

func (c *HTTPClient) Identify(ctx context.Context, imageBase64 string) (*IdentifyResult, error) {
	raw, err := c.post(ctx, "/identify", map[string]any{"image": imageBase64})
	if err != nil {
		return nil, err
	}
	var result IdentifyResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &APIError{Endpoint: "/identify", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	result.HasMatches = len(result.Matches) > 0
	return &result, nil
}

func (c *HTTPClient) Register(ctx context.Context, name, imageBase64 string) (*RegisterResult, error) {
	raw, err := c.post(ctx, "/register", map[string]any{"name": name, "image": imageBase64})
	if err != nil {
		return nil, err
	}
	var result RegisterResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &APIError{Endpoint: "/register", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &result, nil
}

// post performs one rate-limited, retried JSON round trip. Only transport
// errors and retriable statuses (429, 502, 503, 504) are retried.
func (c *HTTPClient) post(ctx context.Context, endpoint string, body map[string]any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &APIError{Endpoint: endpoint, Err: err}
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &APIError{Endpoint: endpoint, Err: err}
		}

		raw, status, err := c.attempt(ctx, endpoint, payload)
		if err == nil {
			if attempt > 0 {
				c.log.Info("face api %s succeeded after %d retries", endpoint, attempt)
			}
			return raw, nil
		}
		lastErr = err

		if !isRetriable(status) {
			return nil, &APIError{Endpoint: endpoint, StatusCode: status, Err: err}
		}
		if attempt == c.maxRetries {
			break
		}
		if ctx.Err() != nil {
			return nil, &APIError{Endpoint: endpoint, Err: ctx.Err()}
		}

		c.log.Warn("face api %s failed (attempt %d/%d), retrying in %v: %v",
			endpoint, attempt+1, c.maxRetries+1, backoff, err)

		select {
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		case <-ctx.Done():
			return nil, &APIError{Endpoint: endpoint, Err: ctx.Err()}
		}
	}

	return nil, &APIError{Endpoint: endpoint, Err: fmt.Errorf("exhausted %d attempts: %w", c.maxRetries+1, lastErr)}
}

func (c *HTTPClient) attempt(ctx context.Context, endpoint string, payload []byte) ([]byte, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(raw, 200))
	}
	return raw, resp.StatusCode, nil
}

func isRetriable(status int) bool {
	if status == 0 {
		// No HTTP status means the failure happened at the transport layer.
		return true
	}
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
