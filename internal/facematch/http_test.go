package facematch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *HTTPClient {
	return NewHTTPClient(Config{
		Provider:          "http",
		BaseURL:           serverURL,
		APIKey:            "test-key",
		MaxRetries:        2,
		RequestsPerSecond: 1000,
	}, nil)
}

func TestHTTPIdentify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/identify", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "aW1n", body["image"])

		json.NewEncoder(w).Encode(IdentifyResult{
			Matches: []IdentifyMatch{{PersonID: "p1", Name: "alice", Confidence: 0.97}},
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Identify(context.Background(), "aW1n")
	require.NoError(t, err)
	assert.True(t, result.HasMatches)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "p1", result.Matches[0].PersonID)
}

func TestHTTPRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(RegisterResult{Success: true, AssignedID: "p9"})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Register(context.Background(), "alice", "aW1n")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Verify(context.Background(), "aW1n", "alice")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "/verify", apiErr.Endpoint)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient(Config{
		BaseURL:           srv.URL,
		MaxRetries:        1,
		RequestsPerSecond: 1000,
	}, nil)

	_, err := client.Identify(context.Background(), "aW1n")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	// MaxRetries 1 means 2 total attempts.
	assert.Equal(t, int32(2), calls.Load())
}

func TestIsRetriable(t *testing.T) {
	assert.True(t, isRetriable(0))
	assert.True(t, isRetriable(http.StatusTooManyRequests))
	assert.True(t, isRetriable(http.StatusBadGateway))
	assert.True(t, isRetriable(http.StatusServiceUnavailable))
	assert.True(t, isRetriable(http.StatusGatewayTimeout))

	assert.False(t, isRetriable(http.StatusOK))
	assert.False(t, isRetriable(http.StatusBadRequest))
	assert.False(t, isRetriable(http.StatusNotFound))
	assert.False(t, isRetriable(http.StatusInternalServerError))
}

func TestNewClientFactory(t *testing.T) {
	client, err := NewClient(Config{Provider: "mock"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, client)

	// Empty provider defaults to the mock.
	client, err = NewClient(Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, client)

	client, err = NewClient(Config{Provider: "http", BaseURL: "http://localhost:9000"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTPClient{}, client)

	_, err = NewClient(Config{Provider: "http"}, nil)
	assert.Error(t, err)

	_, err = NewClient(Config{Provider: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}
