// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package leaguefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
)

func feedServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	requests := new(atomic.Int32)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/matches/schedule", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		// two pages linked by a continuation token
		if r.URL.Query().Get("continuationToken") == "" {
			w.Header().Set(continuationHeader, "page-2")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count": 2,
			"items": []map[string]any{{"matchId": "m1"}, {"matchId": "m2"}},
		})
	})
	mux.HandleFunc("/v1/teams", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/v1/players", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count": 1,
			"items": []map[string]any{{"playerId": "p1"}},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, requests
}

func connectedConnector(t *testing.T, baseURL string) *Connector {
	t.Helper()

	conn := New()
	status, err := conn.Connect(context.Background(), connector.Config{baseURLKey: baseURL, apiKeyKey: "test-key"})
	require.NoError(t, err)
	require.Equal(t, connector.StatusConnected, status)
	return conn
}

func TestValidateConfiguration(t *testing.T) {
	t.Parallel()

	conn := New()

	testCases := map[string]struct {
		config   connector.Config
		expected bool
	}{
		"api key configuration is valid": {
			config:   connector.Config{baseURLKey: "https://feed.example.com", apiKeyKey: "key"},
			expected: true,
		},
		"client credentials configuration is valid": {
			config: connector.Config{
				baseURLKey:      "https://feed.example.com",
				tokenURLKey:     "https://auth.example.com/token",
				clientIDKey:     "id",
				clientSecretKey: "secret",
			},
			expected: true,
		},
		"missing base url is invalid": {
			config:   connector.Config{apiKeyKey: "key"},
			expected: false,
		},
		"missing credentials are invalid": {
			config:   connector.Config{baseURLKey: "https://feed.example.com"},
			expected: false,
		},
	}

	for testName, test := range testCases {
		test := test
		t.Run(testName, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expected, conn.ValidateConfiguration(test.config))
		})
	}
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("connect pings the status endpoint", func(t *testing.T) {
		t.Parallel()

		server, _ := feedServer(t)
		conn := connectedConnector(t, server.URL)

		healthy, err := conn.HealthCheck(context.Background())
		require.NoError(t, err)
		assert.True(t, healthy)
	})

	t.Run("connect while connected is a no-op", func(t *testing.T) {
		t.Parallel()

		server, _ := feedServer(t)
		conn := connectedConnector(t, server.URL)

		status, err := conn.Connect(context.Background(), connector.Config{})
		require.NoError(t, err)
		assert.Equal(t, connector.StatusConnected, status)
	})

	t.Run("unreachable feed reports a connection error", func(t *testing.T) {
		t.Parallel()

		conn := New()
		status, err := conn.Connect(context.Background(), connector.Config{baseURLKey: "http://127.0.0.1:1", apiKeyKey: "key"})
		assert.ErrorIs(t, err, ErrLeagueFeedSource)
		assert.Equal(t, connector.StatusError, status)
	})

	t.Run("disconnect is safe without a connection", func(t *testing.T) {
		t.Parallel()

		conn := New()
		assert.NoError(t, conn.Disconnect(context.Background()))
		assert.NoError(t, conn.Disconnect(context.Background()))
	})
}

func TestSync(t *testing.T) {
	t.Parallel()

	t.Run("pages through records and partitions failures per type", func(t *testing.T) {
		t.Parallel()

		server, requests := feedServer(t)
		conn := connectedConnector(t, server.URL)

		since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		result, err := conn.Sync(context.Background(), []catalog.DataType{catalog.MatchSchedule, catalog.TeamProfiles}, &since)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, []catalog.DataType{catalog.MatchSchedule}, result.Successful)
		assert.Equal(t, []catalog.DataType{catalog.TeamProfiles}, result.Failed)
		assert.Equal(t, 4, result.RecordsProcessed) // two pages of two records
		assert.Equal(t, int32(2), requests.Load())
		assert.Contains(t, result.Errors[catalog.TeamProfiles], "502")
	})

	t.Run("data types outside the feed catalog fail with a reason", func(t *testing.T) {
		t.Parallel()

		server, _ := feedServer(t)
		conn := connectedConnector(t, server.URL)

		result, err := conn.Sync(context.Background(), []catalog.DataType{catalog.GPSTracking}, nil)
		require.NoError(t, err)
		assert.Equal(t, []catalog.DataType{catalog.GPSTracking}, result.Failed)
		assert.Equal(t, "not provided by the league feed", result.Errors[catalog.GPSTracking])
	})

	t.Run("sync while disconnected is rejected", func(t *testing.T) {
		t.Parallel()

		conn := New()
		_, err := conn.Sync(context.Background(), []catalog.DataType{catalog.MatchSchedule}, nil)
		assert.ErrorIs(t, err, ErrLeagueFeedSource)
	})
}

func TestBulkSync(t *testing.T) {
	t.Parallel()

	server, _ := feedServer(t)
	conn := connectedConnector(t, server.URL)

	require.True(t, conn.SupportsBulkOperations())

	results, err := conn.BulkSync(context.Background(), []catalog.DataType{catalog.MatchSchedule, catalog.PlayerProfiles}, 1)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[1].Success)
}

func TestRefreshAuthentication(t *testing.T) {
	t.Parallel()

	t.Run("api key feeds cannot refresh", func(t *testing.T) {
		t.Parallel()

		server, _ := feedServer(t)
		conn := connectedConnector(t, server.URL)

		refreshed, err := conn.RefreshAuthentication(context.Background())
		require.NoError(t, err)
		assert.False(t, refreshed)
	})

	t.Run("client credentials feeds fetch a fresh token", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/v1/status", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"bearer","expires_in":3600}`))
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)

		conn := New()
		status, err := conn.Connect(context.Background(), connector.Config{
			baseURLKey:      server.URL,
			tokenURLKey:     server.URL + "/token",
			clientIDKey:     "id",
			clientSecretKey: "secret",
		})
		require.NoError(t, err)
		require.Equal(t, connector.StatusConnected, status)

		refreshed, err := conn.RefreshAuthentication(context.Background())
		require.NoError(t, err)
		assert.True(t, refreshed)
	})
}

func TestSupportedDataTypes(t *testing.T) {
	t.Parallel()

	types := New().SupportedDataTypes()
	assert.NotEmpty(t, types)
	for _, dataType := range types {
		assert.True(t, catalog.IsValid(dataType))
	}
	assert.NotContains(t, types, catalog.GPSTracking)
}
