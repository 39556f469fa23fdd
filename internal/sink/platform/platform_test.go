// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
	"github.com/footanalytics/datasync/internal/info"
	"github.com/footanalytics/datasync/internal/sink"
)

func TestInitialization(t *testing.T) {
	t.Run("without envs", func(t *testing.T) {
		t.Setenv("PLATFORM_INGEST_ENDPOINT", "")
		sender, err := NewSender()
		assert.ErrorIs(t, err, errMissingEndpoint)
		assert.Nil(t, sender)
	})

	t.Run("with required env", func(t *testing.T) {
		t.Setenv("PLATFORM_INGEST_ENDPOINT", "http://localhost:8080/v1/batches")
		sender, err := NewSender()
		require.NoError(t, err)
		platformSink, ok := sender.(*platformSink)
		require.True(t, ok)

		assert.Equal(t, "http://localhost:8080/v1/batches", platformSink.IngestEndpoint)
		assert.Empty(t, platformSink.Token)
		assert.Empty(t, platformSink.ClientID)
		assert.Empty(t, platformSink.ClientSecret)
		assert.Equal(t, "http://localhost:8080/oauth/token", platformSink.AuthEndpoint)
	})
}

func TestSend(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		endpoint      string
		data          *sink.Data
		expectedBody  map[string]any
		expectedError error
	}{
		"successful send": {
			endpoint: "/valid-endpoint",
			data: &sink.Data{
				Source:     "premier-league-feed",
				SystemType: connector.SystemLeagueFeed,
				DataType:   catalog.MatchSchedule,
				Time:       time.Date(2026, time.March, 14, 15, 9, 0, 0, time.UTC),
				Records: []map[string]any{
					{"matchId": "m-1"},
				},
			},
			expectedBody: map[string]any{
				"source":     "premier-league-feed",
				"systemType": "league-feed",
				"dataType":   "MATCH_SCHEDULE",
				"time":       "2026-03-14T15:09:00Z",
				"sensitive":  false,
				"records": []any{
					map[string]any{"matchId": "m-1"},
				},
			},
		},
		"failed send": {
			endpoint: "/invalid-endpoint",
			data: &sink.Data{
				Source: "premier-league-feed",
			},
			expectedError: &IngestError{err: errors.New("error message")},
		},
		"unauthorized send": {
			endpoint: "/unauthorized-endpoint",
			data: &sink.Data{
				Source: "premier-league-feed",
			},
			expectedError: &IngestError{err: errors.New("invalid token or insufficient permissions")},
		},
		"unknown source send": {
			endpoint: "/not-found-endpoint",
			data: &sink.Data{
				Source: "unknown-source",
			},
			expectedError: &IngestError{err: errors.New("data source registration not found")},
		},
		"invalid error response": {
			endpoint: "/invalid-error-response",
			data: &sink.Data{
				Source: "premier-league-feed",
			},
			expectedError: &IngestError{err: errors.New("unexpected error")},
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Body != nil {
					defer r.Body.Close()
				}

				if r.Method != http.MethodPost {
					http.Error(w, "invalid method", http.StatusMethodNotAllowed)
					return
				}

				// check headers
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				assert.Equal(t, info.AppName+"/"+info.Version, r.Header.Get("User-Agent"))

				switch r.RequestURI {
				case "/valid-endpoint":
					decodedBody := make(map[string]any)
					decoder := json.NewDecoder(r.Body)
					err := decoder.Decode(&decodedBody)
					assert.NoError(t, err)
					assert.Equal(t, tc.expectedBody, decodedBody)
					w.WriteHeader(http.StatusAccepted)
					return
				case "/not-found-endpoint":
					http.NotFound(w, r)
				case "/invalid-error-response":
					http.Error(w, "unexpected error", http.StatusBadGateway)
				case "/unauthorized-endpoint":
					http.Error(w, "unauthorized", http.StatusUnauthorized)
				default:
					errCode := http.StatusInternalServerError
					w.WriteHeader(errCode)

					encoder := json.NewEncoder(w)
					err := encoder.Encode(map[string]any{
						"statusCode": errCode,
						"error":      http.StatusText(errCode),
						"message":    "error message",
					})
					assert.NoError(t, err)
					return
				}
			}))
			defer testServer.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			sender := &platformSink{
				config: config{
					IngestEndpoint: testServer.URL + tc.endpoint,
					Token:          "test-token",
				},
			}

			err := sender.Send(ctx, tc.data)
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestContextCancelled(t *testing.T) {
	t.Parallel()

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			defer r.Body.Close()
		}
		http.Error(w, "should not be called", http.StatusInternalServerError)
	}))
	defer testServer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &platformSink{
		config: config{
			IngestEndpoint: testServer.URL,
		},
	}

	err := sender.Send(ctx, &sink.Data{})
	assert.NoError(t, err)
}

func TestClientCredentialFlow(t *testing.T) {
	t.Parallel()

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			defer r.Body.Close()
		}
		if r.Method == http.MethodPost && r.RequestURI == "/oauth/token" {
			err := r.ParseForm()
			assert.NoError(t, err)
			assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
			assert.Equal(t, "Basic dGVzdC1jbGllbnQtaWQ6dGVzdC1jbGllbnQtc2VjcmV0", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			encoder := json.NewEncoder(w)
			err = encoder.Encode(map[string]any{
				"access_token": "generated-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
			assert.NoError(t, err)
			return
		}

		if r.Method == http.MethodPost && r.RequestURI == "/" {
			assert.Equal(t, "Bearer generated-token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
			return
		}

		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer testServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	sender := &platformSink{
		config: config{
			IngestEndpoint: testServer.URL + "/",
			ClientID:       "test-client-id",
			ClientSecret:   "test-client-secret",
			AuthEndpoint:   testServer.URL + "/oauth/token",
		},
	}

	err := sender.Send(ctx, &sink.Data{})
	assert.NoError(t, err)
}
