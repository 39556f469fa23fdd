// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package platform implements the sink delivering record batches to the
// FootAnalytics ingest API. Its configuration is read from environment
// variables.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/footanalytics/datasync/internal/info"
	"github.com/footanalytics/datasync/internal/sink"
)

var _ sink.Sender = &platformSink{}

// IngestError wraps every failure returned by the ingest API sink so callers
// can tell delivery failures apart from provider failures.
type IngestError struct {
	err error
}

func (e *IngestError) Error() string {
	return "ingest: " + e.err.Error()
}

func (e *IngestError) Unwrap() error {
	return e.err
}

func (e *IngestError) Is(target error) bool {
	ie, ok := target.(*IngestError)
	if !ok {
		return false
	}

	return e.err.Error() == ie.err.Error()
}

// platformSink implements sink.Sender against the FootAnalytics ingest API.
type platformSink struct {
	config

	client atomic.Pointer[http.Client]
}

// NewSender returns a sink.Sender configured to deliver record batches to the
// FootAnalytics ingest API.
func NewSender() (sink.Sender, error) {
	config, err := loadConfigFromEnv()
	if err != nil {
		return nil, handleError(err)
	}

	return &platformSink{
		config: *config,
	}, nil
}

// Send implements sink.Sender.
func (s *platformSink) Send(ctx context.Context, data *sink.Data) error {
	body, err := json.Marshal(data)
	if err != nil {
		return handleError(err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.IngestEndpoint, bytes.NewReader(body))
	if err != nil {
		return handleError(err)
	}

	request.Header.Set("User-Agent", userAgentString())
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Content-Type", "application/json")
	if len(s.Token) > 0 {
		request.Header.Set("Authorization", "Bearer "+s.Token)
	}

	//nolint:contextcheck // need a new context because it will be used in token requests
	resp, err := s.getClient(context.Background()).Do(request)
	if err != nil {
		return handleError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusUnauthorized:
		return handleError(errors.New("invalid token or insufficient permissions"))
	case http.StatusNotFound:
		return handleError(errors.New("data source registration not found"))
	case http.StatusNoContent, http.StatusAccepted:
		return nil
	default:
		decoder := json.NewDecoder(resp.Body)
		var respBody map[string]any
		if err := decoder.Decode(&respBody); err == nil {
			if message, ok := respBody["message"].(string); ok {
				return handleError(errors.New(message))
			}
		}

		return handleError(errors.New("unexpected error"))
	}
}

// userAgentString builds the User-Agent header consumed by the ingest API.
func userAgentString() string {
	return info.AppName + "/" + info.Version
}

func (s *platformSink) getClient(ctx context.Context) *http.Client {
	client := s.client.Load()
	if client != nil {
		return client
	}

	client = &http.Client{}
	client.Transport = newTransport(ctx, s.AuthEndpoint, s.ClientID, s.ClientSecret)
	s.client.Store(client)
	return client
}

func handleError(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return &IngestError{
		err: err,
	}
}
