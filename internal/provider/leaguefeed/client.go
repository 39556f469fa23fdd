// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package leaguefeed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

const continuationHeader = "X-Continuation-Token"

type client struct {
	baseURL *url.URL
	apiKey  string

	client      http.Client
	tokenSource oauth2.TokenSource
}

func newClient(ctx context.Context, baseURL, apiKey, tokenURL, clientID, clientSecret string) (*client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	transport, tokenSource := newTransport(ctx, tokenURL, clientID, clientSecret)
	return &client{
		baseURL:     parsed,
		apiKey:      apiKey,
		client:      http.Client{Transport: transport},
		tokenSource: tokenSource,
	}, nil
}

func (c *client) doRequest(ctx context.Context, method string, path string, queryParam url.Values) (*http.Response, error) {
	requestURL := c.baseURL.JoinPath(path)
	requestURL.RawQuery = queryParam.Encode()

	req, err := http.NewRequestWithContext(ctx, method, requestURL.String(), nil)
	if err != nil {
		return nil, err
	}

	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	return c.client.Do(req)
}

// refreshToken forces a fresh token from the client-credentials flow. It
// reports false without error when the feed uses plain API-key auth.
func (c *client) refreshToken() (bool, error) {
	if c.tokenSource == nil {
		return false, nil
	}

	if _, err := c.tokenSource.Token(); err != nil {
		return false, err
	}

	return true, nil
}

func unmarshalRecords(body io.Reader) ([]map[string]any, error) {
	type resultsStruct struct {
		Count int              `json:"count"`
		Items []map[string]any `json:"items"`
	}

	results := new(resultsStruct)
	unmarshaler := json.NewDecoder(body)
	if err := unmarshaler.Decode(&results); err != nil {
		return nil, err
	}

	return results.Items, nil
}
