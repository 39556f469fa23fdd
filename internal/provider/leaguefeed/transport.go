// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package leaguefeed

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// newTransport creates an HTTP transport configured with a client-credentials
// flow when the feed exposes a token endpoint, falling back to the default
// transport for plain API-key feeds.
func newTransport(ctx context.Context, tokenURL, clientID, clientSecret string) (http.RoundTripper, oauth2.TokenSource) {
	if tokenURL == "" || clientID == "" || clientSecret == "" {
		return http.DefaultTransport, nil
	}

	config := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	source := config.TokenSource(ctx)
	return &oauth2.Transport{Source: source}, source
}
