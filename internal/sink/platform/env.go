// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package platform

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

var (
	errMissingEndpoint     = errors.New("PLATFORM_INGEST_ENDPOINT must be set")
	errMissingClientID     = errors.New("PLATFORM_CLIENT_ID must be set when PLATFORM_CLIENT_SECRET is present")
	errMissingClientSecret = errors.New("PLATFORM_CLIENT_SECRET must be set when PLATFORM_CLIENT_ID is present")
	errMultipleAuthMethods = errors.New("PLATFORM_INGEST_TOKEN and PLATFORM_CLIENT_ID are mutually exclusive")
)

// config carries the environment driven configuration of the platform ingest
// sink. A static token and a client-credentials pair are mutually exclusive
// ways to authenticate.
type config struct {
	IngestEndpoint string `env:"PLATFORM_INGEST_ENDPOINT"`
	AuthEndpoint   string `env:"PLATFORM_AUTH_ENDPOINT"`
	ClientID       string `env:"PLATFORM_CLIENT_ID"`
	ClientSecret   string `env:"PLATFORM_CLIENT_SECRET"`
	Token          string `env:"PLATFORM_INGEST_TOKEN"`
}

func loadConfigFromEnv() (*config, error) {
	config := new(config)
	if err := env.Parse(config); err != nil {
		return nil, err
	}

	if len(config.IngestEndpoint) == 0 {
		return nil, errMissingEndpoint
	}

	endpoint, err := url.Parse(config.IngestEndpoint)
	if err != nil || len(endpoint.Scheme) == 0 || len(endpoint.Host) == 0 {
		return nil, fmt.Errorf("invalid PLATFORM_INGEST_ENDPOINT %q", config.IngestEndpoint)
	}

	switch {
	case len(config.Token) > 0 && len(config.ClientID) > 0:
		return nil, errMultipleAuthMethods
	case len(config.ClientID) > 0 && len(config.ClientSecret) == 0:
		return nil, errMissingClientSecret
	case len(config.ClientSecret) > 0 && len(config.ClientID) == 0:
		return nil, errMissingClientID
	}

	if len(config.AuthEndpoint) == 0 {
		config.AuthEndpoint = endpoint.Scheme + "://" + endpoint.Host + "/oauth/token"
	} else if _, err := url.Parse(config.AuthEndpoint); err != nil {
		return nil, fmt.Errorf("invalid PLATFORM_AUTH_ENDPOINT %q", config.AuthEndpoint)
	}

	return config, nil
}
