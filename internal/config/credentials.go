// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"
	"unicode"

	"github.com/footanalytics/datasync/internal/connector"
	"github.com/footanalytics/datasync/internal/datasource"
)

const credentialEnvPrefix = "DATASYNC_CREDENTIAL_"

var (
	// ErrCredentialNotFound reports a credentialsRef without secret material.
	ErrCredentialNotFound = errors.New("credential not found")
)

// ResolveCredentials looks up the secret material for ref in the process
// environment. The ref "league-feed/main" resolves from
// DATASYNC_CREDENTIAL_LEAGUE_FEED_MAIN.
func ResolveCredentials(ref string) (datasource.Credentials, error) {
	if ref == "" {
		return datasource.Credentials{}, fmt.Errorf("%w: empty %s", ErrCredentialNotFound, CredentialsRefField)
	}

	value, ok := os.LookupEnv(envNameFor(ref))
	if !ok {
		return datasource.Credentials{}, fmt.Errorf("%w: %s not set for ref %q", ErrCredentialNotFound, envNameFor(ref), ref)
	}

	return datasource.NewCredentials(ref, []byte(value)), nil
}

// ConnectorConfig merges the registration's non-secret connection keys with
// the decoded credential material. The secret is a flat JSON object of
// connector keys and wins on conflicts.
func ConnectorConfig(registration *Registration, credentials datasource.Credentials) (connector.Config, error) {
	secretKeys := make(map[string]string)
	if blob := credentials.Blob(); len(blob) > 0 {
		if err := json.Unmarshal(blob, &secretKeys); err != nil {
			// never echo the blob content in the error
			return nil, fmt.Errorf("%w: credential material for ref %q is not a flat json object", ErrParsing, credentials.Ref)
		}
	}

	merged := make(connector.Config, len(registration.Connection)+len(secretKeys))
	maps.Copy(merged, registration.Connection)
	maps.Copy(merged, secretKeys)

	return merged, nil
}

func envNameFor(ref string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		case unicode.IsUpper(r) || unicode.IsDigit(r):
			return r
		default:
			return '_'
		}
	}, ref)

	return credentialEnvPrefix + mapped
}
