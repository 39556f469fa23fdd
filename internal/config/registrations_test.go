// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
)

func TestNewRegistrationsFromPath(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testCases := map[string]struct {
		path                  string
		expectedRegistrations []*Registration
		expectedError         error
		expectedErrorString   string
	}{
		"valid yaml file with one registration": {
			path: filepath.Join("testdata", "one.yaml"),
			expectedRegistrations: []*Registration{
				{
					Name:               "premier-league-feed",
					SystemType:         connector.SystemLeagueFeed,
					SupportedDataTypes: DataTypes{catalog.MatchSchedule, catalog.TeamProfiles},
					SyncInterval:       Duration(30 * time.Minute),
					CredentialsRef:     "league-feed/main",
					Connection:         map[string]string{"baseUrl": "https://feed.example.com"},
				},
			},
		},
		"valid yaml file with multiple registrations applies the default interval": {
			path: filepath.Join("testdata", "multiple.yaml"),
			expectedRegistrations: []*Registration{
				{
					Name:               "first-team-trackers",
					SystemType:         connector.SystemGPSTracker,
					SupportedDataTypes: DataTypes{catalog.GPSTracking, catalog.BiometricData},
					SyncInterval:       Duration(5 * time.Minute),
					CredentialsRef:     "gps-tracker/first-team",
				},
				{
					Name:               "academy-trackers",
					SystemType:         connector.SystemGPSTracker,
					SupportedDataTypes: DataTypes{catalog.GPSTracking},
					SyncInterval:       Duration(time.Hour),
					CredentialsRef:     "gps-tracker/academy",
				},
			},
		},
		"missing required fields return error": {
			path:                filepath.Join("testdata", "missing-fields.yaml"),
			expectedError:       ErrParsing,
			expectedErrorString: "missing required fields: systemType, credentialsRef",
		},
		"unknown data types return error": {
			path:                filepath.Join("testdata", "unknown-type.yaml"),
			expectedError:       ErrParsing,
			expectedErrorString: "unknown data types: SHOE_SIZES",
		},
		"non positive sync interval returns error": {
			path:                filepath.Join("testdata", "bad-interval.yaml"),
			expectedError:       ErrParsing,
			expectedErrorString: "syncInterval must be positive",
		},
		"missing file return error": {
			path:          filepath.Join(tempDir, "missing"),
			expectedError: syscall.ENOENT,
		},
	}

	for name, test := range testCases {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			registrations, err := NewRegistrationsFromPath(test.path)
			if test.expectedError != nil {
				assert.Empty(t, registrations)
				assert.ErrorIs(t, err, test.expectedError)
				if test.expectedErrorString != "" {
					assert.ErrorContains(t, err, test.expectedErrorString)
				}
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, test.expectedRegistrations, registrations)
		})
	}
}

func TestNewRegistrationsFromPaths(t *testing.T) {
	t.Parallel()

	t.Run("merges registrations across files", func(t *testing.T) {
		t.Parallel()

		registrations, err := NewRegistrationsFromPaths(
			filepath.Join("testdata", "one.yaml"),
			filepath.Join("testdata", "multiple.yaml"),
		)
		require.NoError(t, err)
		require.Len(t, registrations, 3)
		assert.Equal(t, "premier-league-feed", registrations[0].Name)
		assert.Equal(t, "academy-trackers", registrations[2].Name)
	})

	t.Run("duplicate names across files return error", func(t *testing.T) {
		t.Parallel()

		_, err := NewRegistrationsFromPaths(
			filepath.Join("testdata", "one.yaml"),
			filepath.Join("testdata", "duplicate.yaml"),
		)
		assert.ErrorIs(t, err, ErrParsing)
		assert.ErrorContains(t, err, `registration "premier-league-feed" already declared`)
	})
}

func TestRegistrationConfiguration(t *testing.T) {
	t.Parallel()

	registration := &Registration{
		Name:               "premier-league-feed",
		SystemType:         connector.SystemLeagueFeed,
		SupportedDataTypes: DataTypes{catalog.MatchSchedule},
		SyncInterval:       Duration(30 * time.Minute),
	}

	configuration := registration.Configuration()
	assert.Equal(t, []catalog.DataType{catalog.MatchSchedule}, configuration.SupportedDataTypes)
	assert.Equal(t, 30*time.Minute, configuration.SyncInterval)
}
