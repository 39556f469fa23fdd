// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package datasource

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
	"github.com/footanalytics/datasync/internal/event"
)

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testDataSource(t *testing.T) *DataSource {
	t.Helper()

	dataSource, err := New(
		connector.SystemLeagueFeed,
		Configuration{
			SupportedDataTypes: []catalog.DataType{catalog.MatchSchedule, catalog.PlayerProfiles},
			SyncInterval:       time.Hour,
		},
		NewCredentials("league-feed-token", []byte("encrypted")),
	)
	require.NoError(t, err)
	return dataSource
}

func TestNewDataSource(t *testing.T) {
	t.Parallel()

	t.Run("registration assigns identity and records event", func(t *testing.T) {
		t.Parallel()

		dataSource := testDataSource(t)

		_, err := uuid.Parse(dataSource.ID())
		assert.NoError(t, err)
		assert.Equal(t, connector.StatusDisconnected, dataSource.ValidateConnection())
		assert.Nil(t, dataSource.LastSyncAt())

		events := dataSource.DrainEvents()
		require.Len(t, events, 1)
		registered, ok := events[0].(event.DataSourceRegistered)
		require.True(t, ok)
		assert.Equal(t, dataSource.ID(), registered.DataSourceID)
		assert.Equal(t, connector.SystemLeagueFeed, registered.SystemType)
		assert.Equal(t, []catalog.DataType{catalog.MatchSchedule, catalog.PlayerProfiles}, registered.SupportedDataTypes)

		assert.Empty(t, dataSource.DrainEvents())
	})

	t.Run("empty capability is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := New(connector.SystemLeagueFeed, Configuration{}, Credentials{})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown data type is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := New(connector.SystemLeagueFeed, Configuration{
			SupportedDataTypes: []catalog.DataType{catalog.DataType("WEATHER")},
		}, Credentials{})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestRestore(t *testing.T) {
	t.Parallel()

	configuration := Configuration{
		SupportedDataTypes: []catalog.DataType{catalog.GPSTracking},
		SyncInterval:       time.Minute,
	}

	t.Run("valid state restores without events", func(t *testing.T) {
		t.Parallel()

		dataSource, err := Restore(uuid.NewString(), connector.SystemGPSTracker, configuration, Credentials{}, connector.StatusConnected, &testTime)
		require.NoError(t, err)
		assert.True(t, dataSource.IsConnected())
		assert.Empty(t, dataSource.DrainEvents())
	})

	t.Run("malformed identity is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := Restore("not-a-uuid", connector.SystemGPSTracker, configuration, Credentials{}, connector.StatusDisconnected, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestInitiateSync(t *testing.T) {
	t.Parallel()

	t.Run("fails with not connected while disconnected", func(t *testing.T) {
		t.Parallel()

		dataSource := testDataSource(t)
		dataSource.DrainEvents()

		_, err := dataSource.InitiateSync([]SyncRule{{DataType: catalog.MatchSchedule}})
		assert.ErrorIs(t, err, ErrNotConnected)
		assert.Empty(t, dataSource.DrainEvents())
		assert.Nil(t, dataSource.LastSyncAt())
	})

	t.Run("creates session and records event when connected", func(t *testing.T) {
		t.Parallel()

		dataSource := testDataSource(t)
		dataSource.DrainEvents()
		dataSource.UpdateConnectionStatus(connector.StatusConnected)

		session, err := dataSource.InitiateSync([]SyncRule{{DataType: catalog.MatchSchedule}})
		require.NoError(t, err)
		assert.Equal(t, dataSource.ID(), session.DataSourceID)
		assert.Equal(t, 1, session.RuleCount)
		assert.NotEmpty(t, session.ID)

		require.NotNil(t, dataSource.LastSyncAt())
		assert.Equal(t, session.CreatedAt, *dataSource.LastSyncAt())

		events := dataSource.DrainEvents()
		require.Len(t, events, 1)
		initiated, ok := events[0].(event.SyncInitiated)
		require.True(t, ok)
		assert.Equal(t, session.ID, initiated.SessionID)
		assert.Equal(t, 1, initiated.RuleCount)
	})

	t.Run("unsupported data type fails before any session", func(t *testing.T) {
		t.Parallel()

		dataSource := testDataSource(t)
		dataSource.DrainEvents()
		dataSource.UpdateConnectionStatus(connector.StatusConnected)

		_, err := dataSource.InitiateSync([]SyncRule{
			{DataType: catalog.MatchSchedule},
			{DataType: catalog.InjuryData},
		})
		assert.ErrorIs(t, err, ErrUnsupportedDataType)
		assert.ErrorContains(t, err, string(catalog.InjuryData))
		assert.ErrorContains(t, err, string(connector.SystemLeagueFeed))
		assert.Empty(t, dataSource.DrainEvents())
		assert.Nil(t, dataSource.LastSyncAt())
	})

	t.Run("empty rule set is a validation error", func(t *testing.T) {
		t.Parallel()

		dataSource := testDataSource(t)
		dataSource.UpdateConnectionStatus(connector.StatusConnected)

		_, err := dataSource.InitiateSync(nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestIsSyncOverdue(t *testing.T) {
	// not parallel: the test overrides the package time source

	configuration := Configuration{
		SupportedDataTypes: []catalog.DataType{catalog.MatchSchedule},
		SyncInterval:       time.Hour,
	}

	testCases := map[string]struct {
		lastSyncAt *time.Time
		now        time.Time
		expected   bool
	}{
		"never synced is overdue": {
			lastSyncAt: nil,
			now:        testTime,
			expected:   true,
		},
		"within the interval is not overdue": {
			lastSyncAt: &testTime,
			now:        testTime.Add(30 * time.Minute),
			expected:   false,
		},
		"exactly at the interval is not overdue": {
			lastSyncAt: &testTime,
			now:        testTime.Add(time.Hour),
			expected:   false,
		},
		"past the interval is overdue": {
			lastSyncAt: &testTime,
			now:        testTime.Add(time.Hour + time.Nanosecond),
			expected:   true,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			dataSource, err := Restore(uuid.NewString(), connector.SystemLeagueFeed, configuration, Credentials{}, connector.StatusDisconnected, test.lastSyncAt)
			require.NoError(t, err)

			originalTimeSource := timeSource
			timeSource = func() time.Time { return test.now }
			defer func() { timeSource = originalTimeSource }()

			assert.Equal(t, test.expected, dataSource.IsSyncOverdue())
		})
	}
}

func TestNewSyncRule(t *testing.T) {
	t.Parallel()

	rule, err := NewSyncRule(catalog.TeamStatistics, "season=2026")
	require.NoError(t, err)
	assert.Equal(t, catalog.TeamStatistics, rule.DataType)
	assert.Equal(t, "season=2026", rule.Filter)

	_, err = NewSyncRule(catalog.DataType("WEATHER"), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCredentialsNeverExposeSecrets(t *testing.T) {
	t.Parallel()

	credentials := NewCredentials("vault:league-feed", []byte("super-secret"))
	assert.NotContains(t, credentials.String(), "super-secret")
	assert.Equal(t, []byte("super-secret"), credentials.Blob())
}
