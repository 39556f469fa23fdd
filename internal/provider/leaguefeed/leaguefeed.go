// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package leaguefeed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
	"github.com/footanalytics/datasync/internal/logger"
)

var (
	// ErrLeagueFeedSource is the sentinel error for all league feed connector errors.
	ErrLeagueFeedSource = errors.New("league feed source")
)

const (
	logName = "datasync:connector:leaguefeed"

	statusPath = "v1/status"

	baseURLKey      = "baseUrl"
	apiKeyKey       = "apiKey"
	tokenURLKey     = "tokenUrl"
	clientIDKey     = "clientId"
	clientSecretKey = "clientSecret"
)

// feedPaths maps every data type the feed provides to its API path.
var feedPaths = map[catalog.DataType]string{
	catalog.MatchSchedule:        "v1/matches/schedule",
	catalog.MatchEvents:          "v1/matches/events",
	catalog.PlayerProfiles:       "v1/players",
	catalog.PlayerStatistics:     "v1/players/statistics",
	catalog.TeamProfiles:         "v1/teams",
	catalog.TeamStatistics:       "v1/teams/statistics",
	catalog.CompetitionStandings: "v1/competitions/standings",
	catalog.TransferData:         "v1/transfers",
}

var _ connector.Connector = &Connector{}
var _ connector.BulkConnector = &Connector{}

// Connector pulls league records over paginated REST requests.
type Connector struct {
	lock   sync.Mutex
	status connector.Status
	client *client
}

// New returns a disconnected league feed connector.
func New() *Connector {
	return &Connector{
		status: connector.StatusDisconnected,
	}
}

// SystemType implements connector.Connector.
func (c *Connector) SystemType() connector.SystemType {
	return connector.SystemLeagueFeed
}

// SupportedDataTypes implements connector.Connector.
func (c *Connector) SupportedDataTypes() []catalog.DataType {
	types := make([]catalog.DataType, 0, len(feedPaths))
	for dataType := range feedPaths {
		types = append(types, dataType)
	}

	slices.Sort(types)
	return types
}

// ConfigurationSchema implements connector.Connector.
func (c *Connector) ConfigurationSchema() []string {
	return []string{baseURLKey, apiKeyKey, tokenURLKey, clientIDKey, clientSecretKey}
}

// ValidateConfiguration implements connector.Connector. The feed needs a
// parseable base URL plus either an API key or full client credentials.
func (c *Connector) ValidateConfiguration(config connector.Config) bool {
	baseURL := config[baseURLKey]
	if baseURL == "" {
		return false
	}

	if _, err := url.Parse(baseURL); err != nil {
		return false
	}

	if config[apiKeyKey] != "" {
		return true
	}

	return config[tokenURLKey] != "" && config[clientIDKey] != "" && config[clientSecretKey] != ""
}

// RateLimit implements connector.Connector. Values mirror the feed contract;
// enforcement is up to the caller.
func (c *Connector) RateLimit() connector.RateLimit {
	return connector.RateLimit{
		RequestsPerMinute: 120,
		BurstSize:         10,
		Cooldown:          30 * time.Second,
	}
}

// Connect implements connector.Connector. Connecting while already connected
// is a no-op.
func (c *Connector) Connect(ctx context.Context, config connector.Config) (connector.Status, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.status == connector.StatusConnected {
		return connector.StatusConnected, nil
	}

	c.status = connector.StatusConnecting

	feedClient, err := newClient(ctx, config[baseURLKey], config[apiKeyKey], config[tokenURLKey], config[clientIDKey], config[clientSecretKey])
	if err != nil {
		c.status = connector.StatusError
		return connector.StatusError, handleErr(err)
	}

	if err := ping(ctx, feedClient); err != nil {
		c.status = connector.StatusError
		return connector.StatusError, handleErr(err)
	}

	c.client = feedClient
	c.status = connector.StatusConnected
	return connector.StatusConnected, nil
}

// Disconnect implements connector.Connector. Safe to call at any time.
func (c *Connector) Disconnect(ctx context.Context) error {
	log := logger.FromContext(ctx).WithName(logName)

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.client != nil {
		c.client.client.CloseIdleConnections()
		c.client = nil
	}

	c.status = connector.StatusDisconnected
	log.Trace("league feed client closed")
	return nil
}

// HealthCheck implements connector.Connector with a status endpoint ping.
func (c *Connector) HealthCheck(ctx context.Context) (bool, error) {
	c.lock.Lock()
	feedClient := c.client
	c.lock.Unlock()

	if feedClient == nil {
		return false, nil
	}

	if err := ping(ctx, feedClient); err != nil {
		return false, nil
	}

	return true, nil
}

// RefreshAuthentication implements connector.Connector by forcing a new
// token from the client-credentials flow. API-key feeds report false so the
// caller falls back to a full reconnect.
func (c *Connector) RefreshAuthentication(ctx context.Context) (bool, error) {
	log := logger.FromContext(ctx).WithName(logName)

	c.lock.Lock()
	feedClient := c.client
	c.lock.Unlock()

	if feedClient == nil {
		return false, nil
	}

	refreshed, err := feedClient.refreshToken()
	if err != nil {
		log.Debug("token refresh failed", "error", err)
		return false, nil
	}

	return refreshed, nil
}

// Sync implements connector.Connector. Failures are partitioned per data
// type so one endpoint outage does not abort the other types.
func (c *Connector) Sync(ctx context.Context, dataTypes []catalog.DataType, since *time.Time) (*connector.SyncResult, error) {
	log := logger.FromContext(ctx).WithName(logName)

	c.lock.Lock()
	feedClient := c.client
	status := c.status
	c.lock.Unlock()

	if feedClient == nil || status != connector.StatusConnected {
		return nil, fmt.Errorf("%w: sync attempted while %s", ErrLeagueFeedSource, status)
	}

	result := connector.NewSyncResult()
	for _, dataType := range dataTypes {
		path, ok := feedPaths[dataType]
		if !ok {
			result.RecordFailure(dataType, "not provided by the league feed")
			continue
		}

		records, err := pullRecords(ctx, feedClient, path, since)
		if err != nil {
			log.Debug("data type pull failed", "dataType", dataType, "error", err)
			result.RecordFailure(dataType, err.Error())
			continue
		}

		result.RecordSuccess(dataType, records)
	}

	return result, nil
}

// BulkSync implements connector.BulkConnector, partitioning the requested
// types in sequential batches and returning one result per batch.
func (c *Connector) BulkSync(ctx context.Context, dataTypes []catalog.DataType, batchSize int) ([]*connector.SyncResult, error) {
	if batchSize <= 0 {
		batchSize = c.OptimalBatchSize()
	}

	results := make([]*connector.SyncResult, 0)
	for start := 0; start < len(dataTypes); start += batchSize {
		if err := ctx.Err(); err != nil {
			return results, handleErr(err)
		}

		end := min(start+batchSize, len(dataTypes))
		result, err := c.Sync(ctx, dataTypes[start:end], nil)
		if err != nil {
			return results, err
		}

		results = append(results, result)
	}

	return results, nil
}

// OptimalBatchSize implements connector.BulkConnector.
func (c *Connector) OptimalBatchSize() int {
	return 3
}

// SupportsBulkOperations implements connector.BulkConnector.
func (c *Connector) SupportsBulkOperations() bool {
	return true
}

// ping checks the feed status endpoint.
func ping(ctx context.Context, feedClient *client) error {
	resp, err := feedClient.doRequest(ctx, http.MethodGet, statusPath, url.Values{})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed status endpoint returned %d", resp.StatusCode)
	}

	return nil
}

// pullRecords pages through one feed endpoint and returns the record count.
func pullRecords(ctx context.Context, feedClient *client, path string, since *time.Time) (int, error) {
	queryParam := url.Values{}
	if since != nil {
		queryParam.Set("updatedSince", since.UTC().Format(time.RFC3339))
	}

	records := 0
	for {
		resp, err := feedClient.doRequest(ctx, http.MethodGet, path, queryParam)
		if err != nil {
			return records, err
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return records, fmt.Errorf("feed endpoint %q returned %d", path, resp.StatusCode)
		}

		items, err := unmarshalRecords(resp.Body)
		resp.Body.Close()
		if err != nil {
			return records, err
		}

		records += len(items)

		if nextToken := resp.Header.Get(continuationHeader); nextToken != "" { //nolint:canonicalheader
			queryParam.Set("continuationToken", nextToken)
			continue
		}

		break
	}

	return records, nil
}

// handleErr always wraps the given error with ErrLeagueFeedSource, dropping
// context cancellations that are part of a normal shutdown.
func handleErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrLeagueFeedSource, err.Error())
}
