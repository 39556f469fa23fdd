// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package fake provides configurable connector doubles for tests.
package fake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
)

var _ connector.Connector = &Connector{}

// Connector is a configurable in-memory connector double.
type Connector struct {
	tb testing.TB

	systemType     connector.SystemType
	supportedTypes []catalog.DataType
	schema         []string
	rateLimit      connector.RateLimit

	// Records holds the number of records to report per synced data type.
	Records map[catalog.DataType]int
	// FailTypes maps data types to the per-type failure reason Sync reports.
	FailTypes map[catalog.DataType]string

	// ConnectErr, SyncErr and HealthErr make the corresponding call fail.
	ConnectErr error
	SyncErr    error
	HealthErr  error
	// Healthy is returned by HealthCheck when HealthErr is nil.
	Healthy bool
	// RefreshOK is returned by RefreshAuthentication.
	RefreshOK bool
	// RejectConfiguration makes ValidateConfiguration return false.
	RejectConfiguration bool
	// Block makes Sync wait for ctx cancellation, to exercise timeouts.
	Block bool

	lock            sync.Mutex
	status          connector.Status
	connectCalls    int
	disconnectCalls int
	syncCalls       int
	refreshCalls    int
	lastSince       *time.Time
}

// NewConnector returns a healthy connector double for systemType.
func NewConnector(tb testing.TB, systemType connector.SystemType, supportedTypes ...catalog.DataType) *Connector {
	tb.Helper()

	return &Connector{
		tb:             tb,
		systemType:     systemType,
		supportedTypes: supportedTypes,
		schema:         []string{"baseUrl", "apiKey"},
		rateLimit: connector.RateLimit{
			RequestsPerMinute: 600,
			BurstSize:         10,
			Cooldown:          time.Second,
		},
		Records:   make(map[catalog.DataType]int),
		FailTypes: make(map[catalog.DataType]string),
		Healthy:   true,
		RefreshOK: true,
	}
}

func (c *Connector) SystemType() connector.SystemType {
	return c.systemType
}

func (c *Connector) SupportedDataTypes() []catalog.DataType {
	return c.supportedTypes
}

func (c *Connector) Connect(ctx context.Context, _ connector.Config) (connector.Status, error) {
	c.tb.Helper()

	if err := ctx.Err(); err != nil {
		return connector.StatusError, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	c.connectCalls++

	if c.status == connector.StatusConnected {
		return connector.StatusConnected, nil
	}

	if c.ConnectErr != nil {
		c.status = connector.StatusError
		return connector.StatusError, c.ConnectErr
	}

	c.status = connector.StatusConnected
	return connector.StatusConnected, nil
}

func (c *Connector) Disconnect(_ context.Context) error {
	c.tb.Helper()

	c.lock.Lock()
	defer c.lock.Unlock()
	c.disconnectCalls++
	c.status = connector.StatusDisconnected
	return nil
}

func (c *Connector) HealthCheck(ctx context.Context) (bool, error) {
	c.tb.Helper()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	if c.HealthErr != nil {
		return false, c.HealthErr
	}

	return c.Healthy, nil
}

func (c *Connector) Sync(ctx context.Context, dataTypes []catalog.DataType, since *time.Time) (*connector.SyncResult, error) {
	c.tb.Helper()

	c.lock.Lock()
	c.syncCalls++
	c.lastSince = since
	c.lock.Unlock()

	if c.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if c.SyncErr != nil {
		return nil, c.SyncErr
	}

	result := connector.NewSyncResult()
	for _, dataType := range dataTypes {
		if reason, failed := c.FailTypes[dataType]; failed {
			result.RecordFailure(dataType, reason)
			continue
		}

		result.RecordSuccess(dataType, c.Records[dataType])
	}

	return result, nil
}

func (c *Connector) ConfigurationSchema() []string {
	return c.schema
}

func (c *Connector) ValidateConfiguration(config connector.Config) bool {
	if c.RejectConfiguration {
		return false
	}

	for _, key := range c.schema {
		if config[key] == "" {
			return false
		}
	}

	return true
}

func (c *Connector) RateLimit() connector.RateLimit {
	return c.rateLimit
}

func (c *Connector) RefreshAuthentication(_ context.Context) (bool, error) {
	c.tb.Helper()

	c.lock.Lock()
	defer c.lock.Unlock()
	c.refreshCalls++
	return c.RefreshOK, nil
}

// Status returns the current connection status of the double.
func (c *Connector) Status() connector.Status {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.status
}

// ConnectCalls returns how many times Connect was invoked.
func (c *Connector) ConnectCalls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.connectCalls
}

// DisconnectCalls returns how many times Disconnect was invoked.
func (c *Connector) DisconnectCalls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.disconnectCalls
}

// SyncCalls returns how many times Sync was invoked.
func (c *Connector) SyncCalls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.syncCalls
}

// RefreshCalls returns how many times RefreshAuthentication was invoked.
func (c *Connector) RefreshCalls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.refreshCalls
}

// LastSince returns the watermark passed to the last Sync call.
func (c *Connector) LastSince() *time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lastSince
}
