// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package connector

import (
	"context"
	"time"

	"github.com/footanalytics/datasync/internal/catalog"
)

// SystemType identifies a provider family registered with FootAnalytics.
type SystemType string

const (
	SystemLeagueFeed   SystemType = "league-feed"
	SystemEventFeed    SystemType = "event-feed"
	SystemGPSTracker   SystemType = "gps-tracker"
	SystemVideoService SystemType = "video-service"
)

// Status describes the reachability of an external system.
//
//go:generate ${TOOLS_BIN}/stringer -type=Status -trimprefix Status
type Status int

const (
	// StatusDisconnected is the initial state and the state after Disconnect.
	StatusDisconnected Status = iota
	// StatusConnecting is reported while a connection attempt is in flight.
	StatusConnecting
	// StatusConnected means the transport is ready to serve sync calls.
	StatusConnected
	// StatusError means the last connector operation left the transport unusable.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "DISCONNECTED"
	case StatusConnecting:
		return "CONNECTING"
	case StatusConnected:
		return "CONNECTED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Config carries the provider-specific configuration keys for one connector.
// Values are opaque to the orchestration core.
type Config map[string]string

// RateLimit is the connector's declared throttling envelope. It is advisory:
// enforcement belongs to the sync task layer, not to the connector.
type RateLimit struct {
	RequestsPerMinute int
	BurstSize         int
	Cooldown          time.Duration
}

// Callback receives record batches pushed by a subscription connector.
// It is invoked from the connector's own transport loop.
type Callback func(batch RecordBatch)

// SubscriptionID identifies one active realtime subscription.
type SubscriptionID string

// RecordBatch is the structured payload delivered by push transports. Raw
// records stay untyped, but every batch is tagged with its data type and
// delivery time so consumers can route it without sniffing the payload.
type RecordBatch struct {
	DataType catalog.DataType
	Time     time.Time
	Records  []map[string]any
}

// Connector is the base contract every provider adapter implements.
type Connector interface {
	// SystemType returns the provider family this connector talks to.
	SystemType() SystemType

	// SupportedDataTypes returns the data types this connector can synchronize.
	SupportedDataTypes() []catalog.DataType

	// Connect establishes the transport. Calling it while already connected
	// is a no-op returning StatusConnected.
	Connect(ctx context.Context, config Config) (Status, error)

	// Disconnect releases held transport resources. It must be safe to call
	// even if Connect was never invoked or already failed.
	Disconnect(ctx context.Context) error

	// HealthCheck is a lightweight liveness probe that must not require a
	// full reconnection.
	HealthCheck(ctx context.Context) (bool, error)

	// Sync pulls records for the requested types created or updated since the
	// optional watermark. Per-type failures are reported inside the result,
	// not raised, so one outage does not abort unrelated data types.
	Sync(ctx context.Context, dataTypes []catalog.DataType, since *time.Time) (*SyncResult, error)

	// ConfigurationSchema declares the config keys Connect requires.
	ConfigurationSchema() []string

	// ValidateConfiguration is a pure structural check, no network calls.
	ValidateConfiguration(config Config) bool

	// RateLimit declares the provider throttling envelope.
	RateLimit() RateLimit

	// RefreshAuthentication re-establishes expired credentials without a full
	// reconnect. A false return tells the caller to fall back to Connect.
	RefreshAuthentication(ctx context.Context) (bool, error)
}

// SubscriptionConnector is implemented by connectors that can push realtime
// record batches. After Unsubscribe returns, no further callback invocation
// for that subscription may be observed.
type SubscriptionConnector interface {
	Connector

	Subscribe(ctx context.Context, dataTypes []catalog.DataType, callback Callback) (SubscriptionID, error)
	Unsubscribe(ctx context.Context, id SubscriptionID) error
	IsRealtimeConnected() bool
}

// BulkConnector is implemented by connectors that can partition a sync into
// batches, returning one result per batch so partial progress survives a
// mid-run failure.
type BulkConnector interface {
	Connector

	BulkSync(ctx context.Context, dataTypes []catalog.DataType, batchSize int) ([]*SyncResult, error)
	OptimalBatchSize() int
	SupportsBulkOperations() bool
}

// SupportsSubscription reports whether c exposes the subscription capability.
func SupportsSubscription(c Connector) (SubscriptionConnector, bool) {
	sub, ok := c.(SubscriptionConnector)
	return sub, ok
}

// SupportsBulk reports whether c exposes a usable bulk capability.
func SupportsBulk(c Connector) (BulkConnector, bool) {
	bulk, ok := c.(BulkConnector)
	if !ok || !bulk.SupportsBulkOperations() {
		return nil, false
	}

	return bulk, true
}
