// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package event

import (
	"time"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
)

// Type tags a domain event for subscriber routing.
type Type string

const (
	// TypeWildcard subscribes a handler to every emitted event.
	TypeWildcard Type = "*"

	TypeDataSourceRegistered Type = "DataSourceRegistered"
	TypeSyncInitiated        Type = "SyncInitiated"
	TypeSyncCompleted        Type = "SyncCompleted"
	TypeSyncFailed           Type = "SyncFailed"
)

// Event is an immutable fact emitted by the sync core.
type Event interface {
	// EventType returns the routing tag of the event.
	EventType() Type
	// OccurredAt returns the UTC time the event was recorded.
	OccurredAt() time.Time
}

// DataSourceRegistered is emitted when a new data source aggregate is created.
type DataSourceRegistered struct {
	DataSourceID       string
	SystemType         connector.SystemType
	SupportedDataTypes []catalog.DataType
	Time               time.Time
}

func (e DataSourceRegistered) EventType() Type       { return TypeDataSourceRegistered }
func (e DataSourceRegistered) OccurredAt() time.Time { return e.Time }

// SyncInitiated is emitted when a sync session is created for a connected
// data source, strictly before the corresponding SyncCompleted.
type SyncInitiated struct {
	SessionID    string
	DataSourceID string
	RuleCount    int
	Time         time.Time
}

func (e SyncInitiated) EventType() Type       { return TypeSyncInitiated }
func (e SyncInitiated) OccurredAt() time.Time { return e.Time }

// SyncCompleted is emitted when a sync task finishes successfully, possibly
// with per-data-type partial failures.
type SyncCompleted struct {
	SystemType       connector.SystemType
	Successful       []catalog.DataType
	Failed           []catalog.DataType
	RecordsProcessed int
	Time             time.Time
}

func (e SyncCompleted) EventType() Type       { return TypeSyncCompleted }
func (e SyncCompleted) OccurredAt() time.Time { return e.Time }

// SyncFailed is emitted when a sync task aborts before producing a result.
type SyncFailed struct {
	SystemType connector.SystemType
	Reason     string
	Time       time.Time
}

func (e SyncFailed) EventType() Type       { return TypeSyncFailed }
func (e SyncFailed) OccurredAt() time.Time { return e.Time }
