// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package datasource

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
	"github.com/footanalytics/datasync/internal/event"
)

var timeSource = time.Now

// Configuration declares the capability of a data source: which data types
// it can synchronize and how often a scheduler should trigger a sync.
type Configuration struct {
	SupportedDataTypes []catalog.DataType
	SyncInterval       time.Duration
}

// validate enforces the registration-level rules on the configuration.
func (c Configuration) validate() error {
	if len(c.SupportedDataTypes) == 0 {
		return fmt.Errorf("%w: configuration must declare at least one supported data type", ErrValidation)
	}

	for _, dataType := range c.SupportedDataTypes {
		if !catalog.IsValid(dataType) {
			return fmt.Errorf("%w: unknown data type %q", ErrValidation, dataType)
		}
	}

	return nil
}

// supports reports whether dataType is part of the declared capability.
func (c Configuration) supports(dataType catalog.DataType) bool {
	for _, supported := range c.SupportedDataTypes {
		if supported == dataType {
			return true
		}
	}

	return false
}

// Credentials is the at-rest encrypted secret material for one provider.
// Decryption is an infrastructure concern; the core only carries the blob.
type Credentials struct {
	// Ref names the secret in the external credential store.
	Ref string

	blob []byte
}

// NewCredentials wraps an encrypted blob with its store reference.
func NewCredentials(ref string, blob []byte) Credentials {
	return Credentials{Ref: ref, blob: blob}
}

// Blob returns the encrypted secret material.
func (c Credentials) Blob() []byte {
	return c.blob
}

// String keeps the secret material out of logs and error messages.
func (c Credentials) String() string {
	return "credentials[" + c.Ref + "]"
}

// DataSource is the aggregate owning one external system registration.
// It is not safe for concurrent use: the orchestrating scheduler must not
// run two syncs for the same data source at once.
type DataSource struct {
	id            string
	systemType    connector.SystemType
	configuration Configuration
	credentials   Credentials

	status     connector.Status
	lastSyncAt *time.Time

	pendingEvents []event.Event
}

// New registers a data source, assigning a fresh identity with status
// DISCONNECTED and recording a DataSourceRegistered event.
func New(systemType connector.SystemType, configuration Configuration, credentials Credentials) (*DataSource, error) {
	if err := configuration.validate(); err != nil {
		return nil, err
	}

	dataSource := &DataSource{
		id:            uuid.NewString(),
		systemType:    systemType,
		configuration: configuration,
		credentials:   credentials,
		status:        connector.StatusDisconnected,
	}

	dataSource.record(event.DataSourceRegistered{
		DataSourceID:       dataSource.id,
		SystemType:         systemType,
		SupportedDataTypes: configuration.SupportedDataTypes,
		Time:               timeSource().UTC(),
	})

	return dataSource, nil
}

// Restore rebuilds an aggregate from persisted state without emitting
// registration events. The id must be a valid UUID.
func Restore(id string, systemType connector.SystemType, configuration Configuration, credentials Credentials, status connector.Status, lastSyncAt *time.Time) (*DataSource, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: data source id %q is not a valid uuid", ErrValidation, id)
	}

	if err := configuration.validate(); err != nil {
		return nil, err
	}

	return &DataSource{
		id:            id,
		systemType:    systemType,
		configuration: configuration,
		credentials:   credentials,
		status:        status,
		lastSyncAt:    lastSyncAt,
	}, nil
}

// ID returns the data source identity.
func (d *DataSource) ID() string {
	return d.id
}

// SystemType returns the provider family of the data source.
func (d *DataSource) SystemType() connector.SystemType {
	return d.systemType
}

// Configuration returns the declared capability of the data source.
func (d *DataSource) Configuration() Configuration {
	return d.configuration
}

// Credentials returns the opaque credential blob reference.
func (d *DataSource) Credentials() Credentials {
	return d.credentials
}

// LastSyncAt returns the time of the last initiated sync, nil if never synced.
func (d *DataSource) LastSyncAt() *time.Time {
	return d.lastSyncAt
}

// IsConnected reports whether the last known status is CONNECTED.
func (d *DataSource) IsConnected() bool {
	return d.status == connector.StatusConnected
}

// ValidateConnection reports the last known status. The aggregate performs
// no network I/O: probing is the connector's job.
func (d *DataSource) ValidateConnection() connector.Status {
	return d.status
}

// UpdateConnectionStatus records the status observed by the infrastructure
// layer after a connector operation.
func (d *DataSource) UpdateConnectionStatus(status connector.Status) {
	d.status = status
}

// InitiateSync validates every rule against the declared capability before
// creating a session: either the whole request is accepted or nothing
// happens. On success it records a SyncInitiated event and bumps LastSyncAt.
func (d *DataSource) InitiateSync(rules []SyncRule) (Session, error) {
	if !d.IsConnected() {
		return Session{}, fmt.Errorf("%w: data source %s has status %s", ErrNotConnected, d.id, d.status)
	}

	if len(rules) == 0 {
		return Session{}, fmt.Errorf("%w: at least one sync rule is required", ErrValidation)
	}

	for _, rule := range rules {
		if !d.configuration.supports(rule.DataType) {
			return Session{}, fmt.Errorf("%w: %s is not supported by %s", ErrUnsupportedDataType, rule.DataType, d.systemType)
		}
	}

	now := timeSource().UTC()
	session := newSession(d.id, len(rules), now)

	d.record(event.SyncInitiated{
		SessionID:    session.ID,
		DataSourceID: d.id,
		RuleCount:    session.RuleCount,
		Time:         now,
	})
	d.lastSyncAt = &now

	return session, nil
}

// IsSyncOverdue reports whether the data source was never synced or the
// configured interval elapsed since the last sync. Elapsed time exactly
// equal to the interval is not overdue.
func (d *DataSource) IsSyncOverdue() bool {
	if d.lastSyncAt == nil {
		return true
	}

	return timeSource().Sub(*d.lastSyncAt) > d.configuration.SyncInterval
}

// DrainEvents returns the recorded events in order and clears the buffer.
func (d *DataSource) DrainEvents() []event.Event {
	drained := d.pendingEvents
	d.pendingEvents = nil
	return drained
}

func (d *DataSource) record(e event.Event) {
	d.pendingEvents = append(d.pendingEvents, e)
}
