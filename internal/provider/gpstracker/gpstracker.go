// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package gpstracker

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
	"github.com/footanalytics/datasync/internal/logger"
	"github.com/footanalytics/datasync/internal/server"
)

const (
	logName = "datasync:connector:gpstracker"

	sharedSecretKey = "sharedSecret"
	fleetIDKey      = "fleetId"

	signatureHeader = "X-Tracker-Signature"
)

// ErrGPSTrackerSource wraps every error raised by this connector.
var ErrGPSTrackerSource = errors.New("gps tracker source error")

// timeSource stamps deliveries missing a capture time. Tests override it.
var timeSource = time.Now

var _ connector.Connector = &Connector{}
var _ connector.SubscriptionConnector = &Connector{}

// trackedTypes lists the data types the wearable fleet captures.
var trackedTypes = []catalog.DataType{
	catalog.GPSTracking,
	catalog.BiometricData,
}

// deliveryPayload is the body of one webhook delivery from the fleet.
type deliveryPayload struct {
	DataType   catalog.DataType `json:"dataType"`
	CapturedAt time.Time        `json:"capturedAt"`
	Records    []map[string]any `json:"records"`
}

type subscription struct {
	dataTypes map[catalog.DataType]struct{}
	callback  connector.Callback
}

// Connector receives push batches from the tracking fleet on a webhook
// route. Batches are buffered for pull syncs and dispatched as they arrive
// to realtime subscriptions.
type Connector struct {
	webhookPath string
	bufferSize  int

	lock         sync.Mutex
	status       connector.Status
	sharedSecret string
	fleetID      string
	buffer       []connector.RecordBatch

	// deliveryLock serializes dispatches against unsubscription: once
	// Unsubscribe returns, no further callback for that subscription runs.
	deliveryLock  sync.Mutex
	subscriptions map[connector.SubscriptionID]subscription
}

// New builds a tracker connector configured from the environment and mounts
// its webhook route on srv. The route rejects deliveries until Connect has
// armed the shared secret.
func New(ctx context.Context, srv server.Server) (*Connector, error) {
	cfg, err := loadTrackerConfig()
	if err != nil {
		return nil, err
	}

	conn := &Connector{
		webhookPath:   cfg.WebhookPath,
		bufferSize:    cfg.BufferSize,
		subscriptions: make(map[connector.SubscriptionID]subscription),
	}

	srv.AddRoute(http.MethodPost, cfg.WebhookPath, conn.handleDelivery)
	logger.FromContext(ctx).WithName(logName).Trace("webhook route mounted", "path", cfg.WebhookPath)
	return conn, nil
}

// SystemType implements connector.Connector.
func (c *Connector) SystemType() connector.SystemType {
	return connector.SystemGPSTracker
}

// SupportedDataTypes implements connector.Connector.
func (c *Connector) SupportedDataTypes() []catalog.DataType {
	types := make([]catalog.DataType, len(trackedTypes))
	copy(types, trackedTypes)
	return types
}

// ConfigurationSchema implements connector.Connector.
func (c *Connector) ConfigurationSchema() []string {
	return []string{sharedSecretKey, fleetIDKey}
}

// ValidateConfiguration implements connector.Connector. Deliveries are
// authenticated by the shared secret, so it is the only mandatory key.
func (c *Connector) ValidateConfiguration(config connector.Config) bool {
	return config[sharedSecretKey] != ""
}

// RateLimit implements connector.Connector. The fleet pushes on its own
// schedule, so the connector declares no throttling envelope.
func (c *Connector) RateLimit() connector.RateLimit {
	return connector.RateLimit{}
}

// Connect implements connector.Connector by arming the webhook route with
// the shared secret. Connecting while connected is a no-op.
func (c *Connector) Connect(_ context.Context, config connector.Config) (connector.Status, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.status == connector.StatusConnected {
		return connector.StatusConnected, nil
	}

	if config[sharedSecretKey] == "" {
		c.status = connector.StatusError
		return connector.StatusError, fmt.Errorf("%w: %s is required", ErrGPSTrackerSource, sharedSecretKey)
	}

	c.sharedSecret = config[sharedSecretKey]
	c.fleetID = config[fleetIDKey]
	c.status = connector.StatusConnected
	return connector.StatusConnected, nil
}

// Disconnect implements connector.Connector. It disarms the webhook route,
// drops buffered batches and cancels every subscription. Safe to call at
// any time.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.deliveryLock.Lock()
	clear(c.subscriptions)
	c.deliveryLock.Unlock()

	c.lock.Lock()
	c.sharedSecret = ""
	c.buffer = nil
	c.status = connector.StatusDisconnected
	c.lock.Unlock()

	logger.FromContext(ctx).WithName(logName).Trace("webhook route disarmed", "path", c.webhookPath)
	return nil
}

// HealthCheck implements connector.Connector. A push transport is healthy
// as long as its route is armed.
func (c *Connector) HealthCheck(_ context.Context) (bool, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.status == connector.StatusConnected, nil
}

// RefreshAuthentication implements connector.Connector. The shared secret
// is static, so callers fall back to a reconnect.
func (c *Connector) RefreshAuthentication(_ context.Context) (bool, error) {
	return false, nil
}

// Sync implements connector.Connector by draining the buffered deliveries
// for the requested types. Types the fleet does not capture fail inside the
// result; types with no pending deliveries succeed with zero records.
func (c *Connector) Sync(_ context.Context, dataTypes []catalog.DataType, since *time.Time) (*connector.SyncResult, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.status != connector.StatusConnected {
		return nil, fmt.Errorf("%w: sync attempted while %s", ErrGPSTrackerSource, c.status)
	}

	requested := make(map[catalog.DataType]struct{}, len(dataTypes))
	result := connector.NewSyncResult()
	for _, dataType := range dataTypes {
		if !c.tracks(dataType) {
			result.RecordFailure(dataType, "not captured by the tracker fleet")
			continue
		}

		requested[dataType] = struct{}{}
		result.RecordSuccess(dataType, 0)
	}

	kept := make([]connector.RecordBatch, 0, len(c.buffer))
	for _, batch := range c.buffer {
		_, wanted := requested[batch.DataType]
		if !wanted || (since != nil && batch.Time.Before(*since)) {
			kept = append(kept, batch)
			continue
		}

		result.RecordSuccess(batch.DataType, len(batch.Records))
	}
	c.buffer = kept

	return result, nil
}

// Subscribe implements connector.SubscriptionConnector.
func (c *Connector) Subscribe(ctx context.Context, dataTypes []catalog.DataType, callback connector.Callback) (connector.SubscriptionID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !c.IsRealtimeConnected() {
		return "", fmt.Errorf("%w: subscribe attempted while disconnected", ErrGPSTrackerSource)
	}

	if len(dataTypes) == 0 {
		dataTypes = trackedTypes
	}

	wanted := make(map[catalog.DataType]struct{}, len(dataTypes))
	for _, dataType := range dataTypes {
		if !c.tracks(dataType) {
			return "", fmt.Errorf("%w: %s is not captured by the tracker fleet", ErrGPSTrackerSource, dataType)
		}
		wanted[dataType] = struct{}{}
	}

	id := connector.SubscriptionID(uuid.NewString())

	c.deliveryLock.Lock()
	defer c.deliveryLock.Unlock()
	c.subscriptions[id] = subscription{dataTypes: wanted, callback: callback}

	return id, nil
}

// Unsubscribe implements connector.SubscriptionConnector. It fences
// in-flight deliveries: once it returns no further callback is observed.
func (c *Connector) Unsubscribe(_ context.Context, id connector.SubscriptionID) error {
	c.deliveryLock.Lock()
	defer c.deliveryLock.Unlock()

	if _, ok := c.subscriptions[id]; !ok {
		return connector.ErrSubscriptionNotFound
	}

	delete(c.subscriptions, id)
	return nil
}

// IsRealtimeConnected implements connector.SubscriptionConnector.
func (c *Connector) IsRealtimeConnected() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.status == connector.StatusConnected
}

func (c *Connector) tracks(dataType catalog.DataType) bool {
	for _, tracked := range trackedTypes {
		if tracked == dataType {
			return true
		}
	}
	return false
}

// handleDelivery processes one webhook delivery from the fleet. It is
// mounted on the webhook server at construction time.
func (c *Connector) handleDelivery(ctx context.Context, headers http.Header, body []byte) error {
	log := logger.FromContext(ctx).WithName(logName)

	c.lock.Lock()
	secret := c.sharedSecret
	status := c.status
	c.lock.Unlock()

	if status != connector.StatusConnected {
		return fmt.Errorf("%w: delivery received while %s", ErrGPSTrackerSource, status)
	}

	if subtle.ConstantTimeCompare([]byte(headers.Get(signatureHeader)), []byte(secret)) != 1 {
		log.Debug("delivery rejected", "reason", "signature mismatch")
		return fmt.Errorf("%w: delivery signature mismatch", ErrGPSTrackerSource)
	}

	var payload deliveryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: malformed delivery: %s", ErrGPSTrackerSource, err.Error())
	}

	if !c.tracks(payload.DataType) {
		return fmt.Errorf("%w: unexpected data type %q in delivery", ErrGPSTrackerSource, payload.DataType)
	}

	batch := connector.RecordBatch{
		DataType: payload.DataType,
		Time:     payload.CapturedAt,
		Records:  payload.Records,
	}
	if batch.Time.IsZero() {
		batch.Time = timeSource().UTC()
	}

	c.bufferBatch(batch)
	c.dispatch(batch)

	log.Trace("delivery accepted", "dataType", payload.DataType, "records", len(payload.Records))
	return nil
}

// bufferBatch appends batch for later pull syncs, dropping the oldest
// delivery once the buffer is full.
func (c *Connector) bufferBatch(batch connector.RecordBatch) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if len(c.buffer) >= c.bufferSize {
		c.buffer = c.buffer[1:]
	}

	c.buffer = append(c.buffer, batch)
}

func (c *Connector) dispatch(batch connector.RecordBatch) {
	c.deliveryLock.Lock()
	defer c.deliveryLock.Unlock()

	for _, sub := range c.subscriptions {
		if _, ok := sub.dataTypes[batch.DataType]; !ok {
			continue
		}

		sub.callback(batch)
	}
}
