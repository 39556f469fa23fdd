// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package synctask

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
	"github.com/footanalytics/datasync/internal/event"
	"github.com/footanalytics/datasync/internal/logger"
)

const loggerName = "datasync:synctask"

var timeSource = time.Now

// State tracks one task execution through the sync protocol.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateConnecting
	StateSyncing
	StateDisconnecting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateConnecting:
		return "connecting"
	case StateSyncing:
		return "syncing"
	case StateDisconnecting:
		return "disconnecting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Task executes the sync protocol against one connector with one
// configuration. A Task instance runs one execution at a time; tasks for
// different data sources can run in parallel, sharing only the event stream.
type Task struct {
	conn    connector.Connector
	config  connector.Config
	stream  *event.Stream
	limiter *rate.Limiter
	timeout time.Duration

	state    atomic.Int32
	observer func(State)
}

// Option customizes a Task.
type Option func(*Task)

// WithTimeout bounds every execution; exceeding it surfaces as a timeout
// error while still running the disconnect step.
func WithTimeout(timeout time.Duration) Option {
	return func(t *Task) {
		t.timeout = timeout
	}
}

// WithStateObserver registers observer on every state transition. It is
// invoked synchronously from the executing goroutine and must not block.
func WithStateObserver(observer func(State)) Option {
	return func(t *Task) {
		t.observer = observer
	}
}

// New builds a task bound to conn. The connector's declared rate limit is
// enforced here, through a token bucket, not by the connector itself.
func New(conn connector.Connector, config connector.Config, stream *event.Stream, opts ...Option) *Task {
	task := &Task{
		conn:    conn,
		config:  config,
		stream:  stream,
		limiter: limiterFor(conn.RateLimit()),
	}

	for _, opt := range opts {
		opt(task)
	}

	return task
}

// State returns the current protocol state of the task. Transitions can
// also be observed as they happen through WithStateObserver.
func (t *Task) State() State {
	return State(t.state.Load())
}

func (t *Task) setState(state State) {
	t.state.Store(int32(state))
	if t.observer != nil {
		t.observer(state)
	}
}

// Execute runs validate, connect, sync, disconnect for the requested data
// types since the optional watermark. Disconnect runs exactly once on every
// path; a disconnect-time error is logged and never masks the task outcome.
func (t *Task) Execute(ctx context.Context, dataTypes []catalog.DataType, since *time.Time) (result *connector.SyncResult, err error) {
	log := logger.FromContext(ctx).WithName(loggerName)

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	defer func() {
		t.disconnect(ctx, log)
		if err != nil {
			t.setState(StateFailed)
			t.emitFailure(ctx, err)
			return
		}

		t.setState(StateCompleted)
		t.emitCompletion(ctx, result)
	}()

	t.setState(StateValidating)
	if !t.conn.ValidateConfiguration(t.config) {
		return nil, fmt.Errorf("%w: connector %s rejected the configuration", connector.ErrInvalidConfiguration, t.conn.SystemType())
	}

	if err := t.connect(ctx); err != nil {
		return nil, err
	}

	t.setState(StateSyncing)
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, asTimeout(err, "sync")
	}

	result, err = t.conn.Sync(ctx, dataTypes, since)
	if err != nil {
		return nil, asTimeout(err, "sync")
	}

	log.Debug("sync finished",
		"systemType", t.conn.SystemType(),
		"successful", len(result.Successful),
		"failed", len(result.Failed),
		"records", result.RecordsProcessed)
	return result, nil
}

// ExecuteBulk runs the batch-partitioned sync path, returning one result per
// batch so partial progress survives a mid-run failure. Connectors without
// the bulk capability fall back to a single Execute.
func (t *Task) ExecuteBulk(ctx context.Context, dataTypes []catalog.DataType, since *time.Time) (results []*connector.SyncResult, err error) {
	bulk, ok := connector.SupportsBulk(t.conn)
	if !ok {
		result, err := t.Execute(ctx, dataTypes, since)
		if result == nil {
			return nil, err
		}
		return []*connector.SyncResult{result}, err
	}

	log := logger.FromContext(ctx).WithName(loggerName)

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	defer func() {
		t.disconnect(ctx, log)
		if err != nil {
			t.setState(StateFailed)
			t.emitFailure(ctx, err)
			return
		}

		t.setState(StateCompleted)
		merged := connector.NewSyncResult()
		for _, result := range results {
			merged.Merge(result)
		}
		t.emitCompletion(ctx, merged)
	}()

	t.setState(StateValidating)
	if !t.conn.ValidateConfiguration(t.config) {
		return nil, fmt.Errorf("%w: connector %s rejected the configuration", connector.ErrInvalidConfiguration, t.conn.SystemType())
	}

	if err := t.connect(ctx); err != nil {
		return nil, err
	}

	t.setState(StateSyncing)
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, asTimeout(err, "bulk sync")
	}

	results, err = bulk.BulkSync(ctx, dataTypes, bulk.OptimalBatchSize())
	if err != nil {
		return results, asTimeout(err, "bulk sync")
	}

	log.Debug("bulk sync finished", "systemType", t.conn.SystemType(), "batches", len(results))
	return results, nil
}

// ExecuteRealtimeSubscription registers callback on a subscription-capable
// connector after connecting it. A connector without the capability yields
// ok=false and no error: absence of the capability is a normal, checkable
// condition, not a fault.
func (t *Task) ExecuteRealtimeSubscription(ctx context.Context, dataTypes []catalog.DataType, callback connector.Callback) (id connector.SubscriptionID, ok bool, err error) {
	sub, supported := connector.SupportsSubscription(t.conn)
	if !supported {
		return "", false, nil
	}

	log := logger.FromContext(ctx).WithName(loggerName)

	t.setState(StateValidating)
	if !t.conn.ValidateConfiguration(t.config) {
		t.setState(StateFailed)
		return "", true, fmt.Errorf("%w: connector %s rejected the configuration", connector.ErrInvalidConfiguration, t.conn.SystemType())
	}

	if err := t.connect(ctx); err != nil {
		t.disconnect(ctx, log)
		t.setState(StateFailed)
		return "", true, err
	}

	t.setState(StateSyncing)
	id, err = sub.Subscribe(ctx, dataTypes, callback)
	if err != nil {
		t.disconnect(ctx, log)
		t.setState(StateFailed)
		return "", true, asTimeout(err, "subscribe")
	}

	log.Debug("realtime subscription registered", "systemType", t.conn.SystemType(), "subscriptionId", id)
	return id, true, nil
}

// connect establishes the transport, falling back to a credential refresh
// when the connector reports an unhealthy state with a live configuration.
func (t *Task) connect(ctx context.Context) error {
	t.setState(StateConnecting)

	if err := t.limiter.Wait(ctx); err != nil {
		return asTimeout(err, "connect")
	}

	status, err := t.conn.Connect(ctx, t.config)
	if err != nil {
		return fmt.Errorf("%w: %w", connector.ErrConnection, asTimeout(err, "connect"))
	}

	if status != connector.StatusConnected {
		return fmt.Errorf("%w: connector %s reported status %s after connect", connector.ErrConnection, t.conn.SystemType(), status)
	}

	healthy, err := t.conn.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", connector.ErrConnection, asTimeout(err, "health check"))
	}

	if healthy {
		return nil
	}

	// Unhealthy after a successful connect usually means expired credentials:
	// try a refresh first, then one full reconnect.
	refreshed, err := t.conn.RefreshAuthentication(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", connector.ErrAuthentication, err)
	}

	if refreshed {
		return nil
	}

	status, err = t.conn.Connect(ctx, t.config)
	if err != nil || status != connector.StatusConnected {
		return fmt.Errorf("%w: credential refresh failed and reconnect did not recover", connector.ErrAuthentication)
	}

	return nil
}

// disconnect is the guaranteed cleanup step. It never raises: errors are
// swallowed and logged so they cannot mask the primary task outcome.
func (t *Task) disconnect(ctx context.Context, log logger.Logger) {
	t.setState(StateDisconnecting)

	// the execution context may already be expired; cleanup still must run.
	if err := t.conn.Disconnect(context.WithoutCancel(ctx)); err != nil {
		log.Error("error disconnecting connector", "systemType", t.conn.SystemType(), "error", err)
	}
}

func (t *Task) emitCompletion(ctx context.Context, result *connector.SyncResult) {
	if t.stream == nil || result == nil {
		return
	}

	t.stream.Emit(ctx, event.SyncCompleted{
		SystemType:       t.conn.SystemType(),
		Successful:       result.Successful,
		Failed:           result.Failed,
		RecordsProcessed: result.RecordsProcessed,
		Time:             timeSource().UTC(),
	})
}

func (t *Task) emitFailure(ctx context.Context, err error) {
	if t.stream == nil {
		return
	}

	t.stream.Emit(ctx, event.SyncFailed{
		SystemType: t.conn.SystemType(),
		Reason:     err.Error(),
		Time:       timeSource().UTC(),
	})
}

// asTimeout converts a context deadline error into the timeout subtype of
// the connection error family.
func asTimeout(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &connector.TimeoutError{Operation: operation}
	}

	return err
}
