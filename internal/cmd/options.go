// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/config"
	"github.com/footanalytics/datasync/internal/connector"
	"github.com/footanalytics/datasync/internal/datasource"
	"github.com/footanalytics/datasync/internal/event"
	"github.com/footanalytics/datasync/internal/logger"
	"github.com/footanalytics/datasync/internal/server"
	"github.com/footanalytics/datasync/internal/sink"
	"github.com/footanalytics/datasync/internal/synctask"
)

// options configures the run and sync command executions.
type options struct {
	sourceName    string
	registrations []*config.Registration
	dataTypes     []catalog.DataType
	timeout       time.Duration
	out           io.Writer
	sender        func() (sink.Sender, error)
	components    func(context.Context) (*components, error)

	lock sync.Mutex
}

// validate checks the configured values and reports invalid setups.
func (o *options) validate() error {
	if o.sourceName == "" {
		return errNoArguments
	}

	if len(o.registrations) == 0 {
		return errNoSourceFile
	}

	if o.registration() == nil {
		return fmt.Errorf("%w: %s", errUnknownSource, o.sourceName)
	}

	return nil
}

// registration returns the selected data source registration, nil when the
// name is not declared in any source file.
func (o *options) registration() *config.Registration {
	for _, registration := range o.registrations {
		if strings.ToLower(registration.Name) == o.sourceName {
			return registration
		}
	}

	return nil
}

// executeSync runs a one-shot synchronization for the selected data source.
func (o *options) executeSync(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	run, err := o.prepare(ctx)
	if err != nil {
		return err
	}

	task := synctask.New(run.conn, run.config, run.stream,
		synctask.WithTimeout(o.timeout),
		synctask.WithStateObserver(run.mirror(ctx)),
	)

	result, err := task.Execute(ctx, run.dataTypes, run.source.LastSyncAt())
	if err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("%w: %d of %d data types failed",
			errPartialSync, len(result.Failed), len(result.Failed)+len(result.Successful))
	}

	return nil
}

// executeEventStream starts the realtime subscription for the selected data
// source and blocks until the context expires or the process is interrupted.
func (o *options) executeEventStream(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.FromContext(ctx).WithName(loggerName)

	run, err := o.prepare(ctx)
	if err != nil {
		return err
	}

	// the sink is only needed by the push path, so it is built lazily here
	// instead of failing one-shot syncs that never deliver batches.
	if o.sender != nil {
		if run.sender, err = o.sender(); err != nil {
			return err
		}
	}

	if run.server != nil {
		run.server.StartAsync(ctx)
		defer func() {
			if err := run.server.Stop(); err != nil {
				log.Error("error stopping webhook server", "error", err)
			}
		}()
	}

	task := synctask.New(run.conn, run.config, run.stream, synctask.WithStateObserver(run.mirror(ctx)))

	id, ok, err := task.ExecuteRealtimeSubscription(ctx, run.dataTypes, run.deliver(ctx))
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: %s", errNoRealtimeSupport, o.sourceName)
	}

	log.Info("realtime subscription active",
		"source", o.sourceName,
		"systemType", run.source.SystemType(),
		"subscriptionId", id)
	<-ctx.Done()

	// the signal already expired the context; cleanup still must run.
	cleanupCtx := context.WithoutCancel(ctx)
	if sub, supported := connector.SupportsSubscription(run.conn); supported {
		if err := sub.Unsubscribe(cleanupCtx, id); err != nil {
			log.Error("error cancelling subscription", "subscriptionId", id, "error", err)
		}
	}

	if err := run.conn.Disconnect(cleanupCtx); err != nil {
		log.Error("error disconnecting connector", "systemType", run.source.SystemType(), "error", err)
	}

	return nil
}

// run holds everything one command execution needs: the aggregate, the
// resolved connector with its merged configuration, and the event stream.
type run struct {
	sourceName string
	source     *datasource.DataSource
	conn       connector.Connector
	config     connector.Config
	stream     *event.Stream
	rules      []datasource.SyncRule
	dataTypes  []catalog.DataType
	server     server.Server
	sender     sink.Sender
	out        io.Writer
}

// prepare resolves the registration into a ready-to-run setup and emits the
// registration event.
func (o *options) prepare(ctx context.Context) (*run, error) {
	registration := o.registration()

	credentials, err := config.ResolveCredentials(registration.CredentialsRef)
	if err != nil {
		return nil, err
	}

	connConfig, err := config.ConnectorConfig(registration, credentials)
	if err != nil {
		return nil, err
	}

	source, err := datasource.New(registration.SystemType, registration.Configuration(), credentials)
	if err != nil {
		return nil, err
	}

	comps, err := o.components(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := comps.registry.Resolve(registration.SystemType)
	if err != nil {
		return nil, err
	}

	dataTypes := o.dataTypes
	if len(dataTypes) == 0 {
		dataTypes = source.Configuration().SupportedDataTypes
	}

	rules := make([]datasource.SyncRule, 0, len(dataTypes))
	for _, dataType := range dataTypes {
		rule, err := datasource.NewSyncRule(dataType, "")
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	stream := event.NewStream()
	if o.out != nil {
		subscribePrinter(stream, o.out)
	}

	execution := &run{
		sourceName: registration.Name,
		source:     source,
		conn:       conn,
		config:     connConfig,
		stream:     stream,
		rules:      rules,
		dataTypes:  dataTypes,
		server:     comps.server,
		out:        o.out,
	}

	execution.flushEvents(ctx)
	return execution, nil
}

// flushEvents forwards the aggregate's pending events to the stream.
func (r *run) flushEvents(ctx context.Context) {
	for _, e := range r.source.DrainEvents() {
		r.stream.Emit(ctx, e)
	}
}

// mirror reflects the task protocol states onto the aggregate, recording the
// sync session once the transport is up.
func (r *run) mirror(ctx context.Context) func(synctask.State) {
	log := logger.FromContext(ctx).WithName(loggerName)
	return func(state synctask.State) {
		switch state {
		case synctask.StateConnecting:
			r.source.UpdateConnectionStatus(connector.StatusConnecting)
		case synctask.StateSyncing:
			r.source.UpdateConnectionStatus(connector.StatusConnected)
			if _, err := r.source.InitiateSync(r.rules); err != nil {
				log.Warn("cannot record sync session", "source", r.source.ID(), "error", err)
			}
			r.flushEvents(ctx)
		case synctask.StateFailed:
			r.source.UpdateConnectionStatus(connector.StatusError)
		case synctask.StateCompleted:
			r.source.UpdateConnectionStatus(connector.StatusDisconnected)
		}
	}
}

// deliver returns the callback invoked for every pushed record batch. Batches
// are forwarded to the configured sink; delivery failures are logged, never
// raised, so one bad batch does not tear down the subscription.
func (r *run) deliver(ctx context.Context) connector.Callback {
	log := logger.FromContext(ctx).WithName(loggerName)

	return func(batch connector.RecordBatch) {
		log.Info("record batch received", "dataType", batch.DataType, "records", len(batch.Records))

		if r.sender == nil {
			return
		}

		data := sink.NewData(r.sourceName, r.source.SystemType(), batch)
		if err := r.sender.Send(ctx, data); err != nil {
			log.Error("cannot deliver record batch", "dataType", batch.DataType, "error", err)
		}
	}
}

// subscribePrinter writes every emitted event to out as one json line.
func subscribePrinter(stream *event.Stream, out io.Writer) {
	encoder := json.NewEncoder(out)
	stream.Subscribe(event.TypeWildcard, func(_ context.Context, e event.Event) {
		_ = encoder.Encode(map[string]any{"event": e.EventType(), "payload": e})
	})
}
