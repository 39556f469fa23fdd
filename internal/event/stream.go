// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package event

import (
	"context"
	"slices"
	"sync"

	"github.com/footanalytics/datasync/internal/logger"
)

const loggerName = "datasync:events"

// Handler consumes one delivered event.
type Handler func(ctx context.Context, event Event)

// Stream is an in-process publish/subscribe bus. Delivery is synchronous and
// best-effort: a panicking handler is recovered and logged without affecting
// sibling handlers or the emitter. Safe for concurrent use.
type Stream struct {
	lock sync.RWMutex

	// handlers keeps registration order per event type, wildcard included.
	handlers map[Type][]*registration
}

// registration wraps a handler so Unsubscribe can match the exact
// subscription instead of comparing function values.
type registration struct {
	handler Handler
}

// Subscription identifies one stream registration for later removal.
type Subscription struct {
	eventType Type
	entry     *registration
}

// NewStream returns an empty event stream.
func NewStream() *Stream {
	return &Stream{
		handlers: make(map[Type][]*registration),
	}
}

// Subscribe registers handler for events of eventType. Use TypeWildcard to
// receive every event. Handlers run in registration order.
func (s *Stream) Subscribe(eventType Type, handler Handler) Subscription {
	entry := &registration{handler: handler}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.handlers[eventType] = append(s.handlers[eventType], entry)

	return Subscription{eventType: eventType, entry: entry}
}

// Unsubscribe removes a previous registration. Unknown subscriptions are ignored.
func (s *Stream) Unsubscribe(subscription Subscription) {
	s.lock.Lock()
	defer s.lock.Unlock()

	entries := s.handlers[subscription.eventType]
	if index := slices.Index(entries, subscription.entry); index >= 0 {
		s.handlers[subscription.eventType] = slices.Delete(entries, index, index+1)
	}
}

// Emit delivers event to its type-specific subscribers first, then to the
// wildcard subscribers. Emit never fails: handler faults are contained.
func (s *Stream) Emit(ctx context.Context, event Event) {
	s.lock.RLock()
	entries := make([]*registration, 0, len(s.handlers[event.EventType()])+len(s.handlers[TypeWildcard]))
	entries = append(entries, s.handlers[event.EventType()]...)
	if event.EventType() != TypeWildcard {
		entries = append(entries, s.handlers[TypeWildcard]...)
	}
	s.lock.RUnlock()

	for _, entry := range entries {
		s.dispatch(ctx, entry.handler, event)
	}
}

// dispatch runs one handler inside an isolated failure boundary.
func (s *Stream) dispatch(ctx context.Context, handler Handler, event Event) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log := logger.FromContext(ctx).WithName(loggerName)
			log.Error("event handler panicked", "eventType", event.EventType(), "panic", recovered)
		}
	}()

	handler(ctx, event)
}
