// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package fake provides a sink.Sender double recording every delivered
// envelope for later inspection in tests.
package fake

import (
	"context"
	"sync"
	"testing"

	"github.com/footanalytics/datasync/internal/sink"
)

var _ sink.Sender = &FakeSender{}

type FakeSender struct {
	tb testing.TB

	// SendError, when set, is returned by every Send call.
	SendError error

	lock sync.Mutex
	sent []*sink.Data
}

func NewFakeSender(tb testing.TB) *FakeSender {
	tb.Helper()
	return &FakeSender{tb: tb}
}

func (f *FakeSender) Send(_ context.Context, data *sink.Data) error {
	f.tb.Helper()
	if f.SendError != nil {
		return f.SendError
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	f.sent = append(f.sent, data)
	return nil
}

// Sent returns a snapshot of the envelopes delivered so far.
func (f *FakeSender) Sent() []*sink.Data {
	f.tb.Helper()
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]*sink.Data(nil), f.sent...)
}
