// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
)

var _ connector.SubscriptionConnector = &SubscriptionConnector{}

// SubscriptionConnector extends Connector with a push channel driven by
// Push. Unsubscribe fences in-flight deliveries: once it returns, no further
// callback invocation for that subscription can be observed.
type SubscriptionConnector struct {
	*Connector

	// deliveryLock serializes callback invocations against unsubscription.
	deliveryLock  sync.Mutex
	subscriptions map[connector.SubscriptionID]connector.Callback
}

// NewSubscriptionConnector returns a subscription-capable connector double.
func NewSubscriptionConnector(tb testing.TB, systemType connector.SystemType, supportedTypes ...catalog.DataType) *SubscriptionConnector {
	tb.Helper()

	return &SubscriptionConnector{
		Connector:     NewConnector(tb, systemType, supportedTypes...),
		subscriptions: make(map[connector.SubscriptionID]connector.Callback),
	}
}

func (c *SubscriptionConnector) Subscribe(ctx context.Context, _ []catalog.DataType, callback connector.Callback) (connector.SubscriptionID, error) {
	c.tb.Helper()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := connector.SubscriptionID(uuid.NewString())

	c.deliveryLock.Lock()
	defer c.deliveryLock.Unlock()
	c.subscriptions[id] = callback

	return id, nil
}

func (c *SubscriptionConnector) Unsubscribe(_ context.Context, id connector.SubscriptionID) error {
	c.tb.Helper()

	c.deliveryLock.Lock()
	defer c.deliveryLock.Unlock()

	if _, ok := c.subscriptions[id]; !ok {
		return connector.ErrSubscriptionNotFound
	}

	delete(c.subscriptions, id)
	return nil
}

func (c *SubscriptionConnector) IsRealtimeConnected() bool {
	return c.Status() == connector.StatusConnected
}

// Push delivers a batch to every active subscription, as the provider
// transport loop would.
func (c *SubscriptionConnector) Push(dataType catalog.DataType, records []map[string]any) {
	c.tb.Helper()

	c.deliveryLock.Lock()
	defer c.deliveryLock.Unlock()

	batch := connector.RecordBatch{
		DataType: dataType,
		Time:     time.Now().UTC(),
		Records:  records,
	}

	for _, callback := range c.subscriptions {
		callback(batch)
	}
}
