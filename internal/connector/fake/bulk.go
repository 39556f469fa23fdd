// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"testing"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
)

var _ connector.BulkConnector = &BulkConnector{}

// BulkConnector extends Connector with a batch-partitioned sync path.
type BulkConnector struct {
	*Connector

	// BulkDisabled makes SupportsBulkOperations report false.
	BulkDisabled bool
	// FailAfterBatches aborts BulkSync after that many batches when positive.
	FailAfterBatches int
	// BulkErr is the error returned when BulkSync aborts.
	BulkErr error

	batchSize int
}

// NewBulkConnector returns a bulk-capable connector double partitioning work
// in batches of batchSize data types.
func NewBulkConnector(tb testing.TB, systemType connector.SystemType, batchSize int, supportedTypes ...catalog.DataType) *BulkConnector {
	tb.Helper()

	return &BulkConnector{
		Connector: NewConnector(tb, systemType, supportedTypes...),
		batchSize: batchSize,
	}
}

func (c *BulkConnector) BulkSync(ctx context.Context, dataTypes []catalog.DataType, batchSize int) ([]*connector.SyncResult, error) {
	c.tb.Helper()

	if batchSize <= 0 {
		batchSize = c.batchSize
	}

	results := make([]*connector.SyncResult, 0)
	for start := 0; start < len(dataTypes); start += batchSize {
		if c.FailAfterBatches > 0 && len(results) == c.FailAfterBatches {
			return results, c.BulkErr
		}

		end := min(start+batchSize, len(dataTypes))
		result, err := c.Sync(ctx, dataTypes[start:end], nil)
		if err != nil {
			return results, err
		}

		results = append(results, result)
	}

	return results, nil
}

func (c *BulkConnector) OptimalBatchSize() int {
	return c.batchSize
}

func (c *BulkConnector) SupportsBulkOperations() bool {
	return !c.BulkDisabled
}
