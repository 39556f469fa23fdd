// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
)

// Sender delivers record batches pulled or pushed out of a provider to their
// final destination. Implementations must be safe for concurrent use.
type Sender interface {
	// Send delivers a single batch. A nil error means the destination has
	// durably accepted the batch.
	Send(ctx context.Context, data *Data) error
}

// Data is the delivery envelope wrapping one record batch together with the
// data source it originates from.
type Data struct {
	Source     string               `json:"source"`
	SystemType connector.SystemType `json:"systemType"`
	DataType   catalog.DataType     `json:"dataType"`
	Time       time.Time            `json:"time"`
	Records    []map[string]any     `json:"records,omitempty"`
}

// NewData wraps a record batch from the given source into a delivery
// envelope.
func NewData(source string, systemType connector.SystemType, batch connector.RecordBatch) *Data {
	return &Data{
		Source:     source,
		SystemType: systemType,
		DataType:   batch.DataType,
		Time:       batch.Time,
		Records:    batch.Records,
	}
}

type internalData Data

// MarshalJSON labels the envelope with the sensitivity of its data type so
// downstream consumers can apply retention policies without consulting the
// catalog themselves.
func (d Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		internalData
		Sensitive bool `json:"sensitive"`
	}{
		internalData: internalData(d),
		Sensitive:    catalog.IsSensitive(d.DataType),
	})
}
