// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package datasource

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/footanalytics/datasync/internal/catalog"
)

// SyncRule is one requested synchronization directive: a target data type
// plus an optional provider-side filter expression.
type SyncRule struct {
	DataType catalog.DataType
	Filter   string
}

// NewSyncRule builds a rule after checking the data type against the catalog.
func NewSyncRule(dataType catalog.DataType, filter string) (SyncRule, error) {
	if !catalog.IsValid(dataType) {
		return SyncRule{}, fmt.Errorf("%w: unknown data type %q", ErrValidation, dataType)
	}

	return SyncRule{DataType: dataType, Filter: filter}, nil
}

// Session is the record of one sync request initiated against a connected
// data source. It is created by InitiateSync and consumed by the caller;
// persistence is an external concern.
type Session struct {
	ID           string
	DataSourceID string
	RuleCount    int
	CreatedAt    time.Time
}

// newSession assigns a fresh identity to a sync request.
func newSession(dataSourceID string, ruleCount int, createdAt time.Time) Session {
	return Session{
		ID:           uuid.NewString(),
		DataSourceID: dataSourceID,
		RuleCount:    ruleCount,
		CreatedAt:    createdAt,
	}
}
