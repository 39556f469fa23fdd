// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package connector

import (
	"slices"

	"github.com/footanalytics/datasync/internal/catalog"
)

// SyncResult reports the outcome of one sync execution. A data type appears
// either in Successful or in Failed, never in both, and every unsynced type
// must appear in Failed with a reason.
type SyncResult struct {
	Success          bool
	Successful       []catalog.DataType
	Failed           []catalog.DataType
	RecordsProcessed int
	// Errors maps each failed data type to the reason it failed.
	Errors map[catalog.DataType]string
}

// NewSyncResult builds an empty result ready to be filled per data type.
func NewSyncResult() *SyncResult {
	return &SyncResult{
		Success:    true,
		Successful: make([]catalog.DataType, 0),
		Failed:     make([]catalog.DataType, 0),
		Errors:     make(map[catalog.DataType]string),
	}
}

// RecordSuccess marks dataType as synchronized and accounts its records.
func (r *SyncResult) RecordSuccess(dataType catalog.DataType, records int) {
	if slices.Contains(r.Successful, dataType) {
		r.RecordsProcessed += records
		return
	}

	r.Successful = append(r.Successful, dataType)
	r.RecordsProcessed += records
}

// RecordFailure marks dataType as failed with the given reason. A data type
// already recorded as successful is moved to the failed set to keep the two
// sets disjoint.
func (r *SyncResult) RecordFailure(dataType catalog.DataType, reason string) {
	if index := slices.Index(r.Successful, dataType); index >= 0 {
		r.Successful = slices.Delete(r.Successful, index, index+1)
	}

	if !slices.Contains(r.Failed, dataType) {
		r.Failed = append(r.Failed, dataType)
	}

	r.Errors[dataType] = reason
	r.Success = false
}

// Merge folds other into r, keeping the disjoint-sets invariant. Used by the
// bulk path to aggregate per-batch results.
func (r *SyncResult) Merge(other *SyncResult) {
	if other == nil {
		return
	}

	for _, dataType := range other.Successful {
		if !slices.Contains(r.Failed, dataType) && !slices.Contains(r.Successful, dataType) {
			r.Successful = append(r.Successful, dataType)
		}
	}

	for _, dataType := range other.Failed {
		r.RecordFailure(dataType, other.Errors[dataType])
	}

	r.RecordsProcessed += other.RecordsProcessed
	r.Success = r.Success && other.Success
}
