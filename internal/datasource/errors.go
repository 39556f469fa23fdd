// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package datasource

import "errors"

var (
	// ErrValidation reports malformed identities, empty rule sets, or other
	// usage errors raised synchronously to the caller.
	ErrValidation = errors.New("validation error")
	// ErrNotConnected reports a sync attempt against a data source whose
	// status is not CONNECTED.
	ErrNotConnected = errors.New("data source not connected")
	// ErrUnsupportedDataType reports a sync rule targeting a data type absent
	// from the data source configuration.
	ErrUnsupportedDataType = errors.New("unsupported data type")
)
