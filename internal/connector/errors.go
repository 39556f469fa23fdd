// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package connector

import "errors"

var (
	// ErrConnection reports a failure to establish or keep the provider transport.
	ErrConnection = errors.New("connection error")
	// ErrInvalidConfiguration reports a configuration rejected by the connector.
	ErrInvalidConfiguration = errors.New("invalid connector configuration")
	// ErrAuthentication reports that both the credential refresh and the
	// reconnection fallback failed.
	ErrAuthentication = errors.New("authentication error")
	// ErrSubscriptionNotFound reports an unsubscribe for an unknown subscription id.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// TimeoutError reports that a connector operation exceeded the caller
// deadline. It is a connection-error subtype: errors.Is(err, ErrConnection)
// holds for every TimeoutError.
type TimeoutError struct {
	Operation string
}

func (e *TimeoutError) Error() string {
	return "timeout during " + e.Operation
}

func (e *TimeoutError) Unwrap() error {
	return ErrConnection
}
