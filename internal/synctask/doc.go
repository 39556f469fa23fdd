// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package synctask drives one connector through the full sync protocol:
// validate, connect, sync, disconnect. Disconnection is guaranteed on every
// path, success or failure; a leaked connection is treated as a correctness
// bug. The task also consumes the connector's advisory rate limit through a
// token bucket before every provider call.
package synctask
