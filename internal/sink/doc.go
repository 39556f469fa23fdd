// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package sink defines the primitives used to deliver synchronized record
// batches out of the process. It standardizes the envelope and lifecycle so
// every provider shares the same delivery contract.
package sink
