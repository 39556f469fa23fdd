// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package datasource holds the data source aggregate: the identity,
// configuration, credentials reference, connection status and last-sync
// bookkeeping of one registered external system. The aggregate enforces the
// registration and session-initiation business rules and records domain
// events for the caller to drain and publish.
package datasource
