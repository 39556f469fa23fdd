// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package event defines the domain events emitted by the sync core and an
// in-process publish/subscribe stream that delivers them to downstream
// collaborators. The stream is a notification bus, not a durable log.
package event
