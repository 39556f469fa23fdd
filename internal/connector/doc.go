// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package connector defines the contract that every external-system adapter
// must satisfy, plus the optional subscription and bulk capabilities that a
// connector can expose. Capabilities are discovered at runtime with type
// assertions, never assumed.
package connector
