// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package leaguefeed implements the connector for REST league data feeds:
// match schedules, player and team profiles, statistics and standings pulled
// with paginated polling requests. The connector is bulk-capable.
package leaguefeed
