// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package gpstracker adapts a wearable tracking fleet that pushes record
// batches over signed webhook deliveries. The connector buffers deliveries
// for pull-based syncs and fans them out to realtime subscriptions.
package gpstracker
