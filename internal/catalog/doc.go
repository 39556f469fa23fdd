// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package catalog enumerates the record kinds that a data source can
// synchronize, together with their category grouping and realtime and
// sensitivity flags. It is a static lookup table with no state.
package catalog
