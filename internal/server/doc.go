// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server contains the HTTP server used by push-based connectors to
// receive webhook deliveries. It sets up the Fiber application, the request
// logging middleware and the status probe routes.
package server
