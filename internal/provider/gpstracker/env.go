// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package gpstracker

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type config struct {
	WebhookPath string `env:"GPS_TRACKER_WEBHOOK_PATH" envDefault:"/webhooks/gps-tracker"`
	BufferSize  int    `env:"GPS_TRACKER_BUFFER_SIZE" envDefault:"256"`
}

func loadTrackerConfig() (*config, error) {
	var envVars config
	if err := env.Parse(&envVars); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGPSTrackerSource, err.Error())
	}

	if err := validateEnvironmentVariables(&envVars); err != nil {
		return nil, err
	}
	return &envVars, nil
}

func validateEnvironmentVariables(envVars *config) error {
	if !strings.HasPrefix(envVars.WebhookPath, "/") {
		return fmt.Errorf("%w: GPS_TRACKER_WEBHOOK_PATH must be an absolute path", ErrGPSTrackerSource)
	}

	if envVars.BufferSize < 1 {
		return fmt.Errorf("%w: GPS_TRACKER_BUFFER_SIZE must be positive", ErrGPSTrackerSource)
	}

	return nil
}
