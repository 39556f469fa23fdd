// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/config"
	"github.com/footanalytics/datasync/internal/sink"
	"github.com/footanalytics/datasync/internal/sink/platform"
	"github.com/footanalytics/datasync/internal/sink/writer"
)

const (
	sourceFileFlagName  = "source-file"
	sourceFileFlagShort = "f"
	sourceFileFlagUsage = "Path to a file or directory containing data source registrations. Can be specified multiple times."

	dataTypeFlagName  = "data-type"
	dataTypeFlagUsage = "Restrict the run to a catalog data type. Can be specified multiple times."

	timeoutFlagName  = "timeout"
	timeoutFlagUsage = "Abort the synchronization after this duration. Zero means no timeout."

	localOutputFlagName  = "local-output"
	localOutputFlagUsage = "If set, writes emitted events and record batches to stdout instead of the platform ingest API"
	defaultLocalOutput   = false
)

// flags collects the CLI options shared by the run and sync commands.
type flags struct {
	sourcePaths []string
	dataTypes   []string
	timeout     time.Duration
	localOutput bool
}

// addFlags registers the CLI flags on cmd.
func (f *flags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(
		&f.sourcePaths,
		sourceFileFlagName,
		sourceFileFlagShort,
		nil,
		sourceFileFlagUsage)

	cmd.Flags().StringArrayVar(&f.dataTypes, dataTypeFlagName, nil, dataTypeFlagUsage)
	cmd.Flags().DurationVar(&f.timeout, timeoutFlagName, 0, timeoutFlagUsage)
	cmd.Flags().BoolVar(&f.localOutput, localOutputFlagName, defaultLocalOutput, localOutputFlagUsage)
}

// toOptions builds an options instance from the parsed flags and CLI arguments.
func (f *flags) toOptions(cmd *cobra.Command, args []string) (*options, error) {
	sourceName := ""
	if len(args) > 0 {
		sourceName = args[0]
	}

	sourcePaths, err := collectPaths(f.sourcePaths)
	if err != nil {
		return nil, err
	}

	registrations, err := config.NewRegistrationsFromPaths(sourcePaths...)
	if err != nil {
		return nil, err
	}

	dataTypes := make([]catalog.DataType, 0, len(f.dataTypes))
	for _, raw := range f.dataTypes {
		dataType := catalog.DataType(strings.ToUpper(raw))
		if !catalog.IsValid(dataType) {
			return nil, fmt.Errorf("%w: %s", errInvalidDataType, raw)
		}

		dataTypes = append(dataTypes, dataType)
	}

	var out io.Writer
	sender := platform.NewSender
	if f.localOutput {
		out = cmd.OutOrStdout()
		localSender := writer.NewSender(out)
		sender = func() (sink.Sender, error) { return localSender, nil }
	}

	return &options{
		sourceName:    strings.ToLower(sourceName),
		registrations: registrations,
		dataTypes:     dataTypes,
		timeout:       f.timeout,
		out:           out,
		sender:        sender,
		components:    componentsBuilder,
	}, nil
}
