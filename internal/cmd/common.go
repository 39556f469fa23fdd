// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/footanalytics/datasync/internal/config"
	"github.com/footanalytics/datasync/internal/connector"
	"github.com/footanalytics/datasync/internal/provider/gpstracker"
	"github.com/footanalytics/datasync/internal/provider/leaguefeed"
	"github.com/footanalytics/datasync/internal/registry"
	"github.com/footanalytics/datasync/internal/server"
)

const loggerName = "datasync:cmd"

var (
	errNoArguments       = errors.New("no data source name provided")
	errNoSourceFile      = errors.New("no data source registration provided")
	errUnknownSource     = errors.New("unknown data source name provided")
	errInvalidDataType   = errors.New("unknown data type provided")
	errNoRealtimeSupport = errors.New("data source does not support realtime subscriptions")
	errPartialSync       = errors.New("synchronization completed with failures")

	// componentsBuilder wires the connector registry and webhook server.
	// It can be overridden for testing purposes.
	componentsBuilder = defaultComponents
)

// components holds the runtime pieces shared by the run and sync commands.
type components struct {
	registry *registry.Registry
	server   server.Server
}

// defaultComponents builds the webhook server and registers every known
// provider family. Push-based connectors mount their routes on the shared
// server; it only starts listening on the realtime path.
func defaultComponents(ctx context.Context) (*components, error) {
	srv, err := server.NewServer(ctx)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	if err := reg.Register(connector.SystemLeagueFeed, func() (connector.Connector, error) {
		return leaguefeed.New(), nil
	}); err != nil {
		return nil, err
	}

	if err := reg.Register(connector.SystemGPSTracker, func() (connector.Connector, error) {
		return gpstracker.New(ctx, srv)
	}); err != nil {
		return nil, err
	}

	return &components{registry: reg, server: srv}, nil
}

// handleError will do custom print error handling based on the type of error received.
// it will return nil if the command must return 0 exit code, otherwise it will return
// the original error.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, errNoArguments):
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return nil
	case errors.Is(err, errUnknownSource), errors.Is(err, errNoSourceFile):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}

// unwrappedError returns the unwrapped error if available, otherwise it returns the original error.
func unwrappedError(err error) error {
	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		return unwrapped
	}

	return err
}

// validArgsFunc completes the SOURCE argument with the registration names
// found in the files already passed via --source-file.
func validArgsFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	paths, err := cmd.Flags().GetStringArray(sourceFileFlagName)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	collected, err := collectPaths(paths)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	registrations, err := config.NewRegistrationsFromPaths(collected...)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var comps []string
	for _, registration := range registrations {
		if strings.HasPrefix(registration.Name, toComplete) {
			comps = append(comps, cobra.CompletionWithDesc(registration.Name, string(registration.SystemType)))
		}
	}

	return comps, cobra.ShellCompDirectiveNoFileComp
}

func collectPaths(paths []string) ([]string, error) {
	collected := make([]string, 0)
	for _, p := range paths {
		cleanedPath := filepath.Clean(p)
		err := filepath.Walk(cleanedPath, func(walkedPath string, info fs.FileInfo, err error) error {
			if err != nil {
				return fmt.Errorf("source file %q: %w", walkedPath, unwrappedError(err))
			}

			switch {
			case !info.IsDir(): // it's a file add to the collection
				collected = append(collected, walkedPath)
			case info.IsDir() && cleanedPath != walkedPath: // skip directories if is not the root path
				return filepath.SkipDir
			}

			return nil
		})

		if err != nil {
			return nil, err
		}
	}

	return collected, nil
}
