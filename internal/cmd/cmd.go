// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	runCmdUsage = "run SOURCE"
	runCmdShort = "start a realtime subscription for a registered data source"
	runCmdLong  = `Start a realtime subscription for a registered data source.
	The data source must be declared in one of the registration files passed
	with --source-file and its provider must support push delivery. Record
	batches are received until the process is interrupted.

	The available system types are:
	- league-feed: competition and player data over paginated REST
	- gps-tracker: wearable tracking fleet pushing over webhooks`

	runCmdExample = `# Subscribe to the first team tracker fleet
	datasync run first-team-trackers --source-file sources.yaml --data-type GPS_TRACKING`

	syncCmdUsage = "sync SOURCE"
	syncCmdShort = "run a one-shot synchronization for a registered data source"
	syncCmdLong  = `Run a one-shot synchronization for a registered data source.
	The data source must be declared in one of the registration files passed
	with --source-file. The run connects to the provider, pulls every
	requested data type and always disconnects, even on failure.

	The available system types are:
	- league-feed: competition and player data over paginated REST
	- gps-tracker: wearable tracking fleet pushing over webhooks`

	syncCmdExample = `# Synchronize the premier league feed
	datasync sync premier-league-feed --source-file sources.yaml --timeout 5m`
)

// RunCmd returns the Cobra command that starts a realtime subscription.
func RunCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     runCmdUsage,
		Short:   heredoc.Doc(runCmdShort),
		Long:    heredoc.Doc(runCmdLong),
		Example: heredoc.Doc(runCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: validArgsFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(cmd, args)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeEventStream(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// SyncCmd returns the Cobra command that runs a one-shot synchronization.
func SyncCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     syncCmdUsage,
		Short:   heredoc.Doc(syncCmdShort),
		Long:    heredoc.Doc(syncCmdLong),
		Example: heredoc.Doc(syncCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: validArgsFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(cmd, args)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeSync(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}
