package main

import (
	"context"

	"github.com/spf13/cobra"
)

// newActionCmd wraps an action in a one-shot command. Commands that change
// the tab state print the resulting tab list.
func newActionCmd(opts *cliOptions, use, short string, args cobra.PositionalArgs, act action, listAfter bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				out := cmd.OutOrStdout()
				if err := act(ctx, s, out, args); err != nil {
					return err
				}
				if listAfter {
					printTabs(out, s.workspace.Store().Snapshot())
				}
				return nil
			})
		},
	}
}

func newTabsCmd(opts *cliOptions) *cobra.Command {
	return newActionCmd(opts, "tabs", "List open tabs", cobra.NoArgs, listTabs, false)
}

func newNewCmd(opts *cliOptions) *cobra.Command {
	return newActionCmd(opts, "new", "Open a new untitled tab", cobra.NoArgs, newTab, true)
}

func newSwitchCmd(opts *cliOptions) *cobra.Command {
	return newActionCmd(opts, "switch <tab-id>", "Make a tab current", cobra.ExactArgs(1), switchTab, false)
}

func newCloseCmd(opts *cliOptions) *cobra.Command {
	return newActionCmd(opts, "close [tab-id]", "Close a tab, the current one by default", cobra.MaximumNArgs(1), closeTab, true)
}

func newDeleteCmd(opts *cliOptions) *cobra.Command {
	return newActionCmd(opts, "delete", "Delete the current tab's document", cobra.NoArgs, deleteDocument, true)
}

func newNextCmd(opts *cliOptions) *cobra.Command {
	return newActionCmd(opts, "next", "Cycle to the next tab", cobra.NoArgs, nextTab, false)
}

func newFirstCmd(opts *cliOptions) *cobra.Command {
	return newActionCmd(opts, "first", "Go to the first tab", cobra.NoArgs, firstTab, false)
}

func newLastCmd(opts *cliOptions) *cobra.Command {
	return newActionCmd(opts, "last", "Go to the last tab", cobra.NoArgs, lastTab, false)
}

func newCleanupCmd(opts *cliOptions) *cobra.Command {
	return newActionCmd(opts, "cleanup", "Drop tabs and recent files whose document is gone", cobra.NoArgs, cleanupStale, false)
}
