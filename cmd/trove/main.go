package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("trove command failed")
		return 1
	}
	return 0
}

// cliOptions holds the persistent flags shared by every subcommand.
type cliOptions struct {
	configPath string
	local      bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "trove",
		Short:         "Tabbed note workspace backed by a trove of markdown files",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().BoolVar(&opts.local, "local", false, "run the backend in-process instead of dialing the bridge socket")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newTabsCmd(opts))
	root.AddCommand(newNewCmd(opts))
	root.AddCommand(newSwitchCmd(opts))
	root.AddCommand(newCloseCmd(opts))
	root.AddCommand(newDeleteCmd(opts))
	root.AddCommand(newNextCmd(opts))
	root.AddCommand(newFirstCmd(opts))
	root.AddCommand(newLastCmd(opts))
	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newSaveCmd(opts))
	root.AddCommand(newRecentCmd(opts))
	root.AddCommand(newCleanupCmd(opts))
	root.AddCommand(newSettingsCmd(opts))
	root.AddCommand(newShellCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}
