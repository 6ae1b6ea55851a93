package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/trove"
	"pkt.systems/trove/internal/appconfig"
	"pkt.systems/trove/internal/backend"
	"pkt.systems/trove/internal/bridgerpc"
)

func newServeCmd(opts *cliOptions) *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the backend and serve the bridge socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(opts.configPath)
			if err != nil {
				return err
			}
			serverOpts := []trove.ServerOption{trove.WithBridge()}
			if cfg.Backend.Watch && !noWatch {
				serverOpts = append(serverOpts, trove.WithWatch())
			}
			server, err := trove.New(trove.ServerConfig{
				Backend: backend.Config{Root: cfg.Root, Trove: cfg.Trove, Logger: logger},
				Bridge:  bridgerpc.Config{SocketPath: cfg.Bridge.SocketPath},
			}, serverOpts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()
			if err := server.Start(ctx); err != nil {
				return err
			}
			return server.Wait()
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not watch the trove for external changes")
	return cmd
}
