package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/trove"
	"pkt.systems/trove/core"
	"pkt.systems/trove/internal/appconfig"
	"pkt.systems/trove/internal/backend"
	"pkt.systems/trove/internal/bridgerpc"
)

// session is one workspace attached to either the bridge socket or an
// in-process backend.
type session struct {
	cfg       appconfig.Config
	bridge    bridgerpc.Backend
	workspace *core.Workspace
	closeFn   func() error
}

func openSession(cmd *cobra.Command, opts *cliOptions, sinks ...core.EventSink) (*session, error) {
	cfg, err := appconfig.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	logger := pslog.Ctx(ctx)

	var bridge bridgerpc.Backend
	var closeFn func() error
	if opts.local {
		b, err := backend.New(backend.Config{Root: cfg.Root, Trove: cfg.Trove, Logger: logger})
		if err != nil {
			return nil, err
		}
		if err := b.Lock(); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("open trove %s: %w", b.TroveDir(), err)
		}
		logger.Debug("session backend local", "trove", b.TroveDir())
		bridge, closeFn = b, b.Close
	} else {
		client, err := bridgerpc.Dial(ctx, cfg.Bridge.SocketPath)
		if err != nil {
			return nil, err
		}
		client.WithLogger(logger)
		logger.Debug("session bridge dial", "socket", cfg.Bridge.SocketPath)
		bridge, closeFn = client, client.Close
	}

	s := &session{cfg: cfg, bridge: bridge, closeFn: closeFn}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	ws, err := trove.OpenWorkspace(callCtx, bridge, sinks...)
	if err != nil {
		_ = closeFn()
		return nil, err
	}
	s.workspace = ws
	return s, nil
}

// callContext bounds a single command by the configured bridge timeout.
func (s *session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Bridge.TimeoutSeconds <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(s.cfg.Bridge.TimeoutSeconds)*time.Second)
}

func (s *session) Close() error {
	if s == nil {
		return nil
	}
	if s.workspace != nil {
		s.workspace.Close()
	}
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}

// withSession runs fn against a freshly opened session with a bounded
// context and closes the session afterwards.
func withSession(cmd *cobra.Command, opts *cliOptions, fn func(ctx context.Context, s *session) error) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	ctx, cancel := s.callContext(cmd.Context())
	defer cancel()
	return fn(ctx, s)
}
