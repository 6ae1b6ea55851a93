package trove

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/trove/internal/backend"
	"pkt.systems/trove/internal/bridgerpc"
)

// Server composes the filesystem backend with the bridge socket and the
// trove watcher.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Backend backend.Config
	Bridge  bridgerpc.Config
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableBridge bool
	enableWatch  bool
}

// WithBridge enables the gRPC bridge on the configured unix socket.
func WithBridge() ServerOption {
	return func(o *serverOptions) { o.enableBridge = true }
}

// WithWatch enables cleanup of stale entries when documents change on disk.
func WithWatch() ServerOption {
	return func(o *serverOptions) { o.enableWatch = true }
}

// New constructs a composable trove server. The backend is created
// immediately; the trove lock is taken on Start.
func New(cfg ServerConfig, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.enableBridge && !options.enableWatch {
		return nil, errors.New("no services enabled")
	}
	if options.enableBridge && cfg.Bridge.SocketPath == "" {
		return nil, errors.New("bridge socket path is required")
	}
	be, err := backend.New(cfg.Backend)
	if err != nil {
		return nil, err
	}
	srv := &compositeServer{
		cfg:     cfg,
		options: options,
		backend: be,
	}
	if options.enableBridge {
		srv.bridge = bridgerpc.NewServer(cfg.Bridge, be)
		if cfg.Backend.Logger != nil {
			srv.bridge.WithLogger(cfg.Backend.Logger)
		}
	}
	return srv, nil
}

type compositeServer struct {
	cfg     ServerConfig
	options serverOptions
	backend *backend.Backend
	bridge  *bridgerpc.Server
	logger  pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	errCh   chan error
	wg      sync.WaitGroup
	started bool
	// stopDone is closed once shutdown has finished; stopErr is its result.
	stopDone chan struct{}
	stopErr  error
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	if err := s.backend.Lock(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("lock trove %s: %w", s.backend.TroveDir(), err)
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.errCh = make(chan error, 2)
	s.started = true
	s.logger = pslog.Ctx(s.ctx)
	s.mu.Unlock()

	log := s.logger
	log.Info(
		"server start",
		"bridge", s.options.enableBridge,
		"watch", s.options.enableWatch,
		"trove", s.backend.TroveDir(),
		"socket", s.cfg.Bridge.SocketPath,
	)
	if s.options.enableBridge && s.bridge != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.bridge.ListenAndServe(s.ctx); err != nil {
				log.Error("bridge server failed", "err", err)
				s.errCh <- err
			}
		}()
	}
	if s.options.enableWatch {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.backend.Watch(s.ctx); err != nil {
				log.Error("trove watch failed", "err", err)
				s.errCh <- err
			}
		}()
	}
	return nil
}

func (s *compositeServer) Wait() error {
	s.mu.Lock()
	ctx := s.ctx
	errCh := s.errCh
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}

	select {
	case <-ctx.Done():
		return s.Stop(context.Background())
	case err := <-errCh:
		if err != nil {
			pslog.Ctx(ctx).Error("server stopped", "err", err)
			_ = s.Stop(context.Background())
			return err
		}
		return nil
	}
}

func (s *compositeServer) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	done := s.stopDone
	first := done == nil
	if first {
		done = make(chan struct{})
		s.stopDone = done
	}
	log := s.logger
	s.mu.Unlock()
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	if first {
		log.Info("server stop requested")
		go s.shutdown(log, done)
	}
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-done:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopErr
}

// shutdown cancels the services, waits for them and closes the backend. It
// runs once and closes done when the trove lock has been released.
func (s *compositeServer) shutdown(log pslog.Logger, done chan struct{}) {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	err := s.backend.Close()
	if err != nil {
		log.Warn("server backend close failed", "err", err)
	} else {
		log.Info("server stopped")
	}
	s.mu.Lock()
	s.stopErr = err
	s.mu.Unlock()
	close(done)
}
