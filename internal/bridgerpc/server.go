package bridgerpc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"pkt.systems/pslog"
)

// Server exposes a bridge backend over gRPC.
type Server struct {
	cfg     Config
	backend Backend
	logger  pslog.Logger
}

// NewServer constructs a bridge gRPC server.
func NewServer(cfg Config, backend Backend) *Server {
	return &Server{cfg: cfg, backend: backend}
}

// WithLogger sets the server logger.
func (s *Server) WithLogger(logger pslog.Logger) *Server {
	s.logger = logger
	return s
}

// Register adds the bridge service to a gRPC server.
func (s *Server) Register(registrar grpc.ServiceRegistrar) {
	registrar.RegisterService(&serviceDesc, s.backend)
}

// ListenAndServe starts the gRPC server over a Unix domain socket.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.cfg.SocketPath == "" {
		return errors.New("bridge socket path is required")
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.SocketPath), 0o700); err != nil {
		return err
	}
	_ = os.Remove(s.cfg.SocketPath)

	listener, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(s.cfg.SocketPath) }()
	if err := os.Chmod(s.cfg.SocketPath, 0o600); err != nil {
		_ = listener.Close()
		return err
	}
	s.log(ctx).Info("bridge grpc listening", "socket", s.cfg.SocketPath)
	return s.Serve(ctx, listener)
}

// Serve runs the gRPC server on listener until ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if s.backend == nil {
		return errors.New("bridge backend is required")
	}
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(s.logUnary))
	s.Register(grpcServer)

	errCh := make(chan error, 1)
	go func() {
		errCh <- grpcServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		grpcServer.GracefulStop()
		s.logger.Info("bridge grpc stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	started := time.Now()
	log := s.log(ctx).With("method", info.FullMethod)
	resp, err := handler(pslog.ContextWithLogger(ctx, log), req)
	if err != nil {
		st, _ := status.FromError(err)
		log.Debug("bridge call failed", "code", st.Code().String(), "err", st.Message(), "elapsed", time.Since(started))
		return resp, err
	}
	log.Trace("bridge call ok", "elapsed", time.Since(started))
	return resp, nil
}

func (s *Server) log(ctx context.Context) pslog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return pslog.Ctx(ctx)
}
