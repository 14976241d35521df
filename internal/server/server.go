package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Kr4uzr/movie-catalog/pkg/config"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// Server runs the HTTP API and, when a gRPC port is configured, the
// standard gRPC health service.
type Server struct {
	cfg config.ServerConfig
	log logger.Logger

	httpServer   *http.Server
	httpListener net.Listener

	grpcServer   *grpc.Server
	grpcHealth   *health.Server
	grpcListener net.Listener

	errCh chan error
}

// New creates a server for handler. Nothing listens until Start.
func New(cfg config.ServerConfig, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		cfg: cfg,
		log: log,
		httpServer: &http.Server{
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       120 * time.Second,
		},
		errCh: make(chan error, 2),
	}
}

// Start binds the listeners and serves in the background.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.HTTPPort))
	if err != nil {
		return fmt.Errorf("listen http on port %d: %w", s.cfg.HTTPPort, err)
	}
	s.httpListener = lis

	go func() {
		s.log.Info("HTTP server listening", logger.String("addr", lis.Addr().String()))
		if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if s.cfg.GRPCPort > 0 {
		glis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.GRPCPort))
		if err != nil {
			s.httpServer.Close()
			return fmt.Errorf("listen grpc on port %d: %w", s.cfg.GRPCPort, err)
		}
		s.grpcListener = glis

		s.grpcServer = grpc.NewServer()
		s.grpcHealth = health.NewServer()
		s.grpcHealth.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		grpc_health_v1.RegisterHealthServer(s.grpcServer, s.grpcHealth)

		go func() {
			s.log.Info("gRPC health server listening", logger.String("addr", glis.Addr().String()))
			if err := s.grpcServer.Serve(glis); err != nil {
				s.errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	return nil
}

// HTTPAddr returns the bound HTTP address; empty before Start.
func (s *Server) HTTPAddr() string {
	if s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the bound gRPC address; empty when disabled.
func (s *Server) GRPCAddr() string {
	if s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Run starts the server and blocks until ctx is done or a listener fails,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.log.Info("Shutdown requested")
	case runErr = <-s.errCh:
		s.log.Error("Server failed", logger.Error(runErr))
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown drains in-flight requests. The gRPC health status flips to
// NOT_SERVING first so load balancers stop routing here.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.grpcHealth != nil {
		s.grpcHealth.Shutdown()
	}

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.log.Error("HTTP server forced to shutdown", logger.Error(err))
	}

	if s.grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.grpcServer.Stop()
		}
	}

	s.log.Info("Server stopped")
	return err
}
