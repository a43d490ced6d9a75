package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServerConfig controls transport options of the gRPC server.
type ServerConfig struct {
	Address     string
	Creds       credentials.TransportCredentials
	Reflection  bool
	ModelLoaded bool
}

// Server wraps the gRPC server with prediction handlers.
type Server struct {
	address    string
	grpcServer *grpclib.Server
	health     *health.Server
	handler    *PredictionHandler
	logger     *slog.Logger
}

// NewServer creates a new gRPC server for the prediction service.
func NewServer(handler *PredictionHandler, cfg ServerConfig, logger *slog.Logger) *Server {
	serverOpts := []grpclib.ServerOption{
		grpclib.ChainUnaryInterceptor(recoveryInterceptor(logger), loggingInterceptor(logger)),
	}

	if cfg.Creds != nil {
		serverOpts = append(serverOpts, grpclib.Creds(cfg.Creds))
		logger.Info("gRPC TLS enabled")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpclib.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	servingStatus := healthpb.HealthCheckResponse_SERVING
	if !cfg.ModelLoaded {
		servingStatus = healthpb.HealthCheckResponse_NOT_SERVING
	}
	healthServer.SetServingStatus(PredictionServiceName, servingStatus)

	RegisterPredictionServiceServer(grpcServer, handler)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		address:    cfg.Address,
		grpcServer: grpcServer,
		health:     healthServer,
		handler:    handler,
		logger:     logger,
	}
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server starting", slog.String("address", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpclib.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		attrs := []any{
			slog.String("method", info.FullMethod),
			slog.Duration("duration", time.Since(start)),
		}
		if err != nil {
			logger.WarnContext(ctx, "grpc request failed", append(attrs, slog.String("error", err.Error()))...)
		} else {
			logger.DebugContext(ctx, "grpc request completed", attrs...)
		}
		return resp, err
	}
}

func recoveryInterceptor(logger *slog.Logger) grpclib.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "panic in grpc handler", "method", info.FullMethod, "panic", r)
				err = toStatus(fmt.Errorf("panic: %v", r))
			}
		}()
		return handler(ctx, req)
	}
}
