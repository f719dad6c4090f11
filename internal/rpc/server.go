// Package rpc exposes the loot service over gRPC.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/xtding233/loot-backend/internal/logger"
	"github.com/xtding233/loot-backend/internal/loot"
	"github.com/xtding233/loot-backend/internal/metrics"
	"github.com/xtding233/loot-backend/internal/service"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "loot.v1.LootService"

// Server hosts the loot gRPC API and its health service.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
}

// New creates a gRPC server backed by svc.
func New(svc *service.Service) *Server {
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(recoverInterceptor, requestIDInterceptor, metricsInterceptor),
	)
	healthServer := health.NewServer()
	RegisterLootServer(grpcServer, &handler{svc: svc})
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{grpcServer: grpcServer, health: healthServer}
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	slog.Default().Info("gRPC server starting", "addr", lis.Addr().String())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// Stop closes every connection immediately.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.Stop()
}

// recoverInterceptor turns a handler panic into codes.Internal.
func recoverInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("RPC panic",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()))
			resp, err = nil, status.Error(codes.Internal, "internal error")
		}
	}()
	return next(ctx, req)
}

// requestIDInterceptor reads x-request-id from the incoming metadata or
// generates one, and returns it in the response header.
func requestIDInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	var id string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-request-id"); len(v) > 0 && len(v[0]) <= 128 {
			id = v[0]
		}
	}
	if id == "" {
		id = logger.GenerateRequestID()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs("x-request-id", id))
	return next(logger.WithRequestID(ctx, id), req)
}

func metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := next(ctx, req)
	code := status.Code(err)
	metrics.RPCRequestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()

	logger.FromContext(ctx).Info("RPC completed",
		"method", info.FullMethod,
		"code", code.String(),
		"duration_ms", time.Since(start).Milliseconds())
	return resp, err
}

// toStatus maps service errors to gRPC status codes.
func toStatus(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrCatalogNotFound),
		errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, loot.ErrPathNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, loot.ErrInvalidDrop),
		errors.Is(err, loot.ErrNoTrials):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		logger.FromContext(ctx).Error("RPC failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
