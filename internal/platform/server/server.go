package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/ogurasousui/hr-employee-names/internal/adapters/grpc/handler"
	"github.com/ogurasousui/hr-employee-names/internal/core/contact"
	"github.com/ogurasousui/hr-employee-names/internal/core/employee"
	"github.com/ogurasousui/hr-employee-names/internal/core/settings"
	"github.com/ogurasousui/hr-employee-names/internal/platform/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Dependencies はサーバーに登録するユースケースと計測系です。
type Dependencies struct {
	Employees employee.UseCase
	Contacts  contact.UseCase
	Settings  settings.UseCase
	Logger    *slog.Logger
	Metrics   *metrics.Registry
}

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
func New(listenAddr string, deps Dependencies, opts ...grpc.ServerOption) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interceptors := []grpc.UnaryServerInterceptor{loggingInterceptor(logger)}
	if deps.Metrics != nil {
		interceptors = append(interceptors, deps.Metrics.UnaryServerInterceptor())
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(interceptors...))

	srv := grpc.NewServer(opts...)
	handler.RegisterEmployeeServiceServer(srv, handler.NewEmployeeGrpcHandler(deps.Employees))
	handler.RegisterContactServiceServer(srv, handler.NewContactGrpcHandler(deps.Contacts))
	handler.RegisterNameSettingsServiceServer(srv, handler.NewNameSettingsGrpcHandler(deps.Settings))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	for _, name := range []string{handler.EmployeeServiceName, handler.ContactServiceName, handler.NameSettingsServiceName} {
		healthSrv.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     healthSrv,
		logger:     logger,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.Serve(ctx, lis)
}

// Serve は与えられたリスナーで待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		attrs := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
		if err != nil {
			logger.WarnContext(ctx, "rpc failed", append(attrs, "error", err)...)
		} else {
			logger.DebugContext(ctx, "rpc handled", attrs...)
		}
		return resp, err
	}
}
