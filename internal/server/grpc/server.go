// Package grpc serves the standard gRPC health service, reporting the same
// readiness as the HTTP /healthz endpoint.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/1anshu-stack/backend/internal/logging"
	"github.com/1anshu-stack/backend/internal/server/health"
)

// ServiceName is the health service name reported next to the overall ("") one.
const ServiceName = "backend.users"

const defaultProbeInterval = 10 * time.Second

type GRPCServer struct {
	address  string
	logger   logging.Logger
	checker  *health.Checker
	health   *grpchealth.Server
	interval time.Duration
}

func NewGRPCServer(a string, l logging.Logger, checker *health.Checker) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		checker:  checker,
		health:   grpchealth.NewServer(),
		interval: defaultProbeInterval,
	}
}

// probe runs the readiness checks once and publishes the result.
func (s *GRPCServer) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	results, ok := s.checker.Run(ctx)
	if !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn(ctx, "readiness check failed", "checks", results)
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *GRPCServer) watch(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.probe(ctx)
		}
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.probe(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
