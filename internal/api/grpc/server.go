package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/VillageChief/codescan-sfdx/internal/poll"
)

// ServiceName is the health service name reported for the quality gate backend
const ServiceName = "codescan.QualityGate"

// ProbeFunc checks whether the backend that runs checks is reachable
type ProbeFunc func(ctx context.Context) error

type probeResult struct {
	err error
}

// Server exposes the standard gRPC health service for the quality gate backend
type Server struct {
	health *health.Server
	probe  ProbeFunc
	logger *zap.Logger
}

// NewServer creates a new gRPC health server. The service starts as NOT_SERVING
// until the first probe succeeds.
func NewServer(probe ProbeFunc, logger *zap.Logger) *Server {
	s := &Server{
		health: health.NewServer(),
		probe:  probe,
		logger: logger,
	}
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Register registers the server with a gRPC server
func (s *Server) Register(grpcServer *grpc.Server) {
	healthpb.RegisterHealthServer(grpcServer, s.health)
}

// Monitor probes the backend right away and then every interval, updating the
// serving status until ctx is done.
func (s *Server) Monitor(ctx context.Context, interval time.Duration) error {
	s.setServing(s.probe(ctx))

	p := poll.New(func(ctx context.Context) (probeResult, error) {
		return probeResult{err: s.probe(ctx)}, nil
	}, interval)

	_, err := p.Until(ctx, func(r probeResult) (bool, error) {
		s.setServing(r.err)
		return false, nil
	})
	return err
}

// Shutdown marks every service as NOT_SERVING
func (s *Server) Shutdown() {
	s.health.Shutdown()
}

func (s *Server) setServing(probeErr error) {
	if probeErr != nil {
		s.logger.Warn("backend unhealthy", zap.Error(probeErr))
		s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}
