package grpc_control

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// SessionService is the health service name that mirrors the real-time
// session. The empty name reports the process itself.
const SessionService = "market_dashboard.session"

// -----------------------------------------------------------------------------

// HealthService publishes session connectivity through the standard gRPC
// health protocol so orchestrators can probe it.
type HealthService struct {
	Health *health.Server
	Logger *logger.Logger

	server      *grpc.Server
	listener    net.Listener
	unsubscribe func()
}

// -----------------------------------------------------------------------------

func NewHealthService(session interfaces.ISession, log *logger.Logger) *HealthService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &HealthService{
		Health: health.NewServer(),
		Logger: log,
	}
	s.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.update(session.State())
	s.unsubscribe = session.Observe(s.update)
	return s
}

// -----------------------------------------------------------------------------

func (s *HealthService) update(state models.MConnectionState) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if state.Connected {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.Health.SetServingStatus(SessionService, status)
}

// -----------------------------------------------------------------------------

// Start serves the health service on host:port in the background.
func (s *HealthService) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = lis
	s.server = grpc.NewServer()
	healthpb.RegisterHealthServer(s.server, s.Health)

	go func() {
		s.Logger.Info("gRPC health service listening on %s", lis.Addr())
		if err := s.server.Serve(lis); err != nil {
			s.Logger.Error("gRPC server stopped: %v", err)
		}
	}()
	return nil
}

// -----------------------------------------------------------------------------

// Addr is the bound address once Start succeeded.
func (s *HealthService) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// -----------------------------------------------------------------------------

func (s *HealthService) Stop() {
	s.unsubscribe()
	s.Health.Shutdown()
	if s.server != nil {
		s.server.GracefulStop()
	}
}
