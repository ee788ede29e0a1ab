package grpc_control

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"market-dashboard/src/models"
)

// fakeSession only tracks the connectivity observers.
type fakeSession struct {
	state     models.MConnectionState
	observers []func(models.MConnectionState)
}

func (f *fakeSession) Connect()                       {}
func (f *fakeSession) Disconnect()                    {}
func (f *fakeSession) Subscribe([]string)             {}
func (f *fakeSession) Unsubscribe([]string)           {}
func (f *fakeSession) State() models.MConnectionState { return f.state }

func (f *fakeSession) Observe(fn func(models.MConnectionState)) func() {
	f.observers = append(f.observers, fn)
	return func() { f.observers = nil }
}

func (f *fakeSession) set(connected bool) {
	f.state.Connected = connected
	for _, o := range f.observers {
		o(f.state)
	}
}

func check(t *testing.T, s *HealthService, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.Health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

// -----------------------------------------------------------------------------

func TestHealthService_MirrorsConnectivity(t *testing.T) {
	session := &fakeSession{}
	s := NewHealthService(session, nil)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, s, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, s, SessionService))

	session.set(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, s, SessionService))

	session.set(false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, s, SessionService))
}

func TestHealthService_ServesOverTheNetwork(t *testing.T) {
	session := &fakeSession{state: models.MConnectionState{Connected: true}}
	s := NewHealthService(session, nil)
	require.NoError(t, s.Start("127.0.0.1", 0))
	defer s.Stop()

	conn, err := grpc.NewClient(s.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: SessionService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
