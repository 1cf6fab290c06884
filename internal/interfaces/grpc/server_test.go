package grpc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/turtacn/InfringeScope/internal/testutil"
)

type fakeChecker struct {
	name    string
	failing atomic.Bool
}

func (f *fakeChecker) Name() string { return f.name }

func (f *fakeChecker) Check(context.Context) error {
	if f.failing.Load() {
		return errors.New("down")
	}
	return nil
}

func startServer(t *testing.T, cfg Config, opts ...Option) (*Server, healthpb.HealthClient) {
	t.Helper()
	srv, err := NewServer(cfg, opts...)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	t.Cleanup(func() {
		require.NoError(t, srv.Stop(context.Background()))
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	conn, err := grpc.Dial(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return srv, healthpb.NewHealthClient(conn)
}

func servingStatus(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

func TestServer_HealthMirrorsCheckers(t *testing.T) {
	corpus := &fakeChecker{name: "corpus"}
	redis := &fakeChecker{name: "redis"}
	srv, client := startServer(t, Config{Host: "127.0.0.1", Port: 0, ProbeInterval: time.Hour},
		WithCheckers(corpus, redis))

	require.Eventually(t, func() bool {
		return servingStatus(t, client, "") == healthpb.HealthCheckResponse_SERVING
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, client, "corpus"))

	redis.failing.Store(true)
	srv.Probe(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, client, "redis"))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, client, "corpus"))

	redis.failing.Store(false)
	srv.Probe(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, client, ""))
}

func TestServer_UnknownComponent(t *testing.T) {
	_, client := startServer(t, Config{Host: "127.0.0.1"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "nope"}, grpc.WaitForReady(true))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_DoubleStart(t *testing.T) {
	srv, client := startServer(t, Config{Host: "127.0.0.1"})
	require.Eventually(t, func() bool {
		return servingStatus(t, client, "") == healthpb.HealthCheckResponse_SERVING
	}, 5*time.Second, 20*time.Millisecond)
	assert.Error(t, srv.Start())
}

func TestServer_StopBeforeStart(t *testing.T) {
	srv, err := NewServer(Config{Host: "127.0.0.1"})
	require.NoError(t, err)
	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))
	assert.ErrorIs(t, srv.Start(), grpc.ErrServerStopped)
}

func TestNewServer_InvalidAddress(t *testing.T) {
	_, err := NewServer(Config{Host: "127.0.0.1", Port: -1})
	assert.Error(t, err)
}

func TestRecoveryUnaryInterceptor(t *testing.T) {
	log := testutil.NewMockLogger()
	ic := recoveryUnaryInterceptor(log)
	info := &grpc.UnaryServerInfo{FullMethod: "/x.Svc/Boom"}

	_, err := ic(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("kaboom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.True(t, log.HasMessage("error", "grpc panic recovered"))

	resp, err := ic(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestLoggingUnaryInterceptor_SkipsHealth(t *testing.T) {
	log := testutil.NewMockLogger()
	ic := loggingUnaryInterceptor(log)
	noop := func(context.Context, any) (any, error) { return nil, nil }

	_, _ = ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, noop)
	assert.False(t, log.HasMessage("info", "grpc request"))

	_, _ = ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x.Svc/Call"}, noop)
	assert.True(t, log.HasMessage("info", "grpc request"))
}

//Personal.AI order the ending
