package handlers

import (
	"context"
	"net"
	"testing"
	"time"

	"shardctl/domain"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func TestNewHealthReporter_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "handlers.health.go: health server is required", func() {
		NewHealthReporter(nil, nil, log.NewNopLogger())
	})
	assert.PanicsWithValue(t, "handlers.health.go: logger is required", func() {
		NewHealthReporter(health.NewServer(), nil, nil)
	})
}

func TestHealthReporter(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()
	defer grpcServer.GracefulStop()

	reporter := NewHealthReporter(healthServer, []string{"kv", "cache"}, log.NewNopLogger())

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := grpc_health_v1.NewHealthClient(conn)

	check := func(service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		return resp.Status
	}

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check(""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check("kv"))

	kv, cache := reporter.Observer("kv"), reporter.Observer("cache")
	kv(domain.StateLoading)
	kv(domain.StateServing)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, check("kv"))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check("cache"))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check(""))

	cache(domain.StateServing)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, check(""))

	// A controller reloading after a gap takes its service and the host out of rotation.
	kv(domain.StateLoading)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check("kv"))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check(""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, check("cache"))

	kv(domain.StateServing)
	kv(domain.StateDraining)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check("kv"))
}
