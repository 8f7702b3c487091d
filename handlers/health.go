package handlers

import (
	"sync"

	"shardctl/domain"
	"shardctl/helpers"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthReporter mirrors controller states into a gRPC health server. A service is SERVING only
// while its controller is in Serving; the overall status ("") is SERVING when every service is.
type HealthReporter struct {
	server *health.Server
	logger log.Logger

	mu      sync.Mutex
	serving map[string]bool
}

// NewHealthReporter registers every service as NOT_SERVING. Panics on nil server or logger.
func NewHealthReporter(server *health.Server, services []string, logger log.Logger) *HealthReporter {
	h := &HealthReporter{
		server:  helpers.NilPanic(server, "handlers.health.go: health server is required"),
		logger:  log.With(helpers.NilPanic(logger, "handlers.health.go: logger is required"), "component", "health"),
		serving: make(map[string]bool, len(services)),
	}
	for _, s := range services {
		h.serving[s] = false
		server.SetServingStatus(s, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	server.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return h
}

// Observer returns the state callback for serviceID, suitable for Controller.OnStateChange.
func (h *HealthReporter) Observer(serviceID string) func(domain.ControllerState) {
	return func(s domain.ControllerState) {
		h.set(serviceID, s == domain.StateServing)
	}
}

func (h *HealthReporter) set(serviceID string, serving bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.serving[serviceID] = serving
	h.server.SetServingStatus(serviceID, status(serving))

	all := true
	for _, ok := range h.serving {
		all = all && ok
	}
	h.server.SetServingStatus("", status(all))
	level.Debug(h.logger).Log("msg", "health updated", "service", serviceID, "serving", serving, "all_serving", all)
}

func status(serving bool) grpc_health_v1.HealthCheckResponse_ServingStatus {
	if serving {
		return grpc_health_v1.HealthCheckResponse_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_NOT_SERVING
}
