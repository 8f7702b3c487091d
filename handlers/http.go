// Package handlers contains the operator HTTP API and the gRPC health reporting of shardctl.
package handlers

import (
	"fmt"
	"net/http"

	"shardctl/domain"
	"shardctl/helpers"
	"shardctl/interfaces"
	"shardctl/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"
)

// HTTPServer implements ServerInterface over the shard controllers of this host.
type HTTPServer struct {
	operators map[string]interfaces.ShardOperator
	order     []string
	logger    log.Logger
}

// NewHTTPServer creates a new HTTPServer. Panics on a nil operator or logger.
func NewHTTPServer(operators []interfaces.ShardOperator, logger log.Logger) *HTTPServer {
	logger = log.WithPrefix(helpers.NilPanic(logger, "handlers.http.go: logger is required"), "component", "HTTPServer")
	h := &HTTPServer{
		operators: make(map[string]interfaces.ShardOperator, len(operators)),
		logger:    logger,
	}
	for _, op := range operators {
		id := helpers.NilPanic(op, "handlers.http.go: operator is required").Spec().ServiceID
		h.operators[id] = op
		h.order = append(h.order, id)
	}
	return h
}

func (h *HTTPServer) operator(serviceID string) (interfaces.ShardOperator, error) {
	op, ok := h.operators[serviceID]
	if !ok {
		return nil, service.NewEntityNotFoundError(fmt.Sprintf("service %s is not run by this host", serviceID), nil)
	}
	return op, nil
}

// ListServices (GET /v1/services) returns every service with its controller state and table version.
func (h *HTTPServer) ListServices(ectx echo.Context) error {
	infos := make([]ServiceInfo, 0, len(h.order))
	for _, id := range h.order {
		infos = append(infos, toServiceInfo(h.operators[id]))
	}
	return ectx.JSON(http.StatusOK, ServicesResponse{Services: infos})
}

// GetTable (GET /v1/services/{service}/table) returns the table installed in the local dataplane.
func (h *HTTPServer) GetTable(ectx echo.Context, serviceID string) error {
	op, err := h.operator(serviceID)
	if err != nil {
		return err
	}
	return ectx.JSON(http.StatusOK, toTableResponse(op))
}

// AddInstance (POST /v1/services/{service}/shards/{index}/instance) publishes a new instance for the shard.
func (h *HTTPServer) AddInstance(ectx echo.Context, serviceID string, index uint32) error {
	op, err := h.operator(serviceID)
	if err != nil {
		return err
	}
	var req AddInstanceRequest
	if err := ectx.Bind(&req); err != nil {
		return service.NewBadParameterError("invalid request body", err)
	}
	address, err := fromAddInstanceRequest(req)
	if err != nil {
		return err
	}

	ev, err := op.AddInstance(ectx.Request().Context(), index, address)
	if err != nil {
		return fmt.Errorf("addInstance failed to publish event for shard %d of %s, err: %w", index, serviceID, err)
	}
	h.logEvent(serviceID, ev)
	return ectx.JSON(http.StatusOK, toEventResponse(ev))
}

// RemoveInstance (DELETE /v1/services/{service}/shards/{index}/instance) publishes the removal of the shard's instance.
func (h *HTTPServer) RemoveInstance(ectx echo.Context, serviceID string, index uint32) error {
	op, err := h.operator(serviceID)
	if err != nil {
		return err
	}
	ev, err := op.RemoveInstance(ectx.Request().Context(), index)
	if err != nil {
		return fmt.Errorf("removeInstance failed to publish event for shard %d of %s, err: %w", index, serviceID, err)
	}
	h.logEvent(serviceID, ev)
	return ectx.JSON(http.StatusOK, toEventResponse(ev))
}

// MarkUnreachable (POST /v1/services/{service}/shards/{index}/unreachable) publishes that the shard's instance is unreachable.
func (h *HTTPServer) MarkUnreachable(ectx echo.Context, serviceID string, index uint32) error {
	op, err := h.operator(serviceID)
	if err != nil {
		return err
	}
	ev, err := op.MarkUnreachable(ectx.Request().Context(), index)
	if err != nil {
		return fmt.Errorf("markUnreachable failed to publish event for shard %d of %s, err: %w", index, serviceID, err)
	}
	h.logEvent(serviceID, ev)
	return ectx.JSON(http.StatusOK, toEventResponse(ev))
}

func (h *HTTPServer) logEvent(serviceID string, ev domain.MembershipEvent) {
	level.Info(h.logger).Log("msg", "operator event published", "service", serviceID, "kind", ev.Kind, "shard", ev.Instance.ShardIndex, "version", ev.Version)
}
