package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// AddInstanceRequest is the body of POST /v1/services/{service}/shards/{index}/instance.
type AddInstanceRequest struct {
	Address string `json:"address"`
}

// Instance is one shard slot.
type Instance struct {
	ShardIndex uint32 `json:"shard_index"`
	Address    string `json:"address"`
	Health     string `json:"health"`
	Generation uint64 `json:"generation"`
}

// EventResponse is the membership event accepted by the coordination store.
type EventResponse struct {
	Kind       string   `json:"kind"`
	Version    uint64   `json:"version"`
	ShardCount uint32   `json:"shard_count"`
	Instance   Instance `json:"instance"`
}

// TableResponse is the shard table installed on this host.
type TableResponse struct {
	ServiceId  string     `json:"service_id"`
	State      string     `json:"state"`
	Version    uint64     `json:"version"`
	ShardCount uint32     `json:"shard_count"`
	Instances  []Instance `json:"instances"`
}

// ServiceInfo summarizes one service run by this host.
type ServiceInfo struct {
	ServiceId  string `json:"service_id"`
	State      string `json:"state"`
	Version    uint64 `json:"version"`
	ShardCount uint32 `json:"shard_count"`
}

// ServicesResponse lists the services run by this host.
type ServicesResponse struct {
	Services []ServiceInfo `json:"services"`
}

// ServerInterface represents all server handlers of the operator API.
type ServerInterface interface {
	// (GET /v1/services)
	ListServices(ctx echo.Context) error
	// (GET /v1/services/{service}/table)
	GetTable(ctx echo.Context, service string) error
	// (POST /v1/services/{service}/shards/{index}/instance)
	AddInstance(ctx echo.Context, service string, index uint32) error
	// (DELETE /v1/services/{service}/shards/{index}/instance)
	RemoveInstance(ctx echo.Context, service string, index uint32) error
	// (POST /v1/services/{service}/shards/{index}/unreachable)
	MarkUnreachable(ctx echo.Context, service string, index uint32) error
}

// EchoRouter is the part of *echo.Echo and *echo.Group used to register handlers.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// serverInterfaceWrapper converts echo contexts to parameters.
type serverInterfaceWrapper struct {
	handler ServerInterface
}

func (w *serverInterfaceWrapper) ListServices(ctx echo.Context) error {
	return w.handler.ListServices(ctx)
}

func (w *serverInterfaceWrapper) GetTable(ctx echo.Context) error {
	return w.handler.GetTable(ctx, ctx.Param("service"))
}

func (w *serverInterfaceWrapper) AddInstance(ctx echo.Context) error {
	index, err := shardIndexParam(ctx)
	if err != nil {
		return err
	}
	return w.handler.AddInstance(ctx, ctx.Param("service"), index)
}

func (w *serverInterfaceWrapper) RemoveInstance(ctx echo.Context) error {
	index, err := shardIndexParam(ctx)
	if err != nil {
		return err
	}
	return w.handler.RemoveInstance(ctx, ctx.Param("service"), index)
}

func (w *serverInterfaceWrapper) MarkUnreachable(ctx echo.Context) error {
	index, err := shardIndexParam(ctx)
	if err != nil {
		return err
	}
	return w.handler.MarkUnreachable(ctx, ctx.Param("service"), index)
}

func shardIndexParam(ctx echo.Context) (uint32, error) {
	index, err := strconv.ParseUint(ctx.Param("index"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter index: %s", err))
	}
	return uint32(index), nil
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface, m ...echo.MiddlewareFunc) {
	w := &serverInterfaceWrapper{handler: si}
	router.GET("/v1/services", w.ListServices, m...)
	router.GET("/v1/services/:service/table", w.GetTable, m...)
	router.POST("/v1/services/:service/shards/:index/instance", w.AddInstance, m...)
	router.DELETE("/v1/services/:service/shards/:index/instance", w.RemoveInstance, m...)
	router.POST("/v1/services/:service/shards/:index/unreachable", w.MarkUnreachable, m...)
}
