package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"shardctl/adapters/ebpfmap"
	"shardctl/adapters/myredis"
	"shardctl/handlers"
	"shardctl/interfaces"
	"shardctl/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.WithPrefix(logger, "ts", log.DefaultTimestampUTC)
	logger = log.WithPrefix(logger, "caller", log.DefaultCaller)

	level.Info(logger).Log("msg", "Starting shardctl")

	config, err := LoadConfig()
	if err != nil {
		level.Error(logger).Log("msg", "Failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger = level.NewFilter(logger, logLevelOption(config.LogLevel))

	level.Info(logger).Log(
		"msg", "Configuration loaded",
		"service_port_http", config.HTTPPort,
		"service_port_grpc", config.GRPCPort,
		"redis_addr", config.RedisAddr,
		"dataplane", config.Dataplane,
		"services", len(config.Services),
		"retry_count", config.Retry.Count,
		"retry_timeout", config.Retry.AttemptTimeout,
	)

	var store interfaces.Store
	var closers []io.Closer
	{
		redisClient, err := myredis.NewRedisUniversalClient(config.RedisAddr,
			myredis.WithTimeouts(config.Retry.AttemptTimeout),
			myredis.WithoutClientRetries(),
		)
		if err != nil {
			level.Error(logger).Log("msg", "Failed to create Redis client", "err", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			level.Error(logger).Log("msg", "Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "Connected to Redis")

		store = myredis.NewStore(redisClient, config.Retry, logger)
	}

	healthServer := health.NewServer()
	var reporter *handlers.HealthReporter
	{
		ids := make([]string, 0, len(config.Services))
		for _, s := range config.Services {
			ids = append(ids, s.Spec.ServiceID)
		}
		reporter = handlers.NewHealthReporter(healthServer, ids, logger)
	}

	var (
		controllers []*service.Controller
		operators   []interfaces.ShardOperator
		forwarders  []*service.Forwarder
	)
	for _, s := range config.Services {
		svcLogger := log.With(logger, "service", s.Spec.ServiceID)

		var classifier interfaces.ClassifierMap
		switch config.Dataplane {
		case DataplaneKernel:
			c, err := ebpfmap.Open(filepath.Join(config.PinPath, s.Spec.ServiceID), s.Spec.ShardCount)
			if err != nil {
				level.Error(svcLogger).Log("msg", "Failed to open classifier maps", "err", err)
				os.Exit(1)
			}
			closers = append(closers, c)
			classifier = c
			if s.ListenAddr != "" {
				level.Warn(svcLogger).Log("msg", "listen_addr is ignored by the kernel dataplane", "listen_addr", s.ListenAddr)
			}
		default:
			c := service.NewSoftwareClassifier(s.Spec)
			classifier = c
			if s.ListenAddr != "" {
				f := service.NewForwarder(s.ListenAddr, c, 0, svcLogger)
				if err := f.Listen(); err != nil {
					level.Error(svcLogger).Log("msg", "Failed to listen", "err", err)
					os.Exit(1)
				}
				forwarders = append(forwarders, f)
			}
		}

		controller := service.NewController(service.ControllerConfig{
			Spec:         s.Spec,
			Bootstrap:    s.Bootstrap,
			PublishRetry: config.Retry,
		}, store, service.NewProgrammer(classifier, svcLogger), svcLogger)
		controller.OnStateChange(reporter.Observer(s.Spec.ServiceID))
		controllers = append(controllers, controller)
		operators = append(operators, controller)
	}

	var e *echo.Echo
	{
		doc, err := handlers.LoadOpenAPI()
		if err != nil {
			level.Error(logger).Log("msg", "Failed to load OpenAPI document", "err", err)
			os.Exit(1)
		}
		validator, err := handlers.OpenAPIRequestValidator(doc)
		if err != nil {
			level.Error(logger).Log("msg", "Failed to create request validator", "err", err)
			os.Exit(1)
		}

		e = echo.New()
		e.HideBanner = true
		service.RegisterErrorHandler(e, logger)
		handlers.RegisterHandlers(e, handlers.NewHTTPServer(operators, logger), validator)
	}

	var grpcServer *grpc.Server
	{
		grpcServer = grpc.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		reflection.Register(grpcServer)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", config.GRPCPort))
	if err != nil {
		level.Error(logger).Log("msg", "Failed to listen", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, c := range controllers {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Run(ctx); err != nil {
				level.Error(logger).Log("msg", "Controller stopped", "service", c.Spec().ServiceID, "err", err)
			}
		}()
	}
	for _, f := range forwarders {
		f := f
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.Serve(ctx); err != nil {
				level.Error(logger).Log("msg", "Forwarder error", "err", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		level.Info(logger).Log("msg", "Starting gRPC server", "addr", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			level.Error(logger).Log("msg", "gRPC server error", "err", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", config.HTTPPort)
		level.Info(logger).Log("msg", "Starting HTTP server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "HTTP server error", "err", err)
		}
	}()

	<-quit
	level.Info(logger).Log("msg", "Shutting down...")

	// Controllers drain first so in-flight operator calls finish before the API goes away.
	healthServer.Shutdown()
	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "Error during HTTP server shutdown", "err", err)
	}
	grpcServer.GracefulStop()

	for _, c := range closers {
		if err := c.Close(); err != nil {
			level.Warn(logger).Log("msg", "Error during close", "err", err)
		}
	}
	level.Info(logger).Log("msg", "Server stopped")
}

func logLevelOption(name string) level.Option {
	switch name {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
