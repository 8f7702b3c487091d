package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shardctl/domain"
	"shardctl/service"

	"gopkg.in/yaml.v3"
)

// Env variable names.
const (
	envRedisAddr      = "REDIS_ADDR"
	envHTTPPort       = "SERVICE_PORT_HTTP"
	envGRPCPort       = "SERVICE_PORT_GRPC"
	envConfigPath     = "CONFIG_PATH"
	envDataplane      = "DATAPLANE"
	envPinPath        = "DATAPLANE_PIN_PATH"
	envRetryCount     = "RETRY_COUNT"
	envRetryTimeoutMs = "RETRY_TIMEOUT_MS"
	envLogLevel       = "LOG_LEVEL"
)

const (
	defaultGRPCPort       = 5001
	defaultRetryCount     = 5
	defaultRetryTimeoutMs = 2000
)

// Dataplane selects where shard tables are programmed.
type Dataplane string

const (
	// DataplaneSoftware programs an in-process classifier used by the UDP forwarder.
	DataplaneSoftware Dataplane = "software"
	// DataplaneKernel programs the pinned maps of the kernel packet classifier.
	DataplaneKernel Dataplane = "kernel"
)

// ServiceConfig is one sharded service run by this host.
type ServiceConfig struct {
	Spec       domain.ShardSpec
	ListenAddr string
	Bootstrap  []string
}

// Config holds the full shardctl configuration loaded by LoadConfig from environment variables and the YAML file.
type Config struct {
	RedisAddr string
	HTTPPort  int
	GRPCPort  int
	Dataplane Dataplane
	PinPath   string
	Retry     service.RetryPolicy
	LogLevel  string
	Services  []ServiceConfig
}

type yamlConfig struct {
	Services []yamlService `yaml:"services"`
}

type yamlService struct {
	ServiceID  string       `yaml:"service_id"`
	ShardCount uint32       `yaml:"shard_count"`
	KeyRule    *yamlKeyRule `yaml:"key_rule"`
	ListenAddr string       `yaml:"listen_addr"`
	Bootstrap  []string     `yaml:"bootstrap"`
}

type yamlKeyRule struct {
	Offset int `yaml:"offset"`
	Length int `yaml:"length"`
}

func loadYAMLConfig(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out yamlConfig
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadConfig builds the configuration from environment variables and the services YAML at CONFIG_PATH.
// REDIS_ADDR, SERVICE_PORT_HTTP and CONFIG_PATH are required; DATAPLANE_PIN_PATH is required for the kernel dataplane.
func LoadConfig() (*Config, error) {
	redisAddr := strings.TrimSpace(os.Getenv(envRedisAddr))
	if redisAddr == "" {
		return nil, fmt.Errorf("%s is required", envRedisAddr)
	}

	httpPortStr := strings.TrimSpace(os.Getenv(envHTTPPort))
	if httpPortStr == "" {
		return nil, fmt.Errorf("%s is required", envHTTPPort)
	}
	httpPort, err := parsePort(envHTTPPort, httpPortStr)
	if err != nil {
		return nil, err
	}

	grpcPort := defaultGRPCPort
	if s := strings.TrimSpace(os.Getenv(envGRPCPort)); s != "" {
		if grpcPort, err = parsePort(envGRPCPort, s); err != nil {
			return nil, err
		}
	}

	dataplane := Dataplane(strings.ToLower(strings.TrimSpace(os.Getenv(envDataplane))))
	switch dataplane {
	case "":
		dataplane = DataplaneSoftware
	case DataplaneSoftware, DataplaneKernel:
	default:
		return nil, fmt.Errorf("%s must be kernel|software, got %q", envDataplane, dataplane)
	}
	pinPath := strings.TrimSpace(os.Getenv(envPinPath))
	if dataplane == DataplaneKernel && pinPath == "" {
		return nil, fmt.Errorf("%s is required for %s=kernel", envPinPath, envDataplane)
	}

	retryCount, err := positiveInt(envRetryCount, defaultRetryCount)
	if err != nil {
		return nil, err
	}
	retryTimeoutMs, err := positiveInt(envRetryTimeoutMs, defaultRetryTimeoutMs)
	if err != nil {
		return nil, err
	}
	retry := service.DefaultRetryPolicy
	retry.Count = retryCount
	retry.AttemptTimeout = time.Duration(retryTimeoutMs) * time.Millisecond

	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv(envLogLevel)))
	switch logLevel {
	case "":
		logLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("%s must be debug|info|warn|error, got %q", envLogLevel, logLevel)
	}

	configPath := strings.TrimSpace(os.Getenv(envConfigPath))
	if configPath == "" {
		return nil, fmt.Errorf("%s is required", envConfigPath)
	}
	if !filepath.IsAbs(configPath) {
		abs, absErr := filepath.Abs(configPath)
		if absErr != nil {
			return nil, absErr
		}
		configPath = abs
	}
	raw, err := loadYAMLConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	services, err := toServiceConfigs(raw.Services)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", configPath, err)
	}

	return &Config{
		RedisAddr: redisAddr,
		HTTPPort:  httpPort,
		GRPCPort:  grpcPort,
		Dataplane: dataplane,
		PinPath:   pinPath,
		Retry:     retry,
		LogLevel:  logLevel,
		Services:  services,
	}, nil
}

func toServiceConfigs(raw []yamlService) ([]ServiceConfig, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one service is required")
	}
	seen := make(map[string]bool, len(raw))
	out := make([]ServiceConfig, 0, len(raw))
	for _, s := range raw {
		spec := domain.ShardSpec{
			ServiceID:  strings.TrimSpace(s.ServiceID),
			KeyRule:    domain.DefaultKeyRule,
			ShardCount: s.ShardCount,
		}
		if s.KeyRule != nil {
			spec.KeyRule = domain.KeyRule{Offset: s.KeyRule.Offset, Length: s.KeyRule.Length}
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if seen[spec.ServiceID] {
			return nil, fmt.Errorf("service %s is listed twice", spec.ServiceID)
		}
		seen[spec.ServiceID] = true

		bootstrap := make([]string, 0, len(s.Bootstrap))
		for _, addr := range s.Bootstrap {
			addr = strings.TrimSpace(addr)
			if err := domain.ValidateAddress(addr); err != nil {
				return nil, fmt.Errorf("service %s: bootstrap: %w", spec.ServiceID, err)
			}
			bootstrap = append(bootstrap, addr)
		}
		if len(bootstrap) > 0 && uint32(len(bootstrap)) != spec.ShardCount {
			return nil, fmt.Errorf("service %s: bootstrap lists %d addresses, shard_count is %d", spec.ServiceID, len(bootstrap), spec.ShardCount)
		}
		listenAddr := strings.TrimSpace(s.ListenAddr)
		if listenAddr != "" {
			if _, _, err := net.SplitHostPort(listenAddr); err != nil {
				return nil, fmt.Errorf("service %s: invalid listen_addr: %w", spec.ServiceID, err)
			}
		}
		out = append(out, ServiceConfig{Spec: spec, ListenAddr: listenAddr, Bootstrap: bootstrap})
	}
	return out, nil
}

func parsePort(name, s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("%s must be 0-65535, got %d", name, port)
	}
	return port, nil
}

func positiveInt(name string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}
