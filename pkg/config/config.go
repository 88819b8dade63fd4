// Package config parses the daemon's environment-variable configuration
// once at startup. Every name is prefixed JIJI_; the daemon fails fast if a
// required variable is missing or a provided one is invalid.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/acidtib/jiji/pkg/validate"
)

const envPrefix = "JIJI_"

// Engine selects the backend pkg/health uses for container process-liveness
// probing.
type Engine string

const (
	EngineDocker     Engine = "docker"
	EnginePodman     Engine = "podman"
	EngineContainerd Engine = "containerd"
)

// Config holds the daemon's full environment-derived configuration.
type Config struct {
	ServerID        string
	Engine          Engine
	Interface       string
	CorrosionAPI    string
	CorrosionDir    string
	LoopInterval    int // seconds
	MetricsAddr     string
	ContainerdSock  string
	LogLevel        string
}

// Load reads and validates configuration from the environment. It is the
// only place in the daemon that calls os.Getenv.
func Load() (*Config, error) {
	cfg := &Config{
		ServerID:       os.Getenv(envPrefix + "SERVER_ID"),
		Engine:         Engine(getEnvDefault(envPrefix+"ENGINE", string(EngineDocker))),
		Interface:      getEnvDefault(envPrefix+"INTERFACE", "jiji0"),
		CorrosionAPI:   getEnvDefault(envPrefix+"CORROSION_API", "http://127.0.0.1:31220"),
		CorrosionDir:   getEnvDefault(envPrefix+"CORROSION_DIR", "/opt/jiji/corrosion"),
		MetricsAddr:    getEnvDefault(envPrefix+"METRICS_ADDR", "127.0.0.1:9102"),
		ContainerdSock: getEnvDefault(envPrefix+"CONTAINERD_SOCK", "/run/containerd/containerd.sock"),
		LogLevel:       getEnvDefault(envPrefix+"LOG_LEVEL", "info"),
	}

	intervalStr := getEnvDefault(envPrefix+"LOOP_INTERVAL", "30")
	interval, err := strconv.Atoi(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("%sLOOP_INTERVAL must be an integer: %w", envPrefix, err)
	}
	cfg.LoopInterval = interval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants Load cannot express inline.
func (c *Config) Validate() error {
	if c.ServerID == "" {
		return fmt.Errorf("%sSERVER_ID is required", envPrefix)
	}
	if !validate.ServerID(c.ServerID) {
		return fmt.Errorf("%sSERVER_ID %q is not a valid server id", envPrefix, c.ServerID)
	}
	switch c.Engine {
	case EngineDocker, EnginePodman, EngineContainerd:
	default:
		return fmt.Errorf("%sENGINE must be one of docker, podman, containerd, got %q", envPrefix, c.Engine)
	}
	if c.Interface == "" {
		return fmt.Errorf("%sINTERFACE must not be empty", envPrefix)
	}
	if c.LoopInterval <= 0 {
		return fmt.Errorf("%sLOOP_INTERVAL must be a positive integer, got %d", envPrefix, c.LoopInterval)
	}
	return nil
}

func getEnvDefault(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return def
}
