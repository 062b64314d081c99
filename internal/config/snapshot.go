package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvPort         = "PORT"
	EnvAppName      = "APP_NAME"
	EnvAppVersion   = "APP_VERSION"
	EnvFeatureFlagX = "FEATURE_FLAG_X"
	EnvLogLevel     = "LOG_LEVEL"
	EnvProcessName  = "PROCESS_NAME"
	EnvAPIKey       = "API_KEY"
)

const defaultPort = 8080

// Defaults are the fallback values for unset environment variables. The two
// lesson services ship different version defaults, so callers pick one.
type Defaults struct {
	AppName    string
	AppVersion string
}

var (
	// EchoDefaults are the fallbacks of the echo service.
	EchoDefaults = Defaults{AppName: "echo-service", AppVersion: "dev"}
	// LogDefaults are the fallbacks of the log service.
	LogDefaults = Defaults{AppName: "log-service", AppVersion: "v1"}
)

// LookupFunc resolves an environment variable. os.LookupEnv in production.
type LookupFunc func(key string) (string, bool)

// Snapshot is the environment configuration, resolved once at startup and
// never modified afterwards. Pass it by value into handler constructors.
type Snapshot struct {
	Port         int
	AppName      string
	AppVersion   string
	FeatureFlagX string
	LogLevel     string
	ProcessName  string
	Hostname     string

	// APIKey gates the admin routes. Empty disables the gate.
	APIKey string
}

// LoadSnapshot builds a Snapshot from lookup, falling back to defs and the
// package defaults for unset variables. An empty value counts as set, except
// for PORT, where it falls back to 8080.
func LoadSnapshot(lookup LookupFunc, defs Defaults) (Snapshot, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return fallback
	}

	s := Snapshot{
		Port:         defaultPort,
		AppName:      get(EnvAppName, defs.AppName),
		AppVersion:   get(EnvAppVersion, defs.AppVersion),
		FeatureFlagX: get(EnvFeatureFlagX, "off"),
		LogLevel:     get(EnvLogLevel, "info"),
		ProcessName:  get(EnvProcessName, ""),
		APIKey:       get(EnvAPIKey, ""),
		Hostname:     resolveHostname(),
	}

	if portStr, ok := lookup(EnvPort); ok && portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Snapshot{}, fmt.Errorf("invalid %s %q: %w", EnvPort, portStr, err)
		}
		if port < 1 || port > 65535 {
			return Snapshot{}, fmt.Errorf("%s must be between 1 and 65535, got %d", EnvPort, port)
		}
		s.Port = port
	}

	return s, nil
}

// AdminGateEnabled reports whether admin routes require X-API-KEY.
func (s Snapshot) AdminGateEnabled() bool {
	return s.APIKey != ""
}

// Safe returns the subset of the snapshot that may be logged or served.
// The API key is never part of it.
func (s Snapshot) Safe() map[string]string {
	return map[string]string{
		EnvAppName:      s.AppName,
		EnvAppVersion:   s.AppVersion,
		EnvFeatureFlagX: s.FeatureFlagX,
	}
}

// LoadEnvFile populates the process environment from a dotenv file.
// Variables already present in the environment are not overridden.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

func resolveHostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "unknown"
	}
	return h
}
