// Package config provides the two configuration sources of the lesson
// services: the immutable environment snapshot (see snapshot.go) and an
// optional YAML settings file with environment variable substitution for
// server tuning and log verbosity.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxBodyBytes is the request body ceiling applied when the settings
// file does not override it.
const DefaultMaxBodyBytes int64 = 1 << 20

// Settings is the top-level settings file. Every field is optional; a
// zero-value Settings passed through Defaults is what the services run with
// when no --config flag is given.
type Settings struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Warnings holds non-fatal issues detected during loading. Kept on the
	// value so Load stays safe to call from the reload goroutine.
	Warnings []string `yaml:"-" json:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	SecurityHeaders *bool         `yaml:"security_headers" json:"security_headers"`
}

// SecurityHeadersEnabled reports whether security headers are set on
// responses (defaults to true).
func (s ServerConfig) SecurityHeadersEnabled() bool {
	if s.SecurityHeaders == nil {
		return true
	}
	return *s.SecurityHeaders
}

// LoggingConfig holds service log settings. Level overrides the LOG_LEVEL
// environment variable for the service logger and is the only setting applied
// on reload.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"` // "debug", "info", "warn", "error"; empty keeps LOG_LEVEL
}

// ValidLogLevels are the accepted log level strings.
var ValidLogLevels = map[string]bool{
	"":      true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns in s with the corresponding
// environment variable value. Unknown variables are left as-is.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		key := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return match
	})
}

// Load reads a YAML settings file. An empty path yields the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		s := &Settings{}
		applyDefaults(s)
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses settings from raw YAML bytes, applies environment
// variable substitution and defaults, then validates the result.
func LoadFromBytes(data []byte) (*Settings, error) {
	expanded := expandEnvVars(string(data))

	var s Settings
	if err := yaml.Unmarshal([]byte(expanded), &s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	applyDefaults(&s)

	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}

	s.Warnings = collectWarnings(&s)

	return &s, nil
}

func applyDefaults(s *Settings) {
	if s.Server.ReadTimeout == 0 {
		s.Server.ReadTimeout = 15 * time.Second
	}
	if s.Server.WriteTimeout == 0 {
		s.Server.WriteTimeout = 15 * time.Second
	}
	if s.Server.ShutdownTimeout == 0 {
		s.Server.ShutdownTimeout = 10 * time.Second
	}
	if s.Server.MaxBodyBytes == 0 {
		s.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s.Logging.Level = strings.ToLower(strings.TrimSpace(s.Logging.Level))
}

func validate(s *Settings) error {
	if s.Server.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must be non-negative")
	}
	if s.Server.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must be non-negative")
	}
	if s.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be non-negative")
	}
	if s.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if !ValidLogLevels[s.Logging.Level] {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", s.Logging.Level)
	}
	return nil
}

func collectWarnings(s *Settings) []string {
	var warnings []string
	if s.Server.MaxBodyBytes > 64*DefaultMaxBodyBytes {
		warnings = append(warnings, "server.max_body_bytes is above 64 MiB; echoed bodies are held in memory")
	}
	return warnings
}
