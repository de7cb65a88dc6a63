// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/campass/internal/camera"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/campass/config.yaml",
	"/etc/campass/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	source := camera.DefaultHTTPSourceConfig()

	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8099,
			BasePath:          "",
			TrustProxy:        false,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			AdminToken:     "",
			AuthRateLimit:  10,
			AuthRateWindow: time.Minute,
		},
		Storage: StorageConfig{
			Path:       "",
			GCInterval: 10 * time.Minute,
		},
		Stream: StreamConfig{
			KeepaliveInterval: 15 * time.Second,
			FrameInterval:     500 * time.Millisecond,
			RequestTimeout:    source.RequestTimeout,
			MaxFrameBytes:     source.MaxFrameBytes,
			FailureThreshold:  source.FailureThreshold,
			BreakerTimeout:    source.BreakerTimeout,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, the config file found by
// findConfigFile and the environment, then validates it.
func LoadWithKoanf() (*Config, error) {
	return loadFile(findConfigFile())
}

// loadFile is LoadWithKoanf with an explicit config file. An empty path
// skips the file layer.
func loadFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variables (lowercased) to config paths.
var envMappings = map[string]string{
	"http_host":           "server.host",
	"http_port":           "server.port",
	"base_path":           "server.base_path",
	"trust_proxy":         "server.trust_proxy",
	"http_write_timeout":  "server.write_timeout",
	"http_shutdown_grace": "server.shutdown_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"admin_token":      "security.admin_token",
	"auth_rate_limit":  "security.auth_rate_limit",
	"auth_rate_window": "security.auth_rate_window",

	"storage_path":        "storage.path",
	"storage_gc_interval": "storage.gc_interval",

	"keepalive_interval":     "stream.keepalive_interval",
	"frame_interval":         "stream.frame_interval",
	"camera_request_timeout": "stream.request_timeout",
}

// envTransformFunc maps an environment variable name to a config path.
// Unmapped variables return "" and are skipped, so unrelated environment
// does not leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
