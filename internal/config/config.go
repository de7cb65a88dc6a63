// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/campass/internal/camera"
	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/share"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Security SecurityConfig `koanf:"security"`
	Storage  StorageConfig  `koanf:"storage"`
	Stream   StreamConfig   `koanf:"stream"`
	Cameras  []CameraConfig `koanf:"cameras"`
	Shares   []ShareConfig  `koanf:"shares"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	BasePath string `koanf:"base_path"`

	// TrustProxy honors X-Forwarded-For and X-Forwarded-Proto. Enable only
	// behind a reverse proxy that sets them.
	TrustProxy bool `koanf:"trust_proxy"`

	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	// WriteTimeout applies to ordinary responses; event and frame streams
	// clear it for their own connection.
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ToLogging converts to the logging package configuration.
func (l LoggingConfig) ToLogging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}

// SecurityConfig holds admin access and passcode attempt limits.
type SecurityConfig struct {
	// AdminToken enables the admin endpoints when set.
	AdminToken string `koanf:"admin_token"`

	AuthRateLimit  int           `koanf:"auth_rate_limit"`
	AuthRateWindow time.Duration `koanf:"auth_rate_window"`
}

// StorageConfig holds signing secret persistence settings.
type StorageConfig struct {
	// Path is the badger directory. Empty keeps secrets in memory, so every
	// restart invalidates all sessions.
	Path       string        `koanf:"path"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// StreamConfig tunes event and frame delivery and upstream camera access.
type StreamConfig struct {
	KeepaliveInterval time.Duration `koanf:"keepalive_interval"`
	FrameInterval     time.Duration `koanf:"frame_interval"`

	RequestTimeout   time.Duration `koanf:"request_timeout"`
	MaxFrameBytes    int64         `koanf:"max_frame_bytes"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
}

// SourceConfig converts to the camera source configuration.
func (s StreamConfig) SourceConfig() camera.HTTPSourceConfig {
	return camera.HTTPSourceConfig{
		RequestTimeout:   s.RequestTimeout,
		MaxFrameBytes:    s.MaxFrameBytes,
		FailureThreshold: s.FailureThreshold,
		BreakerTimeout:   s.BreakerTimeout,
	}
}

// CameraConfig describes one upstream camera.
type CameraConfig struct {
	ID          string `koanf:"id"`
	Name        string `koanf:"name"`
	SnapshotURL string `koanf:"snapshot_url"`
	MJPEGURL    string `koanf:"mjpeg_url"`
	HLSURL      string `koanf:"hls_url"`
}

// ShareConfig describes one share.
type ShareConfig struct {
	Slug            string   `koanf:"slug"`
	Name            string   `koanf:"name"`
	AuthKind        string   `koanf:"auth_kind"`
	Passcode        string   `koanf:"passcode"`
	Cameras         []string `koanf:"cameras"`
	SessionDuration string   `koanf:"session_duration"`
	Enabled         bool     `koanf:"enabled"`
}

// CameraDefinitions returns the configured cameras for the camera source.
func (c *Config) CameraDefinitions() []camera.Definition {
	defs := make([]camera.Definition, 0, len(c.Cameras))
	for _, cam := range c.Cameras {
		defs = append(defs, camera.Definition{
			ID:          cam.ID,
			Name:        cam.Name,
			SnapshotURL: cam.SnapshotURL,
			MJPEGURL:    cam.MJPEGURL,
			HLSURL:      cam.HLSURL,
		})
	}
	return defs
}

// ShareDefinitions returns the configured shares, deriving missing slugs
// from share names.
func (c *Config) ShareDefinitions() []share.Share {
	shares := make([]share.Share, 0, len(c.Shares))
	for _, s := range c.Shares {
		slug := s.Slug
		if slug == "" {
			slug = share.Slugify(s.Name)
		}
		shares = append(shares, share.Share{
			Slug:            slug,
			Name:            s.Name,
			AuthKind:        share.AuthKind(s.AuthKind),
			Passcode:        s.Passcode,
			Cameras:         append([]string(nil), s.Cameras...),
			SessionDuration: share.SessionDuration(s.SessionDuration),
			Enabled:         s.Enabled,
		})
	}
	return shares
}
