// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/share"
)

// minAdminTokenLength keeps admin tokens out of guessing range.
const minAdminTokenLength = 16

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// placeholderPatterns catch example values copied into production config.
var placeholderPatterns = []string{
	"replace",
	"changeme",
	"change-me",
	"your-",
	"example",
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateStream(); err != nil {
		return err
	}
	if err := c.validateCameras(); err != nil {
		return err
	}
	return c.validateShares()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}

	base := strings.Trim(c.Server.BasePath, "/")
	if base != "" {
		if strings.ContainsAny(base, "{}*?# ") {
			return fmt.Errorf("BASE_PATH contains characters not allowed in a route: %q", c.Server.BasePath)
		}
		if base == "_" || strings.HasPrefix(base, "_/") {
			return fmt.Errorf("BASE_PATH must not start with the reserved segment \"_\"")
		}
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, disabled")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if token := c.Security.AdminToken; token != "" {
		if len(token) < minAdminTokenLength {
			return fmt.Errorf("ADMIN_TOKEN must be at least %d characters", minAdminTokenLength)
		}
		lower := strings.ToLower(token)
		for _, p := range placeholderPatterns {
			if strings.Contains(lower, p) {
				return fmt.Errorf("ADMIN_TOKEN looks like a placeholder value")
			}
		}
	}

	if c.Security.AuthRateLimit < 1 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be at least 1")
	}
	if c.Security.AuthRateWindow <= 0 {
		return fmt.Errorf("AUTH_RATE_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateStream() error {
	if c.Stream.KeepaliveInterval <= 0 {
		return fmt.Errorf("KEEPALIVE_INTERVAL must be positive")
	}
	if c.Stream.FrameInterval <= 0 {
		return fmt.Errorf("FRAME_INTERVAL must be positive")
	}
	if c.Stream.RequestTimeout <= 0 {
		return fmt.Errorf("stream.request_timeout must be positive")
	}
	if c.Stream.MaxFrameBytes <= 0 {
		return fmt.Errorf("stream.max_frame_bytes must be positive")
	}
	return nil
}

func (c *Config) validateCameras() error {
	seen := make(map[string]bool, len(c.Cameras))

	for i, cam := range c.Cameras {
		if cam.ID == "" {
			return fmt.Errorf("cameras[%d]: id is required", i)
		}
		if seen[cam.ID] {
			return fmt.Errorf("cameras[%d]: duplicate camera id %q", i, cam.ID)
		}
		seen[cam.ID] = true

		if cam.SnapshotURL == "" {
			return fmt.Errorf("camera %q: snapshot_url is required", cam.ID)
		}
		for field, raw := range map[string]string{
			"snapshot_url": cam.SnapshotURL,
			"mjpeg_url":    cam.MJPEGURL,
			"hls_url":      cam.HLSURL,
		} {
			if raw == "" {
				continue
			}
			if err := validateHTTPURL(raw); err != nil {
				return fmt.Errorf("camera %q: %s: %w", cam.ID, field, err)
			}
		}
	}
	return nil
}

func (c *Config) validateShares() error {
	if len(c.Shares) == 0 {
		return errors.New("at least one share must be configured")
	}

	shares := c.ShareDefinitions()
	if _, err := share.NewRegistry(shares); err != nil {
		return err
	}

	declared := make(map[string]bool, len(c.Cameras))
	for _, cam := range c.Cameras {
		declared[cam.ID] = true
	}
	for _, s := range shares {
		for _, id := range s.Cameras {
			if !declared[id] {
				return fmt.Errorf("share %q: camera %q is not declared under cameras", s.Slug, id)
			}
		}
	}
	return nil
}

// validateHTTPURL checks for an absolute http or https URL. Paths and
// queries are allowed since camera endpoints commonly need them.
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
