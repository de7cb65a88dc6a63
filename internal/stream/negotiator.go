// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package stream decides how a viewer receives a camera (adaptive stream or
// proxied frames) and implements the proxied multipart frame stream.
package stream

import (
	"context"
	"net/url"

	"github.com/tomtom215/campass/internal/camera"
	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/metrics"
)

// Delivery types.
const (
	TypeAdaptive = "adaptive"
	TypeProxy    = "proxy"
)

// Descriptor tells the client how to fetch a camera.
type Descriptor struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Negotiator picks the delivery mode for a camera. Adaptive streaming is
// preferred; any failure to obtain or start it yields the proxy endpoint.
type Negotiator struct {
	source   camera.Source
	basePath string
}

// NewNegotiator creates a negotiator. basePath prefixes proxy URLs and may
// be empty.
func NewNegotiator(source camera.Source, basePath string) *Negotiator {
	return &Negotiator{source: source, basePath: basePath}
}

// Negotiate never fails: the proxy descriptor is always available.
// Adaptive failures are not remembered, so every call tries again.
func (n *Negotiator) Negotiate(ctx context.Context, slug, cameraID string) Descriptor {
	if url, ok := n.tryAdaptive(ctx, cameraID); ok {
		metrics.RecordNegotiation(TypeAdaptive)
		return Descriptor{Type: TypeAdaptive, URL: url}
	}

	metrics.RecordNegotiation(TypeProxy)
	return Descriptor{Type: TypeProxy, URL: ProxyURL(n.basePath, slug, cameraID)}
}

func (n *Negotiator) tryAdaptive(ctx context.Context, cameraID string) (string, bool) {
	streamer, ok := n.source.(camera.AdaptiveStreamer)
	if !ok {
		return "", false
	}

	log := logging.Ctx(ctx).With().Str("camera", cameraID).Logger()

	handle, err := streamer.AdaptiveStream(ctx, cameraID)
	if err != nil {
		log.Debug().Err(err).Msg("Adaptive stream unavailable, using proxy")
		return "", false
	}
	if handle == nil {
		log.Debug().Msg("Adaptive stream unavailable, using proxy")
		return "", false
	}
	if err := handle.Start(ctx); err != nil {
		log.Debug().Err(err).Msg("Adaptive stream failed to start, using proxy")
		return "", false
	}

	endpoint := handle.EndpointURL()
	if endpoint == "" {
		log.Debug().Msg("Adaptive stream has no endpoint, using proxy")
		return "", false
	}
	return endpoint, true
}

// ProxyURL is the share-scoped path of a camera's proxied frame stream.
func ProxyURL(basePath, slug, cameraID string) string {
	return basePath + "/" + slug + "/api/stream/" + url.PathEscape(cameraID)
}
