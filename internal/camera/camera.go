// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package camera defines the capabilities a camera source may offer and an
// HTTP-backed source for cameras that expose snapshot, MJPEG and HLS URLs.
//
// Every source can produce still frames. Adaptive streaming and continuous
// frame delivery are optional and discovered by type assertion:
//
//	if streamer, ok := src.(camera.AdaptiveStreamer); ok {
//	    handle, err := streamer.AdaptiveStream(ctx, id)
//	    ...
//	}
package camera

import (
	"context"
	"errors"
)

var (
	// ErrUnknownCamera is returned for a camera id the source does not know.
	ErrUnknownCamera = errors.New("unknown camera")

	// ErrNotSupported is returned when a camera lacks an optional capability.
	ErrNotSupported = errors.New("capability not supported by camera")

	// ErrUpstream wraps failures talking to the camera.
	ErrUpstream = errors.New("camera upstream error")
)

// DefaultContentType is assumed for frames whose upstream reports no type.
const DefaultContentType = "image/jpeg"

// Info identifies a camera.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Frame is one encoded image.
type Frame struct {
	ContentType string
	Data        []byte
}

// Source is the minimum every camera backend provides.
type Source interface {
	// Lookup returns the camera's display info.
	Lookup(id string) (Info, bool)

	// Still fetches the current frame.
	Still(ctx context.Context, id string) (Frame, error)
}

// AdaptiveStream is a handle to an adaptive-bitrate stream the client can
// play directly.
type AdaptiveStream interface {
	// Start makes the stream ready to serve. Calling it again is harmless.
	Start(ctx context.Context) error

	// EndpointURL is where the client fetches the stream.
	EndpointURL() string
}

// AdaptiveStreamer is implemented by sources that can hand out adaptive streams.
type AdaptiveStreamer interface {
	AdaptiveStream(ctx context.Context, id string) (AdaptiveStream, error)
}

// ContinuousFramer is implemented by sources that can push a continuous
// sequence of frames. Frames calls emit for each frame until the upstream
// ends (nil), ctx is done, emit fails, or the upstream fails.
type ContinuousFramer interface {
	Frames(ctx context.Context, id string, emit func(Frame) error) error
}
