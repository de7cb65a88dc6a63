// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package stream

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/campass/internal/camera"
	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/metrics"
)

const (
	// Boundary separates parts of the proxied frame stream.
	Boundary = "frame"

	// ContentType is the response type of the proxied frame stream.
	ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

	// DefaultPollInterval is the still polling cadence (2 frames per second).
	DefaultPollInterval = 500 * time.Millisecond
)

// Frame source modes, used as metric labels.
const (
	modeNative = "native"
	modePoll   = "poll"
)

// clientWriteError marks a failure writing to the viewer, which ends the
// stream instead of triggering a fallback.
type clientWriteError struct {
	err error
}

func (e *clientWriteError) Error() string { return "write frame: " + e.err.Error() }
func (e *clientWriteError) Unwrap() error { return e.err }

// FrameProxy relays a camera as a multipart/x-mixed-replace stream.
type FrameProxy struct {
	source   camera.Source
	interval time.Duration
}

// NewFrameProxy creates a frame proxy polling stills at interval when the
// source cannot push frames itself.
func NewFrameProxy(source camera.Source, interval time.Duration) *FrameProxy {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &FrameProxy{source: source, interval: interval}
}

// Serve streams cameraID to w until ctx is done, the client goes away, or
// the camera fails. Native continuous frames are used when the source offers
// them; if they fail while the client is still connected, the same response
// continues with polled stills. The closing boundary is written exactly once
// however the stream ends.
//
// A nil return means the stream ended normally or the client left; an error
// means the camera failed.
func (p *FrameProxy) Serve(ctx context.Context, w http.ResponseWriter, cameraID string) error {
	metrics.FrameStreamsActive.Inc()
	defer metrics.FrameStreamsActive.Dec()

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.Ctx(ctx).Debug().Err(err).Msg("Could not clear write deadline")
	}

	header := w.Header()
	header.Set("Content-Type", ContentType)
	header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(Boundary); err != nil {
		return fmt.Errorf("set boundary: %w", err)
	}
	defer func() {
		// Close writes the terminating boundary.
		if cerr := mw.Close(); cerr == nil {
			_ = flush(rc)
		}
	}()

	write := func(frame camera.Frame, mode string) error {
		if err := writePart(mw, rc, frame); err != nil {
			return &clientWriteError{err: err}
		}
		metrics.RecordFrame(mode)
		return nil
	}

	log := logging.Ctx(ctx).With().Str("camera", cameraID).Logger()

	if framer, ok := p.source.(camera.ContinuousFramer); ok {
		err := framer.Frames(ctx, cameraID, func(f camera.Frame) error { return write(f, modeNative) })
		var cwe *clientWriteError
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil, errors.As(err, &cwe):
			return nil
		default:
			log.Debug().Err(err).Msg("Native frames unavailable, polling stills")
		}
	}

	return p.poll(ctx, cameraID, write)
}

func (p *FrameProxy) poll(ctx context.Context, cameraID string, write func(camera.Frame, string) error) error {
	limiter := rate.NewLimiter(rate.Every(p.interval), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}

		frame, err := p.source.Still(ctx, cameraID)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := write(frame, modePoll); err != nil {
			return nil
		}
	}
}

func writePart(mw *multipart.Writer, rc *http.ResponseController, frame camera.Frame) error {
	contentType := frame.ContentType
	if contentType == "" {
		contentType = camera.DefaultContentType
	}

	h := make(textproto.MIMEHeader, 2)
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(frame.Data)))

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(frame.Data); err != nil {
		return err
	}
	return flush(rc)
}

func flush(rc *http.ResponseController) error {
	if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
