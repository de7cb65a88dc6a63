// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/metrics"
)

// Definition describes one HTTP camera.
type Definition struct {
	ID   string
	Name string

	// SnapshotURL returns a single encoded image per GET. Required.
	SnapshotURL string

	// MJPEGURL serves multipart/x-mixed-replace frames. Optional.
	MJPEGURL string

	// HLSURL is a playlist reachable by viewers directly. Optional.
	HLSURL string
}

// HTTPSourceConfig tunes upstream requests.
type HTTPSourceConfig struct {
	// RequestTimeout bounds snapshot and playlist probe requests.
	RequestTimeout time.Duration

	// MaxFrameBytes caps the size of one frame read from upstream.
	MaxFrameBytes int64

	// FailureThreshold is the number of consecutive snapshot failures that
	// opens a camera's circuit breaker.
	FailureThreshold uint32

	// BreakerTimeout is how long an open breaker rejects requests before
	// letting a probe through.
	BreakerTimeout time.Duration
}

// DefaultHTTPSourceConfig returns production defaults.
func DefaultHTTPSourceConfig() HTTPSourceConfig {
	return HTTPSourceConfig{
		RequestTimeout:   10 * time.Second,
		MaxFrameBytes:    8 << 20,
		FailureThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
}

type httpCamera struct {
	def     Definition
	breaker *gobreaker.CircuitBreaker[Frame]
}

// HTTPSource serves cameras over plain HTTP. It implements Source,
// AdaptiveStreamer and ContinuousFramer; cameras without an MJPEG or HLS URL
// report ErrNotSupported for the corresponding capability.
type HTTPSource struct {
	cameras map[string]*httpCamera
	client  *http.Client
	stream  *http.Client
	cfg     HTTPSourceConfig
}

var (
	_ Source           = (*HTTPSource)(nil)
	_ AdaptiveStreamer = (*HTTPSource)(nil)
	_ ContinuousFramer = (*HTTPSource)(nil)
)

// NewHTTPSource creates a source for the given cameras.
func NewHTTPSource(defs []Definition, cfg HTTPSourceConfig) *HTTPSource {
	defaults := DefaultHTTPSourceConfig()
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.MaxFrameBytes <= 0 {
		cfg.MaxFrameBytes = defaults.MaxFrameBytes
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaults.BreakerTimeout
	}

	s := &HTTPSource{
		cameras: make(map[string]*httpCamera, len(defs)),
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		// Continuous streams are bounded by the request context, not a timeout.
		stream: &http.Client{},
		cfg:    cfg,
	}

	log := logging.WithComponent("camera")
	for _, def := range defs {
		threshold := cfg.FailureThreshold
		s.cameras[def.ID] = &httpCamera{
			def: def,
			breaker: gobreaker.NewCircuitBreaker[Frame](gobreaker.Settings{
				Name:        def.ID,
				MaxRequests: 1,
				Timeout:     cfg.BreakerTimeout,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= threshold
				},
				OnStateChange: func(name string, from, to gobreaker.State) {
					log.Warn().Str("camera", name).Str("from", from.String()).Str("to", to.String()).
						Msg("Camera circuit breaker state changed")
				},
			}),
		}
	}

	return s
}

// Lookup returns the camera's display info.
func (s *HTTPSource) Lookup(id string) (Info, bool) {
	cam, ok := s.cameras[id]
	if !ok {
		return Info{}, false
	}
	name := cam.def.Name
	if name == "" {
		name = cam.def.ID
	}
	return Info{ID: cam.def.ID, Name: name}, true
}

// Still fetches the camera's snapshot URL through its circuit breaker.
func (s *HTTPSource) Still(ctx context.Context, id string) (Frame, error) {
	cam, ok := s.cameras[id]
	if !ok {
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownCamera, id)
	}

	frame, err := cam.breaker.Execute(func() (Frame, error) {
		return s.fetchStill(ctx, cam.def.SnapshotURL)
	})
	if err != nil {
		metrics.RecordUpstreamError("still")
		return Frame{}, fmt.Errorf("%w: still %q: %w", ErrUpstream, id, err)
	}
	return frame, nil
}

func (s *HTTPSource) fetchStill(ctx context.Context, url string) (Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Frame{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Frame{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Frame{}, fmt.Errorf("snapshot returned status %d", resp.StatusCode)
	}

	data, err := readLimited(resp.Body, s.cfg.MaxFrameBytes)
	if err != nil {
		return Frame{}, err
	}
	return Frame{ContentType: contentTypeOr(resp.Header.Get("Content-Type")), Data: data}, nil
}

// Frames relays the camera's MJPEG stream frame by frame.
func (s *HTTPSource) Frames(ctx context.Context, id string, emit func(Frame) error) error {
	cam, ok := s.cameras[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCamera, id)
	}
	if cam.def.MJPEGURL == "" {
		return ErrNotSupported
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cam.def.MJPEGURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.stream.Do(req)
	if err != nil {
		metrics.RecordUpstreamError("frames")
		return fmt.Errorf("%w: mjpeg %q: %w", ErrUpstream, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstreamError("frames")
		return fmt.Errorf("%w: mjpeg %q returned status %d", ErrUpstream, id, resp.StatusCode)
	}

	boundary, err := multipartBoundary(resp.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("%w: mjpeg %q: %w", ErrUpstream, id, err)
	}

	reader := multipart.NewReader(resp.Body, boundary)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.RecordUpstreamError("frames")
			return fmt.Errorf("%w: mjpeg %q: %w", ErrUpstream, id, err)
		}

		data, err := readLimited(part, s.cfg.MaxFrameBytes)
		contentType := part.Header.Get("Content-Type")
		_ = part.Close()
		if err != nil {
			return fmt.Errorf("%w: mjpeg %q: %w", ErrUpstream, id, err)
		}
		if len(data) == 0 {
			continue
		}

		if err := emit(Frame{ContentType: contentTypeOr(contentType), Data: data}); err != nil {
			return err
		}
	}
}

// AdaptiveStream returns a handle to the camera's HLS playlist.
func (s *HTTPSource) AdaptiveStream(_ context.Context, id string) (AdaptiveStream, error) {
	cam, ok := s.cameras[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCamera, id)
	}
	if cam.def.HLSURL == "" {
		return nil, ErrNotSupported
	}
	return &hlsStream{url: cam.def.HLSURL, client: s.client}, nil
}

// hlsStream is an HLS playlist served by the camera itself. Start probes the
// playlist so that a dead upstream falls back to proxying.
type hlsStream struct {
	url    string
	client *http.Client
}

func (h *hlsStream) Start(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		metrics.RecordUpstreamError("adaptive")
		return fmt.Errorf("%w: playlist: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstreamError("adaptive")
		return fmt.Errorf("%w: playlist returned status %d", ErrUpstream, resp.StatusCode)
	}

	head := make([]byte, len("#EXTM3U"))
	if _, err := io.ReadFull(resp.Body, head); err != nil || string(head) != "#EXTM3U" {
		metrics.RecordUpstreamError("adaptive")
		return fmt.Errorf("%w: playlist is not an m3u8 document", ErrUpstream)
	}
	return nil
}

func (h *hlsStream) EndpointURL() string {
	return h.url
}

func multipartBoundary(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("parse content type %q: %w", contentType, err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return "", fmt.Errorf("content type %q is not multipart", mediaType)
	}
	// Some cameras declare the boundary with its leading dashes.
	boundary := strings.TrimPrefix(params["boundary"], "--")
	if boundary == "" {
		return "", fmt.Errorf("content type %q has no boundary", contentType)
	}
	return boundary, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("frame exceeds %d bytes", limit)
	}
	return data, nil
}

func contentTypeOr(contentType string) string {
	if contentType == "" {
		return DefaultContentType
	}
	return contentType
}
