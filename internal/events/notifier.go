// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package events reports share availability to viewers, both as a one-shot
// status document and as a server-sent event stream that follows the share's
// enable toggle.
package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campass/internal/camera"
	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/metrics"
	"github.com/tomtom215/campass/internal/share"
)

// DefaultKeepaliveInterval is the idle time after which a comment line is
// sent to keep intermediaries from closing the stream.
const DefaultKeepaliveInterval = 15 * time.Second

// keepaliveFrame is an SSE comment; clients ignore it.
var keepaliveFrame = []byte(": keepalive\n\n")

// ToggleSource is the view of the share toggles the notifier needs.
type ToggleSource interface {
	IsEnabled(slug string) bool
	Subscribe(ctx context.Context, slug string) (<-chan struct{}, func(), error)
}

// Status is the availability document for a share.
type Status struct {
	Available bool          `json:"available"`
	Cameras   []camera.Info `json:"cameras"`
}

// Availability is the payload of each stream event.
type Availability struct {
	Available bool `json:"available"`
}

// Notifier answers status queries and serves availability streams.
type Notifier struct {
	toggles   ToggleSource
	source    camera.Source
	keepalive time.Duration
}

// NewNotifier creates a notifier. A non-positive keepalive uses
// DefaultKeepaliveInterval.
func NewNotifier(toggles ToggleSource, source camera.Source, keepalive time.Duration) *Notifier {
	if keepalive <= 0 {
		keepalive = DefaultKeepaliveInterval
	}
	return &Notifier{toggles: toggles, source: source, keepalive: keepalive}
}

// Status returns the share's availability and the cameras the source knows
// about, in share order.
func (n *Notifier) Status(s *share.Share) Status {
	cameras := make([]camera.Info, 0, len(s.Cameras))
	for _, id := range s.Cameras {
		if info, ok := n.source.Lookup(id); ok {
			cameras = append(cameras, info)
		}
	}
	return Status{
		Available: n.toggles.IsEnabled(s.Slug),
		Cameras:   cameras,
	}
}

// Stream writes availability events for slug to w until ctx is done, the
// client goes away, or the toggles shut down. The current value is sent
// first, then again after every change. A subscription failure is returned
// before anything is written.
func (n *Notifier) Stream(ctx context.Context, w http.ResponseWriter, slug string) error {
	signals, cancel, err := n.toggles.Subscribe(ctx, slug)
	if err != nil {
		return fmt.Errorf("subscribe to %q: %w", slug, err)
	}
	defer cancel()

	metrics.EventStreamsActive.Inc()
	defer metrics.EventStreamsActive.Dec()

	log := logging.Ctx(ctx)

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Debug().Err(err).Msg("Could not clear write deadline")
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(frame []byte) bool {
		if _, err := w.Write(frame); err != nil {
			log.Debug().Err(err).Msg("Event stream client gone")
			return false
		}
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			log.Debug().Err(err).Msg("Event stream flush failed")
			return false
		}
		return true
	}

	if !send(n.availabilityFrame(slug)) {
		return nil
	}

	timer := time.NewTimer(n.keepalive)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case _, ok := <-signals:
			if !ok {
				return nil
			}
			if !send(n.availabilityFrame(slug)) {
				return nil
			}

		case <-timer.C:
			if !send(keepaliveFrame) {
				return nil
			}
		}

		// Any write counts as activity.
		timer.Reset(n.keepalive)
	}
}

// availabilityFrame reads the toggle at call time, so a coalesced burst of
// changes always reports the latest value.
func (n *Notifier) availabilityFrame(slug string) []byte {
	data, err := json.Marshal(Availability{Available: n.toggles.IsEnabled(slug)})
	if err != nil {
		// A bool struct always encodes.
		data = []byte(`{"available":false}`)
	}
	frame := make([]byte, 0, len(data)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, data...)
	return append(frame, '\n', '\n')
}
