// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package cameratest provides in-memory camera sources for tests.
package cameratest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/campass/internal/camera"
)

// Source is a still-only camera source. Still returns StillData, or fails
// once StillFailAfter frames have been served (when positive) or always
// when StillErr is set.
type Source struct {
	Cameras map[string]string // id -> name

	StillData      []byte
	StillErr       error
	StillFailAfter int64

	stills atomic.Int64
}

var _ camera.Source = (*Source)(nil)

// NewSource creates a still-only source with the given id -> name cameras.
func NewSource(cameras map[string]string) *Source {
	return &Source{Cameras: cameras, StillData: []byte("jpeg")}
}

// Lookup implements camera.Source.
func (s *Source) Lookup(id string) (camera.Info, bool) {
	name, ok := s.Cameras[id]
	if !ok {
		return camera.Info{}, false
	}
	return camera.Info{ID: id, Name: name}, true
}

// Still implements camera.Source.
func (s *Source) Still(ctx context.Context, id string) (camera.Frame, error) {
	if err := ctx.Err(); err != nil {
		return camera.Frame{}, err
	}
	if _, ok := s.Cameras[id]; !ok {
		return camera.Frame{}, fmt.Errorf("%w: %q", camera.ErrUnknownCamera, id)
	}
	if s.StillErr != nil {
		return camera.Frame{}, s.StillErr
	}
	n := s.stills.Add(1)
	if s.StillFailAfter > 0 && n > s.StillFailAfter {
		return camera.Frame{}, fmt.Errorf("%w: still budget exhausted", camera.ErrUpstream)
	}
	return camera.Frame{ContentType: camera.DefaultContentType, Data: s.StillData}, nil
}

// Stills returns the number of still requests served.
func (s *Source) Stills() int64 {
	return s.stills.Load()
}

// Adaptive wraps a Source with adaptive stream support.
type Adaptive struct {
	*Source

	URL       string
	CreateErr error
	StartErr  error
	NilHandle bool

	mu     sync.Mutex
	starts int
}

var _ camera.AdaptiveStreamer = (*Adaptive)(nil)

// AdaptiveStream implements camera.AdaptiveStreamer.
func (a *Adaptive) AdaptiveStream(_ context.Context, id string) (camera.AdaptiveStream, error) {
	if a.CreateErr != nil {
		return nil, a.CreateErr
	}
	if a.NilHandle {
		return nil, nil
	}
	return &handle{parent: a, url: a.URL + "/" + id}, nil
}

// Starts returns the number of Start calls.
func (a *Adaptive) Starts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.starts
}

type handle struct {
	parent *Adaptive
	url    string
}

func (h *handle) Start(context.Context) error {
	h.parent.mu.Lock()
	h.parent.starts++
	h.parent.mu.Unlock()
	return h.parent.StartErr
}

func (h *handle) EndpointURL() string {
	return h.url
}

// Continuous wraps a Source with native continuous frames. It emits
// NativeFrames frames and then returns NativeErr (nil for a clean end).
type Continuous struct {
	*Source

	NativeFrames int
	NativeErr    error
}

var _ camera.ContinuousFramer = (*Continuous)(nil)

// Frames implements camera.ContinuousFramer.
func (c *Continuous) Frames(ctx context.Context, _ string, emit func(camera.Frame) error) error {
	for i := 0; i < c.NativeFrames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(camera.Frame{ContentType: camera.DefaultContentType, Data: []byte(fmt.Sprintf("native-%d", i))}); err != nil {
			return err
		}
	}
	return c.NativeErr
}
