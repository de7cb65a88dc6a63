// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package share

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/metrics"
)

// topicPrefix namespaces toggle change topics, one per share.
const topicPrefix = "share.enabled."

// ToggleChange is the payload published when a share is enabled or disabled.
type ToggleChange struct {
	Slug    string `json:"slug"`
	Enabled bool   `json:"enabled"`
}

// Toggles holds the per-share enable flags and fans out change notifications
// over an in-process watermill pub/sub.
//
// The set of slugs is fixed at construction, so the map itself is read-only
// and only the flag values change. A slug with no toggle reads as disabled.
type Toggles struct {
	states map[string]*atomic.Bool
	names  map[string]string
	pubSub *gochannel.GoChannel
	logger zerolog.Logger
}

// NewToggles creates toggles for the shares in the registry, initialized from
// each share's Enabled field.
func NewToggles(registry *Registry, wmLogger watermill.LoggerAdapter) *Toggles {
	if wmLogger == nil {
		wmLogger = watermill.NopLogger{}
	}

	t := &Toggles{
		states: make(map[string]*atomic.Bool, registry.Len()),
		names:  make(map[string]string, registry.Len()),
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 16,
		}, wmLogger),
		logger: logging.WithComponent("toggles"),
	}

	for _, s := range registry.List() {
		state := &atomic.Bool{}
		state.Store(s.Enabled)
		t.states[s.Slug] = state
		t.names[s.Slug] = s.Name
		metrics.SetShareEnabled(s.Slug, s.Enabled)
	}

	return t
}

// IsEnabled reports whether sharing is on for slug. Unknown slugs are off.
func (t *Toggles) IsEnabled(slug string) bool {
	state, ok := t.states[slug]
	if !ok {
		return false
	}
	return state.Load()
}

// Set turns sharing on or off for slug and notifies subscribers when the
// value changed. It returns whether the value changed.
func (t *Toggles) Set(slug string, enabled bool) (bool, error) {
	state, ok := t.states[slug]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownShare, slug)
	}
	if state.Swap(enabled) == enabled {
		return false, nil
	}

	metrics.SetShareEnabled(slug, enabled)
	event := t.logger.Info().Str("share", t.names[slug]).Str("slug", slug)
	if enabled {
		event.Msg("Share enabled")
	} else {
		event.Msg("Share disabled")
	}

	payload, err := json.Marshal(ToggleChange{Slug: slug, Enabled: enabled})
	if err != nil {
		return true, fmt.Errorf("encode toggle change: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := t.pubSub.Publish(topicPrefix+slug, msg); err != nil {
		return true, fmt.Errorf("publish toggle change for %q: %w", slug, err)
	}
	return true, nil
}

// Subscribe returns a channel that receives a signal after each change to
// slug's toggle. Signals coalesce: a burst of changes may yield one signal, so
// receivers read the current value with IsEnabled when woken. The channel is
// closed when the subscription ends, either through the returned cancel
// func, ctx, or Close.
func (t *Toggles) Subscribe(ctx context.Context, slug string) (<-chan struct{}, func(), error) {
	if _, ok := t.states[slug]; !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownShare, slug)
	}

	subCtx, cancel := context.WithCancel(ctx)
	messages, err := t.pubSub.Subscribe(subCtx, topicPrefix+slug)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("subscribe to %q: %w", slug, err)
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		for msg := range messages {
			msg.Ack()
			select {
			case signals <- struct{}{}:
			default:
			}
		}
	}()

	return signals, cancel, nil
}

// Close shuts the pub/sub down, ending every subscription.
func (t *Toggles) Close() error {
	return t.pubSub.Close()
}
