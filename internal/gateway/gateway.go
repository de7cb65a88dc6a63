// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package gateway is the HTTP face of CamPass: the chi router, the access
// gate that guards every share-scoped endpoint, the viewer-facing handlers
// and the operational endpoints under /_/.
package gateway

import (
	"context"
	"html/template"
	"strings"
	"time"

	"github.com/tomtom215/campass/internal/auth"
	"github.com/tomtom215/campass/internal/camera"
	"github.com/tomtom215/campass/internal/events"
	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/share"
	"github.com/tomtom215/campass/internal/stream"
)

// Default passcode attempt budget per client IP.
const (
	DefaultAuthRateLimit  = 10
	DefaultAuthRateWindow = time.Minute
)

// Options configures the router.
type Options struct {
	// BasePath prefixes every route, e.g. "/campass". Empty serves from the root.
	BasePath string

	// TrustProxy honors X-Forwarded-For and X-Forwarded-Proto.
	TrustProxy bool

	// AdminToken enables the admin endpoints when set.
	AdminToken string

	AuthRateLimit  int
	AuthRateWindow time.Duration

	KeepaliveInterval time.Duration
	FrameInterval     time.Duration
}

// Toggles is the share enablement the router reads and the admin
// endpoints change.
type Toggles interface {
	events.ToggleSource
	Set(slug string, enabled bool) (bool, error)
}

// Secrets looks up a share's signing secret.
type Secrets interface {
	Secret(slug string) ([]byte, bool)
}

// Deps are the collaborators the router serves.
type Deps struct {
	Registry *share.Registry
	Toggles  Toggles
	Secrets  Secrets
	Tokens   *auth.TokenService
	Source   camera.Source

	// Access defaults to an access logger on the global logger.
	Access *logging.AccessLogger
}

// Router serves the share endpoints.
type Router struct {
	opts Options

	registry   *share.Registry
	toggles    Toggles
	secrets    Secrets
	tokens     *auth.TokenService
	notifier   *events.Notifier
	negotiator *stream.Negotiator
	proxy      *stream.FrameProxy
	access     *logging.AccessLogger
	pages      *template.Template
}

// NewRouter creates a router. The base path is normalized to a leading
// slash without a trailing one.
func NewRouter(opts Options, deps Deps) *Router {
	opts.BasePath = normalizeBasePath(opts.BasePath)
	if opts.AuthRateLimit <= 0 {
		opts.AuthRateLimit = DefaultAuthRateLimit
	}
	if opts.AuthRateWindow <= 0 {
		opts.AuthRateWindow = DefaultAuthRateWindow
	}
	if deps.Tokens == nil {
		deps.Tokens = auth.NewTokenService()
	}
	if deps.Access == nil {
		deps.Access = logging.NewAccessLogger()
	}

	return &Router{
		opts:       opts,
		registry:   deps.Registry,
		toggles:    deps.Toggles,
		secrets:    deps.Secrets,
		tokens:     deps.Tokens,
		notifier:   events.NewNotifier(deps.Toggles, deps.Source, opts.KeepaliveInterval),
		negotiator: stream.NewNegotiator(deps.Source, opts.BasePath),
		proxy:      stream.NewFrameProxy(deps.Source, opts.FrameInterval),
		access:     deps.Access,
		pages:      pageTemplates,
	}
}

func normalizeBasePath(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return "/" + base
}

// shareURL is the public path of a share's PIN page.
func (rt *Router) shareURL(slug string) string {
	return rt.opts.BasePath + "/" + slug + "/"
}

// cookiePath scopes credentials to one share's URL namespace.
func (rt *Router) cookiePath(slug string) string {
	return rt.opts.BasePath + "/" + slug
}

type shareContextKey struct{}

// shareContext is what the gate established about a request.
type shareContext struct {
	share    share.Share
	secret   []byte
	cameraID string
}

func withShareContext(ctx context.Context, sc *shareContext) context.Context {
	return context.WithValue(ctx, shareContextKey{}, sc)
}

// shareFrom returns the gate's findings. Handlers behind the gate can rely
// on it being present.
func shareFrom(ctx context.Context) *shareContext {
	sc, _ := ctx.Value(shareContextKey{}).(*shareContext)
	return sc
}
