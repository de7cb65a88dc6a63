// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package gateway

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/campass/internal/logging"
	"github.com/tomtom215/campass/internal/share"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// pageData feeds both page templates.
type pageData struct {
	ShareName string
	Slug      string
	AuthKind  share.AuthKind
	ShareURL  string // PIN page
	APIURL    string // prefix of the share's API
	ViewerURL string
}

func (rt *Router) pageData(sh *share.Share) pageData {
	return pageData{
		ShareName: sh.Name,
		Slug:      sh.Slug,
		AuthKind:  sh.AuthKind,
		ShareURL:  rt.shareURL(sh.Slug),
		APIURL:    rt.cookiePath(sh.Slug) + "/api",
		ViewerURL: rt.cookiePath(sh.Slug) + "/viewer",
	}
}

// redirectToPIN sends /{slug} to /{slug}/ so relative URLs and the cookie
// path line up. Unknown slugs are redirected too; the PIN page answers 404.
func (rt *Router) redirectToPIN(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, rt.shareURL(chi.URLParam(r, "slug")), http.StatusFound)
}

func (rt *Router) pinPage(w http.ResponseWriter, r *http.Request) {
	sc := shareFrom(r.Context())
	rt.renderPage(w, r, "pin.html", rt.pageData(&sc.share))
}

func (rt *Router) viewerPage(w http.ResponseWriter, r *http.Request) {
	sc := shareFrom(r.Context())
	rt.renderPage(w, r, "viewer.html", rt.pageData(&sc.share))
}

// renderPage executes into a buffer so a template error still yields a
// clean 500.
func (rt *Router) renderPage(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	var buf bytes.Buffer
	if err := rt.pages.ExecuteTemplate(&buf, name, data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
