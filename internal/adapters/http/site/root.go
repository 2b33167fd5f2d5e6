// Package site serves the embedded marketing and FAQ pages.
package site

import (
	"context"
	"errors"
	"net/http"
)

// ErrServe is returned when the site cannot be served.
var ErrServe = errors.New("site serve failed")

// Register attaches the site to mux at /. Paths the API does not claim fall
// through to the embedded files.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", NewRootHandler())
}

// RootHandler serves the embedded site.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// ServeHTTP serves the embedded files.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
