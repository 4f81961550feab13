package web

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jcaMx/company-extractor-web/internal/client"
	"github.com/jcaMx/company-extractor-web/internal/form"
)

// Handler serves the extraction form. Each request is its own form session:
// GET renders it empty, POST submits once and renders the settled state.
type Handler struct {
	Dispatcher client.Dispatcher
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.write(w, http.StatusOK, form.New().Snapshot())
	case http.MethodPost:
		h.submit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	state := form.New()
	state.SetURL(r.PostFormValue("url"))

	snap, err := state.Submit(r.Context(), h.Dispatcher)
	if errors.Is(err, form.ErrEmptyURL) {
		h.write(w, http.StatusBadRequest, snap)
		return
	}
	if err != nil {
		log.Debug().Err(err).Str("url", snap.URL).Msg("submission failed")
	}
	h.write(w, http.StatusOK, snap)
}

func (h *Handler) write(w http.ResponseWriter, status int, snap form.Snapshot) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, snap); err != nil {
		log.Error().Err(err).Msg("render page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
