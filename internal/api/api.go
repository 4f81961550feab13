// Package api serves the extraction endpoint the form dispatches to, plus the
// archive listing and a health check.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/jcaMx/company-extractor-web/internal/app"
	"github.com/jcaMx/company-extractor-web/internal/discover"
	"github.com/jcaMx/company-extractor-web/internal/model"
	"github.com/jcaMx/company-extractor-web/internal/store"
)

// Extractor runs the pipeline for one company URL.
type Extractor interface {
	Extract(ctx context.Context, companyURL string) (*model.ExtractionResult, error)
}

// History lists archived extractions, newest first.
type History interface {
	Recent(ctx context.Context, limit int) ([]store.Entry, error)
}

// Server holds the API dependencies. History may be nil.
type Server struct {
	Extractor Extractor
	History   History
}

// maxRequestBody bounds the extraction request payload.
const maxRequestBody = 64 * 1024

// Register adds the API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("GET /api/extractions", s.handleExtractions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler returns the API routes wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return Middleware(mux)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req model.ExtractionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "Missing URL")
		return
	}

	res, err := s.Extractor.Extract(r.Context(), req.URL)
	if err != nil {
		status, msg := describe(err, req.URL)
		log.Error().Err(err).Str("url", req.URL).Int("status", status).Msg("extraction failed")
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// describe maps a pipeline error to a status and user-facing message.
func describe(err error, rawURL string) (int, string) {
	var he *discover.HomepageError
	switch {
	case errors.Is(err, app.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid URL: " + rawURL
	case errors.As(err, &he):
		return http.StatusBadGateway, "Failed to retrieve homepage: " + he.Err.Error()
	default:
		return http.StatusInternalServerError, "An error occurred: " + err.Error()
	}
}

func (s *Server) handleExtractions(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		writeError(w, http.StatusNotFound, "Archive not configured")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	entries, err := s.History.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list extractions")
		writeError(w, http.StatusInternalServerError, "An error occurred: "+err.Error())
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}
