// Package api exposes the search engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/Aman-CERP/docsearch/internal/errors"
	"github.com/Aman-CERP/docsearch/internal/search"
)

// Server serves search requests over HTTP.
type Server struct {
	engine *search.Engine
	http   *http.Server
}

// searchRequest is the POST /search body.
type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// healthResponse is the GET /healthz body.
type healthResponse struct {
	Status     string `json:"status"`
	Capability string `json:"capability"`
	Documents  int    `json:"documents"`
}

// NewServer creates an HTTP server around the engine.
func NewServer(addr string, engine *search.Engine) *Server {
	s := &Server{engine: engine}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/search", s.handleSearchGet)
	r.Post("/search", s.handleSearchPost)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the route tree, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	slog.Info("http_server_listening", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	capability := s.engine.Capability()

	status := "ok"
	code := http.StatusOK
	if capability == search.CapabilityNone {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	} else if capability != search.CapabilityBoth {
		status = "degraded"
	}

	writeJSON(w, code, healthResponse{
		Status:     status,
		Capability: capability.String(),
		Documents:  s.engine.DocCount(),
	})
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Code:    apperrors.ErrCodeInvalidQuery,
				Message: "k must be a positive integer",
			})
			return
		}
		k = parsed
	}

	s.runSearch(w, r, query, k)
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    apperrors.ErrCodeInvalidQuery,
			Message: "malformed request body",
		})
		return
	}
	s.runSearch(w, r, req.Query, req.K)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, query string, k int) {
	resp, err := s.engine.Search(r.Context(), query, k)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{
			Code:    apperrors.GetCode(err),
			Message: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusForError maps search errors onto HTTP status codes.
func statusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidQuery:
		return http.StatusBadRequest
	case apperrors.ErrCodeIndexUnbuilt, apperrors.ErrCodeEnginesUnavailable, apperrors.ErrCodeModelUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("response_encode_failed", slog.String("error", err.Error()))
	}
}
