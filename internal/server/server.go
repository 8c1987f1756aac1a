// Package server exposes the pitch-deck pipeline over a small JSON
// HTTP API mirroring the generate / audiences / cache / download
// surface of the service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/deckforge/deckforge/internal/cache"
	"github.com/deckforge/deckforge/internal/deck"
	deckerrors "github.com/deckforge/deckforge/internal/errors"
	"github.com/deckforge/deckforge/internal/pipeline"
	"github.com/deckforge/deckforge/pkg/version"
)

// Generator runs the deck pipeline for one request.
type Generator interface {
	GeneratePitchDeck(ctx context.Context, repoURL, audienceKey string) (pipeline.Result, error)
}

// ResultCache is the cache surface the API exposes.
type ResultCache interface {
	CacheStats(ctx context.Context) (cache.Stats, error)
	SweepExpired(ctx context.Context) (int, error)
}

// Server is the HTTP API.
type Server struct {
	generator Generator
	cache     ResultCache
	outputDir string
	mux       *http.ServeMux
}

// New creates the API server. outputDir is where rendered decks live
// and is the only directory downloads are served from.
func New(generator Generator, resultCache ResultCache, outputDir string) *Server {
	s := &Server{
		generator: generator,
		cache:     resultCache,
		outputDir: outputDir,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /target-audiences", s.handleAudiences)
	s.mux.HandleFunc("POST /generate-pitch-deck", s.handleGenerate)
	s.mux.HandleFunc("GET /download/{filename}", s.handleDownload)
	s.mux.HandleFunc("GET /cache/stats", s.handleCacheStats)
	s.mux.HandleFunc("POST /cache/sweep", s.handleCacheSweep)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	slog.Info("http_request",
		"method", r.Method,
		"path", r.URL.Path,
		"duration_ms", time.Since(start).Milliseconds())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "online",
		"service": "deckforge",
		"version": version.Version,
	})
}

func (s *Server) handleAudiences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"audiences": deck.Audiences(),
	})
}

type generateRequest struct {
	RepositoryURL string `json:"repository_url"`
	AudienceKey   string `json:"audience_key"`
}

type generateResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	DownloadURL string          `json:"download_url,omitempty"`
	ScriptURL   string          `json:"script_url,omitempty"`
	PitchData   *deck.Deck      `json:"pitch_data,omitempty"`
	Result      *pipeline.Result `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{
			Success: false,
			Message: "invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.RepositoryURL) == "" {
		writeJSON(w, http.StatusBadRequest, generateResponse{
			Success: false,
			Message: "repository_url is required",
		})
		return
	}

	result, err := s.generator.GeneratePitchDeck(r.Context(), req.RepositoryURL, req.AudienceKey)
	if err != nil {
		writeJSON(w, statusForError(err), generateResponse{
			Success: false,
			Message: "failed to generate pitch deck",
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		Message:     "Pitch deck generated successfully",
		DownloadURL: "/download/" + filepath.Base(result.Artifacts.MarkdownPath),
		ScriptURL:   "/download/" + filepath.Base(result.Artifacts.ScriptPath),
		PitchData:   &result.Deck,
		Result:      &result,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	// no traversal: downloads resolve inside the output dir only
	if filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid filename"})
		return
	}

	path := filepath.Join(s.outputDir, filename)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cache.CacheStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCacheSweep(w http.ResponseWriter, r *http.Request) {
	removed, err := s.cache.SweepExpired(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"cleared_entries": removed,
		"message":         fmt.Sprintf("Cleared %d expired cache entries", removed),
	})
}

// statusForError maps pipeline errors onto HTTP status codes.
func statusForError(err error) int {
	var de *deckerrors.DeckError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	switch de.Code {
	case deckerrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case deckerrors.ErrCodeRepoUnreachable:
		return http.StatusBadGateway
	case deckerrors.ErrCodeNothingToIndex:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

// ListenAndServe runs the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
