// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultAddr is the listen address of the development backend.
	DefaultAddr = "127.0.0.1:5000"

	// DefaultModel is the Ollama model used when OllamaURL is set.
	DefaultModel = "llama3.2"

	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
	DefaultTopK         = 3

	// MaxRequestBodySize caps /chat bodies (1MB).
	MaxRequestBodySize = 1 << 20

	// MaxUploadSize caps document uploads (32MB).
	MaxUploadSize = 32 << 20

	// generateTimeout bounds a single answer.
	generateTimeout = 2 * time.Minute
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Server. Zero values take the defaults above.
type Options struct {
	Addr string

	// OllamaURL enables LLM answers through Ollama. When empty the server
	// answers with the best matching passages instead.
	OllamaURL string
	Model     string

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	// Generator overrides the answer backend.
	Generator Generator

	Logger *zerolog.Logger
}

func (o *Options) setDefaults() {
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		o.ChunkOverlap = min(DefaultChunkOverlap, o.ChunkSize/2)
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Logger == nil {
		o.Logger = &log.Logger
	}
}

// =============================================================================
// SERVER
// =============================================================================

// Server is the chat and knowledge base HTTP backend.
type Server struct {
	opts   Options
	kb     *KnowledgeBase
	gen    Generator
	router chi.Router
	logger zerolog.Logger

	mu     sync.Mutex
	server *http.Server
}

// New creates a Server with an empty knowledge base.
func New(opts Options) (*Server, error) {
	opts.setDefaults()

	kb, err := NewKnowledgeBase(opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	gen := opts.Generator
	if gen == nil {
		if opts.OllamaURL != "" {
			gen, err = newOllamaGenerator(opts.OllamaURL, opts.Model)
			if err != nil {
				return nil, err
			}
		} else {
			gen = extractiveGenerator{maxPassages: 2}
		}
	}

	s := &Server{
		opts:   opts,
		kb:     kb,
		gen:    gen,
		logger: opts.Logger.With().Str("component", "server").Logger(),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeadersMiddleware)
	r.Use(CORSMiddleware(DefaultCORSConfig()))

	r.Get(api.PathHealth, s.handleHealth)
	r.Post(api.PathChat, s.handleChat)

	r.Route("/admin", func(admin chi.Router) {
		admin.Post("/upload", s.handleUpload)
		admin.Post("/reset", s.handleReset)
		admin.Get("/stats", s.handleStats)
	})

	s.router = r
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.opts.Addr
}

// KnowledgeBase returns the server's document store.
func (s *Server) KnowledgeBase() *KnowledgeBase {
	return s.kb
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if err := validateHistory(req.History); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()

	passages, err := s.kb.Search(ctx, prompt, s.opts.TopK)
	if err != nil {
		s.logger.Error().Err(err).Msg("retrieval failed")
		writeError(w, http.StatusInternalServerError, "retrieval failed")
		return
	}

	reply, err := s.gen.Generate(ctx, req.History, prompt, passages)
	if err != nil {
		s.logger.Error().Err(err).Msg("generation failed")
		writeError(w, http.StatusBadGateway, "generation failed")
		return
	}

	if err := s.kb.Remember(ctx, prompt, reply); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store exchange")
	}

	writeJSON(w, http.StatusOK, model.ChatResponse{Response: reply})
}

func validateHistory(history []model.Message) error {
	for i, m := range history {
		if !m.Role.Valid() {
			return fmt.Errorf("history[%d]: invalid role %q", i, m.Role)
		}
	}
	return nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	file, header, err := r.FormFile(api.UploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field: "+err.Error())
		return
	}
	defer file.Close()

	if !api.IsSupportedDocument(header.Filename) {
		writeError(w, http.StatusUnsupportedMediaType, "supported types are .txt, .md and .pdf")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	content, err := ExtractText(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	chunks, err := s.kb.AddDocument(r.Context(), header.Filename, content)
	if err != nil {
		s.logger.Error().Err(err).Str("file", header.Filename).Msg("indexing failed")
		writeError(w, http.StatusInternalServerError, "indexing failed")
		return
	}

	s.logger.Info().Str("file", header.Filename).Int("chunks", chunks).Msg("document indexed")
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": header.Filename,
		"chunks":   chunks,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.kb.Reset(); err != nil {
		s.logger.Error().Err(err).Msg("reset failed")
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	s.logger.Info().Msg("knowledge base reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.kb.Stats())
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start listens on the configured address and blocks until the server
// stops. It returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      generateTimeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Info().Str("addr", s.opts.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a running server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.logger.Info().Msg("server shutting down")
	return srv.Shutdown(ctx)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    status,
		},
	})
}
