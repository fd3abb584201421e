// Package server provides the HTTP API of the rental assistant.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/hyperjump/rentassist/internal/config"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/pkg/utils"
	"go.uber.org/zap"
)

// ChatHandler answers chat messages.
type ChatHandler interface {
	Handle(ctx context.Context, req models.ChatRequest) *models.ChatResponse
}

// Catalog is the product read side.
type Catalog interface {
	Search(ctx context.Context, f models.SearchFilters) []*models.ProductCandidate
	GetProductDetail(ctx context.Context, id string) *models.ProductCandidate
	SpellingHints(ctx context.Context, q string) []string
}

// Parser reads filters from a message.
type Parser interface {
	Parse(message string) models.ParsedFilters
}

// ProductWriter writes catalog products.
type ProductWriter interface {
	IndexProduct(ctx context.Context, in *models.ProductInput) (string, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ItemCounter reports the catalog size.
type ItemCounter interface {
	CountItems(ctx context.Context) (int64, error)
}

// Dependencies are the collaborators of a Server. Products and Counter are
// optional; their routes answer 501 when unset.
type Dependencies struct {
	Chat     ChatHandler
	Catalog  Catalog
	Parser   Parser
	Products ProductWriter
	Counter  ItemCounter
}

const maxBodyBytes = 1 << 20

// Server is the HTTP server for the assistant API.
type Server struct {
	deps     Dependencies
	config   *config.ServerConfig
	validate *validator.Validate
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(deps Dependencies, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		deps:     deps,
		config:   cfg,
		validate: validator.New(),
		logger:   utils.OrNop(logger),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/search", s.handleSearch)
		r.Post("/intent", s.handleIntent)
		r.Post("/products", s.handleIndexProduct)
		r.Get("/products/{id}", s.handleGetProduct)
		r.Delete("/products/{id}", s.handleDeleteProduct)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
