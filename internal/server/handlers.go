package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hyperjump/rentassist/internal/indexer"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/storage"
	"go.uber.org/zap"
)

// decode reads a JSON body into v and validates it. On failure it writes a
// 400 response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("chat request", zap.String("session", req.SessionID), zap.Int("length", len(req.Message)))
	s.respondJSON(w, http.StatusOK, s.deps.Chat.Handle(r.Context(), req))
}

type searchResponse struct {
	Products      []*models.ProductCandidate `json:"products"`
	Count         int                        `json:"count"`
	SpellingHints []string                   `json:"spelling_hints,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var f models.SearchFilters
	if !s.decode(w, r, &f) {
		return
	}
	s.logger.Debug("search request", zap.String("q", f.Q), zap.Int("limit", f.Limit))
	products := s.deps.Catalog.Search(r.Context(), f)
	resp := searchResponse{Products: products, Count: len(products)}
	if len(products) == 0 && strings.TrimSpace(f.Q) != "" {
		resp.SpellingHints = s.deps.Catalog.SpellingHints(r.Context(), f.Q)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type intentRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respondJSON(w, http.StatusOK, s.deps.Parser.Parse(req.Message))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := s.deps.Catalog.GetProductDetail(r.Context(), id)
	if p == nil {
		s.respondError(w, http.StatusNotFound, "product not found")
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleIndexProduct(w http.ResponseWriter, r *http.Request) {
	if s.deps.Products == nil {
		s.respondError(w, http.StatusNotImplemented, "catalog writes not enabled")
		return
	}
	var in models.ProductInput
	if !s.decode(w, r, &in) {
		return
	}
	s.logger.Debug("index product request", zap.String("id", in.ID), zap.String("title", in.Title))
	id, err := s.deps.Products.IndexProduct(r.Context(), &in)
	if errors.Is(err, indexer.ErrInvalidProduct) {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store product")
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id, "status": "indexed"})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if s.deps.Products == nil {
		s.respondError(w, http.StatusNotImplemented, "catalog writes not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete product request", zap.String("id", id))
	err := s.deps.Products.DeleteProduct(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Counter == nil {
		s.respondError(w, http.StatusNotImplemented, "status not enabled")
		return
	}
	n, err := s.deps.Counter.CountItems(r.Context())
	if err != nil {
		s.logger.Error("status: count items failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "status unavailable")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"items": n})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
