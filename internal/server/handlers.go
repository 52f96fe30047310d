package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/katalog/internal/catalog"
	"github.com/hyperjump/katalog/internal/models"
	"github.com/hyperjump/katalog/internal/query"
	"github.com/hyperjump/katalog/internal/search"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.String("mode", req.Mode))
	s.search(w, r, &req)
}

// handleListProducts is the GET form of search. Facet parameters that are
// missing or invalid fall back to "no constraint".
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &models.SearchRequest{Query: q.Get("q"), Mode: q.Get("mode")}
	if q.Has("category") || q.Has("min_price") || q.Has("max_price") || q.Has("min_rating") {
		facets := models.ParseFacetSelection(q.Get("category"), q.Get("min_price"), q.Get("max_price"), q.Get("min_rating"))
		req.Facets = &facets
	}
	s.search(w, r, req)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, req *models.SearchRequest) {
	response, err := s.engine.Search(r.Context(), req)
	if err != nil {
		if errors.Is(err, search.ErrInvalidMode) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := s.engine.Catalog().Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "product not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string][]string{
		"categories": s.engine.Catalog().Categories(),
		"canonical":  query.Categories(),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	parsed := s.engine.Parse(r.URL.Query().Get("q"))
	s.respondJSON(w, http.StatusOK, &models.ParseResponse{
		Parsed:        parsed,
		Understanding: query.Summary(parsed),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.Catalog().Reload(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "reloaded", "products": n})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cat := s.engine.Catalog()
	resp := map[string]interface{}{
		"source":     cat.SourceName(),
		"products":   cat.Len(),
		"categories": len(cat.Categories()),
	}
	if loaded := cat.LoadedAt(); !loaded.IsZero() {
		resp["loaded_at"] = loaded.UTC().Format(time.RFC3339)
	}
	s.respondJSON(w, http.StatusOK, resp)
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
