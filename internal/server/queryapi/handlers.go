// Package queryapi serves natural language query execution endpoints.
package queryapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/querymind-labs/querymind/internal/document"
	"github.com/querymind-labs/querymind/internal/engine"
	"github.com/querymind-labs/querymind/internal/server/respond"
	"github.com/querymind-labs/querymind/internal/server/schemaapi"
)

const documentTopK = 3

// Config carries the handler dependencies.
type Config struct {
	Engine    *engine.Engine
	Processor *document.Processor
	Logger    *slog.Logger
}

type handlers struct {
	cfg Config
}

// SetupRoutes mounts the query endpoints under /api/v1/query.
func SetupRoutes(r chi.Router, cfg Config) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	h := &handlers{cfg: cfg}

	r.Route("/api/v1/query", func(r chi.Router) {
		r.Post("/execute", h.execute)
		r.Post("/explain", h.explain)
		r.Post("/validate", h.validate)
		r.Get("/suggestions", h.suggestions)
		r.Get("/health", h.health)
	})
}

// execute translates and runs a natural language query, optionally
// augmenting the answer with semantic document hits.
func (h *handlers) execute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query            string `json:"query"`
		DatabasePath     string `json:"database_path"`
		IncludeDocuments bool   `json:"include_documents"`
	}
	if !respond.Decode(w, r, &req) {
		return
	}
	if req.Query == "" {
		respond.Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if err := schemaapi.EnsureConnected(r, h.cfg.Engine, req.DatabasePath); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.cfg.Engine.Execute(r.Context(), req.Query)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "query execution failed", err.Error())
		return
	}

	var docResults []document.SearchResult
	if req.IncludeDocuments {
		docResults, err = h.cfg.Processor.Search(req.Query, documentTopK)
		if err != nil {
			h.cfg.Logger.Warn("document search failed", "error", err)
			docResults = nil
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"query":            req.Query,
		"sql_query":        result.SQL,
		"query_type":       result.QueryType,
		"confidence":       result.Confidence,
		"execution_time":   result.ElapsedMS,
		"results":          result.Rows,
		"row_count":        result.RowCount,
		"truncated":        result.Truncated,
		"document_results": docResults,
		"message":          "query executed",
	})
}

// explain translates a query and describes the interpretation without
// running it.
func (h *handlers) explain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query        string `json:"query"`
		DatabasePath string `json:"database_path"`
	}
	if !respond.Decode(w, r, &req) {
		return
	}
	if req.Query == "" {
		respond.Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if err := schemaapi.EnsureConnected(r, h.cfg.Engine, req.DatabasePath); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	explanation, err := h.cfg.Engine.Explain(req.Query)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"explanation": explanation,
	})
}

// validate checks whether a query can be answered.
func (h *handlers) validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query        string `json:"query"`
		DatabasePath string `json:"database_path"`
	}
	if !respond.Decode(w, r, &req) {
		return
	}
	if req.Query == "" {
		respond.Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if err := schemaapi.EnsureConnected(r, h.cfg.Engine, req.DatabasePath); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	validation, err := h.cfg.Engine.Validate(req.Query)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"query":      req.Query,
		"validation": validation,
	})
}

// suggestions proposes example queries for the connected schema.
func (h *handlers) suggestions(w http.ResponseWriter, r *http.Request) {
	if err := schemaapi.EnsureConnected(r, h.cfg.Engine, r.URL.Query().Get("database_path")); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestions := h.cfg.Engine.Suggestions()
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"suggestions": suggestions,
		"total":       len(suggestions),
	})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	respond.Health(w, "query", map[string]any{
		"connected": h.cfg.Engine.Connected(),
	})
}
