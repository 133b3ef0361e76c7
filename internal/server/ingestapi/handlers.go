// Package ingestapi serves document upload and semantic search endpoints.
package ingestapi

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/querymind-labs/querymind/internal/document"
	"github.com/querymind-labs/querymind/internal/server/notifier"
	"github.com/querymind-labs/querymind/internal/server/respond"
)

const defaultTopK = 5

// Config carries the handler dependencies.
type Config struct {
	Processor   *document.Processor
	Notifier    *notifier.Notifier
	MaxUploadMB int
	Logger      *slog.Logger
}

type handlers struct {
	cfg Config
}

// SetupRoutes mounts the ingestion endpoints under /api/v1/ingestion.
func SetupRoutes(r chi.Router, cfg Config) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	h := &handlers{cfg: cfg}

	r.Route("/api/v1/ingestion", func(r chi.Router) {
		r.Post("/upload-documents", h.uploadDocuments)
		r.Post("/search-documents", h.searchDocuments)
		r.Delete("/clear-documents", h.clearDocuments)
		r.Delete("/documents/{id}", h.deleteDocument)
		r.Get("/document-status", h.documentStatus)
		r.Get("/supported-formats", h.supportedFormats)
		r.Get("/health", h.health)
	})
}

// uploadDocuments ingests one or more files from a multipart form.
func (h *handlers) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(h.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		respond.Error(w, http.StatusBadRequest, "no files uploaded (use the \"files\" form field)")
		return
	}

	files := make([]document.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "failed to read upload "+fh.Filename, err.Error())
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "failed to read upload "+fh.Filename, err.Error())
			return
		}
		files = append(files, document.File{Name: fh.Filename, Data: data})
	}

	results := h.cfg.Processor.ProcessFiles(r.Context(), files)

	totalChunks := 0
	for _, res := range results {
		totalChunks += res.Chunks
	}
	h.cfg.Notifier.Broadcast(notifier.EventDocumentsChanged)

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":              true,
		"message":              "document ingestion finished",
		"processed_documents":  results,
		"total_chunks":         totalChunks,
		"embeddings_generated": totalChunks,
	})
}

// searchDocuments runs a semantic search over ingested chunks.
func (h *handlers) searchDocuments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if !respond.Decode(w, r, &req) {
		return
	}
	if req.Query == "" {
		respond.Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK < 1 {
		req.TopK = defaultTopK
	}

	results, err := h.cfg.Processor.Search(req.Query, req.TopK)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "search failed", err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"query":         req.Query,
		"results":       results,
		"total_results": len(results),
	})
}

// clearDocuments removes every ingested document.
func (h *handlers) clearDocuments(w http.ResponseWriter, r *http.Request) {
	if err := h.cfg.Processor.Clear(); err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to clear documents", err.Error())
		return
	}
	h.cfg.Notifier.Broadcast(notifier.EventDocumentsChanged)

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "all documents cleared",
	})
}

// deleteDocument removes a single ingested document by id.
func (h *handlers) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.cfg.Processor.Remove(id); err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		respond.Error(w, status, "failed to delete document", err.Error())
		return
	}
	h.cfg.Notifier.Broadcast(notifier.EventDocumentsChanged)

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "document " + id + " deleted",
	})
}

// documentStatus lists ingested documents.
func (h *handlers) documentStatus(w http.ResponseWriter, _ *http.Request) {
	docs, err := h.cfg.Processor.Documents()
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to list documents", err.Error())
		return
	}

	totalChunks := 0
	for _, d := range docs {
		totalChunks += d.ChunkCount
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"documents":       docs,
		"total_documents": len(docs),
		"total_chunks":    totalChunks,
	})
}

// supportedFormats lists accepted file extensions.
func (h *handlers) supportedFormats(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"supported_formats": document.SupportedFormats(),
	})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	respond.Health(w, "ingestion", nil)
}
