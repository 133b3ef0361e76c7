// Package schemaapi serves database upload, connection and schema
// discovery endpoints.
package schemaapi

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/querymind-labs/querymind/internal/engine"
	"github.com/querymind-labs/querymind/internal/server/notifier"
	"github.com/querymind-labs/querymind/internal/server/respond"
	"github.com/querymind-labs/querymind/internal/state"
)

const sessionName = "querymind"

// databaseExtensions are the accepted upload extensions.
var databaseExtensions = map[string]bool{
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// Config carries the handler dependencies.
type Config struct {
	Engine      *engine.Engine
	Store       state.Store
	Sessions    *sessions.CookieStore
	Notifier    *notifier.Notifier
	DataDir     string
	MaxUploadMB int
	Logger      *slog.Logger
}

type handlers struct {
	cfg Config
}

// SetupRoutes mounts the schema endpoints under /api/v1/schema.
func SetupRoutes(r chi.Router, cfg Config) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	h := &handlers{cfg: cfg}

	r.Route("/api/v1/schema", func(r chi.Router) {
		r.Post("/upload-db", h.uploadDB)
		r.Post("/connect", h.connect)
		r.Post("/map-query", h.mapQuery)
		r.Get("/tables", h.tables)
		r.Get("/databases", h.databases)
		r.Get("/current", h.current)
		r.Get("/health", h.health)
	})
}

// uploadDB accepts a SQLite file, stores it in the data directory and
// connects the engine to it.
func (h *handlers) uploadDB(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(h.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "missing file upload", err.Error())
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !databaseExtensions[ext] {
		respond.Error(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported database file type %q (supported: .db, .sqlite, .sqlite3)", ext))
		return
	}

	if err := os.MkdirAll(h.cfg.DataDir, 0o755); err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to prepare data directory", err.Error())
		return
	}

	destPath := filepath.Join(h.cfg.DataDir, uuid.New().String()+ext)
	dest, err := os.Create(destPath)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to store upload", err.Error())
		return
	}
	if _, err := io.Copy(dest, file); err != nil {
		dest.Close()
		os.Remove(destPath)
		respond.Error(w, http.StatusInternalServerError, "failed to store upload", err.Error())
		return
	}
	dest.Close()

	info, err := h.cfg.Engine.Connect(r.Context(), destPath)
	if err != nil {
		os.Remove(destPath)
		respond.Error(w, http.StatusBadRequest, "failed to analyze database", err.Error())
		return
	}

	record := &state.Database{
		Filename:   header.Filename,
		Path:       destPath,
		TableCount: len(info.Tables),
		TotalRows:  info.Statistics.TotalRows,
	}
	if err := h.cfg.Store.SaveDatabase(record); err != nil {
		h.cfg.Logger.Warn("failed to record uploaded database", "error", err)
	}

	h.saveCurrentPath(w, r, destPath)
	h.cfg.Notifier.Broadcast(notifier.EventDatabaseChanged)

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     fmt.Sprintf("database %s uploaded and analyzed", header.Filename),
		"temp_path":   destPath,
		"filename":    header.Filename,
		"schema_info": info,
	})
}

// connect attaches the engine to a database already on disk, addressed
// by path or by the id of a previous upload.
func (h *handlers) connect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DatabasePath string `json:"database_path"`
		DatabaseID   string `json:"database_id"`
	}
	if !respond.Decode(w, r, &req) {
		return
	}
	if req.DatabasePath == "" && req.DatabaseID != "" {
		record, err := h.cfg.Store.GetDatabase(req.DatabaseID)
		if err != nil {
			respond.Error(w, http.StatusNotFound, "unknown database id", err.Error())
			return
		}
		req.DatabasePath = record.Path
	}
	if req.DatabasePath == "" {
		respond.Error(w, http.StatusBadRequest, "database_path or database_id is required")
		return
	}

	info, err := h.cfg.Engine.Connect(r.Context(), req.DatabasePath)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "failed to connect", err.Error())
		return
	}

	h.saveCurrentPath(w, r, req.DatabasePath)
	h.cfg.Notifier.Broadcast(notifier.EventDatabaseChanged)

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     fmt.Sprintf("connected to %s", req.DatabasePath),
		"schema_info": info,
	})
}

// mapQuery maps a natural language query onto the schema without
// executing anything.
func (h *handlers) mapQuery(w http.ResponseWriter, r *http.Request) {
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
	if err := h.ensureConnected(r, req.DatabasePath); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	mapping, err := h.cfg.Engine.MapQuery(req.Query)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"query":       req.Query,
		"mapping":     mapping,
		"schema_info": h.cfg.Engine.Info(),
	})
}

// tableSummary is the per-table payload for the tables listing.
type tableSummary struct {
	Name        string `json:"name"`
	Purpose     string `json:"purpose"`
	ColumnCount int    `json:"column_count"`
	RowCount    int64  `json:"row_count"`
}

// tables lists the discovered tables of the current database.
func (h *handlers) tables(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureConnected(r, r.URL.Query().Get("database_path")); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	info := h.cfg.Engine.Info()
	summaries := make([]tableSummary, 0, len(info.Tables))
	for name, t := range info.Tables {
		summaries = append(summaries, tableSummary{
			Name:        name,
			Purpose:     t.Purpose,
			ColumnCount: len(t.Columns),
			RowCount:    t.RowCount,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"tables":       summaries,
		"total_tables": len(summaries),
	})
}

// databases lists every uploaded database on record.
func (h *handlers) databases(w http.ResponseWriter, _ *http.Request) {
	dbs, err := h.cfg.Store.ListDatabases()
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to list databases", err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"databases": dbs,
		"total":     len(dbs),
	})
}

// current reports the session's active database, reconnecting if the
// engine lost it (e.g. after a restart).
func (h *handlers) current(w http.ResponseWriter, r *http.Request) {
	path := h.currentPath(r)
	if path == "" && !h.cfg.Engine.Connected() {
		respond.JSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"connected": false,
		})
		return
	}

	if err := h.ensureConnected(r, path); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"connected":     true,
		"database_path": h.cfg.Engine.Path(),
		"schema_info":   h.cfg.Engine.Info(),
	})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	respond.Health(w, "schema", map[string]any{
		"connected": h.cfg.Engine.Connected(),
	})
}

// ensureConnected connects to path when it differs from the engine's
// current database. An empty path requires an existing connection.
func (h *handlers) ensureConnected(r *http.Request, path string) error {
	return EnsureConnected(r, h.cfg.Engine, path)
}

// EnsureConnected is shared by query handlers that accept an optional
// database_path override.
func EnsureConnected(r *http.Request, eng *engine.Engine, path string) error {
	if path == "" {
		if !eng.Connected() {
			return fmt.Errorf("no database connected; upload or connect a database first")
		}
		return nil
	}
	if eng.Connected() && eng.Path() == path {
		return nil
	}
	if _, err := eng.Connect(r.Context(), path); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", path, err)
	}
	return nil
}

// saveCurrentPath remembers the database path in the browser session.
func (h *handlers) saveCurrentPath(w http.ResponseWriter, r *http.Request, path string) {
	session, _ := h.cfg.Sessions.Get(r, sessionName)
	session.Values["database_path"] = path
	if err := session.Save(r, w); err != nil {
		h.cfg.Logger.Warn("failed to save session", "error", err)
	}
}

// currentPath reads the session's remembered database path.
func (h *handlers) currentPath(r *http.Request) string {
	session, err := h.cfg.Sessions.Get(r, sessionName)
	if err != nil {
		return ""
	}
	if path, ok := session.Values["database_path"].(string); ok {
		return path
	}
	return ""
}
