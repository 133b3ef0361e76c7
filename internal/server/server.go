// Package server hosts the HTTP API for the query engine.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/querymind-labs/querymind/internal/config"
	"github.com/querymind-labs/querymind/internal/document"
	"github.com/querymind-labs/querymind/internal/engine"
	"github.com/querymind-labs/querymind/internal/server/ingestapi"
	"github.com/querymind-labs/querymind/internal/server/notifier"
	"github.com/querymind-labs/querymind/internal/server/queryapi"
	"github.com/querymind-labs/querymind/internal/server/respond"
	"github.com/querymind-labs/querymind/internal/server/schemaapi"
	"github.com/querymind-labs/querymind/internal/state"
)

// debounceDelay batches rapid file change events in watch mode.
const debounceDelay = 200 * time.Millisecond

// Server is the HTTP API server.
type Server struct {
	cfg          *config.Config
	engine       *engine.Engine
	processor    *document.Processor
	store        state.Store
	sessionStore *sessions.CookieStore
	notifier     *notifier.Notifier
	logger       *slog.Logger
}

// Deps holds the server's wired dependencies.
type Deps struct {
	Config    *config.Config
	Engine    *engine.Engine
	Processor *document.Processor
	Store     state.Store
	Logger    *slog.Logger
}

// New creates a server instance.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	secret := deps.Config.SessionSecret
	if secret == "" {
		// Ephemeral secret: sessions reset on restart.
		secret = state.NewID()
	}
	sessionStore := sessions.NewCookieStore([]byte(secret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		cfg:          deps.Config,
		engine:       deps.Engine,
		processor:    deps.Processor,
		store:        deps.Store,
		sessionStore: sessionStore,
		notifier:     notifier.New(),
		logger:       logger,
	}
}

// Handler builds the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/health", s.health)
	r.Get("/api/v1/events", s.events)

	schemaapi.SetupRoutes(r, schemaapi.Config{
		Engine:      s.engine,
		Store:       s.store,
		Sessions:    s.sessionStore,
		Notifier:    s.notifier,
		DataDir:     s.cfg.DataDir,
		MaxUploadMB: s.cfg.MaxUploadMB,
		Logger:      s.logger,
	})
	ingestapi.SetupRoutes(r, ingestapi.Config{
		Processor:   s.processor,
		Notifier:    s.notifier,
		MaxUploadMB: s.cfg.MaxUploadMB,
		Logger:      s.logger,
	})
	queryapi.SetupRoutes(r, queryapi.Config{
		Engine:    s.engine,
		Processor: s.processor,
		Logger:    s.logger,
	})

	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := s.cfg.Addr()
	s.logger.Info("starting server", "addr", fmt.Sprintf("http://%s", addr))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.WatchDir != "" {
		eg.Go(func() error {
			return s.watchDocuments(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.store.GetStats()
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "store unavailable", err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"database_connected": s.engine.Connected(),
		"documents":          stats.TotalDocuments,
		"chunks":             stats.TotalChunks,
	})
}

// events streams change notifications to clients as server-sent events.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: {}\n\n", event)
			flusher.Flush()
		}
	}
}

// watchDocuments auto-ingests supported files created or modified in
// the configured watch directory.
func (s *Server) watchDocuments(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.cfg.WatchDir); err != nil {
		s.logger.Error("failed to watch documents directory", "dir", s.cfg.WatchDir, "error", err)
		// Don't fail - continue without watching
		return nil
	}
	s.logger.Info("watching documents directory", "dir", s.cfg.WatchDir)

	var mu sync.Mutex
	pending := make(map[string]struct{})
	var debounceTimer *time.Timer

	ingestPending := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]struct{})
		mu.Unlock()

		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				s.logger.Warn("failed to read watched file", "path", path, "error", err)
				continue
			}
			if _, err := s.processor.ProcessFile(ctx, path, data); err != nil {
				s.logger.Warn("failed to ingest watched file", "path", path, "error", err)
				continue
			}
		}
		if len(paths) > 0 {
			s.notifier.Broadcast(notifier.EventDocumentsChanged)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if _, err := document.FormatFor(event.Name); err != nil {
				continue
			}

			mu.Lock()
			pending[event.Name] = struct{}{}
			mu.Unlock()

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, ingestPending)

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
