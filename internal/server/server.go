// Package server exposes a database over HTTP: table contents as JSON or
// HTML, one table per URL.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// Server serves table contents from a Store.
type Server struct {
	store  Store
	render renderer
	port   int
	watch  bool
	dbPath string
	logger *slog.Logger

	mu     sync.Mutex
	tables []string // cached table list for the index page; nil means stale
}

// Config holds configuration for the server.
type Config struct {
	Store  Store
	Port   int
	HTML   bool // render HTML tables instead of JSON
	Watch  bool // invalidate the cached table list when the file changes
	DBPath string
	Logger *slog.Logger
}

// NewServer creates a new server instance.
func NewServer(cfg Config) *Server {
	var r renderer = jsonRenderer{}
	if cfg.HTML {
		r = htmlRenderer{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  cfg.Store,
		render: r,
		port:   cfg.Port,
		watch:  cfg.Watch,
		dbPath: cfg.DBPath,
		logger: logger,
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchFile(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Routes builds the router. Anything outside / and /tables/{name} is a bad
// request, reported with the exact body clients have come to rely on.
func (s *Server) Routes() chi.Router {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/", s.handleWelcome)
	r.Get("/tables/{name}", s.handleTable)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, "/tables/ is missing from path")
	})
	return r
}

// tableList returns the cached table list, refreshing it from the store when
// stale.
func (s *Server) tableList(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables != nil {
		return s.tables, nil
	}
	names, err := s.store.TableNames(ctx)
	if err != nil {
		return nil, err
	}
	s.tables = names
	return names, nil
}

func (s *Server) invalidate() {
	s.mu.Lock()
	s.tables = nil
	s.mu.Unlock()
}

// watchFile invalidates the cached table list whenever the database file
// changes. The file's directory is watched because the engine replaces the
// file through journals rather than writing it in place.
func (s *Server) watchFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(s.dbPath)); err != nil {
		s.logger.Error("failed to watch database directory", "error", err)
		// Don't fail - continue without watching
		return nil
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(s.dbPath) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("database changed, table list invalidated", "file", event.Name)
				s.invalidate()
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
