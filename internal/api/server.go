// Package api serves parsed ST-Bridge models to the viewer shell over HTTP
// and a websocket invoke channel.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/stbview/core/cache"
	"github.com/FocuswithJustin/stbview/core/sqlite"
	ttlcache "github.com/FocuswithJustin/stbview/internal/cache"
	"github.com/FocuswithJustin/stbview/internal/logging"
	"github.com/FocuswithJustin/stbview/internal/snapshot"
)

// snapshotIndexTTL is how long the snapshot listing is served from memory.
const snapshotIndexTTL = 30 * time.Second

// Server is the viewer's IPC server.
type Server struct {
	cfg      Config
	docs     *cache.DocumentCache
	store    *snapshot.Store // nil when snapshots are disabled
	index    *ttlcache.TTLCache[string, snapshot.Info]
	hub      *Hub
	upgrader websocket.Upgrader
	started  time.Time
}

// New creates a server. It opens the snapshot store when cfg.SnapshotDB is
// set; Close releases it.
func New(ctx context.Context, cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:     cfg,
		docs:    cache.NewDocumentCache(cache.Config{MaxSize: cfg.CacheSize}),
		index:   ttlcache.New[string, snapshot.Info](snapshotIndexTTL),
		hub:     NewHub(),
		started: time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	if cfg.SnapshotDB != "" {
		store, err := snapshot.Open(ctx, cfg.SnapshotDB)
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		s.store = store
		logging.Info("snapshot store opened", "path", cfg.SnapshotDB, "driver", sqlite.DriverType())
	}
	return s, nil
}

// Close releases the snapshot store.
func (s *Server) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return logging.CombinedMiddleware(s.routes())
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /parse", s.handleParse)
	mux.HandleFunc("POST /members", s.handleMembers)
	mux.HandleFunc("GET /snapshots", s.handleSnapshots)
	mux.HandleFunc("DELETE /snapshots/{digest}", s.handleDeleteSnapshot)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return mux
}

// ListenAndServe serves on cfg.Port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	logging.ServerStartup("ipc", "http", s.cfg.Port,
		"websocket_protocol", "ws",
		"root", s.cfg.Root,
		"snapshots", s.store != nil)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}
