// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the Memory Match backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics", "/debug/icons".
//   - Table endpoints (token required): view, click, reset, websocket.
//   - Graceful shutdown when the caller's context ends.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the table cookie works).
//   - The websocket route sits outside the timeout group; it lives as long
//     as the browser keeps the table open.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/apps/go-server/internal/config"
	"github.com/robalobadob/memory/apps/go-server/internal/game"
	"github.com/robalobadob/memory/apps/go-server/internal/icons"
	"github.com/robalobadob/memory/apps/go-server/internal/store"
	"github.com/robalobadob/memory/apps/go-server/internal/table"
)

// Server bundles router, table registry and configuration.
type Server struct {
	r        *chi.Mux
	store    store.Store
	cfg      *config.Config
	catalog  []game.Icon
	key      []byte
	upgrader websocket.Upgrader

	gameOpts  []game.Option
	tableOpts []table.Option
}

// Option configures a Server.
type Option func(*Server)

// WithGameOptions applies opts to every game the server deals.
func WithGameOptions(opts ...game.Option) Option {
	return func(s *Server) { s.gameOpts = append(s.gameOpts, opts...) }
}

// WithTableOptions applies opts to every table the server creates.
func WithTableOptions(opts ...table.Option) Option {
	return func(s *Server) { s.tableOpts = append(s.tableOpts, opts...) }
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cfg *config.Config, catalog []game.Icon, opts ...Option) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		cfg:     cfg,
		catalog: catalog,
		key:     deriveKey(cfg.TableSecret),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == cfg.ClientOrigin
		},
	}
	for _, o := range opts {
		o(s)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	s.r.Handle("/metrics", promhttp.Handler())

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"memory-go","endpoints":["/health","/metrics","POST /tables","/tables/{id}","POST /tables/{id}/click","POST /tables/{id}/reset","/tables/{id}/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/icons", func(w http.ResponseWriter, r *http.Request) {
			pairs, cards := icons.Stats(s.catalog)
			_ = json.NewEncoder(w).Encode(map[string]int{"pairs": pairs, "cards": cards, "tables": s.store.Len()})
		})

		// Tables
		r.Post("/tables", s.handleNewTable)
		r.With(s.requireTableToken).Get("/tables/{id}", s.handleView)
		r.With(s.requireTableToken).Post("/tables/{id}/click", s.handleClick)
		r.With(s.requireTableToken).Post("/tables/{id}/reset", s.handleReset)
	})

	s.r.With(s.requireTableToken).Get("/tables/{id}/ws", s.handleWS)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start serves HTTP on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
