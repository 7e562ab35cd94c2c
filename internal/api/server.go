package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marquee/internal/chat"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/store"
)

// Recommender is the pipeline surface the API serves.
type Recommender interface {
	ByFilters(ctx context.Context, userID int64, kind media.Kind, filters media.Filters, locale string) ([]media.Card, error)
	Similar(ctx context.Context, userID int64, kind media.Kind, query, locale string) ([]media.Card, error)
	ByTitle(ctx context.Context, kind media.Kind, query, locale string) ([]media.Card, error)
	FromDescription(ctx context.Context, userID int64, kind media.Kind, query, locale string) ([]media.Card, error)
	Cards(ctx context.Context, kind media.Kind, ids []int64, locale string) ([]media.Card, error)
}

// Chatter runs one chat turn.
type Chatter interface {
	Chat(ctx context.Context, req chat.ChatRequest) (chat.Reply, error)
}

// Store is the persistence surface behind the status and cache endpoints.
type Store interface {
	SetStatus(ctx context.Context, userID int64, kind media.Kind, id int64, status media.Status) error
	ListByStatus(ctx context.Context, userID int64, kind media.Kind, status media.Status) ([]int64, error)
	CacheStats(ctx context.Context, freshness time.Duration) (store.CacheStats, error)
}

var _ Store = (*store.Store)(nil)

// Dependencies groups the collaborators a Server needs.
type Dependencies struct {
	Recommender Recommender
	Chat        Chatter
	Store       Store
}

// Server serves the HTTP API.
type Server struct {
	bind          string
	token         string
	freshnessDays int
	deps          Dependencies
	logger        *slog.Logger

	handler  http.Handler
	listener net.Listener
	server   *http.Server
}

// NewServer builds the router. Call Start to listen.
func NewServer(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("api: config required")
	}
	if deps.Recommender == nil || deps.Chat == nil || deps.Store == nil {
		return nil, errors.New("api: recommender, chat and store are required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		bind:          strings.TrimSpace(cfg.Paths.APIBind),
		token:         cfg.Paths.APIToken,
		freshnessDays: max(cfg.Pipeline.FreshnessDays, 1),
		deps:          deps,
		logger:        logging.NewComponentLogger(logger, "api"),
	}
	s.handler = s.routes()
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Title resolution and enrichment of a cold cache can take a while.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(bearerAuth(s.token))
		r.Get("/cache/stats", s.handleCacheStats)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/recommend/{kind}", s.handleRecommend)
			r.Post("/recommend/{kind}/similar", s.handleSimilar)
			r.Post("/recommend/{kind}/title", s.handleTitle)
			r.Post("/recommend/{kind}/describe", s.handleDescribe)
			r.Post("/chat", s.handleChat)
			r.Put("/media/{kind}/{id}/status", s.handleSetStatus)
			r.Get("/media/{kind}", s.handleListStatus)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured bind address and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for in-flight requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
