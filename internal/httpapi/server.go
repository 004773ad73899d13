// Package httpapi exposes the blog commands and view models as a JSON API
// for a browser front-end.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/command"
	"github.com/fishblog/fishblog/internal/events"
)

// Server serves the API. Every request holds one lock around the App, so
// commands run one at a time as they do in the TUI.
type Server struct {
	mu      sync.Mutex
	app     *command.App
	log     *zap.Logger
	origins []string
	events  *events.Broker
}

// New creates a Server over app. An empty origins list allows any origin.
func New(app *command.App, log *zap.Logger, origins []string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		app:     app,
		log:     log,
		origins: origins,
		events:  events.NewBroker(log.Named("events")),
	}
}

// Routes builds the router without CORS.
func (s *Server) Routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID, Logging(s.log), Recoverer(s.log))

	router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/screen", s.locked(s.screen)).Methods(http.MethodGet)
	api.HandleFunc("/events", s.streamEvents).Methods(http.MethodGet)
	api.HandleFunc("/view/{name}", s.locked(s.switchView)).Methods(http.MethodPost)

	api.HandleFunc("/articles", s.locked(s.listArticles)).Methods(http.MethodGet)
	api.HandleFunc("/articles/close", s.locked(s.closeArticle)).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id}/open", s.locked(s.openArticle)).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id}", s.locked(s.deleteArticle)).Methods(http.MethodDelete)
	api.HandleFunc("/like", s.locked(s.toggleLike)).Methods(http.MethodPost)
	api.HandleFunc("/comments", s.locked(s.submitComment)).Methods(http.MethodPost)

	api.HandleFunc("/messages", s.locked(s.listMessages)).Methods(http.MethodGet)
	api.HandleFunc("/messages", s.locked(s.submitMessage)).Methods(http.MethodPost)
	api.HandleFunc("/messages/drawing", s.locked(s.saveMessageDrawing)).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}/drawing", s.locked(s.getMessageDrawing)).Methods(http.MethodGet)

	api.HandleFunc("/canvas/{surface:[a-z]+}.png", s.locked(s.canvasPNG)).Methods(http.MethodGet)
	api.HandleFunc("/canvas/{surface}/pen", s.locked(s.setPen)).Methods(http.MethodPut)
	api.HandleFunc("/canvas/{surface}/{event}", s.locked(s.pointerEvent)).Methods(http.MethodPost)

	api.HandleFunc("/drawings", s.locked(s.listDrawings)).Methods(http.MethodGet)
	api.HandleFunc("/drawings", s.locked(s.saveDrawing)).Methods(http.MethodPost)
	api.HandleFunc("/drawings/{id}", s.locked(s.getDrawing)).Methods(http.MethodGet)

	return router
}

// Handler returns the routes wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	})
	return c.Handler(s.Routes())
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with ctx instead of holding up Shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) locked(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, r)
	}
}
