package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-search/pkg/api"
	"github.com/adfharrison1/go-search/pkg/config"
	"github.com/adfharrison1/go-search/pkg/controller"
	"github.com/adfharrison1/go-search/pkg/logger"
	"github.com/adfharrison1/go-search/pkg/metrics"
	"github.com/adfharrison1/go-search/pkg/storage"
	"github.com/adfharrison1/go-search/pkg/updates"
)

// Server holds references to storage, the update queue, the router, etc.
type Server struct {
	cfg        *config.Config
	log        logger.Logger
	router     *mux.Router
	store      *storage.StorageEngine
	queue      *updates.Queue
	controller *controller.Controller
	metrics    *metrics.Metrics
}

// NewServer wires storage, queue, controller and routes from cfg. The
// snapshot is loaded before the server accepts any update.
func NewServer(cfg *config.Config, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewNop()
	}

	var storageOptions []storage.StorageOption
	storageOptions = append(storageOptions,
		storage.WithSnapshotFile(cfg.SnapshotPath()),
		storage.WithLogger(log.With(logger.String("component", "storage"))))
	if cfg.Storage.BackgroundSave > 0 {
		storageOptions = append(storageOptions, storage.WithBackgroundSave(cfg.Storage.BackgroundSave))
		log.Info("Background save enabled", logger.Duration("interval", cfg.Storage.BackgroundSave))
	} else {
		log.Warn("Background save disabled - data only saved on graceful shutdown")
	}

	store := storage.NewStorageEngine(storageOptions...)
	if err := store.LoadSnapshot(); err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", cfg.SnapshotPath(), err)
	}
	log.Info("Loaded snapshot", logger.String("file", cfg.SnapshotPath()), logger.Int("indexes", len(store.ListIndexes())))

	m := metrics.New()
	m.WatchIndexes(store.ListIndexes)
	queue, err := updates.NewQueue(store, cfg.Updates.SpoolDir,
		updates.WithQueueSize(cfg.Updates.QueueSize),
		updates.WithLogger(log.With(logger.String("component", "updates"))),
		updates.WithRecorder(m))
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		log:        log,
		router:     mux.NewRouter(),
		store:      store,
		queue:      queue,
		controller: controller.New(store, queue),
		metrics:    m,
	}

	// Customize NotFoundHandler to log 404s
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Warn("No route found", logger.String("method", r.Method), logger.String("path", r.URL.Path))
		api.WriteJSONError(w, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
	})
	s.router.Use(requestIDMiddleware, s.requestLoggerMiddleware, m.Middleware)
	s.routes()

	store.StartBackgroundWorkers()
	return s, nil
}

// routes defines all REST endpoints.
func (s *Server) routes() {
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	handler := api.NewHandler(s.controller,
		api.WithLogger(s.log.With(logger.String("component", "api"))),
		api.WithChunkSize(s.cfg.Updates.ChunkSize))
	handler.RegisterRoutes(s.router)
}

// requestIDMiddleware makes sure every request carries an X-Request-ID and
// echoes it on the response
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(api.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(api.RequestIDHeader, id)
		}
		w.Header().Set(api.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// requestLoggerMiddleware logs the method, URL path, and duration for each request.
func (s *Server) requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("Request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", r.Header.Get(api.RequestIDHeader)),
			logger.Duration("took", time.Since(start)))
	})
}

// Router exposes the internal mux.Router.
func (s *Server) Router() http.Handler {
	return s.router
}

// Controller exposes the backend behind the HTTP handlers.
func (s *Server) Controller() *controller.Controller {
	return s.controller
}

// HTTPServer builds the listener for the configured port
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:        ":" + s.cfg.Server.Port,
		Handler:     s.router,
		ReadTimeout: s.cfg.Server.ReadTimeout,
	}
}

// Close drains the update queue, stops the background saver and writes a
// final snapshot. The snapshot is written even when draining times out.
func (s *Server) Close(ctx context.Context) error {
	drainErr := s.queue.Close(ctx)
	if drainErr != nil {
		s.log.Error("Update queue did not drain", logger.Error(drainErr))
	}

	s.store.StopBackgroundWorkers()

	saveErr := s.store.SaveSnapshot()
	if saveErr != nil {
		s.log.Error("Could not save snapshot", logger.String("file", s.cfg.SnapshotPath()), logger.Error(saveErr))
	} else {
		s.log.Info("Saved snapshot", logger.String("file", s.cfg.SnapshotPath()))
	}
	return errors.Join(drainErr, saveErr)
}
