// Package server exposes report generation over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yomijipsa-art/concrete-ai/internal/core/async"
	"github.com/yomijipsa-art/concrete-ai/internal/core/report"
	appmw "github.com/yomijipsa-art/concrete-ai/internal/server/middleware"
)

// ReportAssembler builds a report synchronously.
type ReportAssembler interface {
	Assemble(ctx context.Context, photos []report.Photo) (*report.Result, error)
}

// JobQueue runs report builds in the background.
type JobQueue interface {
	Submit(ctx context.Context, photos []report.Photo) (string, error)
	Get(id string) (async.Snapshot, bool)
	Result(id string) (*report.Result, error)
	Cancel(id string) (async.Snapshot, error)
}

type Dependencies struct {
	Assembler ReportAssembler
	Jobs      JobQueue
	Logger    *slog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxUploadMB     int
	Dependencies    Dependencies
}

type WebAPI struct {
	router          chi.Router
	logger          *slog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebAPI{
		router: router,
		logger: loggerOrDefault(config.Dependencies.Logger),
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}
}

// ConfigureRouter wires middleware and routes without starting a listener.
func ConfigureRouter(config Config) chi.Router {
	h := newHandler(config)

	router := chi.NewRouter()
	router.Use(appmw.RequestID)
	router.Use(appmw.Logger(h.logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", h.Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/reports", h.CreateReport)
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", h.SubmitJob)
			r.Get("/{id}", h.GetJob)
			r.Get("/{id}/report", h.GetJobReport)
			r.Delete("/{id}", h.CancelJob)
		})
	})
	return router
}

func (w *WebAPI) Handler() http.Handler { return w.router }

// Start serves until ctx is canceled, then shuts down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		w.logger.Info("server.start", "addr", w.server.Addr)
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info("server.shutdown.start")

		sctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		if err := w.server.Shutdown(sctx); err != nil {
			w.logger.Error("server.shutdown.failed", "error", err)
			return w.server.Close()
		}
		w.logger.Info("server.shutdown.ok")
	}
	return nil
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
