package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"news-insight/internal/app"
	"news-insight/internal/httputil"
)

var validate = validator.New()

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Log.Warn("failed to release analysis resources", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	deps.Log.Info("gateway listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		deps.Log.Error("server failed", "err", err)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Get("/api/news", listNewsHandler(deps))
	r.Post("/api/news", createNewsHandler(deps))
	r.Get("/api/news/{id}", getNewsHandler(deps))
	r.Get("/api/news/{id}/analysis", articleAnalysisHandler(deps))
	r.Post("/api/compare", compareHandler(deps))
	r.Get("/api/search", searchHandler(deps))
	r.Post("/api/analyze/upload", uploadHandler(deps))
	r.Post("/api/jobs", jobsHandler(deps))
	r.Get("/api/health", httputil.StatusHandler())
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	return r
}
