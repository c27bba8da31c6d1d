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

	"golang.org/x/sync/errgroup"

	"news-insight/internal/app"
	"news-insight/internal/httputil"
	"news-insight/internal/jobs"
	"news-insight/internal/queue"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()
	if deps.Queue == nil {
		deps.Log.Error("worker requires QUEUE_PROVIDER=nats")
		os.Exit(1)
	}
	deps.Log.Info("analysis worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, deps); err != nil && !errors.Is(err, context.Canceled) {
		deps.Log.Error("analysis worker stopped", "err", err)
	}
}

// run consumes every task type and serves the health probe until ctx ends
// or one of them fails.
func run(ctx context.Context, deps app.Deps) error {
	g, ctx := errgroup.WithContext(ctx)

	handler := jobs.Handler(jobs.Runner{Analysis: deps.Analysis, Sentiment: deps.Sentiment}, deps.Queue, deps.Log)
	for _, taskType := range queue.TaskTypes {
		g.Go(func() error {
			deps.Log.Info("consuming tasks", "type", taskType)
			return deps.Queue.Worker(ctx, taskType, handler)
		})
	}

	g.Go(func() error {
		var metrics http.Handler
		if deps.Metrics != nil {
			metrics = deps.Metrics.Handler()
		}
		return httputil.ServeHealth(ctx, deps.Log, fmt.Sprintf(":%d", deps.Config.Port), "worker", metrics)
	})

	return g.Wait()
}
