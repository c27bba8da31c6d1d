package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"news-insight/internal/app"
	"news-insight/internal/config"
	"news-insight/internal/queue"
)

func newTestDeps(q queue.Queue) app.Deps {
	return app.Deps{
		Queue:  q,
		Config: config.Config{Port: 0},
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRunSubscribesEveryTaskType(t *testing.T) {
	q := new(queue.MockQueue)
	for _, tt := range queue.TaskTypes {
		q.On("Worker", mock.Anything, tt, mock.Anything).
			Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
			Return(nil).Once()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, newTestDeps(q)) }()
	cancel()

	assert.NoError(t, <-done)
	q.AssertExpectations(t)
}

func TestRunStopsWhenAWorkerFails(t *testing.T) {
	q := new(queue.MockQueue)
	q.On("Worker", mock.Anything, queue.TaskTypeSentiment, mock.Anything).Return(errors.New("subscribe failed"))
	q.On("Worker", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
		Return(nil)

	err := run(context.Background(), newTestDeps(q))
	assert.EqualError(t, err, "subscribe failed")
}
