package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"news-insight/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const (
	TaskTypeSentiment TaskType = "sentiment"
	TaskTypeRhetoric  TaskType = "rhetoric"
	TaskTypeCompare   TaskType = "compare"
)

// TaskTypes lists every type a worker subscribes to.
var TaskTypes = []TaskType{TaskTypeSentiment, TaskTypeRhetoric, TaskTypeCompare}

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	for _, known := range TaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Task represents a unit of analysis work.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks and to hand
// results back to whoever is waiting on a task.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
	PublishResult(ctx context.Context, taskID uuid.UUID, body []byte) error
}

// ResultSubject is the subject a task's result is published on.
func ResultSubject(id uuid.UUID) string {
	return "results." + id.String()
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := q.Enqueue(ctx, task); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base)):
		}
	}
	return nil
}
