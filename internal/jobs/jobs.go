// Package jobs defines asynchronous analysis tasks: how the gateway encodes
// them and how a worker executes them and reports the result.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"news-insight/internal/analysis"
	"news-insight/internal/queue"
	"news-insight/internal/sentiment"
)

const maxAttempts = 3

// Request is the body accepted by the jobs endpoint.
type Request struct {
	Type      queue.TaskType `json:"type" validate:"required,oneof=sentiment rhetoric compare"`
	Text      string         `json:"text" validate:"required"`
	Reference string         `json:"reference,omitempty" validate:"required_if=Type compare"`
}

type payload struct {
	Text      string `json:"text"`
	Reference string `json:"reference,omitempty"`
}

// Result is published on the task's result subject once it has run.
type Result struct {
	TaskID      uuid.UUID         `json:"task_id"`
	Type        queue.TaskType    `json:"type"`
	Sentiment   *sentiment.Result `json:"sentiment,omitempty"`
	Analysis    *analysis.Result  `json:"analysis,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// NewTask encodes req as a queue task with a fresh id.
func NewTask(req Request) (queue.Task, error) {
	body, err := json.Marshal(payload{Text: req.Text, Reference: req.Reference})
	if err != nil {
		return queue.Task{}, err
	}
	return queue.Task{
		ID:          uuid.New(),
		Type:        req.Type,
		Payload:     body,
		MaxAttempts: maxAttempts,
	}, nil
}

// Runner executes tasks against the analysis stack.
type Runner struct {
	Analysis  analysis.Service
	Sentiment sentiment.Classifier
	Now       func() time.Time
}

// Run executes task. Backend failures are part of the Result, so an error
// here means the task itself could not be understood.
func (r Runner) Run(ctx context.Context, task queue.Task) (Result, error) {
	var p payload
	if err := json.Unmarshal(task.Payload, &p); err != nil {
		return Result{}, fmt.Errorf("decode %s payload: %w", task.Type, err)
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	res := Result{TaskID: task.ID, Type: task.Type}
	switch task.Type {
	case queue.TaskTypeSentiment:
		s := r.Sentiment.Analyze(ctx, p.Text)
		res.Sentiment = &s
	case queue.TaskTypeRhetoric:
		a := r.Analysis.AnalyzeRhetoric(ctx, p.Text)
		res.Analysis = &a
	case queue.TaskTypeCompare:
		a := r.Analysis.CompareArticles(ctx, p.Text, p.Reference)
		res.Analysis = &a
	default:
		return Result{}, fmt.Errorf("unknown task type %q", task.Type)
	}
	res.CompletedAt = now().UTC()
	return res, nil
}

// Handler runs each task and publishes its Result through q.
func Handler(r Runner, q queue.Queue, log *slog.Logger) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		res, err := r.Run(ctx, task)
		if err != nil {
			return err
		}
		body, err := json.Marshal(res)
		if err != nil {
			return err
		}
		if err := q.PublishResult(ctx, task.ID, body); err != nil {
			return fmt.Errorf("publish result: %w", err)
		}
		log.Info("task completed", "id", task.ID, "type", task.Type, "attempts", task.Attempts+1)
		return nil
	}
}
