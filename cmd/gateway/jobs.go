package main

import (
	"encoding/json"
	"net/http"
	"time"

	"news-insight/internal/app"
	"news-insight/internal/httputil"
	"news-insight/internal/jobs"
	"news-insight/internal/queue"
)

func jobsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Queue == nil {
			httputil.Fail(deps.Log, w, "job queue not configured", nil, http.StatusServiceUnavailable)
			return
		}
		var req jobs.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid JSON body", err, http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			httputil.Fail(deps.Log, w, "invalid job: "+err.Error(), err, http.StatusBadRequest)
			return
		}

		task, err := jobs.NewTask(req)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to encode job", err, http.StatusInternalServerError)
			return
		}
		if err := queue.EnqueueWithRetry(r.Context(), deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			httputil.Fail(deps.Log, w, "failed to enqueue job; please retry", err, http.StatusServiceUnavailable)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
			"task_id":        task.ID.String(),
			"type":           string(task.Type),
			"status":         "queued",
			"result_subject": queue.ResultSubject(task.ID),
		})
	}
}
