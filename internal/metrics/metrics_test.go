package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-insight/internal/llm"
)

func TestObserveCompletionStatuses(t *testing.T) {
	m := New()

	m.ObserveCompletion("Groq", "llama", time.Second, 42, nil)
	m.ObserveCompletion("Groq", "llama", time.Second, 0, &llm.BackendError{Backend: "Groq", Kind: llm.ErrTransport, Err: errors.New("refused")})
	m.ObserveCompletion("Qwen", "qwen", time.Second, 0, fmt.Errorf("wrap: %w", llm.ErrMalformedResponse))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("Groq", "llama", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("Groq", "llama", "transport_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("Qwen", "qwen", "malformed_response")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.backendTokens.WithLabelValues("Groq", "llama")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/news/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/news/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/news/{id}", "404")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveCompletion("Phi", "phi-2", 10*time.Millisecond, 5, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `news_insight_backend_requests_total{backend="Phi",model="phi-2",status="success"} 1`))
}
