package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"news-insight/internal/analysis"
	"news-insight/internal/app"
	"news-insight/internal/cache"
	"news-insight/internal/config"
	"news-insight/internal/embeddings"
	"news-insight/internal/newsapi"
	"news-insight/internal/queue"
	"news-insight/internal/sentiment"
	"news-insight/internal/store"
)

var neutral = sentiment.Result{Sentiment: "Neutral", Label: "NEUTRAL", Model: "vader", Evidence: []string{}}

func newTestDeps(st store.Store, svc analysis.Service, cls sentiment.Classifier) app.Deps {
	return app.Deps{
		Core:  app.Core{Analysis: svc, Sentiment: cls},
		Store: st,
		Cache: cache.NewNoOpCache(),
		Config: config.Config{
			MaxUploadSize:       1024 * 1024, // 1MB for tests
			CacheTTL:            time.Minute,
			GroqComparisonModel: "llama-3.3-70b-versatile",
		},
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newClassifier() *sentiment.MockClassifier {
	cls := new(sentiment.MockClassifier)
	cls.On("Model").Return("vader")
	cls.On("Analyze", mock.Anything, mock.Anything).Return(neutral)
	return cls
}

func serve(t *testing.T, deps app.Deps, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	newRouter(deps).ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthRoutes(t *testing.T) {
	deps := newTestDeps(store.NewMemory(), nil, nil)

	w := serve(t, deps, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, w)["status"])

	w = serve(t, deps, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok", w.Body.String())
}

func TestListNews(t *testing.T) {
	deps := newTestDeps(store.NewMemory(store.SampleArticles()...), nil, newClassifier())

	w := serve(t, deps, httptest.NewRequest(http.MethodGet, "/api/news", nil))
	require.Equal(t, http.StatusOK, w.Code)

	views := decode[[]map[string]any](t, w)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.NotEmpty(t, v["title"])
		assert.NotEmpty(t, v["summary"])
		assert.Contains(t, v, "sentiment")
		assert.Contains(t, v, "insights")
	}
	assert.EqualValues(t, 1, views[0]["id"])
}

func TestGetNews(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"existing article", "/api/news/1", http.StatusOK},
		{"missing article", "/api/news/999", http.StatusNotFound},
		{"non numeric id", "/api/news/abc", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(store.NewMemory(store.SampleArticles()...), nil, newClassifier())
			w := serve(t, deps, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			body := decode[map[string]any](t, w)
			if tt.wantStatus == http.StatusOK {
				assert.EqualValues(t, 1, body["id"])
				assert.Contains(t, body, "insights")
			} else {
				assert.Equal(t, "Article not found", body["error"])
			}
		})
	}
}

func TestGetNewsStoreError(t *testing.T) {
	st := new(store.MockStore)
	st.On("GetArticle", mock.Anything, 1).Return(store.Article{}, errors.New("db error"))
	deps := newTestDeps(st, nil, nil)

	w := serve(t, deps, httptest.NewRequest(http.MethodGet, "/api/news/1", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	st.AssertExpectations(t)
}

func TestCreateNews(t *testing.T) {
	st := store.NewMemory(store.SampleArticles()...)
	c := new(cache.MockCache)
	c.On("InvalidatePrefix", mock.Anything, "analysis:").Return(nil).Once()
	deps := newTestDeps(st, nil, nil)
	deps.Cache = c

	body := `{"title":"New story","content":"Something happened.","source":"AP"}`
	w := serve(t, deps, httptest.NewRequest(http.MethodPost, "/api/news", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 3, decode[map[string]any](t, w)["id"])
	c.AssertExpectations(t)

	w = serve(t, deps, httptest.NewRequest(http.MethodPost, "/api/news", strings.NewReader(`{"title":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArticleAnalysis(t *testing.T) {
	articles := store.SampleArticles()
	svc := new(analysis.MockService)
	svc.On("AnalyzeRhetoric", mock.Anything, articles[0].Content).
		Return(analysis.Result{Model: "Qwen2-7B", Text: "persuasive", Analysis: "persuasive", TokensUsed: 120})
	svc.On("CompareArticles", mock.Anything, articles[0].Content, articles[1].Content).
		Return(analysis.Result{Model: "Mistral-7B", Text: "framing differs", Comparison: "framing differs"})
	deps := newTestDeps(store.NewMemory(articles...), svc, newClassifier())

	w := serve(t, deps, httptest.NewRequest(http.MethodGet, "/api/news/1/analysis", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got articleAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Article.ID)
	assert.Equal(t, "persuasive", got.Rhetoric.Analysis)
	assert.Equal(t, "framing differs", got.Comparison.Comparison)
	require.NotNil(t, got.Comparison.Reference)
	require.NotNil(t, got.Comparison.Reference.ID)
	assert.Equal(t, 2, *got.Comparison.Reference.ID)
	assert.Equal(t, articles[1].Title, got.Comparison.Reference.Title)
	svc.AssertExpectations(t)
}

func TestArticleAnalysisWithoutReference(t *testing.T) {
	only := store.SampleArticles()[:1]
	svc := new(analysis.MockService)
	svc.On("AnalyzeRhetoric", mock.Anything, only[0].Content).Return(analysis.Result{Model: "Qwen2-7B", Text: "ok"})
	svc.On("ComparisonModel").Return("Mistral-7B")
	deps := newTestDeps(store.NewMemory(only...), svc, newClassifier())

	w := serve(t, deps, httptest.NewRequest(http.MethodGet, "/api/news/1/analysis", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	comparison := body["comparison"].(map[string]any)
	assert.Equal(t, noReferenceText, comparison["comparison"])
	assert.Equal(t, noReferenceError, comparison["error"])
	assert.EqualValues(t, 0, comparison["tokens_used"])
	assert.Equal(t, "Mistral-7B", comparison["model"])
	svc.AssertNotCalled(t, "CompareArticles", mock.Anything, mock.Anything, mock.Anything)
}

func TestArticleAnalysisServedFromCache(t *testing.T) {
	articles := store.SampleArticles()
	svc := new(analysis.MockService)
	svc.On("AnalyzeRhetoric", mock.Anything, mock.Anything).Return(analysis.Result{Text: "r"}).Once()
	svc.On("CompareArticles", mock.Anything, mock.Anything, mock.Anything).Return(analysis.Result{Text: "c"}).Once()
	deps := newTestDeps(store.NewMemory(articles...), svc, newClassifier())
	deps.Cache = cache.NewMemoryCache()

	for range 2 {
		w := serve(t, deps, httptest.NewRequest(http.MethodGet, "/api/news/1/analysis", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	svc.AssertNumberOfCalls(t, "AnalyzeRhetoric", 1)
	svc.AssertNumberOfCalls(t, "CompareArticles", 1)
}

func TestDegradedSentimentIsNotCached(t *testing.T) {
	cls := new(sentiment.MockClassifier)
	cls.On("Model").Return("llama-3.1-8b-instant")
	cls.On("Analyze", mock.Anything, mock.Anything).
		Return(sentiment.Result{Sentiment: "Neutral", Label: "NEUTRAL", Evidence: []string{}, Degraded: true}).Once()
	cls.On("Analyze", mock.Anything, mock.Anything).
		Return(sentiment.Result{Sentiment: "Negative", Label: "NEGATIVE", Polarity: -1, Evidence: []string{}}).Once()
	deps := newTestDeps(store.NewMemory(store.SampleArticles()...), nil, cls)
	deps.Cache = cache.NewMemoryCache()

	labels := make([]string, 0, 3)
	for range 3 {
		w := serve(t, deps, httptest.NewRequest(http.MethodGet, "/api/news/1", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var view articleView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		labels = append(labels, view.Sentiment.Label)
	}

	assert.Equal(t, []string{"NEUTRAL", "NEGATIVE", "NEGATIVE"}, labels)
	cls.AssertNumberOfCalls(t, "Analyze", 2)
}

func TestPickReferenceUsesEmbeddings(t *testing.T) {
	all := []store.Article{
		{ID: 1, Title: "a", Content: "voting"},
		{ID: 2, Title: "b", Content: "weather"},
		{ID: 3, Title: "c", Content: "elections"},
	}
	e := new(embeddings.MockEmbedder)
	e.On("Embed", mock.Anything, "a\n\nvoting").Return(embeddings.Vector{1, 0}, nil)
	e.On("Embed", mock.Anything, "b\n\nweather").Return(embeddings.Vector{0, 1}, nil)
	e.On("Embed", mock.Anything, "c\n\nelections").Return(embeddings.Vector{0.9, 0.1}, nil)
	deps := newTestDeps(nil, nil, nil)
	deps.Embedder = e

	ref, ok := pickReference(context.Background(), deps, all[0], all)
	require.True(t, ok)
	assert.Equal(t, 3, ref.ID)

	failing := new(embeddings.MockEmbedder)
	failing.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("quota"))
	deps.Embedder = failing
	ref, ok = pickReference(context.Background(), deps, all[0], all)
	require.True(t, ok)
	assert.Equal(t, 2, ref.ID)

	_, ok = pickReference(context.Background(), deps, all[0], all[:1])
	assert.False(t, ok)
}

func TestCompareHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*analysis.MockService)
		wantStatus int
		check      func(*testing.T, map[string]any)
	}{
		{
			name:       "missing reference content",
			body:       `{"primary":{"content":"A."},"reference":{"title":"B"}}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Both articles must have content.", body["error"])
			},
		},
		{
			name:       "invalid json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "both articles",
			body: `{"primary":{"title":"P","source":"NPR","content":"A."},"reference":{"title":"R","source":"Fox","content":"B."}}`,
			setup: func(s *analysis.MockService) {
				s.On("AnalyzeRhetoric", mock.Anything, "A.").Return(analysis.Result{Text: "ra"})
				s.On("AnalyzeRhetoric", mock.Anything, "B.").Return(analysis.Result{Text: "rb"})
				s.On("CompareArticles", mock.Anything, "A.", "B.").Return(analysis.Result{Text: "cmp", Comparison: "cmp"})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				primary := body["primary"].(map[string]any)
				assert.Equal(t, "ra", primary["rhetoric"].(map[string]any)["text"])
				assert.Equal(t, "P", primary["meta"].(map[string]any)["title"])
				reference := body["reference"].(map[string]any)
				assert.Equal(t, "rb", reference["rhetoric"].(map[string]any)["text"])
				comparison := body["comparison"].(map[string]any)
				assert.Equal(t, map[string]any{"title": "R", "source": "Fox"}, comparison["reference"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(analysis.MockService)
			if tt.setup != nil {
				tt.setup(svc)
			}
			deps := newTestDeps(store.NewMemory(), svc, nil)

			w := serve(t, deps, httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(tt.body)))
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, decode[map[string]any](t, w))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestSearchHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sources") == "fox-news" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"bad key"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","articles":[{"source":{"name":"CNN"},"title":"T","url":"https://cnn.com/t","description":"Desc one. Desc two. Desc three."}]}`))
	}))
	defer srv.Close()

	cls := new(sentiment.MockClassifier)
	cls.On("Model").Return("phi")
	cls.On("Analyze", mock.Anything, "Desc one. Desc two. Desc three.").Return(sentiment.Result{
		Sentiment: "Negative", Tone: "urgent", Evidence: []string{"crisis"}, Raw: map[string]any{"sentiment": "negative"},
	})
	deps := newTestDeps(store.NewMemory(), nil, cls)
	deps.News = newsapi.New(newsapi.Config{
		APIKey: "k", BaseURL: srv.URL, LeftSources: []string{"cnn"}, RightSources: []string{"fox-news"},
	}, deps.Log)

	w := serve(t, deps, httptest.NewRequest(http.MethodGet, "/api/search?q=vote", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "vote", body["query"])
	left := body["left"].([]any)
	require.Len(t, left, 1)
	item := left[0].(map[string]any)
	assert.Equal(t, "Desc one. Desc two. ..", item["summary"])
	s := item["sentiment"].(map[string]any)
	assert.Equal(t, "urgent", s["tone"])
	assert.Equal(t, []any{"crisis"}, s["evidence"])
	assert.NotContains(t, s, "raw")
	assert.Empty(t, body["right"])
	assert.Contains(t, body["error"], "bad key")
}

func TestSearchWithoutQuery(t *testing.T) {
	deps := newTestDeps(store.NewMemory(), nil, nil)
	w := serve(t, deps, httptest.NewRequest(http.MethodGet, "/api/search", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, []any{}, body["left"])
	assert.Nil(t, body["error"])
}

func TestUploadHandler(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		wantStatus  int
		wantCalls   bool
	}{
		{"text upload", "story.txt", "text/plain", []byte("Senators debated. The vote failed."), http.StatusOK, true},
		{"detects type from extension", "story.txt", "", []byte("Content here."), http.StatusOK, true},
		{"file too large", "large.txt", "text/plain", make([]byte, 2*1024*1024), http.StatusBadRequest, false},
		{"unsupported extension", "story.docx", "", []byte("content"), http.StatusBadRequest, false},
		{"unsupported content type", "story.doc", "application/msword", []byte("content"), http.StatusBadRequest, false},
		{"empty text", "blank.txt", "text/plain", []byte("   "), http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(analysis.MockService)
			cls := new(sentiment.MockClassifier)
			if tt.wantCalls {
				svc.On("AnalyzeRhetoric", mock.Anything, mock.Anything).Return(analysis.Result{Text: "r"}).Once()
				cls.On("Analyze", mock.Anything, mock.Anything).Return(neutral).Once()
			}
			deps := newTestDeps(store.NewMemory(), svc, cls)

			req, err := createMultipartRequest(tt.filename, tt.contentType, tt.content)
			require.NoError(t, err)
			w := serve(t, deps, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				body := decode[map[string]any](t, w)
				assert.Equal(t, tt.filename, body["filename"])
				assert.Contains(t, body, "insights")
			}
			svc.AssertExpectations(t)
			cls.AssertExpectations(t)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		deps := newTestDeps(store.NewMemory(), nil, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/analyze/upload", nil)
		req.Header.Set("Content-Type", "multipart/form-data")
		assert.Equal(t, http.StatusBadRequest, serve(t, deps, req).Code)
	})
}

func TestJobsHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		queue      func() queue.Queue
		wantStatus int
	}{
		{
			name:       "queue not configured",
			body:       `{"type":"sentiment","text":"x"}`,
			queue:      func() queue.Queue { return nil },
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name: "enqueued",
			body: `{"type":"compare","text":"x","reference":"y"}`,
			queue: func() queue.Queue {
				q := new(queue.MockQueue)
				q.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
					return task.Type == queue.TaskTypeCompare && task.MaxAttempts == 3
				})).Return(nil).Once()
				return q
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "compare without reference",
			body:       `{"type":"compare","text":"x"}`,
			queue:      func() queue.Queue { return new(queue.MockQueue) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "enqueue keeps failing",
			body: `{"type":"rhetoric","text":"x"}`,
			queue: func() queue.Queue {
				q := new(queue.MockQueue)
				q.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("nats down")).Times(3)
				return q
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(store.NewMemory(), nil, nil)
			deps.Queue = tt.queue()

			w := serve(t, deps, httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(tt.body)))
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusAccepted {
				body := decode[map[string]string](t, w)
				assert.Equal(t, "queued", body["status"])
				assert.Equal(t, "results."+body["task_id"], body["result_subject"])
			}
			if q, ok := deps.Queue.(*queue.MockQueue); ok {
				q.AssertExpectations(t)
			}
		})
	}
}

func createMultipartRequest(filename, contentType string, content []byte) (*http.Request, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	if contentType != "" {
		h["Content-Type"] = []string{contentType}
	}

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}
