package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-insight/internal/cache"
	"news-insight/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseConfig() config.Config {
	return config.Config{
		AnalysisBackend:     "chat",
		SentimentBackend:    "vader",
		GroqBaseURL:         "http://localhost:1/v1",
		GroqSentimentModel:  "llama-3.1-8b-instant",
		GroqRhetoricModel:   "llama-3.1-8b-instant",
		GroqComparisonModel: "llama-3.3-70b-versatile",
		QwenURL:             "http://localhost:1/v1/completions",
		MistralURL:          "http://localhost:2/v1/completions",
		PhiURL:              "http://localhost:3/v1/completions",
		PhiTokenizer:        "microsoft/phi-2",
		CompletionTimeout:   90 * time.Second,
		StoreProvider:       "memory",
		CacheProvider:       "none",
		QueueProvider:       "none",
	}
}

func TestBuildCoreBackends(t *testing.T) {
	tests := []struct {
		name          string
		analysis      string
		sentiment     string
		wantSentiment string
		wantErr       bool
	}{
		{"chat analysis with vader", "chat", "vader", "vader", false},
		{"completion analysis with phi", "completion", "completion", phiModel, false},
		{"chat sentiment", "chat", "chat", "llama-3.1-8b-instant", false},
		{"unknown analysis backend", "local", "vader", "", true},
		{"unknown sentiment backend", "chat", "textblob", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.AnalysisBackend = tt.analysis
			cfg.SentimentBackend = tt.sentiment

			core, err := BuildCore(cfg, testLogger(), nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, core.Analysis)
			assert.NotNil(t, core.Tokens)
			assert.Equal(t, tt.wantSentiment, core.Sentiment.Model())
			assert.NoError(t, core.Close())
		})
	}
}

func TestBuildCoreChatWithoutKeyDegrades(t *testing.T) {
	core, err := BuildCore(baseConfig(), testLogger(), nil)
	require.NoError(t, err)

	res := core.Analysis.AnalyzeRhetoric(context.Background(), "The bill passed.")
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "Groq rhetoric request failed")
	assert.Equal(t, "llama-3.1-8b-instant", res.Model)
}

func TestBuildStoreMemoryIsSeeded(t *testing.T) {
	st, err := buildStore(baseConfig(), testLogger())
	require.NoError(t, err)

	list, err := st.ListArticles(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestBuildStoreRejectsUnknownProvider(t *testing.T) {
	cfg := baseConfig()
	cfg.StoreProvider = "sqlite"
	_, err := buildStore(cfg, testLogger())
	assert.Error(t, err)
}

func TestBuildCache(t *testing.T) {
	cfg := baseConfig()
	assert.IsType(t, &cache.NoOpCache{}, buildCache(cfg, testLogger()))

	cfg.CacheProvider = "memory"
	assert.IsType(t, &cache.MemoryCache{}, buildCache(cfg, testLogger()))

	cfg.CacheProvider = "redis"
	cfg.RedisAddr = "127.0.0.1:1"
	assert.IsType(t, &cache.NoOpCache{}, buildCache(cfg, testLogger()))
}

func TestBuildQueueNone(t *testing.T) {
	q, err := buildQueue(baseConfig(), testLogger())
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestBuildEmbedderOptional(t *testing.T) {
	e, err := buildEmbedder(baseConfig(), testLogger())
	require.NoError(t, err)
	assert.Nil(t, e)

	cfg := baseConfig()
	cfg.OpenAIKey = "sk-test"
	e, err = buildEmbedder(cfg, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, e)
}
