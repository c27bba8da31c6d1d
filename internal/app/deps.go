package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"news-insight/internal/analysis"
	"news-insight/internal/cache"
	"news-insight/internal/chunker"
	"news-insight/internal/config"
	"news-insight/internal/embeddings"
	"news-insight/internal/llm"
	"news-insight/internal/logger"
	"news-insight/internal/metrics"
	"news-insight/internal/newsapi"
	"news-insight/internal/queue"
	"news-insight/internal/sentiment"
	"news-insight/internal/store"
	"news-insight/internal/tokenizer"
)

const (
	qwenModel    = "Qwen2-7B"
	mistralModel = "Mistral-7B"
	phiModel     = "Phi-2"

	// pipelineMaxTokens is the input budget of the local classification models.
	pipelineMaxTokens = 512
)

// Core is the analysis stack shared by every entry point.
type Core struct {
	Tokens    *tokenizer.Provider
	Analysis  analysis.Service
	Sentiment sentiment.Classifier

	closers []func() error
}

// Close releases resources held by the stack, such as model sessions.
func (c Core) Close() error {
	var errs []error
	for _, fn := range c.closers {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Core

	Config   config.Config
	Log      *slog.Logger
	Metrics  *metrics.Metrics
	Store    store.Store
	Cache    cache.Cache
	Queue    queue.Queue         // nil when QUEUE_PROVIDER=none
	Embedder embeddings.Embedder // nil without OPENAI_API_KEY
	News     *newsapi.Client
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	m := metrics.New()

	core, err := BuildCore(cfg, log, m)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize analysis backends: %w", err)
	}
	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return Deps{
		Core:     core,
		Config:   cfg,
		Log:      log,
		Metrics:  m,
		Store:    st,
		Cache:    buildCache(cfg, log),
		Queue:    q,
		Embedder: embedder,
		News: newsapi.New(newsapi.Config{
			APIKey:       cfg.NewsAPIKey,
			BaseURL:      cfg.NewsAPIURL,
			LeftSources:  cfg.NewsLeftSources,
			RightSources: cfg.NewsRightSources,
		}, log),
	}, nil
}

// BuildCore selects the analysis and sentiment backends from cfg. rec may be
// nil to skip instrumentation.
func BuildCore(cfg config.Config, log *slog.Logger, rec llm.Recorder) (Core, error) {
	if cfg.TiktokenDir != "" {
		tokenizer.UseLocalEncodings(cfg.TiktokenDir)
		log.Info("loading tiktoken encodings from disk", "dir", cfg.TiktokenDir)
	}
	core := Core{Tokens: tokenizer.NewProvider(tokenizer.WithLogger(log))}

	rhetoric, comparison, err := buildAnalysisBackends(cfg)
	if err != nil {
		return Core{}, err
	}
	core.Analysis = analysis.New(llm.Instrument(rhetoric, rec), llm.Instrument(comparison, rec), core.Tokens, log)
	log.Info("analysis backends ready", "backend", cfg.AnalysisBackend, "rhetoric", rhetoric.Model(), "comparison", comparison.Model())

	if err := buildSentiment(cfg, log, rec, &core); err != nil {
		return Core{}, err
	}
	log.Info("sentiment classifier ready", "backend", cfg.SentimentBackend, "model", core.Sentiment.Model())
	return core, nil
}

func buildAnalysisBackends(cfg config.Config) (llm.Backend, llm.Backend, error) {
	switch cfg.AnalysisBackend {
	case "chat":
		return groqClient(cfg, cfg.GroqRhetoricModel), groqClient(cfg, cfg.GroqComparisonModel), nil
	case "completion":
		qwen, err := llm.NewCompletionClient(llm.CompletionConfig{
			Name:           "Qwen",
			Model:          qwenModel,
			URL:            cfg.QwenURL,
			TokenizerModel: cfg.QwenTokenizer,
			Timeout:        cfg.CompletionTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		mistral, err := llm.NewCompletionClient(llm.CompletionConfig{
			Name:           "Mistral",
			Model:          mistralModel,
			URL:            cfg.MistralURL,
			TokenizerModel: cfg.MistralTokenizer,
			Timeout:        cfg.CompletionTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return qwen, mistral, nil
	default:
		return nil, nil, fmt.Errorf("invalid ANALYSIS_BACKEND: %s (valid options: chat, completion)", cfg.AnalysisBackend)
	}
}

func groqClient(cfg config.Config, model string) *llm.ChatClient {
	return llm.NewChatClient(llm.ChatConfig{
		Name:    "Groq",
		Model:   model,
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
	})
}

func buildSentiment(cfg config.Config, log *slog.Logger, rec llm.Recorder, core *Core) error {
	switch cfg.SentimentBackend {
	case "chat":
		core.Sentiment = sentiment.NewLLMClassifier(llm.Instrument(groqClient(cfg, cfg.GroqSentimentModel), rec), log)
	case "completion":
		phi, err := llm.NewCompletionClient(llm.CompletionConfig{
			Name:           "Phi",
			Model:          phiModel,
			URL:            cfg.PhiURL,
			TokenizerModel: cfg.PhiTokenizer,
			Timeout:        cfg.CompletionTimeout,
		})
		if err != nil {
			return err
		}
		core.Sentiment = sentiment.NewLLMClassifier(llm.Instrument(phi, rec), log,
			sentiment.WithLocalTokenCount(core.Tokens, cfg.PhiTokenizer))
	case "hugot":
		p, err := sentiment.NewHugotPipeline(cfg.HugotModel, cfg.HugotModelDir, log)
		if err != nil {
			log.Warn("hugot pipeline unavailable, falling back to vader", "model", cfg.HugotModel, "err", err)
			core.Sentiment = vaderClassifier(core.Tokens, log)
			return nil
		}
		core.closers = append(core.closers, p.Close)
		chunks := chunker.Chunker{Provider: core.Tokens, Model: cfg.HugotModel}
		core.Sentiment = sentiment.NewPipelineClassifier(p, chunks, pipelineMaxTokens, log)
	case "vader":
		core.Sentiment = vaderClassifier(core.Tokens, log)
	default:
		return fmt.Errorf("invalid SENTIMENT_BACKEND: %s (valid options: chat, completion, hugot, vader)", cfg.SentimentBackend)
	}
	return nil
}

func vaderClassifier(tokens *tokenizer.Provider, log *slog.Logger) sentiment.Classifier {
	chunks := chunker.Chunker{Provider: tokens, Model: "vader"}
	return sentiment.NewPipelineClassifier(sentiment.NewVaderPipeline(), chunks, pipelineMaxTokens, log)
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "memory":
		log.Info("using in-memory article store")
		return store.NewMemory(store.SampleArticles()...), nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: memory, postgres)", cfg.StoreProvider)
	}
}

// buildCache never fails; an unreachable Redis degrades to no caching.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNoOpCache()
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr)
		return c
	case "memory":
		return cache.NewMemoryCache()
	default:
		return cache.NewNoOpCache()
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "none":
		return nil, nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: none, nats)", cfg.QueueProvider)
	}
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	if cfg.OpenAIKey == "" {
		log.Info("OPENAI_API_KEY not set, reference articles chosen by order")
		return nil, nil
	}
	embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
	}
	log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
	return embedder, nil
}
