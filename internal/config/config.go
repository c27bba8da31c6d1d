package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime configuration for every service in the module.
type Config struct {
	// Server
	Port      int    `env:"PORT" envDefault:"8080" validate:"gt=0,lt=65536"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Backend selection
	AnalysisBackend  string `env:"ANALYSIS_BACKEND" envDefault:"chat" validate:"oneof=chat completion"`
	SentimentBackend string `env:"SENTIMENT_BACKEND" envDefault:"chat" validate:"oneof=chat completion hugot vader"`

	// Managed chat API (Groq, or any OpenAI-compatible endpoint)
	GroqAPIKey          string `env:"GROQ_API_KEY"`
	GroqBaseURL         string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1" validate:"url"`
	GroqSentimentModel  string `env:"GROQ_SENTIMENT_MODEL" envDefault:"llama-3.1-8b-instant"`
	GroqRhetoricModel   string `env:"GROQ_RHETORIC_MODEL" envDefault:"llama-3.1-8b-instant"`
	GroqComparisonModel string `env:"GROQ_COMPARISON_MODEL" envDefault:"llama-3.3-70b-versatile"`

	// Self-hosted completion servers
	QwenURL           string        `env:"QWEN_ANALYSIS_URL" envDefault:"http://localhost:8000/v1/completions" validate:"url"`
	MistralURL        string        `env:"MISTRAL_ANALYSIS_URL" envDefault:"http://localhost:8001/v1/completions" validate:"url"`
	PhiURL            string        `env:"PHI_ANALYSIS_URL" envDefault:"http://localhost:8002/v1/completions" validate:"url"`
	QwenTokenizer     string        `env:"QWEN_TOKENIZER" envDefault:"qwen2-7b"`
	MistralTokenizer  string        `env:"MISTRAL_TOKENIZER" envDefault:"mistralai/Mistral-7B-Instruct-v0.2"`
	PhiTokenizer      string        `env:"PHI_TOKENIZER" envDefault:"microsoft/phi-2"`
	CompletionTimeout time.Duration `env:"COMPLETION_TIMEOUT" envDefault:"120s"`

	// Directory holding *.tiktoken encoding files; empty downloads them on first use.
	TiktokenDir string `env:"TIKTOKEN_BPE_DIR"`

	// Local classification models
	HugotModel    string `env:"HUGOT_MODEL" envDefault:"distilbert/distilbert-base-uncased-finetuned-sst-2-english"`
	HugotModelDir string `env:"HUGOT_MODEL_DIR" envDefault:"./models"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"memory" validate:"oneof=memory postgres"`
	DBURL         string `env:"DB_URL" validate:"required_if=StoreProvider postgres"`

	// Cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"none" validate:"oneof=none memory redis"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"none" validate:"oneof=none nats"`
	QueueURL      string `env:"QUEUE_URL" envDefault:"nats://localhost:4222"`

	// News search
	NewsAPIKey       string   `env:"NEWS_API_KEY"`
	NewsAPIURL       string   `env:"NEWS_API_URL" envDefault:"https://newsapi.org/v2" validate:"url"`
	NewsLeftSources  []string `env:"NEWS_LEFT_SOURCES" envDefault:"cnn,msnbc,the-washington-post" envSeparator:","`
	NewsRightSources []string `env:"NEWS_RIGHT_SOURCES" envDefault:"fox-news,breitbart-news,the-washington-times" envSeparator:","`

	// Embeddings for reference-article selection
	OpenAIKey      string `env:"OPENAI_API_KEY"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// Validate reports the first configuration error, if any.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
