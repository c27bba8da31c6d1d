package sentiment

import (
	"context"
	"log/slog"
	"time"

	"news-insight/internal/llm"
	"news-insight/internal/prompt"
	"news-insight/internal/tokenizer"
)

const (
	llmMaxTokens   = 200
	llmTemperature = 0.3
)

// LLMClassifier asks a completion backend for a JSON classification.
type LLMClassifier struct {
	backend    llm.Backend
	log        *slog.Logger
	tokens     *tokenizer.Provider
	tokenModel string
}

// LLMOption configures an LLMClassifier.
type LLMOption func(*LLMClassifier)

// WithLocalTokenCount fills TokenCount by tokenizing the input locally.
// Leave it unset for backends that account for tokens server-side.
func WithLocalTokenCount(p *tokenizer.Provider, modelID string) LLMOption {
	return func(c *LLMClassifier) {
		c.tokens = p
		c.tokenModel = modelID
	}
}

// NewLLMClassifier wraps backend.
func NewLLMClassifier(backend llm.Backend, log *slog.Logger, opts ...LLMOption) *LLMClassifier {
	if log == nil {
		log = slog.Default()
	}
	c := &LLMClassifier{backend: backend, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *LLMClassifier) Model() string { return c.backend.Model() }

func (c *LLMClassifier) Analyze(ctx context.Context, text string) Result {
	if text == "" {
		return Empty(c.Model())
	}

	start := time.Now()
	out, err := c.backend.Complete(ctx, llm.Request{
		Prompt:      prompt.Sentiment(text),
		MaxTokens:   llmMaxTokens,
		Temperature: llmTemperature,
	})
	latency := time.Since(start).Milliseconds()
	raw := ""
	if err != nil {
		c.log.Warn("sentiment backend failed, falling back to neutral", "backend", c.backend.Name(), "err", err)
	} else {
		raw = llm.StripThink(out.Text)
	}

	parsed := ParseOutput(raw)
	m := Map(parsed.Label)
	res := Result{
		Sentiment:    m.Sentiment,
		Polarity:     m.Polarity,
		Subjectivity: 1,
		Model:        c.Model(),
		Confidence:   m.Score,
		Label:        m.Label,
		Score:        m.Score,
		Raw:          parsed.Raw,
		LatencyMs:    latency,
		Tone:         parsed.Tone,
		Evidence:     parsed.Evidence,
		Degraded:     err != nil,
	}
	if c.tokens != nil {
		res.TokenCount = c.tokens.CountTokens(text, c.tokenModel)
	}
	return res
}
