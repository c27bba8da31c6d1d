package sentiment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"news-insight/internal/chunker"
)

// Prediction is the single best label a classification model returns.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Pipeline is a local text-classification model.
type Pipeline interface {
	Classify(ctx context.Context, text string) (Prediction, error)
	Name() string
}

// PipelineClassifier adapts a Pipeline to the Classifier contract.
type PipelineClassifier struct {
	pipeline  Pipeline
	chunks    chunker.Chunker
	maxTokens int
	log       *slog.Logger
}

// NewPipelineClassifier classifies only the first chunk of long inputs;
// chunks are sized for the pipeline's tokenizer and capped at maxTokens.
func NewPipelineClassifier(p Pipeline, chunks chunker.Chunker, maxTokens int, log *slog.Logger) *PipelineClassifier {
	if log == nil {
		log = slog.Default()
	}
	return &PipelineClassifier{pipeline: p, chunks: chunks, maxTokens: maxTokens, log: log}
}

func (c *PipelineClassifier) Model() string { return c.pipeline.Name() }

func (c *PipelineClassifier) Analyze(ctx context.Context, text string) Result {
	if text == "" {
		return Empty(c.Model())
	}
	input := c.chunks.First(text, c.maxTokens)

	start := time.Now()
	pred, err := c.pipeline.Classify(ctx, input)
	latency := time.Since(start).Milliseconds()

	res := Result{
		Subjectivity: 1,
		Model:        c.Model(),
		LatencyMs:    latency,
		TokenCount:   c.chunks.Provider.CountTokens(text, c.chunks.Model),
		Evidence:     []string{},
	}
	if err != nil {
		c.log.Warn("sentiment pipeline failed, falling back to neutral", "pipeline", c.Model(), "err", err)
		m := Map(Neutral)
		res.Sentiment, res.Label = m.Sentiment, m.Label
		res.Degraded = true
		return res
	}

	m := Map(pred.Label)
	res.Sentiment = m.Sentiment
	res.Label = m.Label
	res.Confidence = pred.Score
	res.Score = pred.Score
	res.Raw = map[string]any{"label": strings.ToUpper(pred.Label), "score": pred.Score}
	switch m.Label {
	case "POSITIVE":
		res.Polarity = pred.Score
	case "NEGATIVE":
		res.Polarity = -pred.Score
	}
	return res
}
