// Package sentiment classifies article sentiment through interchangeable
// backends and always returns a complete, internally consistent Result.
package sentiment

import "context"

// Result is the sentiment classification of one text.
type Result struct {
	Sentiment    string   `json:"sentiment"`
	Polarity     float64  `json:"polarity"`
	Subjectivity float64  `json:"subjectivity"`
	Model        string   `json:"model"`
	Confidence   float64  `json:"confidence"`
	Label        string   `json:"label"`
	Score        float64  `json:"score"`
	Raw          any      `json:"raw"`
	TokenCount   int      `json:"token_count"`
	LatencyMs    int64    `json:"latency_ms"`
	Tone         string   `json:"tone"`
	Evidence     []string `json:"evidence"`

	// Degraded is set when the backend failed and the result is a neutral
	// fallback rather than a classification.
	Degraded bool `json:"-"`
}

// Classifier produces a Result for any input. Backend failures degrade to a
// neutral result instead of surfacing as errors.
type Classifier interface {
	Analyze(ctx context.Context, text string) Result
	Model() string
}

// Empty is the result for empty input.
func Empty(model string) Result {
	m := Map(Neutral)
	return Result{
		Sentiment: m.Sentiment,
		Label:     m.Label,
		Model:     model,
		Evidence:  []string{},
	}
}
