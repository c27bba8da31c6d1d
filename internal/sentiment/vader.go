package sentiment

import (
	"context"
	"math"

	"github.com/jonreiter/govader"

	"news-insight/internal/insights"
)

const vaderThreshold = 0.20

// VaderPipeline scores text with the VADER lexicon. It needs no model files.
type VaderPipeline struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderPipeline() *VaderPipeline {
	return &VaderPipeline{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderPipeline) Name() string { return "vader" }

func (v *VaderPipeline) Classify(_ context.Context, text string) (Prediction, error) {
	compound := v.analyzer.PolarityScores(insights.PlainText(text)).Compound
	label := Neutral
	switch {
	case compound >= vaderThreshold:
		label = Positive
	case compound <= -vaderThreshold:
		label = Negative
	}
	return Prediction{Label: label, Score: math.Abs(compound)}, nil
}
