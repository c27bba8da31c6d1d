package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"news-insight/internal/chunker"
	"news-insight/internal/tokenizer"
)

func newChunker() chunker.Chunker {
	p := tokenizer.NewProvider(
		tokenizer.WithLogger(quietLogger()),
		tokenizer.WithLoader(func(string) (tokenizer.Tokenizer, error) { return tokenizer.NewWhitespace(), nil }),
	)
	return chunker.Chunker{Provider: p, Model: "distilbert"}
}

func TestPipelineClassifier(t *testing.T) {
	tests := []struct {
		name         string
		pred         Prediction
		err          error
		wantLabel    string
		wantPolarity float64
		wantScore    float64
	}{
		{"positive", Prediction{Label: "POSITIVE", Score: 0.98}, nil, "POSITIVE", 0.98, 0.98},
		{"negative", Prediction{Label: "NEGATIVE", Score: 0.91}, nil, "NEGATIVE", -0.91, 0.91},
		{"unknown label", Prediction{Label: "LABEL_7", Score: 0.5}, nil, "NEUTRAL", 0, 0.5},
		{"pipeline error", Prediction{}, errors.New("onnx failure"), "NEUTRAL", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(MockPipeline)
			p.On("Name").Return("distilbert-sst2")
			p.On("Classify", mock.Anything, "Shares jumped.").Return(tt.pred, tt.err).Once()

			res := NewPipelineClassifier(p, newChunker(), 512, quietLogger()).Analyze(context.Background(), "Shares jumped.")

			assert.Equal(t, tt.wantLabel, res.Label)
			assert.Equal(t, tt.wantPolarity, res.Polarity)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, res.Score, res.Confidence)
			assert.Equal(t, "distilbert-sst2", res.Model)
			assert.Equal(t, 2, res.TokenCount)
			assert.Equal(t, tt.err != nil, res.Degraded)
			p.AssertExpectations(t)
		})
	}
}

func TestPipelineClassifierUsesFirstChunk(t *testing.T) {
	text := strings.Repeat("Sentence. ", 40)
	p := new(MockPipeline)
	p.On("Name").Return("dummy")
	p.On("Classify", mock.Anything, mock.MatchedBy(func(s string) bool {
		return strings.HasSuffix(s, ".") && len(strings.Fields(s)) <= 10
	})).Return(Prediction{Label: "NEGATIVE", Score: 0.6}, nil).Once()

	res := NewPipelineClassifier(p, newChunker(), 10, quietLogger()).Analyze(context.Background(), text)

	assert.Equal(t, "dummy", res.Model)
	assert.Equal(t, 40, res.TokenCount)
	p.AssertExpectations(t)
}

func TestPipelineClassifierEmptyInput(t *testing.T) {
	p := new(MockPipeline)
	p.On("Name").Return("dummy")

	res := NewPipelineClassifier(p, newChunker(), 512, quietLogger()).Analyze(context.Background(), "")

	assert.Equal(t, Empty("dummy"), res)
	p.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestVaderPipeline(t *testing.T) {
	v := NewVaderPipeline()

	pos, err := v.Classify(context.Background(), "This is a wonderful, fantastic and happy day!")
	assert.NoError(t, err)
	assert.Equal(t, Positive, pos.Label)
	assert.Greater(t, pos.Score, 0.2)

	neg, err := v.Classify(context.Background(), "This is a horrible, terrible and tragic disaster.")
	assert.NoError(t, err)
	assert.Equal(t, Negative, neg.Label)

	flat, err := v.Classify(context.Background(), "The meeting is on Tuesday.")
	assert.NoError(t, err)
	assert.Equal(t, Neutral, flat.Label)
	assert.Equal(t, "vader", v.Name())
}
