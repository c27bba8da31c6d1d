package insights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	text := "Alpha beta. Gamma delta."

	got := Analyze(text)

	assert.Equal(t, 4, got.WordCount)
	assert.Equal(t, 2, got.SentenceCount)
	assert.Equal(t, 1, got.ReadingTimeMinutes)
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, got.Keywords)
}

func TestAnalyzeReadingTime(t *testing.T) {
	text := strings.Repeat("word ", 650)
	assert.Equal(t, 3, Analyze(text).ReadingTimeMinutes)
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text unchanged", "One. Two.", "One. Two."},
		{"truncated to two", "First point. Second point. Third point.", "First point. Second point. .."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.text, 2))
		})
	}
}

func TestKeywords(t *testing.T) {
	text := "The Senate vote. Senate leaders said the vote was close; senate aides agreed with leaders."

	got := Keywords(text, 3)

	assert.Equal(t, []string{"senate", "vote", "leaders"}, got)
	assert.Equal(t, []string{}, Keywords("a an the", 5))
}

func TestPlainText(t *testing.T) {
	in := "# Headline\n\nRead [the report](https://example.com/r) at https://example.com now. **Bold** move."

	got := PlainText(in)

	assert.Equal(t, "Headline Read the report at now. Bold move.", got)
}
