package sentiment

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// Mapping is the canonical rendering of a resolved sentiment label.
type Mapping struct {
	Sentiment string
	Label     string
	Polarity  float64
	Score     float64
}

// Map resolves label case-insensitively; anything other than positive or
// negative maps to neutral.
func Map(label string) Mapping {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case Negative:
		return Mapping{Sentiment: "Negative", Label: "NEGATIVE", Polarity: -1, Score: 1}
	case Positive:
		return Mapping{Sentiment: "Positive", Label: "POSITIVE", Polarity: 1, Score: 1}
	default:
		return Mapping{Sentiment: "Neutral", Label: "NEUTRAL", Polarity: 0, Score: 0}
	}
}

// ExtractFirstJSON decodes the first parseable JSON object in text, trying
// each opening brace from left to right.
func ExtractFirstJSON(text string) (map[string]any, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		var obj map[string]any
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&obj); err == nil {
			return obj, true
		}
	}
	return nil, false
}

// KeywordFallback guesses a label from free text. "negative" wins over
// "positive" when both appear.
func KeywordFallback(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, Negative):
		return Negative
	case strings.Contains(lower, Positive):
		return Positive
	default:
		return Neutral
	}
}

// Parsed is the structured reading of a classifier response.
type Parsed struct {
	Label    string
	Tone     string
	Evidence []string
	// Raw is the decoded object, or the original text when no object was found.
	Raw any
}

// ParseOutput reads a model response: JSON first, keywords second.
func ParseOutput(text string) Parsed {
	obj, ok := ExtractFirstJSON(text)
	if !ok {
		return Parsed{Label: KeywordFallback(text), Evidence: []string{}, Raw: text}
	}
	p := Parsed{Label: Neutral, Evidence: []string{}, Raw: obj}
	if v, ok := obj["sentiment"]; ok && v != nil {
		p.Label = strings.ToLower(fmt.Sprint(v))
	}
	if v, ok := obj["tone"]; ok && v != nil {
		p.Tone = fmt.Sprint(v)
	}
	if items, ok := obj["evidence"].([]any); ok {
		for _, item := range items {
			if s, ok := item.(string); ok {
				p.Evidence = append(p.Evidence, s)
				continue
			}
			p.Evidence = append(p.Evidence, fmt.Sprint(item))
		}
	}
	return p
}
