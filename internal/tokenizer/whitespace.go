package tokenizer

import "strings"

const (
	whitespaceMaxContext = 512
	whitespaceOverhead   = 2
)

// WordSplitter is implemented by tokenizers whose tokens are whole words.
// Callers that need token windows of text split with Words instead of
// round-tripping ids through Decode.
type WordSplitter interface {
	Words(text string) []string
}

// Whitespace treats every whitespace-separated word as one token. It keeps
// no vocabulary: ids are hashes of the words, so Decode cannot recover text.
type Whitespace struct{}

// NewWhitespace returns a whitespace tokenizer.
func NewWhitespace() *Whitespace {
	return &Whitespace{}
}

// Words splits text into the tokens Encode would produce.
func (w *Whitespace) Words(text string) []string {
	return strings.Fields(text)
}

func (w *Whitespace) Encode(text string) []int {
	fields := strings.Fields(text)
	ids := make([]int, len(fields))
	for i, f := range fields {
		ids[i] = hashID(f)
	}
	return ids
}

// Decode always returns "". Use Words to split text into tokens.
func (w *Whitespace) Decode([]int) string { return "" }

func (w *Whitespace) MaxContextLength() int { return whitespaceMaxContext }

func (w *Whitespace) SpecialTokenOverhead(bool) int { return whitespaceOverhead }
