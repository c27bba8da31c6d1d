package chunker

import (
	"strings"
	"unicode/utf8"

	"news-insight/internal/tokenizer"
)

const (
	defaultMaxTokens = 400
	// Tokenizers reporting a larger context than this are treated as unbounded.
	unboundedContext = 100_000
)

// Options controls how text is chunked.
type Options struct {
	MaxTokens int
}

// Chunk represents a slice of the article text.
type Chunk struct {
	Index      int    `json:"index"`
	Text       string `json:"text"`
	TokenCount int    `json:"token_count"`
}

// Budget returns the per-chunk token budget for tok given the requested maximum.
func Budget(tok tokenizer.Tokenizer, maxTokens int) int {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	ctx := tok.MaxContextLength()
	if ctx > unboundedContext {
		return maxTokens
	}
	budget := min(maxTokens, ctx-tok.SpecialTokenOverhead(false))
	return max(budget, 1)
}

// ChunkText packs whole sentences into chunks that fit the token budget.
// A sentence longer than the budget is split on token boundaries.
func ChunkText(tok tokenizer.Tokenizer, text string, opts Options) []Chunk {
	var chunks []Chunk
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return chunks
	}
	budget := Budget(tok, opts.MaxTokens)

	emit := func(s string, n int) {
		chunks = append(chunks, Chunk{Index: len(chunks), Text: s, TokenCount: n})
	}

	var (
		current      []string
		currentCount int
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		emit(strings.Join(current, " "), currentCount)
		current, currentCount = nil, 0
	}

	for _, sentence := range sentences {
		ids := tok.Encode(sentence)
		if len(ids) > budget {
			flush()
			for _, part := range splitLong(tok, sentence, ids, budget) {
				emit(part, len(tok.Encode(part)))
			}
			continue
		}
		if len(current) == 0 {
			current, currentCount = []string{sentence}, len(ids)
			continue
		}
		joined := strings.Join(append(current[:len(current):len(current)], sentence), " ")
		if n := len(tok.Encode(joined)); n <= budget {
			current = append(current, sentence)
			currentCount = n
			continue
		}
		flush()
		current, currentCount = []string{sentence}, len(ids)
	}
	flush()
	return chunks
}

// Texts returns the chunk bodies in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func splitSentences(text string) []string {
	var sentences []string
	for _, part := range strings.Split(text, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sentences = append(sentences, part+".")
	}
	return sentences
}

// splitLong slices a sentence into windows that decode, with a closing
// period, to at most budget tokens. Windows never end inside a UTF-8 rune.
func splitLong(tok tokenizer.Tokenizer, sentence string, ids []int, budget int) []string {
	if ws, ok := tok.(tokenizer.WordSplitter); ok {
		return splitWords(tok, ws.Words(sentence), budget)
	}
	var parts []string
	for start := 0; start < len(ids); {
		size := min(budget, len(ids)-start)
		part := tok.Decode(ids[start : start+size])
		for size > 1 && (!utf8.ValidString(part) || len(tok.Encode(withPeriod(part))) > budget) {
			size--
			part = tok.Decode(ids[start : start+size])
		}
		// A single token can hold a partial rune; widen until it completes.
		for !utf8.ValidString(part) && start+size < len(ids) {
			size++
			part = tok.Decode(ids[start : start+size])
		}
		if part = withPeriod(part); strings.TrimSpace(part) != "." {
			parts = append(parts, part)
		}
		start += size
	}
	return parts
}

func splitWords(tok tokenizer.Tokenizer, words []string, budget int) []string {
	var parts []string
	for start := 0; start < len(words); {
		size := min(budget, len(words)-start)
		part := withPeriod(strings.Join(words[start:start+size], " "))
		for size > 1 && len(tok.Encode(part)) > budget {
			size--
			part = withPeriod(strings.Join(words[start:start+size], " "))
		}
		if part != "." {
			parts = append(parts, part)
		}
		start += size
	}
	return parts
}

func withPeriod(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}

// Chunker resolves the tokenizer for a model through a shared provider.
type Chunker struct {
	Provider *tokenizer.Provider
	Model    string
}

// Chunk splits text for the chunker's model.
func (c Chunker) Chunk(text string, maxTokens int) []Chunk {
	return ChunkText(c.Provider.Get(c.Model), text, Options{MaxTokens: maxTokens})
}

// First returns the first chunk of text, or text itself when it is empty.
func (c Chunker) First(text string, maxTokens int) string {
	chunks := c.Chunk(text, maxTokens)
	if len(chunks) == 0 {
		return text
	}
	return chunks[0].Text
}
