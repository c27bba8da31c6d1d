// Package tokenizer resolves and caches text tokenizers per model identifier.
package tokenizer

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Tokenizer converts text to token ids and back for a single model.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
	// MaxContextLength is the longest token sequence the model accepts.
	MaxContextLength() int
	// SpecialTokenOverhead is the number of tokens the model adds around a
	// single sequence, or around a sequence pair when pair is true.
	SpecialTokenOverhead(pair bool) int
}

// Loader builds the tokenizer for a model id.
type Loader func(modelID string) (Tokenizer, error)

// Provider hands out one tokenizer per model id, building it on first use.
// Loader failures are logged and replaced by a whitespace tokenizer, so Get
// always returns a usable value.
type Provider struct {
	mu     sync.RWMutex
	cache  map[string]Tokenizer
	group  singleflight.Group
	loader Loader
	log    *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithLoader replaces the default tiktoken-backed loader.
func WithLoader(l Loader) Option {
	return func(p *Provider) { p.loader = l }
}

// WithLogger sets the logger used to report loader fallbacks.
func WithLogger(log *slog.Logger) Option {
	return func(p *Provider) { p.log = log }
}

// NewProvider creates an empty provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		cache:  make(map[string]Tokenizer),
		loader: TiktokenLoader,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the tokenizer for modelID. Concurrent first calls for the same
// id share a single load.
func (p *Provider) Get(modelID string) Tokenizer {
	if tok, ok := p.lookup(modelID); ok {
		return tok
	}
	v, _, _ := p.group.Do(modelID, func() (any, error) {
		if tok, ok := p.lookup(modelID); ok {
			return tok, nil
		}
		tok, err := p.loader(modelID)
		if err != nil || tok == nil {
			p.log.Warn("tokenizer unavailable, using whitespace fallback", "model", modelID, "err", err)
			tok = NewWhitespace()
		}
		p.mu.Lock()
		p.cache[modelID] = tok
		p.mu.Unlock()
		return tok, nil
	})
	return v.(Tokenizer)
}

func (p *Provider) lookup(modelID string) (Tokenizer, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tok, ok := p.cache[modelID]
	return tok, ok
}

// CountTokens returns the number of tokens in text without special tokens.
func (p *Provider) CountTokens(text, modelID string) int {
	if text == "" {
		return 0
	}
	return len(p.Get(modelID).Encode(text))
}

// Override pins a tokenizer for modelID, replacing any cached instance.
func (p *Provider) Override(modelID string, tok Tokenizer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[modelID] = tok
}

// Reset drops every cached tokenizer.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]Tokenizer)
}

// NormalizeTokenIDs converts tokens to non-negative integer ids, truncated
// to at most limit entries. Integer tokens pass through unchanged; anything
// else maps to a stable id in [1, 999999].
func NormalizeTokenIDs[T any](tokens []T, limit int) []int {
	if limit < 0 {
		limit = 0
	}
	if len(tokens) > limit {
		tokens = tokens[:limit]
	}
	ids := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		switch v := any(tok).(type) {
		case int:
			ids = append(ids, v)
		case int32:
			ids = append(ids, int(v))
		case int64:
			ids = append(ids, int(v))
		default:
			ids = append(ids, hashID(fmt.Sprint(v)))
		}
	}
	return ids
}

func hashID(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return 1 + int(h.Sum32()%999_999)
}

// ClipTokenIDs returns at most limit token ids for text under modelID.
func (p *Provider) ClipTokenIDs(text, modelID string, limit int) []int {
	return NormalizeTokenIDs(p.Get(modelID).Encode(text), limit)
}
