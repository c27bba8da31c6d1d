// Package analysis runs rhetoric and comparison prompts against a backend
// and normalizes the outcome into a Result that is always safe to render.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"news-insight/internal/llm"
	"news-insight/internal/prompt"
	"news-insight/internal/tokenizer"
)

const (
	DefaultRhetoricText   = "Rhetorical analysis unavailable for this story."
	DefaultComparisonText = "Comparison unavailable for this pair of stories."

	ErrNoContent    = "No content provided."
	ErrEmptyArticle = "One of the articles was empty."

	rhetoricMaxTokens   = 500
	comparisonMaxTokens = 600
	temperature         = 0.3

	// TokenClipSize caps token ids attached to completion-server requests.
	TokenClipSize = 2000
)

// Reference identifies the second article of a comparison.
type Reference struct {
	ID     *int   `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Source string `json:"source,omitempty"`
}

// Result is the outcome of a rhetoric analysis or a comparison. Text is
// never empty; Error is nil on success.
type Result struct {
	Model      string     `json:"model"`
	TokensUsed int        `json:"tokens_used"`
	Error      *string    `json:"error"`
	Text       string     `json:"text"`
	Analysis   string     `json:"analysis,omitempty"`
	Comparison string     `json:"comparison,omitempty"`
	Reference  *Reference `json:"reference,omitempty"`
}

// Failed reports whether the backend call did not produce a result.
func (r Result) Failed() bool { return r.Error != nil }

// Service is the analysis surface used by handlers and workers.
type Service interface {
	AnalyzeRhetoric(ctx context.Context, article string) Result
	CompareArticles(ctx context.Context, primary, reference string) Result
	// ComparisonModel names the model CompareArticles reports.
	ComparisonModel() string
}

// Analyzer dispatches analysis prompts. Rhetoric and comparison may use
// different backends.
type Analyzer struct {
	rhetoric   llm.Backend
	comparison llm.Backend
	tokens     *tokenizer.Provider
	log        *slog.Logger
}

// New returns an Analyzer. tokens may be nil when no backend accepts
// pre-tokenized input.
func New(rhetoric, comparison llm.Backend, tokens *tokenizer.Provider, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{rhetoric: rhetoric, comparison: comparison, tokens: tokens, log: log}
}

// AnalyzeRhetoric reports tone, rhetorical devices and bias indicators for one article.
func (a *Analyzer) AnalyzeRhetoric(ctx context.Context, article string) (res Result) {
	res = Result{Model: a.rhetoric.Model(), Text: DefaultRhetoricText}
	defer func() { res.Analysis = res.Text }()

	trimmed := prompt.Truncate(article, prompt.ArticleLimit)
	if trimmed == "" {
		res.Error = errString(ErrNoContent)
		return res
	}

	req := llm.Request{
		Prompt:      prompt.Rhetoric(article),
		MaxTokens:   rhetoricMaxTokens,
		Temperature: temperature,
	}
	if model := a.tokenizerModel(a.rhetoric); model != "" {
		req.Extra = map[string]any{
			"article_tokens":  a.tokens.ClipTokenIDs(trimmed, model, TokenClipSize),
			"tokenizer_model": model,
		}
	}
	a.complete(ctx, a.rhetoric, "rhetoric", req, &res)
	return res
}

// CompareArticles contrasts the framing, tone and sourcing of two articles.
func (a *Analyzer) CompareArticles(ctx context.Context, primary, reference string) (res Result) {
	res = Result{Model: a.comparison.Model(), Text: DefaultComparisonText}
	defer func() { res.Comparison = res.Text }()

	p := prompt.Truncate(primary, prompt.ArticleLimit)
	r := prompt.Truncate(reference, prompt.ArticleLimit)
	if p == "" || r == "" {
		res.Error = errString(ErrEmptyArticle)
		return res
	}

	req := llm.Request{
		Prompt:      prompt.Comparison(primary, reference),
		MaxTokens:   comparisonMaxTokens,
		Temperature: temperature,
	}
	if model := a.tokenizerModel(a.comparison); model != "" {
		req.Extra = map[string]any{
			"primary_tokens":   a.tokens.ClipTokenIDs(p, model, TokenClipSize),
			"reference_tokens": a.tokens.ClipTokenIDs(r, model, TokenClipSize),
			"tokenizer_model":  model,
		}
	}
	a.complete(ctx, a.comparison, "comparison", req, &res)
	return res
}

func (a *Analyzer) ComparisonModel() string { return a.comparison.Model() }

func (a *Analyzer) complete(ctx context.Context, b llm.Backend, op string, req llm.Request, res *Result) {
	out, err := b.Complete(ctx, req)
	if err != nil {
		a.log.Warn("analysis backend failed", "backend", b.Name(), "operation", op, "err", err)
		res.Error = errString(fmt.Sprintf("%s %s request failed: %v", b.Name(), op, err))
		return
	}
	if text := strings.TrimSpace(llm.StripThink(out.Text)); text != "" {
		res.Text = text
	}
	res.TokensUsed = max(out.TokensUsed, 0)
}

func (a *Analyzer) tokenizerModel(b llm.Backend) string {
	if a.tokens == nil {
		return ""
	}
	if ta, ok := b.(llm.TokenizerAware); ok {
		return ta.TokenizerModel()
	}
	return ""
}

func errString(s string) *string { return &s }
