package llm

import "context"

// Request is a single prompt sent to a completion backend.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	// Extra fields are merged into the request body by backends that accept them.
	Extra map[string]any
}

// Completion is the text a backend produced and the tokens it reported.
type Completion struct {
	Text       string
	TokensUsed int
}

// Backend is a text-completion service reachable over the network.
type Backend interface {
	Complete(ctx context.Context, req Request) (Completion, error)
	// Name is the human label used in error messages, e.g. "Groq".
	Name() string
	// Model is the model identifier reported in results.
	Model() string
}

// TokenizerAware is implemented by backends that accept pre-tokenized input
// alongside the prompt.
type TokenizerAware interface {
	TokenizerModel() string
}
