package llm

import (
	"context"
	"time"
)

// Recorder receives one observation per completion call.
type Recorder interface {
	ObserveCompletion(backend, model string, elapsed time.Duration, tokens int, err error)
}

// Instrument wraps b so every Complete call is reported to r.
func Instrument(b Backend, r Recorder) Backend {
	if r == nil {
		return b
	}
	return &instrumented{Backend: b, rec: r}
}

type instrumented struct {
	Backend
	rec Recorder
}

func (i *instrumented) Complete(ctx context.Context, req Request) (Completion, error) {
	start := time.Now()
	out, err := i.Backend.Complete(ctx, req)
	i.rec.ObserveCompletion(i.Name(), i.Model(), time.Since(start), out.TokensUsed, err)
	return out, err
}

// TokenizerModel forwards to the wrapped backend, or returns "".
func (i *instrumented) TokenizerModel() string {
	if ta, ok := i.Backend.(TokenizerAware); ok {
		return ta.TokenizerModel()
	}
	return ""
}
