package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	minCompletionTimeout = 60 * time.Second
	maxCompletionTimeout = 120 * time.Second
	maxErrorBodyBytes    = 512
	completionsPath      = "/completions"
)

// Body fields a caller's Extra map may not replace.
var reservedCompletionFields = map[string]bool{
	"model":       true,
	"prompt":      true,
	"max_tokens":  true,
	"temperature": true,
}

// CompletionConfig configures a CompletionClient.
type CompletionConfig struct {
	Name  string
	Model string
	// URL is the full endpoint, ending in /completions.
	URL            string
	TokenizerModel string
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// CompletionClient talks to a self-hosted server exposing a
// /v1/completions style endpoint.
type CompletionClient struct {
	name           string
	model          string
	tokenizerModel string
	client         *openai.Client
}

// NewCompletionClient builds a client. Timeouts outside 60s..120s are clamped.
func NewCompletionClient(cfg CompletionConfig) (*CompletionClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("completion url required")
	}
	base, ok := strings.CutSuffix(strings.TrimRight(cfg.URL, "/"), completionsPath)
	if !ok {
		return nil, fmt.Errorf("completion url %q must end in %s", cfg.URL, completionsPath)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: clampTimeout(cfg.Timeout)}
	}
	cli := openai.NewClient(
		option.WithBaseURL(base+"/"),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
		// Keeps OPENAI_API_KEY from the environment off self-hosted servers.
		option.WithAPIKey("none"),
	)
	return &CompletionClient{
		name:           cfg.Name,
		model:          cfg.Model,
		tokenizerModel: cfg.TokenizerModel,
		client:         &cli,
	}, nil
}

func clampTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0 || d > maxCompletionTimeout:
		return maxCompletionTimeout
	case d < minCompletionTimeout:
		return minCompletionTimeout
	default:
		return d
	}
}

func (c *CompletionClient) Name() string           { return c.name }
func (c *CompletionClient) Model() string          { return c.model }
func (c *CompletionClient) TokenizerModel() string { return c.tokenizerModel }

func (c *CompletionClient) Complete(ctx context.Context, req Request) (Completion, error) {
	params := openai.CompletionNewParams{
		Model:       openai.CompletionNewParamsModel(c.model),
		Prompt:      openai.CompletionNewParamsPromptUnion{OfString: openai.String(req.Prompt)},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	var httpResp *http.Response
	opts := []option.RequestOption{option.WithResponseInto(&httpResp)}
	for k, v := range req.Extra {
		if !reservedCompletionFields[k] {
			opts = append(opts, option.WithJSONSet(k, v))
		}
	}

	resp, err := c.client.Completions.New(ctx, params, opts...)
	if err != nil {
		return Completion{}, c.classify(httpResp, err)
	}
	var result Completion
	if len(resp.Choices) > 0 {
		result.Text = resp.Choices[0].Text
	}
	result.TokensUsed = int(resp.Usage.TotalTokens)
	return result, nil
}

// classify maps an SDK error to a BackendError. No response or a non-2xx
// status is a transport failure; a 2xx the SDK could not decode is malformed.
func (c *CompletionClient) classify(resp *http.Response, err error) error {
	switch {
	case resp == nil:
		return transportErr(c.name, err)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var snippet []byte
		if resp.Body != nil {
			snippet, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		}
		return transportErr(c.name, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)))
	default:
		return malformedErr(c.name, err)
	}
}
