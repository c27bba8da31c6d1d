package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultChatBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultChatBaseURL = "https://api.groq.com/openai/v1"

const defaultChatTimeout = 60 * time.Second

// ErrMissingCredential is returned when a managed backend has no API key.
var ErrMissingCredential = errors.New("api key not configured")

// ChatConfig configures a ChatClient.
type ChatConfig struct {
	Name       string
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ChatClient calls a hosted chat-completions API through the OpenAI SDK.
type ChatClient struct {
	name    string
	model   openai.ChatModel
	hasKey  bool
	timeout time.Duration
	client  *openai.Client
}

// NewChatClient builds a client. A missing API key is not an error here;
// each Complete call fails instead.
func NewChatClient(cfg ChatConfig) *ChatClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultChatBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChatTimeout
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	cli := openai.NewClient(opts...)
	return &ChatClient{
		name:    cfg.Name,
		model:   openai.ChatModel(cfg.Model),
		hasKey:  cfg.APIKey != "",
		timeout: cfg.Timeout,
		client:  &cli,
	}
}

func (c *ChatClient) Name() string  { return c.name }
func (c *ChatClient) Model() string { return string(c.model) }

func (c *ChatClient) Complete(ctx context.Context, req Request) (Completion, error) {
	if !c.hasKey {
		return Completion{}, &BackendError{Backend: c.name, Kind: ErrTransport, Err: ErrMissingCredential}
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    userMessage(req.Prompt),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	resp, err := c.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return Completion{}, transportErr(c.name, err)
	}
	var result Completion
	if len(resp.Choices) > 0 {
		result.Text = resp.Choices[0].Message.Content
	}
	result.TokensUsed = int(resp.Usage.TotalTokens)
	return result, nil
}

func userMessage(prompt string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(prompt),
				},
			},
		},
	}
}
