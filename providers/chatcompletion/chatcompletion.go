// Package chatcompletion adapts the OpenAI Chat Completions API to the
// toolbridge completion service boundary.
package chatcompletion

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/diepdo1810/toolbridge"
	"github.com/diepdo1810/toolbridge/providers/base"
)

// Config configures the provider.
type Config struct {
	base.Config
}

// Option is a functional option for this provider.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithTemperature sets the temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = &t }
}

// WithMaxOutputTokens sets the max output tokens.
func WithMaxOutputTokens(n int) Option {
	return func(c *Config) { c.MaxOutputTokens = &n }
}

// WithDebug enables JSONL debug logging to the specified file path.
func WithDebug(path string) Option {
	return func(c *Config) { c.DebugPath = path }
}

// WithExtraHeader adds a custom header to upstream requests.
func WithExtraHeader(key, value string) Option {
	return func(c *Config) {
		if c.ExtraHeaders == nil {
			c.ExtraHeaders = make(map[string]string)
		}
		c.ExtraHeaders[key] = value
	}
}

// New creates a CompletionProvider using the OpenAI Chat Completions API.
// It reads OPENAI_API_KEY and OPENAI_BASE_URL from the environment when not
// explicitly set. defaultModel is used for requests that do not name one.
func New(defaultModel string, opts ...Option) toolbridge.CompletionProvider {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.DefaultModel = defaultModel
	base.ApplyEnvDefaults(&cfg.Config, "OPENAI_API_KEY", "OPENAI_BASE_URL")

	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	for k, v := range cfg.ExtraHeaders {
		clientOpts = append(clientOpts, option.WithHeader(k, v))
	}
	client := openai.NewClient(clientOpts...)
	return &provider{cfg: cfg, client: client}
}

type provider struct {
	cfg    Config
	client openai.Client
}

func (p *provider) Complete(ctx context.Context, req toolbridge.CompletionRequest) (toolbridge.CompletionResult, error) {
	params := p.params(req)

	debug, err := base.NewDebugLogger(p.cfg.DebugPath)
	if err != nil {
		return toolbridge.CompletionResult{}, err
	}
	defer debug.Close()
	p.logRequest(debug, params)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return toolbridge.CompletionResult{}, wrapErr(err)
	}
	if len(resp.Choices) == 0 {
		return toolbridge.CompletionResult{}, wrapErr(errors.New("completion returned no choices"))
	}

	choice := resp.Choices[0]
	msg := toolbridge.Message{
		Role:    toolbridge.RoleAssistant,
		Content: choice.Message.Content,
	}
	for _, tc := range choice.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, toolbridge.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return toolbridge.CompletionResult{Message: msg, ToolCalls: msg.ToolCalls}, nil
}

func (p *provider) CompleteStream(ctx context.Context, req toolbridge.CompletionRequest) (toolbridge.TokenStream, error) {
	params := p.params(req)

	debug, err := base.NewDebugLogger(p.cfg.DebugPath)
	if err != nil {
		return nil, err
	}
	p.logRequest(debug, params)

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	return &tokenStream{stream: stream, debug: debug, model: string(params.Model)}, nil
}

func (p *provider) params(req toolbridge.CompletionRequest) openai.ChatCompletionNewParams {
	params := BuildParams(req)
	if params.Model == "" {
		params.Model = p.cfg.DefaultModel
	}
	if p.cfg.Temperature != nil {
		params.Temperature = openai.Float(*p.cfg.Temperature)
	}
	if p.cfg.MaxOutputTokens != nil {
		params.MaxTokens = openai.Int(int64(*p.cfg.MaxOutputTokens))
	}
	return params
}

func (p *provider) logRequest(debug *base.DebugLogger, params openai.ChatCompletionNewParams) {
	if debug == nil {
		return
	}
	rec := base.NewDebugRecord("request", params)
	rec.Provider = "chatcompletion"
	rec.Model = string(params.Model)
	_ = debug.Log(rec)
}

func wrapErr(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &toolbridge.CompletionError{Status: apierr.StatusCode, Err: err}
	}
	return &toolbridge.CompletionError{Err: err}
}
