// Package anthropic adapts the Anthropic Messages API to the toolbridge
// completion service boundary.
package anthropic

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/diepdo1810/toolbridge"
	"github.com/diepdo1810/toolbridge/providers/base"
)

const defaultMaxTokens = 4096

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

// New creates a CompletionProvider using the Anthropic Messages API.
// The SDK reads ANTHROPIC_API_KEY from the environment; explicit options
// override it. defaultModel is used for requests that do not name one.
func New(defaultModel string, opts ...Option) toolbridge.CompletionProvider {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.DefaultModel = defaultModel

	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(clientOpts...)
	return &provider{cfg: cfg, client: client}
}

type provider struct {
	cfg    Config
	client anthropic.Client
}

func (p *provider) Complete(ctx context.Context, req toolbridge.CompletionRequest) (toolbridge.CompletionResult, error) {
	params := p.params(req)

	debug, err := base.NewDebugLogger(p.cfg.DebugPath)
	if err != nil {
		return toolbridge.CompletionResult{}, err
	}
	defer debug.Close()
	logRequest(debug, string(params.Model), params)

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return toolbridge.CompletionResult{}, wrapErr(err)
	}

	msg := toolbridge.Message{Role: toolbridge.RoleAssistant}
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			msg.Content += b.Text
		case anthropic.ToolUseBlock:
			msg.ToolCalls = append(msg.ToolCalls, toolbridge.ToolCallRequest{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: string(b.Input),
			})
		}
	}
	return toolbridge.CompletionResult{Message: msg, ToolCalls: msg.ToolCalls}, nil
}

func (p *provider) CompleteStream(ctx context.Context, req toolbridge.CompletionRequest) (toolbridge.TokenStream, error) {
	params := p.params(req)

	debug, err := base.NewDebugLogger(p.cfg.DebugPath)
	if err != nil {
		return nil, err
	}
	logRequest(debug, string(params.Model), params)

	stream := p.client.Messages.NewStreaming(ctx, params)
	return &tokenStream{stream: stream, debug: debug, model: string(params.Model)}, nil
}

func (p *provider) params(req toolbridge.CompletionRequest) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = p.cfg.DefaultModel
	}
	maxTokens := defaultMaxTokens
	if p.cfg.MaxOutputTokens != nil {
		maxTokens = *p.cfg.MaxOutputTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
	}
	if p.cfg.Temperature != nil {
		params.Temperature = anthropic.Float(*p.cfg.Temperature)
	}

	params.System, params.Messages = convertMessages(req.Messages)
	params.Tools = convertTools(req.Tools)
	return params
}

func logRequest(debug *base.DebugLogger, model string, params anthropic.MessageNewParams) {
	if debug == nil {
		return
	}
	rec := base.NewDebugRecord("request", params)
	rec.Provider = "anthropic"
	rec.Model = model
	_ = debug.Log(rec)
}

func wrapErr(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &toolbridge.CompletionError{Status: apierr.StatusCode, Err: err}
	}
	return &toolbridge.CompletionError{Err: err}
}
