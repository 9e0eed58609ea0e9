package testutil

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/diepdo1810/toolbridge"
)

const DefaultTimeout = 60 * time.Second

// SkipIfNoEnv skips the test if the environment variable is not set.
func SkipIfNoEnv(t *testing.T, envVar string) {
	t.Helper()
	if os.Getenv(envVar) == "" {
		t.Skipf("skipping: %s not set", envVar)
	}
}

// LiveConfig holds configuration for a live provider test run.
type LiveConfig struct {
	Provider toolbridge.CompletionProvider
	Model    string
	Timeout  time.Duration
}

// DefaultLiveConfig returns a LiveConfig with the default timeout.
func DefaultLiveConfig(provider toolbridge.CompletionProvider, model string) LiveConfig {
	return LiveConfig{Provider: provider, Model: model, Timeout: DefaultTimeout}
}

// RunLiveCompletion exercises a blocking completion with no tools.
func RunLiveCompletion(t *testing.T, cfg LiveConfig) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	result, err := cfg.Provider.Complete(ctx, toolbridge.CompletionRequest{
		Model: cfg.Model,
		Messages: []toolbridge.Message{
			{Role: toolbridge.RoleUser, Content: "Write a haiku"},
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if result.Message.Content == "" {
		t.Error("expected non-empty text response")
	}
	if len(result.ToolCalls) != 0 {
		t.Errorf("expected no tool calls, got %d", len(result.ToolCalls))
	}
	t.Logf("response: %q", result.Message.Content)
}

// RunLiveStreaming exercises the streaming path and drains it to completion.
func RunLiveStreaming(t *testing.T, cfg LiveConfig) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	stream, err := cfg.Provider.CompleteStream(ctx, toolbridge.CompletionRequest{
		Model: cfg.Model,
		Messages: []toolbridge.Message{
			{Role: toolbridge.RoleUser, Content: "Count from one to five."},
		},
	})
	if err != nil {
		t.Fatalf("CompleteStream failed: %v", err)
	}
	defer stream.Close()

	var response strings.Builder
	for {
		token, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("stream.Next failed: %v", err)
		}
		response.WriteString(token)
	}
	if response.Len() == 0 {
		t.Error("expected non-empty streamed response")
	}
	t.Logf("response: %s", response.String())
}

// RunLiveToolCalling exercises the first turn of a tool round: the model
// should answer with a call to the offered function rather than text.
func RunLiveToolCalling(t *testing.T, cfg LiveConfig) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	result, err := cfg.Provider.Complete(ctx, toolbridge.CompletionRequest{
		Model: cfg.Model,
		Messages: []toolbridge.Message{
			{Role: toolbridge.RoleSystem, Content: "Use the getWeather tool when asked about weather."},
			{Role: toolbridge.RoleUser, Content: "What is the weather in Boston right now?"},
		},
		Tools: []toolbridge.FunctionDef{
			{
				Name:        "getWeather",
				Description: "Get the current weather for a city",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"parameters": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"city": map[string]any{"type": "string", "description": "City name"},
							},
							"required": []string{"city"},
						},
					},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if len(result.ToolCalls) == 0 {
		t.Fatal("expected at least one tool call")
	}
	call := result.ToolCalls[0]
	if call.Name != "getWeather" {
		t.Errorf("expected tool name %q, got %q", "getWeather", call.Name)
	}
	if call.ID == "" {
		t.Error("expected a call id")
	}
	t.Logf("tool calls: %d, first call: %s(%s)", len(result.ToolCalls), call.Name, call.Arguments)
}
