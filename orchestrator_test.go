package toolbridge_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diepdo1810/toolbridge"
	"github.com/diepdo1810/toolbridge/internal/testutil"
)

func drain(t *testing.T, stream toolbridge.TokenStream) string {
	t.Helper()
	defer stream.Close()
	var out string
	for {
		token, err := stream.Next(context.Background())
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out += token
	}
}

func TestRun_DirectAnswer(t *testing.T) {
	provider := &testutil.ScriptedProvider{Text: "Paris is the capital of France."}
	orch := &toolbridge.Orchestrator{Provider: provider}

	out, err := orch.Run(context.Background(), "req-1", toolbridge.ChatRequest{
		ChatSettings: toolbridge.ChatSettings{Model: "gpt-4o"},
		Messages: []toolbridge.Message{
			{Role: toolbridge.RoleUser, Content: "What is the capital of France?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Paris is the capital of France.", out.Text)
	assert.Nil(t, out.Stream)

	calls := provider.CompleteCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gpt-4o", calls[0].Model)
	assert.Empty(t, calls[0].Tools, "no selected tools means no tools sent upstream")
	assert.Empty(t, provider.StreamCalls())
}

func TestRun_ToolRound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"tempF": 72}`)
	}))
	defer srv.Close()

	assistantTurn := toolbridge.Message{Role: toolbridge.RoleAssistant}
	toolCalls := []toolbridge.ToolCallRequest{
		{ID: "call_a", Name: "getWeather", Arguments: `{"parameters": {"city": "Boston"}}`},
	}
	provider := &testutil.ScriptedProvider{
		CompleteFunc: func(_ context.Context, req toolbridge.CompletionRequest) (toolbridge.CompletionResult, error) {
			require.Len(t, req.Tools, 1)
			assert.Equal(t, "getWeather", req.Tools[0].Name)
			return toolbridge.CompletionResult{Message: assistantTurn, ToolCalls: toolCalls}, nil
		},
		StreamTokens: []string{"It is ", "72F ", "in Boston."},
	}
	orch := &toolbridge.Orchestrator{
		Provider: provider,
		Executor: &toolbridge.Executor{Client: srv.Client()},
	}

	userTurn := toolbridge.Message{Role: toolbridge.RoleUser, Content: "Weather in Boston?"}
	out, err := orch.Run(context.Background(), "req-1", toolbridge.ChatRequest{
		ChatSettings:  toolbridge.ChatSettings{Model: "gpt-4o"},
		Messages:      []toolbridge.Message{userTurn},
		SelectedTools: []toolbridge.ToolDescriptor{{Name: "weather", Schema: testutil.WeatherSchema(srv.URL)}},
	})
	require.NoError(t, err)

	assert.Empty(t, out.Text)
	require.NotNil(t, out.Stream)
	assert.Equal(t, "It is 72F in Boston.", drain(t, out.Stream))

	streamCalls := provider.StreamCalls()
	require.Len(t, streamCalls, 1)
	followUp := streamCalls[0]
	assert.Empty(t, followUp.Tools, "the follow-up completion must not offer tools again")
	require.Len(t, followUp.Messages, 3)
	assert.Equal(t, userTurn, followUp.Messages[0])
	assert.Equal(t, assistantTurn, followUp.Messages[1])
	assert.Equal(t, toolbridge.Message{
		Role:       toolbridge.RoleTool,
		ToolCallID: "call_a",
		Name:       "getWeather",
		Content:    `{"tempF":72}`,
	}, followUp.Messages[2])
}

func TestRun_NoProvider(t *testing.T) {
	orch := &toolbridge.Orchestrator{}
	_, err := orch.Run(context.Background(), "req-1", toolbridge.ChatRequest{})
	assert.ErrorIs(t, err, toolbridge.ErrNoProvider)
}

func TestRun_CompletionErrorPassthrough(t *testing.T) {
	wantErr := &toolbridge.CompletionError{Status: 502, Err: fmt.Errorf("upstream down")}
	provider := &testutil.ScriptedProvider{
		CompleteFunc: func(context.Context, toolbridge.CompletionRequest) (toolbridge.CompletionResult, error) {
			return toolbridge.CompletionResult{}, wantErr
		},
	}
	orch := &toolbridge.Orchestrator{Provider: provider}

	_, err := orch.Run(context.Background(), "req-1", toolbridge.ChatRequest{})
	var compErr *toolbridge.CompletionError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, 502, compErr.Status)
}

func TestRun_ToolFailureAborts(t *testing.T) {
	provider := &testutil.ScriptedProvider{
		CompleteFunc: func(context.Context, toolbridge.CompletionRequest) (toolbridge.CompletionResult, error) {
			return toolbridge.CompletionResult{
				Message: toolbridge.Message{Role: toolbridge.RoleAssistant},
				ToolCalls: []toolbridge.ToolCallRequest{
					{ID: "call_a", Name: "vanish", Arguments: `{}`},
				},
			}, nil
		},
	}
	orch := &toolbridge.Orchestrator{Provider: provider}

	_, err := orch.Run(context.Background(), "req-1", toolbridge.ChatRequest{})
	assert.ErrorIs(t, err, toolbridge.ErrUnknownFunction)
	assert.Empty(t, provider.StreamCalls())
}
