package toolbridge

import "context"

// CompletionRequest is the provider-agnostic completion input.
type CompletionRequest struct {
	Model    string
	Messages []Message
	Tools    []FunctionDef
}

// CompletionResult is one blocking completion turn. Message is the assistant
// turn exactly as it should be appended to the conversation; ToolCalls
// mirror Message.ToolCalls for convenience.
type CompletionResult struct {
	Message   Message
	ToolCalls []ToolCallRequest
}

// TokenStream yields the tokens of a streaming completion.
// Next returns io.EOF after the final token.
type TokenStream interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// CompletionProvider is the completion service boundary. Implementations
// must omit the tool catalogue from the upstream request entirely when
// Tools is empty; some backends reject an empty list.
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
	CompleteStream(ctx context.Context, req CompletionRequest) (TokenStream, error)
}
