// Package toolbridge compiles externally-described HTTP APIs into a
// model-callable function catalogue, executes the tool calls a completion
// service requests, and finalizes the conversation with a streamed answer.
package toolbridge

import (
	"context"
	"log/slog"
)

// ChatSettings carries the caller-selected model.
type ChatSettings struct {
	Model string `json:"model"`
}

// ChatRequest is the inbound payload of one orchestrated turn.
type ChatRequest struct {
	ChatSettings  ChatSettings     `json:"chatSettings"`
	Messages      []Message        `json:"messages"`
	SelectedTools []ToolDescriptor `json:"selectedTools"`
}

// Outcome is the terminal result of one orchestrated turn: either a direct
// assistant answer (no tool calls were issued) or the token stream of the
// follow-up completion. Exactly one field is set.
type Outcome struct {
	Text   string
	Stream TokenStream
}

// Orchestrator drives one model turn, executes any requested tool calls and
// finalizes the response with a second, streamed completion.
type Orchestrator struct {
	Provider CompletionProvider
	Executor *Executor
	Log      *slog.Logger
}

// Run performs the whole single-turn flow. All catalogue and route state is
// scoped to this call and discarded when it returns.
func (o *Orchestrator) Run(ctx context.Context, requestID string, req ChatRequest) (Outcome, error) {
	if o.Provider == nil {
		return Outcome{}, ErrNoProvider
	}
	log := o.Log
	if log == nil {
		log = slog.Default()
	}

	cat := BuildCatalogue(req.SelectedTools, log)
	log.Debug("catalogue built",
		"request_id", requestID, "functions", len(cat.Functions), "tools", len(cat.Details))

	first, err := o.Provider.Complete(ctx, CompletionRequest{
		Model:    req.ChatSettings.Model,
		Messages: req.Messages,
		Tools:    cat.Functions,
	})
	if err != nil {
		return Outcome{}, err
	}

	if len(first.ToolCalls) == 0 {
		return Outcome{Text: first.Message.Content}, nil
	}

	// The assistant turn is appended verbatim, raw tool calls included, so
	// call identifiers stay correlated with the results that follow.
	conversation := append(req.Messages, first.Message)

	executor := o.Executor
	if executor == nil {
		executor = &Executor{Log: log}
	}
	toolMsgs, err := executor.ExecuteCalls(ctx, requestID, cat, first.ToolCalls)
	if err != nil {
		return Outcome{}, err
	}
	conversation = append(conversation, toolMsgs...)

	stream, err := o.Provider.CompleteStream(ctx, CompletionRequest{
		Model:    req.ChatSettings.Model,
		Messages: conversation,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Stream: stream}, nil
}
