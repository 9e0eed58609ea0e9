// Package testutil provides scripted fakes and schema fixtures for
// orchestrator and handler tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/diepdo1810/toolbridge"
)

// ScriptedProvider is a CompletionProvider with canned behavior. It records
// every request it receives so tests can assert on what was sent upstream.
type ScriptedProvider struct {
	// CompleteFunc handles blocking turns. When nil, Complete returns a
	// plain assistant message with Text as content.
	CompleteFunc func(ctx context.Context, req toolbridge.CompletionRequest) (toolbridge.CompletionResult, error)
	Text         string

	// StreamTokens is yielded by CompleteStream; StreamErr, when set, is
	// returned instead of a stream.
	StreamTokens []string
	StreamErr    error

	mu            sync.Mutex
	completeCalls []toolbridge.CompletionRequest
	streamCalls   []toolbridge.CompletionRequest
}

func (p *ScriptedProvider) Complete(ctx context.Context, req toolbridge.CompletionRequest) (toolbridge.CompletionResult, error) {
	p.mu.Lock()
	p.completeCalls = append(p.completeCalls, req)
	p.mu.Unlock()

	if p.CompleteFunc != nil {
		return p.CompleteFunc(ctx, req)
	}
	return toolbridge.CompletionResult{
		Message: toolbridge.Message{Role: toolbridge.RoleAssistant, Content: p.Text},
	}, nil
}

func (p *ScriptedProvider) CompleteStream(ctx context.Context, req toolbridge.CompletionRequest) (toolbridge.TokenStream, error) {
	p.mu.Lock()
	p.streamCalls = append(p.streamCalls, req)
	p.mu.Unlock()

	if p.StreamErr != nil {
		return nil, p.StreamErr
	}
	return &SliceStream{Tokens: p.StreamTokens}, nil
}

// CompleteCalls returns a copy of the blocking requests seen so far.
func (p *ScriptedProvider) CompleteCalls() []toolbridge.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]toolbridge.CompletionRequest(nil), p.completeCalls...)
}

// StreamCalls returns a copy of the streaming requests seen so far.
func (p *ScriptedProvider) StreamCalls() []toolbridge.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]toolbridge.CompletionRequest(nil), p.streamCalls...)
}

// SliceStream yields a fixed token sequence, then io.EOF.
type SliceStream struct {
	Tokens []string
	next   int
	closed bool
}

func (s *SliceStream) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.next >= len(s.Tokens) {
		return "", io.EOF
	}
	token := s.Tokens[s.next]
	s.next++
	return token, nil
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceStream) Closed() bool { return s.closed }

// WeatherSchema returns a query-style schema document with a single GET
// operation on /weather/{city}, served from serverURL.
func WeatherSchema(serverURL string) []byte {
	return []byte(fmt.Sprintf(`{
		"openapi": "3.1.0",
		"info": {
			"title": "Weather",
			"description": "Current conditions by city",
			"server": %q
		},
		"paths": {
			"/weather/{city}": {
				"get": {
					"operationId": "getWeather",
					"description": "Get the current weather for a city",
					"parameters": [
						{
							"name": "city",
							"in": "path",
							"required": true,
							"description": "City name",
							"schema": {"type": "string"}
						}
					]
				}
			}
		}
	}`, serverURL))
}

// OrderSchema returns a body-style schema document with a single POST
// operation on /orders, served from serverURL.
func OrderSchema(serverURL string) []byte {
	return []byte(fmt.Sprintf(`{
		"openapi": "3.1.0",
		"info": {"title": "Orders", "server": %q},
		"paths": {
			"/orders": {
				"post": {
					"operationId": "createOrder",
					"summary": "Create an order",
					"requestBody": {
						"content": {
							"application/json": {
								"schema": {
									"properties": {
										"sku": {"type": "string"},
										"quantity": {"type": "integer"}
									},
									"required": ["sku"]
								}
							}
						}
					}
				}
			}
		}
	}`, serverURL))
}
