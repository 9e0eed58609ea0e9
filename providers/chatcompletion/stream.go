package chatcompletion

import (
	"context"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"github.com/diepdo1810/toolbridge/providers/base"
)

// tokenStream reduces a Chat Completions SSE stream to plain text tokens.
type tokenStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	debug  *base.DebugLogger
	model  string
}

func (s *tokenStream) Next(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if !s.stream.Next() {
			if err := s.stream.Err(); err != nil {
				return "", wrapErr(err)
			}
			return "", io.EOF
		}

		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if s.debug != nil {
				rec := base.NewDebugRecord("token", delta)
				rec.Provider = "chatcompletion"
				rec.Model = s.model
				_ = s.debug.Log(rec)
			}
			return delta, nil
		}
	}
}

func (s *tokenStream) Close() error {
	_ = s.debug.Close()
	return s.stream.Close()
}
