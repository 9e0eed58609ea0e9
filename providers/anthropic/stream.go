package anthropic

import (
	"context"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/diepdo1810/toolbridge/providers/base"
)

// tokenStream reduces a Messages API event stream to plain text tokens.
type tokenStream struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
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

		event := s.stream.Current()
		deltaEvent, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		textDelta, ok := deltaEvent.Delta.AsAny().(anthropic.TextDelta)
		if !ok || textDelta.Text == "" {
			continue
		}
		if s.debug != nil {
			rec := base.NewDebugRecord("token", textDelta.Text)
			rec.Provider = "anthropic"
			rec.Model = s.model
			_ = s.debug.Log(rec)
		}
		return textDelta.Text, nil
	}
}

func (s *tokenStream) Close() error {
	_ = s.debug.Close()
	return s.stream.Close()
}
