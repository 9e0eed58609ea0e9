package toolbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/sjson"
)

// Recorder receives one record per executed tool call. A nil Recorder on the
// Executor disables recording entirely; the audit package provides a
// SQLite-backed implementation.
type Recorder interface {
	RecordCall(ctx context.Context, rec CallRecord) error
}

// CallRecord describes one executed tool call.
type CallRecord struct {
	RequestID string
	CallID    string
	Function  string
	Method    string
	URL       string
	Status    int
	IsError   bool
	Started   time.Time
	Duration  time.Duration
}

// Executor turns resolved tool calls into HTTP requests and folds the
// outcomes back into conversation messages. It retains no state past one
// request.
type Executor struct {
	Client   *http.Client
	Log      *slog.Logger
	Recorder Recorder
}

// defaultClient bounds how long a single tool call may wait on the
// downstream API.
var defaultClient = &http.Client{Timeout: 60 * time.Second}

// ExecuteCalls runs every call sequentially, in the order the model issued
// them, and returns one tool-role message per call in that same order. A
// non-2xx response becomes an {"error": <status text>} payload the model can
// react to; resolution failures and transport failures abort the whole batch.
func (e *Executor) ExecuteCalls(ctx context.Context, requestID string, cat Catalogue, calls []ToolCallRequest) ([]Message, error) {
	client := e.Client
	if client == nil {
		client = defaultClient
	}
	log := e.Log
	if log == nil {
		log = slog.Default()
	}

	msgs := make([]Message, 0, len(calls))
	for _, call := range calls {
		plan, err := cat.Resolve(call)
		if err != nil {
			return nil, err
		}

		started := time.Now()
		payload, status, err := execute(ctx, client, plan)
		if err != nil {
			return nil, fmt.Errorf("toolbridge: executing %s %s for call %s: %w", plan.Method, plan.URL, call.ID, err)
		}
		log.Info("tool call executed",
			"request_id", requestID, "call_id", call.ID, "function", call.Name,
			"method", plan.Method, "status", status)

		if e.Recorder != nil {
			rec := CallRecord{
				RequestID: requestID,
				CallID:    call.ID,
				Function:  call.Name,
				Method:    plan.Method,
				URL:       plan.URL,
				Status:    status,
				IsError:   status < 200 || status > 299,
				Started:   started,
				Duration:  time.Since(started),
			}
			if err := e.Recorder.RecordCall(ctx, rec); err != nil {
				log.Warn("recording tool call failed", "call_id", call.ID, "error", err)
			}
		}

		msgs = append(msgs, Message{
			Role:       RoleTool,
			ToolCallID: call.ID,
			Name:       call.Name,
			Content:    string(payload),
		})
	}
	return msgs, nil
}

func execute(ctx context.Context, client *http.Client, plan RequestPlan) ([]byte, int, error) {
	var body io.Reader
	if len(plan.Body) > 0 {
		body = bytes.NewReader(plan.Body)
	}
	req, err := http.NewRequestWithContext(ctx, plan.Method, plan.URL, body)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range plan.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, err := sjson.SetBytes([]byte(`{}`), "error", statusText(resp.StatusCode))
		if err != nil {
			return nil, resp.StatusCode, err
		}
		return payload, resp.StatusCode, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, raw); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("response body is not JSON: %w", err)
	}
	return compacted.Bytes(), resp.StatusCode, nil
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", code)
}
