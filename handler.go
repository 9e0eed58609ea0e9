package toolbridge

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Handler is the inbound HTTP surface. One POST request carries the chat
// settings, the conversation and the selected tools; the response is either
// a JSON-encoded direct answer, a chunked token relay, or an error body of
// the form {"message": ...}.
type Handler struct {
	orchestrator *Orchestrator
	log          *slog.Logger
}

// NewHandler wraps an orchestrator as an http.Handler.
func NewHandler(o *Orchestrator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{orchestrator: o, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	requestID := uuid.NewString()
	outcome, err := h.orchestrator.Run(r.Context(), requestID, req)
	if err != nil {
		h.log.Error("turn failed", "request_id", requestID, "error", err)
		writeMessage(w, statusFor(err), err.Error())
		return
	}

	if outcome.Stream != nil {
		h.relay(w, r, requestID, outcome.Stream)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outcome.Text); err != nil {
		h.log.Error("writing direct answer failed", "request_id", requestID, "error", err)
	}
}

// relay forwards the second-turn token stream to the caller unmodified,
// flushing after every token. Once the first token is written the status is
// committed; later failures can only be logged.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, requestID string, stream TokenStream) {
	defer stream.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)

	for {
		token, err := stream.Next(r.Context())
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.log.Error("stream relay aborted", "request_id", requestID, "error", err)
			}
			return
		}
		if _, err := io.WriteString(w, token); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// statusFor picks the response status: the downstream status when the error
// carries one, 500 otherwise.
func statusFor(err error) int {
	var ce *CompletionError
	if errors.As(err, &ce) && ce.Status != 0 {
		return ce.Status
	}
	return http.StatusInternalServerError
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
