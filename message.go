package toolbridge

// Role values carried by conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in the running transcript. The conversation is an
// ordered, append-only sequence for the duration of one request; tool-produced
// entries carry the originating call identifier and function name so the
// completion service can correlate results with the calls it issued.
type Message struct {
	Role       string            `json:"role"`
	Content    string            `json:"content"`
	Name       string            `json:"name,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCallRequest `json:"tool_calls,omitempty"`
}

// ToolCallRequest is one invocation requested by the model. Arguments is a
// JSON-encoded string that must parse to an object with a "parameters"
// mapping and, optionally, a "requestBody".
type ToolCallRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}
