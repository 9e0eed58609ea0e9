package toolbridge

import (
	"encoding/json"
	"log/slog"

	"github.com/tidwall/gjson"
)

// ToolDescriptor is one selected tool as configured by the caller. It is
// immutable for the duration of a request. CustomHeaders is the raw value
// supplied by the caller; it may be absent or malformed and is tolerated
// either way.
type ToolDescriptor struct {
	Name          string          `json:"name"`
	BaseURL       string          `json:"base_url"`
	Schema        json.RawMessage `json:"schema"`
	CustomHeaders string          `json:"custom_headers,omitempty"`
}

// SchemaDetail is the per-tool metadata kept for dispatch after compilation.
// RequestInBody is taken from the document's first route and treated as
// representative for the whole document; a document mixing body and query
// operations is not modeled per-operation here.
type SchemaDetail struct {
	Title         string
	Description   string
	ServerURL     string
	Headers       map[string]string
	RouteMap      map[string]string
	RequestInBody bool
}

// Catalogue is the merged result of compiling every selected tool for one
// request. It is request-scoped and discarded once the response is finalized.
type Catalogue struct {
	Functions []FunctionDef
	Details   []SchemaDetail

	// RouteIndex flattens every tool's route map for debugging. Later tools
	// overwrite earlier ones on path collisions; dispatch never reads it and
	// resolves through Details instead.
	RouteIndex map[string]string
}

// BuildCatalogue compiles every selected tool, in caller-supplied order,
// into one aggregate. A tool whose schema fails compilation is logged and
// skipped; the model simply receives no functions for it. Function ordering
// is deterministic: tool order, then document order within a tool.
func BuildCatalogue(tools []ToolDescriptor, log *slog.Logger) Catalogue {
	if log == nil {
		log = slog.Default()
	}
	cat := Catalogue{RouteIndex: map[string]string{}}
	for _, tool := range tools {
		cs, err := CompileSchema(tool.Schema)
		if err != nil {
			log.Warn("skipping tool with uncompilable schema",
				"tool", tool.Name, "error", &SchemaError{Tool: tool.Name, Err: err})
			continue
		}
		detail := SchemaDetail{
			Title:         cs.Title,
			Description:   cs.Description,
			ServerURL:     cs.ServerURL,
			Headers:       parseCustomHeaders(tool.CustomHeaders),
			RouteMap:      make(map[string]string, len(cs.Routes)),
			RequestInBody: cs.Routes[0].RequestInBody,
		}
		if detail.ServerURL == "" {
			detail.ServerURL = tool.BaseURL
		}
		for _, r := range cs.Routes {
			detail.RouteMap[r.Path] = r.OperationID
			if prev, ok := cat.RouteIndex[r.Path]; ok && prev != r.OperationID {
				log.Warn("path template collision across tools",
					"path", r.Path, "kept", r.OperationID, "replaced", prev)
			}
			cat.RouteIndex[r.Path] = r.OperationID
		}
		cat.Functions = append(cat.Functions, cs.Functions...)
		cat.Details = append(cat.Details, detail)
	}
	return cat
}

// parseCustomHeaders decodes a caller-supplied header mapping. Anything that
// is not a JSON object yields no headers, never an error.
func parseCustomHeaders(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return nil
	}
	headers := map[string]string{}
	parsed.ForEach(func(k, v gjson.Result) bool {
		headers[k.String()] = v.String()
		return true
	})
	if len(headers) == 0 {
		return nil
	}
	return headers
}
