package toolbridge

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FunctionDef is one callable signature exposed to the completion service.
// Parameters is a JSON Schema object; the call shape is nested under a
// "parameters" property and, for body-mode operations, a "requestBody"
// property, so model arguments parse back into those two mappings.
type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

// Route records how one compiled operation maps back onto the source API.
type Route struct {
	Path          string
	Method        string
	OperationID   string
	RequestInBody bool
}

// CompiledSchema is the result of compiling one schema document.
type CompiledSchema struct {
	Title       string
	Description string
	ServerURL   string
	Functions   []FunctionDef
	Routes      []Route
}

// methodKeys are the operation keys recognized under a path entry, in the
// order they are compiled.
var methodKeys = []string{"get", "post", "put", "patch", "delete"}

var bracePattern = regexp.MustCompile(`\{(\w+)\}`)

// CompileSchema turns one OpenAPI-like document into a catalogue of callable
// function definitions plus a route list. The document is interpreted
// loosely: only the shapes compiled here are recognized, and anything else
// fails compilation rather than producing a partial catalogue. Operation IDs
// must be unique within one document.
func CompileSchema(doc []byte) (*CompiledSchema, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("document is not valid JSON")
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, fmt.Errorf("document root is not an object")
	}
	paths := root.Get("paths")
	if !paths.IsObject() {
		return nil, fmt.Errorf("document has no paths object")
	}

	cs := &CompiledSchema{
		Title:       root.Get("info.title").String(),
		Description: root.Get("info.description").String(),
		ServerURL:   root.Get("info.server").String(),
	}
	if cs.ServerURL == "" {
		cs.ServerURL = root.Get("servers.0.url").String()
	}

	seen := map[string]bool{}
	var compileErr error
	paths.ForEach(func(rawPath, operations gjson.Result) bool {
		if !operations.IsObject() {
			compileErr = fmt.Errorf("path %s is not an object", rawPath.String())
			return false
		}
		for _, method := range methodKeys {
			op := operations.Get(method)
			if !op.Exists() {
				continue
			}
			fn, route, err := compileOperation(rawPath.String(), method, op)
			if err != nil {
				compileErr = err
				return false
			}
			if seen[fn.Name] {
				compileErr = fmt.Errorf("duplicate operation id %q", fn.Name)
				return false
			}
			seen[fn.Name] = true
			cs.Functions = append(cs.Functions, fn)
			cs.Routes = append(cs.Routes, route)
		}
		return true
	})
	if compileErr != nil {
		return nil, compileErr
	}
	if len(cs.Routes) == 0 {
		return nil, fmt.Errorf("document declares no operations")
	}
	return cs, nil
}

func compileOperation(rawPath, method string, op gjson.Result) (FunctionDef, Route, error) {
	opID := op.Get("operationId").String()
	if opID == "" {
		return FunctionDef{}, Route{}, fmt.Errorf("operation %s %s has no operationId", strings.ToUpper(method), rawPath)
	}

	requestBody := op.Get("requestBody")
	inBody := requestBody.Exists()

	props := "{}"
	var required []string

	if inBody {
		bodySchema := requestBody.Get("content.application/json.schema")
		if !bodySchema.Exists() {
			return FunctionDef{}, Route{}, fmt.Errorf("operation %q has a requestBody without an application/json schema", opID)
		}
		props, _ = sjson.SetRaw(props, "requestBody", ensureObjectType(bodySchema.Raw))
		required = append(required, "requestBody")
	}

	if params := op.Get("parameters"); params.Exists() {
		if !params.IsArray() {
			return FunctionDef{}, Route{}, fmt.Errorf("operation %q has a non-array parameters entry", opID)
		}
		paramProps := `{"type":"object","properties":{}}`
		var paramRequired []string
		var paramErr error
		params.ForEach(func(_, p gjson.Result) bool {
			name := p.Get("name").String()
			if name == "" {
				paramErr = fmt.Errorf("operation %q has a parameter without a name", opID)
				return false
			}
			schema := p.Get("schema").Raw
			if schema == "" {
				schema = `{"type":"string"}`
			}
			if desc := p.Get("description"); desc.Exists() {
				schema, _ = sjson.Set(schema, "description", desc.String())
			}
			paramProps, _ = sjson.SetRaw(paramProps, "properties."+escapeKey(name), schema)
			if p.Get("required").Bool() {
				paramRequired = append(paramRequired, name)
			}
			return true
		})
		if paramErr != nil {
			return FunctionDef{}, Route{}, paramErr
		}
		if len(paramRequired) > 0 {
			paramProps, _ = sjson.Set(paramProps, "required", paramRequired)
		}
		props, _ = sjson.SetRaw(props, "parameters", paramProps)
		required = append(required, "parameters")
	}

	sig := `{"type":"object"}`
	sig, _ = sjson.SetRaw(sig, "properties", props)
	if len(required) > 0 {
		sig, _ = sjson.Set(sig, "required", required)
	}

	var parameters map[string]any
	if err := json.Unmarshal([]byte(sig), &parameters); err != nil {
		return FunctionDef{}, Route{}, fmt.Errorf("operation %q produced an unusable signature: %w", opID, err)
	}

	description := op.Get("description").String()
	if description == "" {
		description = op.Get("summary").String()
	}

	fn := FunctionDef{
		Name:        opID,
		Description: description,
		Parameters:  parameters,
	}
	route := Route{
		Path:          convertPathTemplate(rawPath),
		Method:        strings.ToUpper(method),
		OperationID:   opID,
		RequestInBody: inBody,
	}
	return fn, route, nil
}

// convertPathTemplate rewrites brace placeholders to colon form, one token
// at a time: /users/{id} becomes /users/:id.
func convertPathTemplate(path string) string {
	return bracePattern.ReplaceAllString(path, ":$1")
}

// ensureObjectType injects "type": "object" into schemas that omit it, so
// every signature handed to the model is a well-formed object schema.
func ensureObjectType(raw string) string {
	if gjson.Get(raw, "type").Exists() {
		return raw
	}
	out, err := sjson.Set(raw, "type", "object")
	if err != nil {
		return raw
	}
	return out
}

// escapeKey protects dots and wildcards in property names used as sjson paths.
func escapeKey(key string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(key)
}
