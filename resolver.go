package toolbridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
)

// RequestPlan is a fully resolved HTTP request for one tool call.
type RequestPlan struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

type callArguments struct {
	Parameters  map[string]any  `json:"parameters"`
	RequestBody json.RawMessage `json:"requestBody"`
}

var placeholderPattern = regexp.MustCompile(`:(\w+)`)

// Resolve maps one model-issued call onto a concrete HTTP request. The
// owning tool is the first SchemaDetail, in aggregation order, whose route
// map exposes the function name.
func (c Catalogue) Resolve(call ToolCallRequest) (RequestPlan, error) {
	var args callArguments
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return RequestPlan{}, &ArgumentError{CallID: call.ID, Err: err}
	}

	detail, ok := c.detailFor(call.Name)
	if !ok {
		return RequestPlan{}, fmt.Errorf("%w: %s", ErrUnknownFunction, call.Name)
	}
	template, ok := detail.pathFor(call.Name)
	if !ok {
		return RequestPlan{}, fmt.Errorf("%w: %s", ErrUnknownRoute, call.Name)
	}

	var substErr error
	path := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[1:]
		value, ok := args.Parameters[name]
		if !ok {
			substErr = &MissingParameterError{CallID: call.ID, Param: name}
			return token
		}
		return url.PathEscape(fmt.Sprint(value))
	})
	if substErr != nil {
		return RequestPlan{}, substErr
	}

	if detail.RequestInBody {
		headers := map[string]string{"Content-Type": "application/json"}
		for k, v := range detail.Headers {
			headers[k] = v
		}
		body := []byte(args.RequestBody)
		if len(body) == 0 || string(body) == "null" {
			// Some schemas put everything under parameters; fall back to
			// the whole argument object.
			body = []byte(call.Arguments)
		}
		return RequestPlan{
			Method:  http.MethodPost,
			URL:     detail.ServerURL + path,
			Headers: headers,
			Body:    body,
		}, nil
	}

	query := url.Values{}
	for k, v := range args.Parameters {
		query.Set(k, fmt.Sprint(v))
	}
	full := detail.ServerURL + path
	if encoded := query.Encode(); encoded != "" {
		full += "?" + encoded
	}
	return RequestPlan{
		Method:  http.MethodGet,
		URL:     full,
		Headers: detail.Headers,
	}, nil
}

func (c Catalogue) detailFor(function string) (SchemaDetail, bool) {
	for _, d := range c.Details {
		for _, fn := range d.RouteMap {
			if fn == function {
				return d, true
			}
		}
	}
	return SchemaDetail{}, false
}

func (d SchemaDetail) pathFor(function string) (string, bool) {
	for path, fn := range d.RouteMap {
		if fn == function {
			return path, true
		}
	}
	return "", false
}
