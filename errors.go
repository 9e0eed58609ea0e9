package toolbridge

import (
	"errors"
	"fmt"
)

var (
	ErrNoProvider      = errors.New("toolbridge: completion provider is required")
	ErrUnknownFunction = errors.New("toolbridge: no tool schema exposes the requested function")
	ErrUnknownRoute    = errors.New("toolbridge: no route is mapped to the requested function")
)

// SchemaError reports a tool whose schema document could not be compiled.
// It is recoverable at aggregation time: the tool is dropped from the
// catalogue and the remaining tools stay available.
type SchemaError struct {
	Tool string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("toolbridge: compiling schema for tool %q: %v", e.Tool, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ArgumentError reports model-issued arguments that are not valid JSON.
type ArgumentError struct {
	CallID string
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("toolbridge: parsing arguments for call %s: %v", e.CallID, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// MissingParameterError reports a path placeholder with no matching value in
// the call's parameters.
type MissingParameterError struct {
	CallID string
	Param  string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("toolbridge: call %s is missing required parameter %q", e.CallID, e.Param)
}

// CompletionError wraps a completion service failure. Status carries the
// downstream HTTP status when the service reported one; 0 otherwise.
type CompletionError struct {
	Status int
	Err    error
}

func (e *CompletionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("toolbridge: completion service failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("toolbridge: completion service failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }
