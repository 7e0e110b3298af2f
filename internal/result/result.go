// Package result provides the tagged success/failure shape returned by
// actions that never raise.
package result

import (
	"encoding/json"
	"errors"
)

// Result is either a success carrying data or a failure carrying a message.
type Result[T any] struct {
	ok   bool
	data T
	err  string
}

// Ok wraps data into a success result.
func Ok[T any](data T) Result[T] { return Result[T]{ok: true, data: data} }

// Fail builds a failure result with a human-readable message.
func Fail[T any](msg string) Result[T] {
	if msg == "" {
		msg = "unknown error"
	}
	return Result[T]{err: msg}
}

// Success reports whether the result is the success variant.
func (r Result[T]) Success() bool { return r.ok }

// Data returns the payload; zero value on failure.
func (r Result[T]) Data() T { return r.data }

// Error returns the failure message; empty on success.
func (r Result[T]) Error() string { return r.err }

// Unwrap returns the payload or an error carrying the failure message.
func (r Result[T]) Unwrap() (T, error) {
	if !r.ok {
		var zero T
		return zero, errors.New(r.err)
	}
	return r.data, nil
}

type wire[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MarshalJSON encodes {"success":true,"data":...} or {"success":false,"error":...}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return json.Marshal(wire[T]{Success: false, Error: r.err})
	}
	// data is always present on success, even when it is null
	return json.Marshal(struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}{Success: true, Data: r.data})
}

// UnmarshalJSON decodes the tagged shape.
func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var w wire[T]
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if !w.Success {
		*r = Fail[T](w.Error)
		return nil
	}
	var data T
	if w.Data != nil {
		data = *w.Data
	}
	*r = Ok(data)
	return nil
}
