// Package respond implements the parse-or-fallback contract for generated
// clients: a response body is decoded into its expected type when it fits,
// and handed back raw with a diagnostic when it does not. Decoding never
// panics and never discards the payload.
package respond

import (
	"encoding/json"
	"fmt"
)

// Diagnostic describes why a payload could not be decoded into its expected
// type.
type Diagnostic struct {
	Expected string // type the caller asked for
	Reason   string
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("payload did not decode as %s: %s", d.Expected, d.Reason)
}

// Result carries either a decoded value or the untouched raw payload. Raw is
// always set; Value is nil iff decoding failed, in which case Diagnostic
// explains the mismatch.
type Result[T any] struct {
	Value      *T
	Raw        json.RawMessage
	Diagnostic *Diagnostic
}

// Ok reports whether the payload decoded into the expected type.
func (r Result[T]) Ok() bool { return r.Value != nil }

// Must returns the decoded value or panics with the diagnostic. For callers
// that have already checked Ok or accept the panic on contract violation.
func (r Result[T]) Must() T {
	if r.Value == nil {
		panic(r.Diagnostic.String())
	}
	return *r.Value
}

// Decode attempts to unmarshal body into T. On any unmarshal error the raw
// body is preserved and the error is captured as a diagnostic; the caller
// decides whether a fallback is acceptable.
func Decode[T any](body []byte) Result[T] {
	raw := json.RawMessage(append([]byte(nil), body...))
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		var zero T
		return Result[T]{
			Raw: raw,
			Diagnostic: &Diagnostic{
				Expected: fmt.Sprintf("%T", zero),
				Reason:   err.Error(),
			},
		}
	}
	return Result[T]{Value: &v, Raw: raw}
}
