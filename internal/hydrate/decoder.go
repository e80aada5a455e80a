package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Context identifies where a payload came from for error messages.
type Context struct {
	Source string
	Scope  string
}

func (c Context) describe() string {
	if c.Scope == "" {
		return fmt.Sprintf("%q", c.Source)
	}
	return fmt.Sprintf("%q (scope %s)", c.Source, c.Scope)
}

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts loosely typed map payloads, such as expression results,
// into a typed value.
type Decoder[T any] struct {
	configureDec []func(*json.Decoder)
}

// WithDisallowUnknownFields rejects payload keys that have no matching field.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// NewDecoder builds a decoder.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for %s", ctx.describe())
	}

	buffer, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal payload for %s: %w", ctx.describe(), err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	for _, configure := range d.configureDec {
		configure(decoder)
	}
	var result T
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %s: %w", ctx.describe(), err)
	}

	return result, nil
}

// Decodable reports whether T can be produced from a map payload: structs
// and pointers to structs.
func Decodable[T any]() bool {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ.Kind() == reflect.Struct
}
