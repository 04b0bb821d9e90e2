package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies where a payload came from: the logical collection it was
// listed under and its position in the server's content list (-1 when the
// payload is not part of a list).
type Context struct {
	Collection string
	Index      int
}

func (c Context) String() string {
	if c.Index < 0 {
		return c.Collection
	}
	return fmt.Sprintf("%s[%d]", c.Collection, c.Index)
}

// PreHook lets callers rename or reshape raw fields before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers fill defaults or reject an entity after decoding.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts loosely typed server payloads into entities.
type Decoder[T any] struct {
	preHooks  []PreHook
	postHooks []PostHook[T]
	strict    bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.preHooks = append(d.preHooks, hook)
		}
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.postHooks = append(d.postHooks, hook)
		}
	}
}

// WithStrictFields rejects payloads carrying fields T does not declare.
func WithStrictFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strict = true
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T. The caller's map is never modified; hooks
// operate on a private copy.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, fmt.Errorf("hydrate: %s: payload is nil", ctx)
	}

	buffer, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("hydrate: %s: encode payload: %w", ctx, err)
	}

	if len(d.preHooks) > 0 {
		var current map[string]any
		if err := json.Unmarshal(buffer, &current); err != nil {
			return zero, fmt.Errorf("hydrate: %s: clone payload: %w", ctx, err)
		}
		for _, hook := range d.preHooks {
			next, err := hook(ctx, current)
			if err != nil {
				return zero, fmt.Errorf("hydrate: %s: pre-hook: %w", ctx, err)
			}
			if next != nil {
				current = next
			}
		}
		if buffer, err = json.Marshal(current); err != nil {
			return zero, fmt.Errorf("hydrate: %s: encode payload: %w", ctx, err)
		}
	}

	var result T
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if d.strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: %s: decode: %w", ctx, err)
	}

	for _, hook := range d.postHooks {
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: %s: post-hook: %w", ctx, err)
		}
	}

	return result, nil
}
