package hydrate

import (
	"encoding/json"
	"fmt"
	"math"
)

// Field names used by the server's paginated envelope.
const (
	FieldContent    = "content"
	FieldNumber     = "number"
	FieldTotalPages = "totalPages"
)

// Page is the canonical shape of one paginated read.
type Page[T any] struct {
	Items      []T
	Page       int
	TotalPages int
}

// NormalizePage converts a raw paginated payload into a Page. It never fails:
// a missing or non-list content field yields no items, and list elements that
// cannot be decoded are dropped and reported through the returned errors.
// Paging fields that are missing, negative, non-integral or too large for an
// int yield 0.
func NormalizePage[T any](collection string, payload map[string]any, decoder *Decoder[T]) (Page[T], []error) {
	if decoder == nil {
		decoder = NewDecoder[T]()
	}
	page := Page[T]{
		Items:      []T{},
		Page:       intField(payload[FieldNumber]),
		TotalPages: intField(payload[FieldTotalPages]),
	}

	content, ok := payload[FieldContent].([]any)
	if !ok {
		return page, nil
	}

	var dropped []error
	items := make([]T, 0, len(content))
	for i, raw := range content {
		ctx := Context{Collection: collection, Index: i}
		entry, ok := raw.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Errorf("hydrate: %s: expected object, got %T", ctx, raw))
			continue
		}
		item, err := decoder.Decode(ctx, entry)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		items = append(items, item)
	}
	page.Items = items
	return page, dropped
}

func intField(raw any) int {
	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		// 2^63 is the first float64 outside the int64 range.
		if math.IsNaN(v) || v != math.Trunc(v) || v < 0 || v >= math.Exp2(63) {
			return 0
		}
		n = int64(v)
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 || uint64(n) > uint64(math.MaxInt) {
		return 0
	}
	return int(n)
}
