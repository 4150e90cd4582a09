package index

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Document is a raw retrieved document: attribute name to either a single value
// or an ordered []any of values.
type Document map[string]any

// Has reports whether the attribute is present with at least one value.
func (d Document) Has(name string) bool {
	return len(d.All(name)) > 0
}

// First returns the first value stored under name.
func (d Document) First(name string) (any, bool) {
	vs := d.All(name)
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

// All returns every value stored under name in stored order. Nil if absent.
func (d Document) All(name string) []any {
	v, ok := d[name]
	if !ok || v == nil {
		return nil
	}
	switch vs := v.(type) {
	case []any:
		return vs
	case []string:
		out := make([]any, len(vs))
		for i, s := range vs {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

// Project returns a copy of d restricted to the given attributes.
// An empty list returns d unchanged.
func (d Document) Project(fields []string) Document {
	if len(fields) == 0 {
		return d
	}
	out := make(Document, len(fields))
	for _, f := range fields {
		if v, ok := d[f]; ok {
			out[f] = v
		}
	}
	return out
}

// FormatValue renders a scalar attribute value the way group keys and join keys
// are compared: integers without exponent, times in RFC 3339 UTC.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
