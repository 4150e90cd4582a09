package rigel

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/rigel/index"
)

// ValueType describes the Go type a Field reads stored values into.
type ValueType int

const (
	// TypeString reads string values.
	TypeString ValueType = iota
	// TypeInt reads integers into int.
	TypeInt
	// TypeInt64 reads integers into int64.
	TypeInt64
	// TypeFloat reads numbers into float64.
	TypeFloat
	// TypeBool reads booleans.
	TypeBool
	// TypeTime reads RFC 3339 timestamps or epoch milliseconds.
	TypeTime
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeInt64:
		return "int64"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	default:
		return "unknown"
	}
}

// Kind is how the attribute is indexed. Only dialects with typed field
// syntax (RediSearch) look at it.
type Kind int

const (
	// KindTag is an exact-match attribute.
	KindTag Kind = iota
	// KindNumeric is a range-queryable number.
	KindNumeric
	// KindText is a tokenized full-text attribute.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Source is the data a Field reads from.
type Source struct {
	Document index.Document
}

// FieldRef is the untyped view of a Field, used where fields of different
// value types are mixed: affected-field sets, grouping and joins.
type FieldRef interface {
	Name() string
	Type() ValueType
	Kind() Kind
	literal(raw any) (any, error)
}

// Field is a typed accessor bound to one attribute name.
// Fields are stateless and may be shared across schemas and goroutines.
type Field[T any] struct {
	name   string
	typ    ValueType
	kind   Kind
	decode func(raw any) (T, bool)
}

var _ FieldRef = (*Field[string])(nil)

func newField[T any](name string, typ ValueType, kind Kind, decode func(any) (T, bool)) *Field[T] {
	if strings.TrimSpace(name) == "" {
		panic("rigel: field name is required")
	}
	return &Field[T]{name: name, typ: typ, kind: kind, decode: decode}
}

// String declares a string attribute indexed for exact matching.
func String(name string) *Field[string] {
	return newField(name, TypeString, KindTag, decodeString)
}

// Text declares a string attribute indexed for full-text search.
func Text(name string) *Field[string] {
	return newField(name, TypeString, KindText, decodeString)
}

// Int declares an integer attribute.
func Int(name string) *Field[int] {
	return newField(name, TypeInt, KindNumeric, decodeInt)
}

// Int64 declares a 64-bit integer attribute.
func Int64(name string) *Field[int64] {
	return newField(name, TypeInt64, KindNumeric, decodeInt64)
}

// Float declares a floating point attribute.
func Float(name string) *Field[float64] {
	return newField(name, TypeFloat, KindNumeric, decodeFloat)
}

// Bool declares a boolean attribute.
func Bool(name string) *Field[bool] {
	return newField(name, TypeBool, KindTag, decodeBool)
}

// Time declares a timestamp attribute.
func Time(name string) *Field[time.Time] {
	return newField(name, TypeTime, KindNumeric, decodeTime)
}

// Name returns the attribute name.
func (f *Field[T]) Name() string { return f.name }

// Type returns the value type descriptor.
func (f *Field[T]) Type() ValueType { return f.typ }

// Kind returns the index kind.
func (f *Field[T]) Kind() Kind { return f.kind }

func (f *Field[T]) String() string { return f.name }

// Value reads the first stored value.
// Returns ErrMissingValue if the attribute is absent and a *TypeMismatchError
// if the stored value cannot be read as T.
func (f *Field[T]) Value(src Source) (T, error) {
	var zero T
	raw, ok := src.Document.First(f.name)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrMissingValue, f.name)
	}
	v, ok := f.decode(raw)
	if !ok {
		return zero, f.mismatch(raw)
	}
	return v, nil
}

// Values reads every stored value in stored order. Absent attributes yield an
// empty slice.
func (f *Field[T]) Values(src Source) ([]T, error) {
	raws := src.Document.All(f.name)
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, ok := f.decode(raw)
		if !ok {
			return nil, f.mismatch(raw)
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *Field[T]) mismatch(raw any) error {
	return &TypeMismatchError{Field: f.name, Want: f.typ, Got: fmt.Sprintf("%T", raw)}
}

func (f *Field[T]) literal(raw any) (any, error) {
	v, ok := f.decode(raw)
	if !ok {
		return nil, f.mismatch(raw)
	}
	return v, nil
}

// EqualTo matches documents whose attribute equals v.
func (f *Field[T]) EqualTo(v T) Filter {
	return &term{field: f, value: v}
}

// In matches documents whose attribute equals any of vs.
func (f *Field[T]) In(vs ...T) Filter {
	values := make([]any, len(vs))
	for i, v := range vs {
		values[i] = v
	}
	return &membership{field: f, values: values}
}

// Between matches documents with lo <= attribute <= hi.
func (f *Field[T]) Between(lo, hi T) Filter {
	return &valueRange{field: f, lo: lo, hi: hi}
}

// AtLeast matches documents with attribute >= v.
func (f *Field[T]) AtLeast(v T) Filter {
	return &valueRange{field: f, lo: v}
}

// AtMost matches documents with attribute <= v.
func (f *Field[T]) AtMost(v T) Filter {
	return &valueRange{field: f, hi: v}
}

// Exists matches documents that have any value for the attribute.
func (f *Field[T]) Exists() Filter {
	return &exists{field: f}
}

func decodeString(raw any) (string, bool) {
	s, ok := raw.(string)
	return s, ok
}

func decodeInt64(raw any) (int64, bool) {
	switch x := raw.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > 1<<53 {
			return 0, false
		}
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func decodeInt(raw any) (int, bool) {
	n, ok := decodeInt64(raw)
	if !ok || n < math.MinInt || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func decodeFloat(raw any) (float64, bool) {
	switch x := raw.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func decodeBool(raw any) (bool, bool) {
	switch x := raw.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(x)
		return b, err == nil
	default:
		return false, false
	}
}

func decodeTime(raw any) (time.Time, bool) {
	switch x := raw.(type) {
	case time.Time:
		return x, true
	case string:
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return t, true
		}
		// string-typed stores keep epoch millis
		if ms, err := strconv.ParseInt(x, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
		return time.Time{}, false
	default:
		ms, ok := decodeInt64(raw)
		if !ok {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	}
}
