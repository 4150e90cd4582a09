package rigel

import (
	"strings"

	"github.com/kailas-cloud/rigel/index"
)

// Filter is an immutable predicate over Fields.
type Filter interface {
	// Compile renders the filter in the dialect's filter-string syntax.
	// A blank result means the filter imposes no restriction.
	Compile(d index.Dialect) string
	// AffectedFields returns every Field the filter references, deduplicated,
	// in first-seen order.
	AffectedFields() []FieldRef
}

type term struct {
	field FieldRef
	value any
}

func (t *term) Compile(d index.Dialect) string {
	return syntaxFor(d).term(t.field, t.value)
}

func (t *term) AffectedFields() []FieldRef { return []FieldRef{t.field} }

// membership compiles blank when it has no values; callers that need "match
// nothing" for an empty set must not issue the query at all.
type membership struct {
	field  FieldRef
	values []any
}

func (m *membership) Compile(d index.Dialect) string {
	switch len(m.values) {
	case 0:
		return ""
	case 1:
		return syntaxFor(d).term(m.field, m.values[0])
	default:
		return syntaxFor(d).in(m.field, m.values)
	}
}

func (m *membership) AffectedFields() []FieldRef { return []FieldRef{m.field} }

// valueRange bounds are inclusive; a nil bound is open.
type valueRange struct {
	field  FieldRef
	lo, hi any
}

func (r *valueRange) Compile(d index.Dialect) string {
	return syntaxFor(d).between(r.field, r.lo, r.hi)
}

func (r *valueRange) AffectedFields() []FieldRef { return []FieldRef{r.field} }

type exists struct {
	field FieldRef
}

func (e *exists) Compile(d index.Dialect) string {
	return syntaxFor(d).exists(e.field)
}

func (e *exists) AffectedFields() []FieldRef { return []FieldRef{e.field} }

type negation struct {
	child Filter
}

// Not matches documents the child filter does not match.
// Negating a filter that compiles blank is still blank.
func Not(f Filter) Filter {
	return &negation{child: f}
}

func (n *negation) Compile(d index.Dialect) string {
	inner := n.child.Compile(d)
	if isBlank(inner) {
		return ""
	}
	return syntaxFor(d).not(inner)
}

func (n *negation) AffectedFields() []FieldRef { return n.child.AffectedFields() }

type connectiveOp int

const (
	opAnd connectiveOp = iota
	opOr
)

// Connective combines child filters with AND or OR semantics.
type Connective struct {
	op       connectiveOp
	children []Filter
}

// And matches documents matching every child.
func And(filters ...Filter) *Connective {
	return &Connective{op: opAnd, children: compact(filters)}
}

// Or matches documents matching at least one child.
func Or(filters ...Filter) *Connective {
	return &Connective{op: opOr, children: compact(filters)}
}

// Children returns the joined filters in order.
func (c *Connective) Children() []Filter {
	return append([]Filter(nil), c.children...)
}

// Compile renders children in order, dropping any child that compiles blank.
// With no surviving child the connective is blank; a single survivor is
// emitted without wrapping.
func (c *Connective) Compile(d index.Dialect) string {
	parts := compileAll(d, c.children)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return syntaxFor(d).join(c.op, parts)
	}
}

// AffectedFields returns the union of the children's fields.
func (c *Connective) AffectedFields() []FieldRef {
	return unionFields(c.children)
}

// compileAll compiles filters in order and keeps the non-blank fragments.
func compileAll(d index.Dialect, filters []Filter) []string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		s := f.Compile(d)
		if isBlank(s) {
			continue
		}
		parts = append(parts, s)
	}
	return parts
}

func unionFields(filters []Filter) []FieldRef {
	seen := make(map[FieldRef]struct{})
	var out []FieldRef
	for _, f := range filters {
		for _, ref := range f.AffectedFields() {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}

func compact(filters []Filter) []Filter {
	out := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
