package rigel

import (
	"context"
	"fmt"
	"iter"

	"github.com/kailas-cloud/rigel/index"
)

// Groups is an ordered multimap from group key to values, in the order the
// index reported the groups.
type Groups[C any] struct {
	keys   []string
	values map[string][]C
}

func newGroups[C any]() *Groups[C] {
	return &Groups[C]{values: make(map[string][]C)}
}

func (g *Groups[C]) add(key string, vs []C) {
	if len(vs) == 0 {
		return
	}
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = append(g.values[key], vs...)
}

// Keys returns the distinct keys in group order.
func (g *Groups[C]) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Get returns the values for key; nil if the key is absent.
func (g *Groups[C]) Get(key string) []C {
	return g.values[key]
}

// Len returns the number of distinct keys.
func (g *Groups[C]) Len() int { return len(g.keys) }

// Size returns the total number of values across all keys.
func (g *Groups[C]) Size() int {
	n := 0
	for _, vs := range g.values {
		n += len(vs)
	}
	return n
}

// All iterates groups in order.
func (g *Groups[C]) All() iter.Seq2[string, []C] {
	return func(yield func(string, []C) bool) {
		for _, k := range g.keys {
			if !yield(k, g.values[k]) {
				return
			}
		}
	}
}

// GroupQuery lists documents bucketed by a field value.
type GroupQuery[C any] struct {
	queryState
	repo     *ContentRepository[C]
	field    FieldRef
	perGroup int
	filters  []Filter
	query    string
	limit    int
}

// LimitResultsPerGroup raises the per-group document cap (default 1).
func (q *GroupQuery[C]) LimitResultsPerGroup(n int) *GroupQuery[C] {
	q.perGroup = n
	return q
}

// FilterBy adds filters; all must match.
func (q *GroupQuery[C]) FilterBy(filters ...Filter) *GroupQuery[C] {
	q.filters = append(q.filters, filters...)
	return q
}

// Query sets a free-text query in the index's query syntax.
func (q *GroupQuery[C]) Query(s string) *GroupQuery[C] {
	q.query = s
	return q
}

// Limit caps the number of groups returned.
func (q *GroupQuery[C]) Limit(n int) *GroupQuery[C] {
	q.limit = n
	return q
}

// Get executes the grouped listing. Keys are the string form of the group
// value regardless of the field's type.
func (q *GroupQuery[C]) Get(ctx context.Context) (*Groups[C], error) {
	if err := q.consume(); err != nil {
		return nil, err
	}
	if q.field == nil {
		return nil, fmt.Errorf("%w: group field is required", ErrInvalidArgument)
	}
	if q.perGroup < 1 {
		return nil, fmt.Errorf("%w: results per group must be positive, got %d", ErrInvalidArgument, q.perGroup)
	}

	r := q.repo
	req := &index.Request{
		Query:      r.queryString(q.query),
		Filters:    r.filters(true, q.filters),
		GroupField: q.field.Name(),
		GroupLimit: q.perGroup,
		Limit:      r.rows(q.limit),
	}
	resp, err := r.search(ctx, "group", req)
	if err != nil {
		return nil, fmt.Errorf("group %s by %s: %w", r.schema.name, q.field.Name(), err)
	}

	groups := newGroups[C]()
	for _, g := range resp.Groups {
		groups.add(g.Value, r.materializeAll(g.Documents, false))
	}
	return groups, nil
}
