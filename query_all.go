package rigel

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/rigel/index"
)

// AllQuery lists documents in the schema's implicit scope.
type AllQuery[C any] struct {
	queryState
	repo    *ContentRepository[C]
	query   string
	filters []Filter
	limit   int
}

// FilterBy adds filters; all must match.
func (q *AllQuery[C]) FilterBy(filters ...Filter) *AllQuery[C] {
	q.filters = append(q.filters, filters...)
	return q
}

// Query sets a free-text query in the index's query syntax.
func (q *AllQuery[C]) Query(s string) *AllQuery[C] {
	q.query = s
	return q
}

// Limit caps the number of documents returned.
func (q *AllQuery[C]) Limit(n int) *AllQuery[C] {
	q.limit = n
	return q
}

// Get executes the listing in index order.
func (q *AllQuery[C]) Get(ctx context.Context) ([]C, error) {
	if err := q.consume(); err != nil {
		return nil, err
	}

	r := q.repo
	req := &index.Request{
		Query:   r.queryString(q.query),
		Filters: r.filters(true, q.filters),
		Limit:   r.rows(q.limit),
	}
	resp, err := r.search(ctx, "all", req)
	if err != nil {
		return nil, fmt.Errorf("all %s: %w", r.schema.name, err)
	}
	return r.materializeAll(resp.Documents, false), nil
}
