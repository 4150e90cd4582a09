package rigel

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/rigel/index"
)

// IDQuery fetches one document by identifier.
// Identifier lookups ignore the schema's implicit scope.
type IDQuery[C any] struct {
	queryState
	repo   *ContentRepository[C]
	id     string
	forced bool
}

// ForceType materializes the result with the schema's own constructor,
// skipping discrimination. Accessing a field the document lacks then fails
// with ErrMissingValue at access time.
func (q *IDQuery[C]) ForceType() *IDQuery[C] {
	q.forced = true
	return q
}

// Get executes the lookup. The result is present iff a document with the
// identifier exists and belongs to the schema (or the query is forced).
func (q *IDQuery[C]) Get(ctx context.Context) (Optional[C], error) {
	if err := q.consume(); err != nil {
		return None[C](), err
	}
	if isBlank(q.id) {
		return None[C](), fmt.Errorf("%w: id must not be blank", ErrInvalidArgument)
	}

	r := q.repo
	req := &index.Request{
		Query:   r.queryString(""),
		Filters: compileAll(r.client.dialect, []Filter{r.schema.id.EqualTo(q.id)}),
		Limit:   1,
	}
	resp, err := r.search(ctx, "id", req)
	if err != nil {
		return None[C](), fmt.Errorf("id %q: %w", q.id, err)
	}

	// an analyzed id field can match on a single word of another id
	for _, doc := range resp.Documents {
		if id, err := r.schema.id.Value(Source{Document: doc}); err != nil || id != q.id {
			continue
		}
		if c, ok := r.schema.Materialize(doc, q.forced); ok {
			return Some(c), nil
		}
	}
	return None[C](), nil
}

// IDsQuery fetches several documents by identifier.
type IDsQuery[C any] struct {
	queryState
	repo   *ContentRepository[C]
	ids    []string
	forced bool
}

// ForceType materializes every result with the schema's own constructor.
func (q *IDsQuery[C]) ForceType() *IDsQuery[C] {
	q.forced = true
	return q
}

// Get executes the lookup. Every requested identifier is a key of the result,
// absent when no matching document exists; nothing else is.
func (q *IDsQuery[C]) Get(ctx context.Context) (map[string]Optional[C], error) {
	if err := q.consume(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(q.ids))
	result := make(map[string]Optional[C], len(q.ids))
	for _, id := range q.ids {
		if isBlank(id) {
			return nil, fmt.Errorf("%w: ids must not contain a blank id", ErrInvalidArgument)
		}
		if _, dup := result[id]; dup {
			continue
		}
		result[id] = None[C]()
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return result, nil
	}

	r := q.repo
	req := &index.Request{
		Query:   r.queryString(""),
		Filters: compileAll(r.client.dialect, []Filter{r.schema.id.In(ids...)}),
		Limit:   len(ids),
	}
	resp, err := r.search(ctx, "ids", req)
	if err != nil {
		return nil, fmt.Errorf("ids: %w", err)
	}

	for _, doc := range resp.Documents {
		id, err := r.schema.id.Value(Source{Document: doc})
		if err != nil {
			continue
		}
		if _, requested := result[id]; !requested {
			continue
		}
		if c, ok := r.schema.Materialize(doc, q.forced); ok {
			result[id] = Some(c)
		}
	}
	return result, nil
}
