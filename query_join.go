package rigel

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel/index"
)

// JoinFromQuery is the origin half of a join. Origin documents are not
// restricted to the repository's schema; only the origin filter applies.
type JoinFromQuery[C any] struct {
	repo    *ContentRepository[C]
	from    FieldRef
	filters []Filter
}

// FilterBy restricts which origin documents contribute join keys.
func (q *JoinFromQuery[C]) FilterBy(filters ...Filter) *JoinFromQuery[C] {
	q.filters = append(q.filters, filters...)
	return q
}

// To names the target field matched against the join keys.
func (q *JoinFromQuery[C]) To(field FieldRef) *JoinQuery[C] {
	return &JoinQuery[C]{
		repo:        q.repo,
		from:        q.from,
		fromFilters: q.filters,
		to:          field,
	}
}

// JoinQuery resolves keys from origin documents, then lists target documents
// of the repository's schema whose to-field matches one of the keys.
type JoinQuery[C any] struct {
	queryState
	repo        *ContentRepository[C]
	from        FieldRef
	fromFilters []Filter
	to          FieldRef
	filters     []Filter
	limit       int
}

// FilterBy restricts the target documents.
func (q *JoinQuery[C]) FilterBy(filters ...Filter) *JoinQuery[C] {
	q.filters = append(q.filters, filters...)
	return q
}

// Limit caps the number of target documents returned.
func (q *JoinQuery[C]) Limit(n int) *JoinQuery[C] {
	q.limit = n
	return q
}

// JoinBatchSize caps the keys in one target membership filter so it stays
// within the index's boolean clause limit.
const JoinBatchSize = 1024

// Get runs the origin request, then one target request per JoinBatchSize
// keys, in sequence. Results follow key batch order and stop at the limit.
// No target request is issued when the origin yields no keys; any failed
// request fails the whole join.
func (q *JoinQuery[C]) Get(ctx context.Context) ([]C, error) {
	if err := q.consume(); err != nil {
		return nil, err
	}
	if q.from == nil || q.to == nil {
		return nil, fmt.Errorf("%w: join needs both from and to fields", ErrInvalidArgument)
	}

	keys, err := q.originKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("join origin: %w", err)
	}

	r := q.repo
	if len(keys) == 0 {
		r.client.logger.Debug("join skipped, no keys",
			zap.String("schema", r.schema.name),
			zap.String("from", q.from.Name()),
		)
		return []C{}, nil
	}

	limit := r.rows(q.limit)
	var docs []index.Document
	for batch := range slices.Chunk(keys, JoinBatchSize) {
		extra := make([]Filter, 0, len(q.filters)+1)
		extra = append(extra, &membership{field: q.to, values: batch})
		extra = append(extra, q.filters...)
		req := &index.Request{
			Query:   r.queryString(""),
			Filters: r.filters(true, extra),
			Limit:   limit - len(docs),
		}
		resp, err := r.search(ctx, "join", req)
		if err != nil {
			return nil, fmt.Errorf("join target: %w", err)
		}
		docs = append(docs, resp.Documents...)
		if len(docs) >= limit {
			docs = docs[:limit]
			break
		}
	}
	return r.materializeAll(docs, false), nil
}

// originKeys returns the distinct from-field values in first-seen order,
// converted to literals of the to-field. Only origin documents holding the
// from-field count against the row cap, and exceeding the cap is an error
// rather than a silently partial key set.
func (q *JoinQuery[C]) originKeys(ctx context.Context) ([]any, error) {
	r := q.repo
	name := q.from.Name()
	req := &index.Request{
		Query:   r.queryString(""),
		Filters: r.filters(false, append([]Filter{&exists{field: q.from}}, q.fromFilters...)),
		Fields:  []string{name},
		Limit:   r.client.maxRows,
	}
	resp, err := r.search(ctx, "join-origin", req)
	if err != nil {
		return nil, err
	}
	if resp.Total > len(resp.Documents) {
		return nil, fmt.Errorf("%w: %d documents hold %s, row cap is %d",
			ErrResultTooLarge, resp.Total, name, req.Limit)
	}

	seen := make(map[string]struct{})
	var keys []any
	for _, doc := range resp.Documents {
		for _, raw := range doc.All(name) {
			s := index.FormatValue(raw)
			if isBlank(s) {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			lit, err := q.to.literal(s)
			if err != nil {
				return nil, fmt.Errorf("key %q for %s: %w", s, q.to.Name(), err)
			}
			seen[s] = struct{}{}
			keys = append(keys, lit)
		}
	}
	return keys, nil
}
