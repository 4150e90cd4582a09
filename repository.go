package rigel

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel/index"
)

// ContentRepository is the per-schema entry point for query builders.
// It holds no mutable state; builders are single-use and owned by the caller.
type ContentRepository[C any] struct {
	client *Client
	schema *Schema[C]
}

// Repository binds a schema to a client.
func Repository[C any](c *Client, s *Schema[C]) *ContentRepository[C] {
	return &ContentRepository[C]{client: c, schema: s}
}

// Schema returns the bound schema.
func (r *ContentRepository[C]) Schema() *Schema[C] { return r.schema }

// ID looks up a single document by identifier.
func (r *ContentRepository[C]) ID(id string) *IDQuery[C] {
	return &IDQuery[C]{repo: r, id: id}
}

// IDs looks up documents by identifier. Duplicates collapse.
func (r *ContentRepository[C]) IDs(ids ...string) *IDsQuery[C] {
	return &IDsQuery[C]{repo: r, ids: append([]string(nil), ids...)}
}

// All lists every document in the schema's implicit scope.
func (r *ContentRepository[C]) All() *AllQuery[C] {
	return &AllQuery[C]{repo: r}
}

// GroupBy lists documents bucketed by the value of field.
func (r *ContentRepository[C]) GroupBy(field FieldRef) *GroupQuery[C] {
	return &GroupQuery[C]{repo: r, field: field, perGroup: index.DefaultGroupLimit}
}

// JoinFrom starts a join whose keys are the values of field on origin documents.
func (r *ContentRepository[C]) JoinFrom(field FieldRef) *JoinFromQuery[C] {
	return &JoinFromQuery[C]{repo: r, from: field}
}

// filters compiles the schema scope (when scoped) followed by extra filters,
// dropping blank fragments.
func (r *ContentRepository[C]) filters(scoped bool, extra []Filter) []string {
	all := make([]Filter, 0, len(extra)+1)
	if scoped {
		if scope := r.schema.Scope(); scope != nil {
			all = append(all, scope)
		}
	}
	all = append(all, compact(extra)...)
	return compileAll(r.client.dialect, all)
}

func (r *ContentRepository[C]) rows(limit int) int {
	if limit > 0 {
		return limit
	}
	return r.client.maxRows
}

func (r *ContentRepository[C]) queryString(q string) string {
	if isBlank(q) {
		return r.client.dialect.MatchAll()
	}
	return q
}

// search sends one request and logs the round trip.
func (r *ContentRepository[C]) search(ctx context.Context, shape string, req *index.Request) (*index.Response, error) {
	start := time.Now()
	resp, err := r.client.index.Search(ctx, req)
	if err != nil {
		return nil, err //nolint:wrapcheck // builders add context
	}
	if resp == nil {
		resp = &index.Response{}
	}

	r.client.logger.Debug("index query",
		zap.String("schema", r.schema.name),
		zap.String("shape", shape),
		zap.String("query", req.Query),
		zap.Strings("filters", req.Filters),
		zap.String("group_field", req.GroupField),
		zap.Int("documents", len(resp.Documents)),
		zap.Int("groups", len(resp.Groups)),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// materializeAll converts documents in order, dropping those that are not
// content of the schema.
func (r *ContentRepository[C]) materializeAll(docs []index.Document, forced bool) []C {
	out := make([]C, 0, len(docs))
	for _, doc := range docs {
		if c, ok := r.schema.Materialize(doc, forced); ok {
			out = append(out, c)
		}
	}
	return out
}

// queryState makes a builder single-use.
type queryState struct {
	consumed bool
}

func (q *queryState) consume() error {
	if q.consumed {
		return ErrQueryConsumed
	}
	q.consumed = true
	return nil
}
