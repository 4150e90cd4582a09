// Package query serves rigel queries addressed by schema and field names,
// for the HTTP API and the CLI.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel"
	"github.com/kailas-cloud/rigel/internal/catalog"
	logpkg "github.com/kailas-cloud/rigel/internal/logger"
	"github.com/kailas-cloud/rigel/internal/metrics"
)

var (
	// ErrNotFound is returned when an identifier lookup finds nothing.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidFilter is returned for a malformed filter expression.
	ErrInvalidFilter = errors.New("invalid filter")
)

// ListParams configures a listing.
type ListParams struct {
	Filters []string
	Query   string
	Limit   int
}

// GroupParams configures a grouped listing.
type GroupParams struct {
	Field    string
	PerGroup int
	Filters  []string
	Query    string
	Limit    int
}

// JoinParams configures a join.
type JoinParams struct {
	From        string
	To          string
	FromFilters []string
	Filters     []string
	Limit       int
}

// Group is one bucket of a grouped listing.
type Group struct {
	Key   string
	Items []rigel.Item
}

// SchemaInfo describes a configured schema.
type SchemaInfo struct {
	Name          string
	ID            string
	Discriminator string
	Variants      []string
	Fields        []FieldInfo
}

// FieldInfo describes a schema field.
type FieldInfo struct {
	Name string
	Type string
}

// Service runs queries against the catalog's schemas.
type Service struct {
	client  *rigel.Client
	catalog *catalog.Catalog
}

// New creates a Service.
func New(client *rigel.Client, cat *catalog.Catalog) *Service {
	return &Service{client: client, catalog: cat}
}

func (s *Service) repo(schema string) (*rigel.ContentRepository[rigel.Item], error) {
	sc, err := s.catalog.Schema(schema)
	if err != nil {
		return nil, err //nolint:wrapcheck // sentinel from catalog
	}
	return rigel.Repository(s.client, sc), nil
}

// Get looks up one item by identifier.
func (s *Service) Get(ctx context.Context, schema, id string, force bool) (rigel.Item, error) {
	start := time.Now()
	item, err := s.get(ctx, schema, id, force)
	n := 1
	if err != nil {
		n = 0
	}
	s.observe(ctx, schema, "id", start, n, err)
	return item, err
}

func (s *Service) get(ctx context.Context, schema, id string, force bool) (rigel.Item, error) {
	r, err := s.repo(schema)
	if err != nil {
		return rigel.Item{}, err
	}
	q := r.ID(id)
	if force {
		q = q.ForceType()
	}
	op, err := q.Get(ctx)
	if err != nil {
		return rigel.Item{}, fmt.Errorf("get %s/%s: %w", schema, id, err)
	}
	item, ok := op.Get()
	if !ok {
		return rigel.Item{}, fmt.Errorf("%w: %s/%s", ErrNotFound, schema, id)
	}
	return item, nil
}

// GetMany looks up items by identifier. Every requested identifier is a key
// of the result.
func (s *Service) GetMany(ctx context.Context, schema string, ids []string, force bool) (map[string]rigel.Optional[rigel.Item], error) {
	start := time.Now()
	out, err := s.getMany(ctx, schema, ids, force)
	n := 0
	for _, op := range out {
		if op.IsPresent() {
			n++
		}
	}
	s.observe(ctx, schema, "ids", start, n, err)
	return out, err
}

func (s *Service) getMany(ctx context.Context, schema string, ids []string, force bool) (map[string]rigel.Optional[rigel.Item], error) {
	r, err := s.repo(schema)
	if err != nil {
		return nil, err
	}
	q := r.IDs(ids...)
	if force {
		q = q.ForceType()
	}
	out, err := q.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", schema, err)
	}
	return out, nil
}

// List lists items of a schema.
func (s *Service) List(ctx context.Context, schema string, p ListParams) ([]rigel.Item, error) {
	start := time.Now()
	items, err := s.list(ctx, schema, p)
	s.observe(ctx, schema, "all", start, len(items), err)
	return items, err
}

func (s *Service) list(ctx context.Context, schema string, p ListParams) ([]rigel.Item, error) {
	r, err := s.repo(schema)
	if err != nil {
		return nil, err
	}
	filters, err := s.parseFilters(p.Filters)
	if err != nil {
		return nil, err
	}
	items, err := r.All().FilterBy(filters...).Query(p.Query).Limit(p.Limit).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", schema, err)
	}
	return items, nil
}

// Group lists items of a schema bucketed by a field.
func (s *Service) Group(ctx context.Context, schema string, p GroupParams) ([]Group, error) {
	start := time.Now()
	groups, err := s.group(ctx, schema, p)
	n := 0
	for _, g := range groups {
		n += len(g.Items)
	}
	s.observe(ctx, schema, "group", start, n, err)
	return groups, err
}

func (s *Service) group(ctx context.Context, schema string, p GroupParams) ([]Group, error) {
	r, err := s.repo(schema)
	if err != nil {
		return nil, err
	}
	field, err := s.catalog.Field(p.Field)
	if err != nil {
		return nil, err //nolint:wrapcheck // sentinel from catalog
	}
	filters, err := s.parseFilters(p.Filters)
	if err != nil {
		return nil, err
	}

	q := r.GroupBy(field).FilterBy(filters...).Query(p.Query).Limit(p.Limit)
	if p.PerGroup != 0 {
		q = q.LimitResultsPerGroup(p.PerGroup)
	}
	groups, err := q.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("group %s by %s: %w", schema, p.Field, err)
	}

	out := make([]Group, 0, groups.Len())
	for key, items := range groups.All() {
		out = append(out, Group{Key: key, Items: items})
	}
	return out, nil
}

// Join lists items of a schema whose to-field matches a from-field value of
// the origin documents.
func (s *Service) Join(ctx context.Context, schema string, p JoinParams) ([]rigel.Item, error) {
	start := time.Now()
	items, err := s.join(ctx, schema, p)
	s.observe(ctx, schema, "join", start, len(items), err)
	return items, err
}

func (s *Service) join(ctx context.Context, schema string, p JoinParams) ([]rigel.Item, error) {
	r, err := s.repo(schema)
	if err != nil {
		return nil, err
	}
	from, err := s.catalog.Field(p.From)
	if err != nil {
		return nil, err //nolint:wrapcheck // sentinel from catalog
	}
	to, err := s.catalog.Field(p.To)
	if err != nil {
		return nil, err //nolint:wrapcheck // sentinel from catalog
	}
	fromFilters, err := s.parseFilters(p.FromFilters)
	if err != nil {
		return nil, err
	}
	filters, err := s.parseFilters(p.Filters)
	if err != nil {
		return nil, err
	}

	items, err := r.JoinFrom(from).FilterBy(fromFilters...).
		To(to).FilterBy(filters...).Limit(p.Limit).
		Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("join %s: %w", schema, err)
	}
	return items, nil
}

// Schemas describes the configured schemas in name order.
func (s *Service) Schemas() []SchemaInfo {
	names := s.catalog.Names()
	out := make([]SchemaInfo, 0, len(names))
	for _, name := range names {
		sc, err := s.catalog.Schema(name)
		if err != nil {
			continue
		}
		info := SchemaInfo{Name: name, ID: sc.ID().Name()}
		if d := sc.Discriminator(); d != nil {
			info.Discriminator = d.Name()
			info.Variants = sc.Variants()
		}
		for _, f := range sc.Fields() {
			info.Fields = append(info.Fields, FieldInfo{Name: f.Name(), Type: catalog.FieldType(f)})
		}
		out = append(out, info)
	}
	return out
}

// Ping checks index connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx) //nolint:wrapcheck // client already wraps
}

func (s *Service) observe(ctx context.Context, schema, shape string, start time.Time, n int, err error) {
	duration := time.Since(start)
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}

	metrics.QueryRequestsTotal.WithLabelValues(schema, shape, status).Inc()
	metrics.QueryDuration.WithLabelValues(schema, shape).Observe(duration.Seconds())
	metrics.QueryItemsReturned.WithLabelValues(schema, shape).Add(float64(n))

	logger := logpkg.FromContext(ctx)
	if err != nil && status == "error" {
		logger.Warn("Query failed",
			zap.String("schema", schema),
			zap.String("shape", shape),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	logger.Debug("Query completed",
		zap.String("schema", schema),
		zap.String("shape", shape),
		zap.String("status", status),
		zap.Int("items", n),
		zap.Duration("duration", duration),
	)
}
