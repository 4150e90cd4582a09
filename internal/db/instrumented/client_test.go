package instrumented

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel/index"
)

type fakeIndex struct {
	searchFn func(ctx context.Context, req *index.Request) (*index.Response, error)
	pingFn   func(ctx context.Context) error
}

func (f *fakeIndex) Dialect() index.Dialect { return index.Lucene }

func (f *fakeIndex) Search(ctx context.Context, req *index.Request) (*index.Response, error) {
	return f.searchFn(ctx, req)
}

func (f *fakeIndex) Ping(ctx context.Context) error {
	if f.pingFn == nil {
		return nil
	}
	return f.pingFn(ctx)
}

type searchOnly struct{}

func (searchOnly) Dialect() index.Dialect { return index.RediSearch }
func (searchOnly) Search(context.Context, *index.Request) (*index.Response, error) {
	return &index.Response{}, nil
}

func TestSearch_RecordsSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	inner := &fakeIndex{searchFn: func(_ context.Context, _ *index.Request) (*index.Response, error) {
		return &index.Response{Documents: []index.Document{{"id": "a"}, {"id": "b"}}}, nil
	}}
	c, err := New(inner, "memory", zap.NewNop(), reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Search(context.Background(), &index.Request{Query: "*:*"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Documents) != 2 {
		t.Errorf("expected 2 documents, got %d", len(resp.Documents))
	}

	got := testutil.ToFloat64(c.metrics.requests.WithLabelValues("memory", index.OpSearch, "ok"))
	if got != 1 {
		t.Errorf("expected 1 ok request, got %v", got)
	}
}

func TestSearch_RecordsGroupAndError(t *testing.T) {
	reg := prometheus.NewRegistry()
	boom := errors.New("boom")
	inner := &fakeIndex{searchFn: func(_ context.Context, _ *index.Request) (*index.Response, error) {
		return nil, boom
	}}
	c, err := New(inner, "solr", zap.NewNop(), reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.Search(context.Background(), &index.Request{GroupField: "sceneCount"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got := testutil.ToFloat64(c.metrics.requests.WithLabelValues("solr", index.OpGroup, "error"))
	if got != 1 {
		t.Errorf("expected 1 group error, got %v", got)
	}
}

func TestNew_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	inner := &fakeIndex{searchFn: func(_ context.Context, _ *index.Request) (*index.Response, error) {
		return &index.Response{}, nil
	}}
	a, err := New(inner, "memory", nil, reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := New(inner, "memory", nil, reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if a.metrics.requests != b.metrics.requests {
		t.Error("expected the same collector to be reused")
	}
}

func TestNew_NilInner(t *testing.T) {
	if _, err := New(nil, "memory", nil, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestPing(t *testing.T) {
	down := errors.New("down")
	c, err := New(&fakeIndex{pingFn: func(context.Context) error { return down }}, "redis", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Ping(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected down, got %v", err)
	}

	c, err = New(searchOnly{}, "custom", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("expected nil for client without ping, got %v", err)
	}
	if c.Dialect() != index.RediSearch {
		t.Errorf("expected dialect passthrough, got %s", c.Dialect())
	}
}
