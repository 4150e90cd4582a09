package rigel

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel/index"
)

func TestNew_NoIndex(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no index configured")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown"}
	_, _, err := createIndex(cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_NilIndexClient(t *testing.T) {
	_, err := New(WithIndexClient(nil))
	if err == nil {
		t.Fatal("expected error for nil index client")
	}
}

func TestNew_RedisRequiresIndexName(t *testing.T) {
	_, err := New(WithRedis("localhost:6379", "", ""))
	if err == nil {
		t.Fatal("expected error without index name")
	}
}

func TestNew_SolrRequiresURL(t *testing.T) {
	_, err := New(WithSolr("", "plays"))
	if err == nil {
		t.Fatal("expected error without base URL")
	}
}

func TestNew_MemorySeedFailure(t *testing.T) {
	_, err := New(WithMemory(index.Document{"type": "play"}))
	if err == nil {
		t.Fatal("expected error for document without id")
	}
}

func TestNew_Options(t *testing.T) {
	logger := zap.NewNop()
	c, err := New(
		WithIndexClient(&recordingIndex{dialect: index.RediSearch}),
		WithMaxRows(-5),
		WithLogger(logger),
		WithMetricsRegisterer(prometheus.NewRegistry()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if c.maxRows != DefaultMaxRows {
		t.Errorf("non-positive max rows should fall back to %d, got %d", DefaultMaxRows, c.maxRows)
	}
	if c.Dialect() != index.RediSearch {
		t.Errorf("expected redisearch dialect, got %s", c.Dialect())
	}
	if c.Logger() != logger {
		t.Error("expected configured logger")
	}
}

func TestNew_DefaultsToNopLogger(t *testing.T) {
	c := newRecordingClient(t, &recordingIndex{})
	if c.Logger() == nil {
		t.Fatal("expected a logger")
	}
}

type pingingIndex struct {
	recordingIndex
	pingFn func(ctx context.Context) error
}

func (p *pingingIndex) Ping(ctx context.Context) error { return p.pingFn(ctx) }

func TestClient_Ping(t *testing.T) {
	t.Run("without pinger", func(t *testing.T) {
		c := newRecordingClient(t, &recordingIndex{})
		if err := c.Ping(context.Background()); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("memory", func(t *testing.T) {
		if err := newFixtureClient(t).Ping(context.Background()); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("failure", func(t *testing.T) {
		down := &index.Error{Op: index.OpPing, Err: index.ErrUnavailable}
		c, err := New(WithIndexClient(&pingingIndex{pingFn: func(context.Context) error { return down }}))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := c.Ping(context.Background()); !errors.Is(err, index.ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
	})
}
