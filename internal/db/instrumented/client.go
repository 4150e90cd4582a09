// Package instrumented decorates an index client with Prometheus metrics and
// structured logging.
package instrumented

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel/index"
)

var (
	_ index.Client = (*Client)(nil)
	_ index.Pinger = (*Client)(nil)
)

type clientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	docs     *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rigel",
			Subsystem: "index",
			Name:      "requests_total",
			Help:      "Total index requests by backend, operation and status.",
		}, []string{"backend", "op", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rigel",
			Subsystem: "index",
			Name:      "request_duration_seconds",
			Help:      "Index request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
		docs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rigel",
			Subsystem: "index",
			Name:      "documents_returned",
			Help:      "Documents returned per index request.",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		}, []string{"backend", "op"}),
	}
	if err := registerOrReuse(reg, &m.requests); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.docs); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}

// Client wraps an index.Client, recording every request.
type Client struct {
	inner   index.Client
	backend string
	logger  *zap.Logger
	metrics *clientMetrics
}

// New wraps inner. A nil registerer disables metrics; a nil logger disables logging.
func New(inner index.Client, backend string, logger *zap.Logger, reg prometheus.Registerer) (*Client, error) {
	if inner == nil {
		return nil, errors.New("inner index client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{inner: inner, backend: backend, logger: logger}
	if reg != nil {
		m, err := newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
		c.metrics = m
	}
	return c, nil
}

// Dialect delegates to the wrapped client.
func (c *Client) Dialect() index.Dialect { return c.inner.Dialect() }

// Search delegates to the wrapped client and records the outcome.
func (c *Client) Search(ctx context.Context, req *index.Request) (*index.Response, error) {
	op := index.OpSearch
	if req != nil && req.Grouped() {
		op = index.OpGroup
	}

	start := time.Now()
	resp, err := c.inner.Search(ctx, req)
	c.observe(op, start, err, resp)
	if err != nil {
		return nil, err //nolint:wrapcheck // backend errors pass through unchanged
	}
	return resp, nil
}

// Ping delegates when the wrapped client supports it.
func (c *Client) Ping(ctx context.Context) error {
	p, ok := c.inner.(index.Pinger)
	if !ok {
		return nil
	}
	start := time.Now()
	err := p.Ping(ctx)
	c.observe(index.OpPing, start, err, nil)
	return err //nolint:wrapcheck // backend errors pass through unchanged
}

func (c *Client) observe(op string, start time.Time, err error, resp *index.Response) {
	dur := time.Since(start)

	if c.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		c.metrics.requests.WithLabelValues(c.backend, op, status).Inc()
		c.metrics.duration.WithLabelValues(c.backend, op).Observe(dur.Seconds())
		if resp != nil {
			c.metrics.docs.WithLabelValues(c.backend, op).Observe(float64(countDocuments(resp)))
		}
	}

	if err != nil {
		c.logger.Error("Index request failed",
			zap.String("backend", c.backend),
			zap.String("op", op),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
		return
	}
	c.logger.Debug("Index request completed",
		zap.String("backend", c.backend),
		zap.String("op", op),
		zap.Duration("duration", dur),
	)
}

func countDocuments(resp *index.Response) int {
	n := len(resp.Documents)
	for _, g := range resp.Groups {
		n += len(g.Documents)
	}
	return n
}
