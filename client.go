package rigel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel/index"
	"github.com/kailas-cloud/rigel/internal/db/instrumented"
	"github.com/kailas-cloud/rigel/internal/db/memory"
	dbRedis "github.com/kailas-cloud/rigel/internal/db/redis"
	"github.com/kailas-cloud/rigel/internal/db/solr"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the rigel entry point. It owns the index connection shared by
// every ContentRepository created from it.
type Client struct {
	index   index.Client
	dialect index.Dialect
	maxRows int
	logger  *zap.Logger
	closer  func()
}

// New creates a Client and connects to the configured index.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{maxRows: DefaultMaxRows}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.driver == "" {
		return nil, errors.New("rigel: index required (use WithSolr, WithRedis, WithMemory or WithIndexClient)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.maxRows <= 0 {
		cfg.maxRows = DefaultMaxRows
	}

	ic, closer, err := createIndex(cfg)
	if err != nil {
		return nil, err
	}

	wrapped, err := instrumented.New(ic, cfg.driver, cfg.logger, cfg.metricsReg)
	if err != nil {
		closer()
		return nil, fmt.Errorf("rigel: %w", err)
	}

	return &Client{
		index:   wrapped,
		dialect: ic.Dialect(),
		maxRows: cfg.maxRows,
		logger:  cfg.logger,
		closer:  closer,
	}, nil
}

func createIndex(cfg *clientConfig) (index.Client, func(), error) {
	noop := func() {}
	switch cfg.driver {
	case "solr":
		c, err := solr.New(solr.Config{BaseURL: cfg.solrURL, Core: cfg.solrCore, Timeout: cfg.timeout})
		if err != nil {
			return nil, nil, fmt.Errorf("rigel: create solr client: %w", err)
		}
		return c, noop, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
			Index:    cfg.redisIndex,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("rigel: create redis store: %w", err)
		}
		readiness := cfg.readiness
		if readiness <= 0 {
			readiness = defaultReadinessTimeout
		}
		if err := s.WaitForReady(context.Background(), readiness); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("rigel: index not ready: %w", err)
		}
		return s, s.Close, nil
	case "memory":
		s, err := memory.New()
		if err != nil {
			return nil, nil, fmt.Errorf("rigel: create memory index: %w", err)
		}
		if err := s.Put(cfg.documents...); err != nil {
			return nil, nil, fmt.Errorf("rigel: seed memory index: %w", err)
		}
		return s, noop, nil
	case "custom":
		if cfg.index == nil {
			return nil, nil, errors.New("rigel: index client is nil")
		}
		return cfg.index, noop, nil
	default:
		return nil, nil, fmt.Errorf("rigel: unknown driver %q", cfg.driver)
	}
}

// Close releases the index connection if the client owns it.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Ping checks index connectivity. Backends without a ping always succeed.
func (c *Client) Ping(ctx context.Context) error {
	p, ok := c.index.(index.Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Dialect returns the filter syntax of the underlying index.
func (c *Client) Dialect() index.Dialect { return c.dialect }

// Logger returns the client's logger.
func (c *Client) Logger() *zap.Logger { return c.logger }
