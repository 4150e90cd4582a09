package rigel

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel/index"
)

// DefaultMaxRows caps listing queries that do not set their own limit.
const DefaultMaxRows = 1000

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver string // "solr", "redis", "memory" or "custom"

	solrURL  string
	solrCore string
	timeout  time.Duration

	addrs      []string
	password   string
	redisIndex string
	readiness  time.Duration

	documents []index.Document
	index     index.Client

	maxRows    int
	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithSolr configures the client to query a Solr core over HTTP.
func WithSolr(baseURL, core string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "solr"
		c.solrURL = baseURL
		c.solrCore = core
	})
}

// WithRedis configures the client to query a RediSearch index over JSON documents.
func WithRedis(addr, password, indexName string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
		c.redisIndex = indexName
	})
}

// WithRedisAddrs replaces the addresses set by WithRedis, for clusters and
// sentinel deployments.
func WithRedisAddrs(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = append([]string(nil), addrs...)
	})
}

// WithReadinessTimeout bounds how long New waits for a Redis index to load.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readiness = d
	})
}

// WithMemory configures an in-process index seeded with docs.
// Intended for tests and local development.
func WithMemory(docs ...index.Document) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.documents = append(c.documents, docs...)
	})
}

// WithIndexClient uses an externally owned index client.
func WithIndexClient(ic index.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "custom"
		c.index = ic
	})
}

// WithTimeout sets the per-request timeout for HTTP backends.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithMaxRows sets the default row cap for listing, group and join queries.
func WithMaxRows(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRows = n
	})
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetricsRegisterer enables index request metrics on reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
