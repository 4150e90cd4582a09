package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/rigel"
	"github.com/kailas-cloud/rigel/index"
	"github.com/kailas-cloud/rigel/internal/config"
)

// NewClient connects a rigel client to the configured index.
// reg may be nil to disable index metrics.
func NewClient(cfg config.IndexConfig, logger *zap.Logger, reg prometheus.Registerer) (*rigel.Client, error) {
	opts := []rigel.Option{
		rigel.WithLogger(logger),
		rigel.WithMaxRows(cfg.MaxRows),
		rigel.WithTimeout(time.Duration(cfg.TimeoutSec) * time.Second),
	}
	if reg != nil {
		opts = append(opts, rigel.WithMetricsRegisterer(reg))
	}

	switch cfg.Driver {
	case "solr":
		opts = append(opts, rigel.WithSolr(cfg.SolrURL, cfg.Core))
	case "redis":
		if len(cfg.Addrs) == 0 {
			return nil, fmt.Errorf("redis driver needs at least one address")
		}
		opts = append(opts,
			rigel.WithRedis(cfg.Addrs[0], cfg.Password, cfg.RedisIndex),
			rigel.WithRedisAddrs(cfg.Addrs...),
			rigel.WithReadinessTimeout(time.Duration(cfg.ReadinessTimeout)*time.Second),
		)
	case "memory", "":
		docs, err := LoadDocuments(cfg.Fixtures)
		if err != nil {
			return nil, err
		}
		opts = append(opts, rigel.WithMemory(docs...))
	default:
		return nil, fmt.Errorf("unknown index driver %q", cfg.Driver)
	}

	c, err := rigel.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

// LoadDocuments reads a YAML list of documents. A blank path yields none.
func LoadDocuments(path string) ([]index.Document, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	docs := make([]index.Document, len(raw))
	for i, m := range raw {
		docs[i] = index.Document(m)
	}
	return docs, nil
}
