// Package index defines the boundary between rigel and a document search index:
// the request a query builder sends, the response it gets back and the client
// interface every backend implements.
package index

import "context"

// Dialect selects the filter-string grammar a backend understands.
type Dialect int

const (
	// Lucene is the Solr/Lucene standard query parser syntax (field:value).
	Lucene Dialect = iota
	// RediSearch is the FT.SEARCH query syntax (@field:{value}).
	RediSearch
)

func (d Dialect) String() string {
	switch d {
	case Lucene:
		return "lucene"
	case RediSearch:
		return "redisearch"
	default:
		return "unknown"
	}
}

// MatchAll returns the dialect's query string that matches every document.
func (d Dialect) MatchAll() string {
	if d == RediSearch {
		return "*"
	}
	return "*:*"
}

// DefaultGroupLimit is the number of documents returned per group when a
// request does not set GroupLimit.
const DefaultGroupLimit = 1

// Request is a single compiled query sent to the index.
type Request struct {
	// Query is the free-text query; empty means match all.
	Query string
	// Filters are ANDed together by the index. Blank entries are never sent.
	Filters []string
	// Fields restricts the attributes returned per document; empty returns all.
	Fields []string
	// GroupField enables grouping on the named attribute.
	GroupField string
	// GroupLimit caps documents per group (DefaultGroupLimit when <= 0).
	GroupLimit int
	// Limit caps the number of documents (or groups) returned.
	Limit int
}

// Grouped reports whether the request asks for grouped results.
func (r *Request) Grouped() bool { return r.GroupField != "" }

// EffectiveGroupLimit returns GroupLimit or DefaultGroupLimit when unset.
func (r *Request) EffectiveGroupLimit() int {
	if r.GroupLimit <= 0 {
		return DefaultGroupLimit
	}
	return r.GroupLimit
}

// Response is the output of a search.
type Response struct {
	Total     int
	Documents []Document
	// Groups is set only for grouped requests, in index-reported order.
	Groups []Group
}

// Group is one distinct value of the grouping attribute with its capped documents.
type Group struct {
	Value     string
	Documents []Document
}

// Client issues requests against a search index.
// Implementations must be safe for concurrent use.
type Client interface {
	Dialect() Dialect
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Pinger checks index connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
