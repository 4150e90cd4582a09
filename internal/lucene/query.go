// Package lucene evaluates Lucene filter strings against raw documents. The
// syntax is parsed by go-lucene and mapped onto a small query tree.
package lucene

import "regexp"

// QueryType identifies the kind of query node.
type QueryType int

const (
	QueryTypeTerm QueryType = iota
	QueryTypeBoolean
	QueryTypeRange
	QueryTypeWildcard
	QueryTypeMatchAll
)

// Query is the interface for all query AST nodes.
type Query interface {
	Type() QueryType
}

// TermQuery matches documents where Field holds exactly Term. An empty Field
// is free text: any word of any attribute may match, ignoring case.
type TermQuery struct {
	Field string
	Term  string
	// Numeric is set for bare numbers, which also match equal numbers
	// spelled differently, such as 5 and 5.0.
	Numeric bool
}

func (q *TermQuery) Type() QueryType { return QueryTypeTerm }

// BooleanOp defines the boolean operator.
type BooleanOp int

const (
	BooleanMust    BooleanOp = iota // AND
	BooleanShould                   // OR
	BooleanMustNot                  // NOT
)

// BooleanClause is a single clause within a BooleanQuery.
type BooleanClause struct {
	Occur BooleanOp
	Query Query
}

// BooleanQuery combines sub-queries with boolean logic.
type BooleanQuery struct {
	Clauses []BooleanClause
}

func (q *BooleanQuery) Type() QueryType { return QueryTypeBoolean }

// RangeQuery matches values between Lower and Upper. A nil bound is open;
// with both bounds open the query matches any document holding Field.
type RangeQuery struct {
	Field        string
	Lower, Upper *string
	IncludeLower bool
	IncludeUpper bool
}

func (q *RangeQuery) Type() QueryType { return QueryTypeRange }

// WildcardQuery matches values against a pattern where * and ? are wildcards.
type WildcardQuery struct {
	Field   string
	Pattern string // regular expression, anchored at match time

	re *regexp.Regexp
}

func (q *WildcardQuery) Type() QueryType { return QueryTypeWildcard }

// MatchAllQuery matches every document.
type MatchAllQuery struct{}

func (q *MatchAllQuery) Type() QueryType { return QueryTypeMatchAll }

// Limits guarding evaluation against pathological input.
const (
	MaxBooleanClauses = 1024
	MaxBooleanDepth   = 32
)
