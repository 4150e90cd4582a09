package lucene

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	golucene "github.com/grindlemire/go-lucene"
	"github.com/grindlemire/go-lucene/pkg/lucene/expr"
)

// ErrUnsupported is returned for valid Lucene syntax the evaluator cannot run.
var ErrUnsupported = errors.New("unsupported query")

// Parse parses input into a query tree. Blank input, "*" and "*:*" match
// every document.
func Parse(input string) (Query, error) {
	input = strings.TrimSpace(input)
	if input == "" || input == "*" || input == "*:*" {
		return &MatchAllQuery{}, nil
	}
	e, err := golucene.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return convert(e, "", 0)
}

// convert maps a go-lucene expression onto the query tree. field scopes bare
// literals inside a fielded group such as title:(a AND b).
func convert(e *expr.Expression, field string, depth int) (Query, error) {
	if depth > MaxBooleanDepth {
		return nil, fmt.Errorf("query nested deeper than %d", MaxBooleanDepth)
	}
	if e == nil {
		return nil, errors.New("empty expression")
	}

	switch e.Op {
	case expr.Literal:
		_, isInt := e.Left.(int)
		_, isFloat := e.Left.(float64)
		return &TermQuery{Field: field, Term: literal(e), Numeric: isInt || isFloat}, nil

	case expr.Wild:
		return wildcard(field, literal(e))

	case expr.Regexp:
		return pattern(field, literal(e))

	case expr.Equals:
		name, err := column(e.Left)
		if err != nil {
			return nil, err
		}
		if name == "*" {
			return nil, errors.New("*: must be followed by *")
		}
		right, err := operand(e.Right)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return convert(right, name, depth+1)

	case expr.Like:
		name, err := column(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := operand(e.Right)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if name == "*" {
			if right.Op == expr.Wild && literal(right) == "*" {
				return &MatchAllQuery{}, nil
			}
			return nil, errors.New("*: must be followed by *")
		}
		return convert(right, name, depth+1)

	case expr.In:
		name, err := column(e.Left)
		if err != nil {
			return nil, err
		}
		list, err := operand(e.Right)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		items, _ := list.Left.([]*expr.Expression)
		if len(items) > MaxBooleanClauses {
			return nil, fmt.Errorf("more than %d clauses", MaxBooleanClauses)
		}
		clauses := make([]BooleanClause, 0, len(items))
		for _, it := range items {
			q, err := convert(it, name, depth+1)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, BooleanClause{Occur: BooleanShould, Query: q})
		}
		return &BooleanQuery{Clauses: clauses}, nil

	case expr.Range:
		name, err := column(e.Left)
		if err != nil {
			return nil, err
		}
		b, ok := e.Right.(*expr.RangeBoundary)
		if !ok || b == nil {
			return nil, fmt.Errorf("%s: malformed range", name)
		}
		return &RangeQuery{
			Field:        name,
			Lower:        bound(b.Min),
			Upper:        bound(b.Max),
			IncludeLower: b.Inclusive,
			IncludeUpper: b.Inclusive,
		}, nil

	case expr.Greater, expr.GreaterEq, expr.Less, expr.LessEq:
		name, err := column(e.Left)
		if err != nil {
			return nil, err
		}
		v := bound(e.Right)
		if v == nil {
			return nil, fmt.Errorf("%s: comparison needs a value", name)
		}
		q := &RangeQuery{Field: name}
		switch e.Op {
		case expr.Greater, expr.GreaterEq:
			q.Lower, q.IncludeLower = v, e.Op == expr.GreaterEq
		default:
			q.Upper, q.IncludeUpper = v, e.Op == expr.LessEq
		}
		return q, nil

	case expr.And, expr.Or:
		clauses, err := flatten(e, e.Op, field, depth, nil)
		if err != nil {
			return nil, err
		}
		return &BooleanQuery{Clauses: clauses}, nil

	case expr.Not, expr.MustNot:
		inner, err := child(e.Left, field, depth)
		if err != nil {
			return nil, err
		}
		return &BooleanQuery{Clauses: []BooleanClause{{Occur: BooleanMustNot, Query: inner}}}, nil

	case expr.Must, expr.Boost:
		return child(e.Left, field, depth)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, e.Op)
	}
}

// flatten collects the operands of a chain of the same connective into one
// clause list. Negated operands of an AND chain become MustNot clauses.
func flatten(e *expr.Expression, op expr.Operator, field string, depth int, acc []BooleanClause) ([]BooleanClause, error) {
	for _, side := range []any{e.Left, e.Right} {
		sub, err := operand(side)
		if err != nil {
			return nil, err
		}
		if sub.Op == op {
			if acc, err = flatten(sub, op, field, depth, acc); err != nil {
				return nil, err
			}
			continue
		}

		occur := BooleanMust
		if op == expr.Or {
			occur = BooleanShould
		}
		if op == expr.And && (sub.Op == expr.Not || sub.Op == expr.MustNot) {
			occur = BooleanMustNot
			if sub, err = operand(sub.Left); err != nil {
				return nil, err
			}
		}

		q, err := convert(sub, field, depth+1)
		if err != nil {
			return nil, err
		}
		acc = append(acc, BooleanClause{Occur: occur, Query: q})
		if len(acc) > MaxBooleanClauses {
			return nil, fmt.Errorf("more than %d clauses", MaxBooleanClauses)
		}
	}
	return acc, nil
}

func child(v any, field string, depth int) (Query, error) {
	sub, err := operand(v)
	if err != nil {
		return nil, err
	}
	return convert(sub, field, depth+1)
}

func operand(v any) (*expr.Expression, error) {
	switch v := v.(type) {
	case *expr.Expression:
		if v == nil {
			return nil, errors.New("missing operand")
		}
		return v, nil
	case string:
		return expr.Lit(v), nil
	default:
		return nil, fmt.Errorf("unexpected operand %T", v)
	}
}

func column(v any) (string, error) {
	switch v := v.(type) {
	case *expr.Expression:
		if v != nil {
			return column(v.Left)
		}
	case expr.Column:
		return string(v), nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("expected field name, got %T", v)
}

// literal renders a leaf value the way it appeared in the query.
func literal(e *expr.Expression) string {
	switch v := e.Left.(type) {
	case string:
		return v
	case expr.Column:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// bound returns nil for an open "*" range boundary.
func bound(v any) *string {
	e, ok := v.(*expr.Expression)
	if !ok || e == nil {
		return nil
	}
	s := literal(e)
	if e.Op == expr.Wild && s == "*" {
		return nil
	}
	return &s
}

func wildcard(field, p string) (Query, error) {
	if p == "*" {
		if field == "" {
			return &MatchAllQuery{}, nil
		}
		return &RangeQuery{Field: field}, nil
	}
	var b strings.Builder
	escaped := false
	for _, r := range p {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*':
			b.WriteString(".*")
		case r == '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return compileWildcard(field, p, b.String())
}

func pattern(field, p string) (Query, error) {
	return compileWildcard(field, p, strings.TrimSuffix(strings.TrimPrefix(p, "/"), "/"))
}

func compileWildcard(field, text, pattern string) (Query, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", text, err)
	}
	return &WildcardQuery{Field: field, Pattern: pattern, re: re}, nil
}
