package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/rigel"
)

// parseFilter reads one filter expression:
//
//	field:value          equality
//	field:a|b|c          membership
//	field:[lo TO hi]     inclusive range, * or blank for an open bound
//	field:*              attribute present
//	-field:...           negation of any of the above
func (s *Service) parseFilter(expr string) (rigel.Filter, error) {
	raw := strings.TrimSpace(expr)
	negate := strings.HasPrefix(raw, "-")
	if negate {
		raw = raw[1:]
	}

	name, value, ok := strings.Cut(raw, ":")
	if !ok || name == "" || value == "" {
		return nil, fmt.Errorf("%w: %q, want field:value", ErrInvalidFilter, expr)
	}
	field, err := s.catalog.Field(name)
	if err != nil {
		return nil, err //nolint:wrapcheck // catalog error names the field
	}

	var f rigel.Filter
	switch {
	case value == "*":
		f, err = rigel.ParseRange(field, "", "")
	case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"):
		lo, hi, found := strings.Cut(value[1:len(value)-1], " TO ")
		if !found {
			return nil, fmt.Errorf("%w: %q, want [lo TO hi]", ErrInvalidFilter, expr)
		}
		f, err = rigel.ParseRange(field, openBound(lo), openBound(hi))
	default:
		f, err = rigel.ParseEqual(field, strings.Split(value, "|")...)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	if negate {
		return rigel.Not(f), nil
	}
	return f, nil
}

func openBound(s string) string {
	s = strings.TrimSpace(s)
	if s == "*" {
		return ""
	}
	return s
}

func (s *Service) parseFilters(exprs []string) ([]rigel.Filter, error) {
	out := make([]rigel.Filter, 0, len(exprs))
	for _, e := range exprs {
		if strings.TrimSpace(e) == "" {
			continue
		}
		f, err := s.parseFilter(e)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
