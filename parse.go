package rigel

import (
	"fmt"
	"strings"
)

// ParseEqual builds a filter on f from string-encoded values: a term for one
// value, a membership filter for several. Each value is converted with f's
// value type, so "5" becomes an int for an Int field.
func ParseEqual(f FieldRef, values ...string) (Filter, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: field is nil", ErrInvalidArgument)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values for %s", ErrInvalidArgument, f.Name())
	}
	lits := make([]any, len(values))
	for i, v := range values {
		lit, err := f.literal(v)
		if err != nil {
			return nil, fmt.Errorf("value %q for %s: %w", v, f.Name(), err)
		}
		lits[i] = lit
	}
	if len(lits) == 1 {
		return &term{field: f, value: lits[0]}, nil
	}
	return &membership{field: f, values: lits}, nil
}

// ParseRange builds an inclusive range filter on f. A blank bound is open.
func ParseRange(f FieldRef, lo, hi string) (Filter, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: field is nil", ErrInvalidArgument)
	}
	r := &valueRange{field: f}
	if strings.TrimSpace(lo) != "" {
		lit, err := f.literal(lo)
		if err != nil {
			return nil, fmt.Errorf("lower bound %q for %s: %w", lo, f.Name(), err)
		}
		r.lo = lit
	}
	if strings.TrimSpace(hi) != "" {
		lit, err := f.literal(hi)
		if err != nil {
			return nil, fmt.Errorf("upper bound %q for %s: %w", hi, f.Name(), err)
		}
		r.hi = lit
	}
	if r.lo == nil && r.hi == nil {
		return &exists{field: f}, nil
	}
	return r, nil
}
