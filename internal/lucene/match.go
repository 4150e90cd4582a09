package lucene

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/rigel/index"
)

// Match reports whether doc satisfies q. Values compare numerically when both
// sides parse as numbers, chronologically when both parse as RFC 3339 times,
// and as strings otherwise.
func Match(q Query, doc index.Document) bool {
	switch q := q.(type) {
	case *MatchAllQuery:
		return true
	case *TermQuery:
		if q.Field == "" {
			return anyValue(doc, "", func(v string) bool { return containsWord(v, q.Term) })
		}
		return anyValue(doc, q.Field, func(v string) bool { return sameValue(v, q.Term, q.Numeric) })
	case *WildcardQuery:
		re := q.re
		if re == nil {
			var err error
			if re, err = regexp.Compile("^(?:" + q.Pattern + ")$"); err != nil {
				return false
			}
		}
		return anyValue(doc, q.Field, re.MatchString)
	case *RangeQuery:
		if q.Lower == nil && q.Upper == nil {
			return doc.Has(q.Field)
		}
		return anyValue(doc, q.Field, q.contains)
	case *BooleanQuery:
		return matchBoolean(q, doc)
	default:
		return false
	}
}

func matchBoolean(q *BooleanQuery, doc index.Document) bool {
	hasMust, hasShould, shouldMatched := false, false, false
	for _, c := range q.Clauses {
		switch c.Occur {
		case BooleanMust:
			hasMust = true
			if !Match(c.Query, doc) {
				return false
			}
		case BooleanMustNot:
			if Match(c.Query, doc) {
				return false
			}
		case BooleanShould:
			hasShould = true
			if !shouldMatched && Match(c.Query, doc) {
				shouldMatched = true
			}
		}
	}
	if hasShould && !hasMust {
		return shouldMatched
	}
	return true
}

func (q *RangeQuery) contains(v string) bool {
	if q.Lower != nil {
		c := compareValues(v, *q.Lower)
		if c < 0 || (c == 0 && !q.IncludeLower) {
			return false
		}
	}
	if q.Upper != nil {
		c := compareValues(v, *q.Upper)
		if c > 0 || (c == 0 && !q.IncludeUpper) {
			return false
		}
	}
	return true
}

// anyValue applies pred to every value of field; an empty field means every
// attribute of the document.
func anyValue(doc index.Document, field string, pred func(string) bool) bool {
	if field != "" {
		for _, v := range doc.All(field) {
			if pred(index.FormatValue(v)) {
				return true
			}
		}
		return false
	}
	for name := range doc {
		for _, v := range doc.All(name) {
			if pred(index.FormatValue(v)) {
				return true
			}
		}
	}
	return false
}

// sameValue is exact equality. Numeric terms also match other spellings of
// the same number.
func sameValue(value, term string, numeric bool) bool {
	if value == term {
		return true
	}
	if !numeric {
		return false
	}
	fa, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return false
	}
	fb, err := strconv.ParseFloat(term, 64)
	return err == nil && fa == fb
}

// containsWord is free-text matching: the whole value or any of its words
// equals the term ignoring case.
func containsWord(value, term string) bool {
	if sameValue(value, term, true) || strings.EqualFold(value, term) {
		return true
	}
	for _, w := range strings.Fields(value) {
		if strings.EqualFold(strings.Trim(w, ".,;:!?"), term) {
			return true
		}
	}
	return false
}

func compareValues(a, b string) int {
	if fa, err := strconv.ParseFloat(a, 64); err == nil {
		if fb, err := strconv.ParseFloat(b, 64); err == nil {
			return cmp.Compare(fa, fb)
		}
	}
	if ta, err := time.Parse(time.RFC3339Nano, a); err == nil {
		if tb, err := time.Parse(time.RFC3339Nano, b); err == nil {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(a, b)
}
