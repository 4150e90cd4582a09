package rigel

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/kailas-cloud/rigel/index"
)

// syntax renders filter nodes for one dialect.
type syntax interface {
	term(f FieldRef, v any) string
	in(f FieldRef, vs []any) string
	between(f FieldRef, lo, hi any) string
	exists(f FieldRef) string
	not(inner string) string
	join(op connectiveOp, parts []string) string
}

func syntaxFor(d index.Dialect) syntax {
	if d == index.RediSearch {
		return redisSyntax{}
	}
	return luceneSyntax{}
}

// --- Lucene ---

type luceneSyntax struct{}

func (luceneSyntax) term(f FieldRef, v any) string {
	return f.Name() + ":" + luceneLiteral(v)
}

func (luceneSyntax) in(f FieldRef, vs []any) string {
	lits := make([]string, len(vs))
	for i, v := range vs {
		lits[i] = luceneLiteral(v)
	}
	return f.Name() + ":(" + strings.Join(lits, " OR ") + ")"
}

func (luceneSyntax) between(f FieldRef, lo, hi any) string {
	return f.Name() + ":[" + luceneBound(lo) + " TO " + luceneBound(hi) + "]"
}

func (luceneSyntax) exists(f FieldRef) string {
	return f.Name() + ":[* TO *]"
}

func (luceneSyntax) not(inner string) string {
	return "(*:* AND NOT " + inner + ")"
}

func (luceneSyntax) join(op connectiveOp, parts []string) string {
	sep := " AND "
	if op == opOr {
		sep = " OR "
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// luceneLiteral renders plain words bare and anything else as a quoted
// phrase, which matches the whole value. Values holding a quote or a
// backslash cannot be quoted and are escaped rune by rune instead.
func luceneLiteral(v any) string {
	s := index.FormatValue(v)
	switch {
	case s == "":
		return `""`
	case isPlainWord(s) && (isNumber(v) || !looksNumeric(s)):
		return s
	case !strings.ContainsAny(s, `"\`):
		return `"` + s + `"`
	default:
		return luceneEscape(s)
	}
}

func luceneBound(v any) string {
	if v == nil {
		return "*"
	}
	return luceneLiteral(v)
}

func isPlainWord(s string) bool {
	switch strings.ToUpper(s) {
	case "AND", "OR", "NOT", "TO":
		return false
	}
	for i, r := range s {
		if r == '.' && i > 0 {
			continue
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func looksNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func luceneEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// --- RediSearch ---

type redisSyntax struct{}

func (redisSyntax) term(f FieldRef, v any) string {
	switch f.Kind() {
	case KindNumeric:
		n := redisNumber(v)
		return "@" + f.Name() + ":[" + n + " " + n + "]"
	case KindText:
		return "@" + f.Name() + `:"` + phraseEscaper.Replace(index.FormatValue(v)) + `"`
	default:
		return "@" + f.Name() + ":{" + tagEscaper.Replace(index.FormatValue(v)) + "}"
	}
}

func (s redisSyntax) in(f FieldRef, vs []any) string {
	if f.Kind() == KindTag {
		lits := make([]string, len(vs))
		for i, v := range vs {
			lits[i] = tagEscaper.Replace(index.FormatValue(v))
		}
		return "@" + f.Name() + ":{" + strings.Join(lits, " | ") + "}"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = s.term(f, v)
	}
	return s.join(opOr, parts)
}

func (redisSyntax) between(f FieldRef, lo, hi any) string {
	minBound, maxBound := "-inf", "+inf"
	if lo != nil {
		minBound = redisNumber(lo)
	}
	if hi != nil {
		maxBound = redisNumber(hi)
	}
	return "@" + f.Name() + ":[" + minBound + " " + maxBound + "]"
}

func (redisSyntax) exists(f FieldRef) string {
	if f.Kind() == KindNumeric {
		return "@" + f.Name() + ":[-inf +inf]"
	}
	return "-ismissing(@" + f.Name() + ")"
}

func (redisSyntax) not(inner string) string {
	return "-" + inner
}

func (redisSyntax) join(op connectiveOp, parts []string) string {
	sep := " "
	if op == opOr {
		sep = " | "
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// redisNumber renders numeric literals; times are stored as epoch millis.
func redisNumber(v any) string {
	if t, ok := v.(time.Time); ok {
		return index.FormatValue(t.UnixMilli())
	}
	return index.FormatValue(v)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
