// Package sqlcheck classifies learner SQL before it reaches the database.
//
// The grader only ever executes read-only statements. The guard here is a
// lexical screen, not a SQL parser: it scrubs comments and literals, then
// inspects statement boundaries and the leading keyword. The runner pairs
// it with PRAGMA query_only on the connection, so a statement that slips
// past the screen still cannot write.
package sqlcheck

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for statement screening. Callers match with errors.Is.
var (
	ErrEmptyInput         = errors.New("no SQL statement found")
	ErrMultipleStatements = errors.New("multiple SQL statements are not allowed")
	ErrNotReadOnly        = errors.New("only read-only statements are allowed")
	ErrUnterminated       = errors.New("unterminated string, quoted identifier, or comment")
)

// Statement describes a screened, single, read-only SQL statement.
type Statement struct {
	// Head is the uppercased leading keyword (SELECT, WITH, VALUES, EXPLAIN).
	Head string

	// HasOrderBy reports whether the outermost statement carries an
	// ORDER BY clause. ORDER BY inside subqueries, CTE bodies, or window
	// frames does not count: only a top-level clause makes the learner's
	// row order part of their answer.
	HasOrderBy bool
}

// readOnlyHeads are the keywords a statement may start with.
var readOnlyHeads = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"VALUES":  true,
	"EXPLAIN": true,
}

// Check screens a SQL text and returns its classification.
// It fails for empty input, multiple statements, unterminated literals,
// and statements that are not read-only.
func Check(sqlText string) (*Statement, error) {
	cleaned, err := scrub(sqlText)
	if err != nil {
		return nil, err
	}

	stmt, err := singleStatement(cleaned)
	if err != nil {
		return nil, err
	}

	words := fields(stmt)
	if len(words) == 0 {
		return nil, ErrEmptyInput
	}

	head := strings.ToUpper(words[0])
	if !readOnlyHeads[head] {
		return nil, fmt.Errorf("%w: statement starts with %s", ErrNotReadOnly, head)
	}

	// EXPLAIN and EXPLAIN QUERY PLAN wrap another statement; the wrapped
	// statement must itself be read-only.
	if head == "EXPLAIN" {
		inner := words[1:]
		if len(inner) >= 2 && strings.EqualFold(inner[0], "QUERY") && strings.EqualFold(inner[1], "PLAN") {
			inner = inner[2:]
		}
		if len(inner) == 0 {
			return nil, ErrEmptyInput
		}
		if !readOnlyHeads[strings.ToUpper(inner[0])] {
			return nil, fmt.Errorf("%w: EXPLAIN wraps %s", ErrNotReadOnly, strings.ToUpper(inner[0]))
		}
	}

	return &Statement{
		Head:       head,
		HasOrderBy: hasTopLevelOrderBy(stmt),
	}, nil
}

// scrub removes comment bodies and the contents of string literals and
// quoted identifiers, preserving statement structure (parens, semicolons,
// keywords). Literals are replaced with empty quoted placeholders so word
// boundaries survive.
func scrub(sqlText string) (string, error) {
	var out strings.Builder
	s := sqlText
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			// Line comment: skip to end of line.
			for i < len(s) && s[i] != '\n' {
				i++
			}
			out.WriteByte(' ')
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return "", fmt.Errorf("%w: block comment", ErrUnterminated)
			}
			i += 2 + end + 2
			out.WriteByte(' ')
		case c == '\'':
			n, err := scanQuoted(s[i:], '\'', true)
			if err != nil {
				return "", err
			}
			i += n
			out.WriteString("''")
		case c == '"':
			n, err := scanQuoted(s[i:], '"', true)
			if err != nil {
				return "", err
			}
			i += n
			out.WriteString(`"q"`)
		case c == '`':
			n, err := scanQuoted(s[i:], '`', false)
			if err != nil {
				return "", err
			}
			i += n
			out.WriteString("`q`")
		case c == '[':
			end := strings.IndexByte(s[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: bracketed identifier", ErrUnterminated)
			}
			i += 1 + end + 1
			out.WriteString("[q]")
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}

// scanQuoted returns the byte length of a quoted region starting at s[0],
// which must be the opening quote. Doubled quotes escape when doubling is
// true ('' inside '...', "" inside "...").
func scanQuoted(s string, quote byte, doubling bool) (int, error) {
	i := 1
	for i < len(s) {
		if s[i] != quote {
			i++
			continue
		}
		if doubling && i+1 < len(s) && s[i+1] == quote {
			i += 2
			continue
		}
		return i + 1, nil
	}
	return 0, fmt.Errorf("%w: quote %q", ErrUnterminated, string(quote))
}

// singleStatement splits scrubbed SQL on semicolons and requires exactly
// one non-empty statement. A single trailing semicolon is tolerated.
func singleStatement(cleaned string) (string, error) {
	parts := strings.Split(cleaned, ";")
	var stmts []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			stmts = append(stmts, p)
		}
	}
	switch len(stmts) {
	case 0:
		return "", ErrEmptyInput
	case 1:
		return stmts[0], nil
	default:
		return "", fmt.Errorf("%w: found %d", ErrMultipleStatements, len(stmts))
	}
}

// hasTopLevelOrderBy scans a scrubbed statement for ORDER BY at paren
// depth zero.
func hasTopLevelOrderBy(stmt string) bool {
	depth := 0
	words := fieldsWithDepth(stmt, &depth)
	for i := 0; i+1 < len(words); i++ {
		if words[i].depth == 0 &&
			strings.EqualFold(words[i].text, "ORDER") &&
			strings.EqualFold(words[i+1].text, "BY") {
			return true
		}
	}
	return false
}

type depthWord struct {
	text  string
	depth int
}

// fieldsWithDepth tokenizes into words annotated with the paren depth at
// which each word starts. The depth pointer carries state so callers can
// inspect the final depth if needed.
func fieldsWithDepth(s string, depth *int) []depthWord {
	var words []depthWord
	var cur strings.Builder
	curDepth := 0
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, depthWord{text: cur.String(), depth: curDepth})
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '(':
			flush()
			*depth++
		case c == ')':
			flush()
			if *depth > 0 {
				*depth--
			}
		case isWordByte(c):
			if cur.Len() == 0 {
				curDepth = *depth
			}
			cur.WriteByte(c)
		default:
			flush()
		}
	}
	flush()
	return words
}

// fields tokenizes scrubbed SQL into bare words, ignoring punctuation.
func fields(s string) []string {
	depth := 0
	words := fieldsWithDepth(s, &depth)
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.text
	}
	return out
}

// isWordByte reports whether c can appear in a SQL word token.
func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
