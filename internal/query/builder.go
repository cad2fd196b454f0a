package query

import (
	"fmt"
	"strings"
)

// clause is one WHERE fragment together with the values it binds. Fragments
// use ? markers; they are rewritten to positional $n placeholders only when
// the builder renders, so the placeholder index and the argument list cannot
// drift apart.
type clause struct {
	expr string
	args []interface{}
}

// Builder accumulates WHERE clauses and renders them as a single ANDed
// predicate with positional placeholders.
type Builder struct {
	clauses []clause
	err     error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Where appends a fragment. The number of ? markers in expr must equal the
// number of args; a mismatch poisons the builder and surfaces at Render.
func (b *Builder) Where(expr string, args ...interface{}) *Builder {
	if b.err != nil {
		return b
	}
	if strings.Count(expr, "?") != len(args) {
		b.err = fmt.Errorf("query: clause %q binds %d values for %d placeholders", expr, len(args), strings.Count(expr, "?"))
		return b
	}
	b.clauses = append(b.clauses, clause{expr: expr, args: args})
	return b
}

// Empty reports whether no clauses have been added.
func (b *Builder) Empty() bool {
	return len(b.clauses) == 0
}

// Render joins the accumulated clauses with AND and rewrites ? markers to
// $n placeholders, numbering from startPos. It returns the predicate, the
// bound values in placeholder order, and the next free placeholder index.
func (b *Builder) Render(startPos int) (string, []interface{}, int, error) {
	if b.err != nil {
		return "", nil, startPos, b.err
	}

	var sb strings.Builder
	args := make([]interface{}, 0)
	pos := startPos

	for i, c := range b.clauses {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		for _, r := range c.expr {
			if r == '?' {
				sb.WriteString(fmt.Sprintf("$%d", pos))
				pos++
				continue
			}
			sb.WriteRune(r)
		}
		args = append(args, c.args...)
	}

	return sb.String(), args, pos, nil
}
