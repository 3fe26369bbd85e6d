// Package sqlfilter builds WHERE clauses from optional predicates.
//
// Column names are always supplied by the caller's code. Every user value
// goes through a positional $n placeholder.
package sqlfilter

import (
	"strconv"
	"strings"
)

// Builder accumulates AND-ed predicates and their arguments.
type Builder struct {
	preds []string
	args  []any
}

// New returns an empty Builder. Its first placeholder is $1.
func New() *Builder {
	return &Builder{}
}

// Arg registers v and returns its placeholder.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// Eq adds "column = value".
func (b *Builder) Eq(column string, v any) *Builder {
	b.preds = append(b.preds, column+" = "+b.Arg(v))
	return b
}

// NotEq adds "column <> value".
func (b *Builder) NotEq(column string, v any) *Builder {
	b.preds = append(b.preds, column+" <> "+b.Arg(v))
	return b
}

// NotIn adds "column NOT IN (...)". An empty list adds nothing.
func (b *Builder) NotIn(column string, vs ...any) *Builder {
	if len(vs) == 0 {
		return b
	}
	ph := make([]string, len(vs))
	for i, v := range vs {
		ph[i] = b.Arg(v)
	}
	b.preds = append(b.preds, column+" NOT IN ("+strings.Join(ph, ", ")+")")
	return b
}

// Search adds a case-insensitive substring match over columns.
// An empty or blank term adds nothing.
func (b *Builder) Search(term string, columns ...string) *Builder {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return b
	}
	ph := b.Arg("%" + escapeLike(term) + "%")
	ors := make([]string, len(columns))
	for i, c := range columns {
		ors[i] = c + " ILIKE " + ph
	}
	b.preds = append(b.preds, "("+strings.Join(ors, " OR ")+")")
	return b
}

// Where adds a raw predicate. Each "?" in expr is replaced by the next value's placeholder.
func (b *Builder) Where(expr string, vs ...any) *Builder {
	var sb strings.Builder
	i := 0
	for _, r := range expr {
		if r == '?' && i < len(vs) {
			sb.WriteString(b.Arg(vs[i]))
			i++
			continue
		}
		sb.WriteRune(r)
	}
	b.preds = append(b.preds, sb.String())
	return b
}

// Clause renders " WHERE p1 AND p2 ..." or "" when no predicate was added.
func (b *Builder) Clause() string {
	if len(b.preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.preds, " AND ")
}

// Args returns the arguments in placeholder order.
func (b *Builder) Args() []any {
	return b.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
