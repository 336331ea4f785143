// Package filter turns list query parameters (?search=, ?ordering=) into SQL
// fragments with numbered arguments.
package filter

import (
	"fmt"
	"strings"
)

// OrderField is one entry of an ?ordering= value.
type OrderField struct {
	Field string
	Desc  bool
}

// Ordering is a parsed ?ordering= value, e.g. "-price,title".
type Ordering []OrderField

// ParseOrdering keeps the allowed fields of raw in order. Unknown and
// repeated fields are dropped, so the result may be empty.
func ParseOrdering(raw string, allowed ...string) Ordering {
	ok := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		ok[f] = true
	}

	var out Ordering
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if !ok[name] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, OrderField{Field: name, Desc: desc})
	}
	return out
}

// String is the canonical form, "-price,title".
func (o Ordering) String() string {
	parts := make([]string, 0, len(o))
	for _, f := range o {
		if f.Desc {
			parts = append(parts, "-"+f.Field)
		} else {
			parts = append(parts, f.Field)
		}
	}
	return strings.Join(parts, ",")
}

// SQL renders " ORDER BY ..." using columns to map field names. An empty
// ordering yields fallback. tiebreak is always appended.
func (o Ordering) SQL(columns map[string]string, fallback, tiebreak string) string {
	if len(o) == 0 {
		return " ORDER BY " + fallback + ", " + tiebreak
	}

	parts := make([]string, 0, len(o)+1)
	for _, f := range o {
		col, ok := columns[f.Field]
		if !ok {
			continue
		}
		if f.Desc {
			col += " DESC"
		}
		parts = append(parts, col)
	}
	if len(parts) == 0 {
		return " ORDER BY " + fallback + ", " + tiebreak
	}
	return " ORDER BY " + strings.Join(append(parts, tiebreak), ", ")
}

// SearchTerms splits a ?search= value on whitespace and commas.
func SearchTerms(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains returns an ILIKE pattern matching term anywhere.
func Contains(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// Where collects AND-ed conditions and their positional arguments.
type Where struct {
	conds []string
	args  []any
}

// Arg registers v and returns its placeholder.
func (w *Where) Arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *Where) Add(cond string) {
	w.conds = append(w.conds, cond)
}

// Search requires every term to match at least one of columns.
func (w *Where) Search(terms []string, columns ...string) {
	for _, term := range terms {
		p := w.Arg(Contains(term))
		ors := make([]string, 0, len(columns))
		for _, col := range columns {
			ors = append(ors, col+" ILIKE "+p)
		}
		w.Add("(" + strings.Join(ors, " OR ") + ")")
	}
}

// Clause is " WHERE a AND b", or "" without conditions.
func (w *Where) Clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *Where) Args() []any {
	return w.args
}
