package shared

import (
	"strconv"
	"strings"
)

// Where accumulates numbered predicates for the dynamic list queries.
type Where struct {
	clauses []string
	args    []any
}

// Add appends clause, replacing each ? with the next placeholder bound to arg.
func (w *Where) Add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(w.args))))
}

// Search matches term case-insensitively against any of cols.
func (w *Where) Search(term string, cols ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " ILIKE ?"
	}
	w.Add("("+strings.Join(parts, " OR ")+")", "%"+term+"%")
}

// Active filters on is_active when set.
func (w *Where) Active(active *bool) {
	if active != nil {
		w.Add("is_active = ?", *active)
	}
}

// SQL renders the WHERE clause, or an empty string.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Args returns the bound arguments.
func (w *Where) Args() []any {
	return w.args
}

// Paged returns the arguments plus limit and offset, and the LIMIT/OFFSET
// clause that binds them.
func (w *Where) Paged(f ListFilters) (string, []any) {
	f = f.Normalize()
	n := len(w.args)
	args := append(append([]any{}, w.args...), f.Limit, f.Offset())
	return " LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2), args
}

// OrderBy maps the requested sort key through allowed, falling back to
// fallback for unknown keys.
func OrderBy(f ListFilters, allowed map[string]string, fallback string) string {
	col, ok := allowed[f.SortBy]
	if !ok {
		col = fallback
	}
	dir := "ASC"
	if f.SortDir == SortDesc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", id " + dir
}
