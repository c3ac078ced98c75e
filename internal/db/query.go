package db

import (
	"fmt"
	"strings"
)

// sortSpec whitelists the columns a listing may be ordered by.
type sortSpec struct {
	columns      map[string]string
	defaultOrder string
	// defaultDesc applies when the caller names a column but no direction.
	defaultDesc bool
}

// orderBy returns an ORDER BY clause. Unknown columns fall back to the default
// ordering; caller input never reaches the SQL text.
func (s sortSpec) orderBy(sortBy, order string) string {
	col, ok := s.columns[sortBy]
	if !ok {
		return " ORDER BY " + s.defaultOrder
	}
	dir := "ASC"
	switch strings.ToLower(order) {
	case "desc":
		dir = "DESC"
	case "asc":
	default:
		if s.defaultDesc {
			dir = "DESC"
		}
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

// filterQuery accumulates WHERE conditions and their positional arguments.
type filterQuery struct {
	sql  strings.Builder
	args []any
}

func newFilterQuery(base string) *filterQuery {
	q := &filterQuery{}
	q.sql.WriteString(base)
	return q
}

// add appends " AND <cond>", where cond uses %d for each placeholder it needs.
func (q *filterQuery) add(cond string, args ...any) {
	nums := make([]any, len(args))
	for i := range args {
		nums[i] = len(q.args) + i + 1
	}
	q.sql.WriteString(" AND ")
	q.sql.WriteString(fmt.Sprintf(cond, nums...))
	q.args = append(q.args, args...)
}

func (q *filterQuery) append(s string) {
	q.sql.WriteString(s)
}

func (q *filterQuery) String() string {
	return q.sql.String()
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
