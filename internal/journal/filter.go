package journal

import (
	"strings"

	"github.com/roach88/atmo/internal/trace"
)

// Filter narrows a Query. Zero fields match everything.
type Filter struct {
	Types []trace.EventType

	// ID matches the ability or trigger id of an event. Only consulted
	// when HasID is set, since 0 is a valid id.
	ID    uint32
	HasID bool

	FromSeq int64 // inclusive
	ToSeq   int64 // inclusive
	Limit   int
}

// compile renders f as parameterized SQL. Values are never interpolated
// and results are always ordered by step.
func (f Filter) compile(runID string) (string, []any) {
	where := []string{"run_id = ?"}
	args := []any{runID}

	if len(f.Types) > 0 {
		marks := make([]string, len(f.Types))
		for i, t := range f.Types {
			marks[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, "event IN ("+strings.Join(marks, ", ")+")")
	}
	if f.HasID {
		where = append(where, "ref_id = ?")
		args = append(args, f.ID)
	}
	if f.FromSeq > 0 {
		where = append(where, "seq >= ?")
		args = append(args, f.FromSeq)
	}
	if f.ToSeq > 0 {
		where = append(where, "seq <= ?")
		args = append(args, f.ToSeq)
	}

	query := "SELECT payload FROM events WHERE " + strings.Join(where, " AND ") + " ORDER BY step ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return query, args
}
