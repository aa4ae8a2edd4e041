package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atmo/internal/trace"
)

func TestFilter_Compile(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		sql    string
		args   []any
	}{
		{
			name:   "run only",
			filter: Filter{},
			sql:    "SELECT payload FROM events WHERE run_id = ? ORDER BY step ASC",
			args:   []any{"r"},
		},
		{
			name:   "everything",
			filter: Filter{Types: []trace.EventType{trace.EventAbility, trace.EventTrigger}, ID: 0, HasID: true, FromSeq: 2, ToSeq: 4, Limit: 10},
			sql:    "SELECT payload FROM events WHERE run_id = ? AND event IN (?, ?) AND ref_id = ? AND seq >= ? AND seq <= ? ORDER BY step ASC LIMIT ?",
			args:   []any{"r", "ability", "trigger", uint32(0), int64(2), int64(4), 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.filter.compile("r")
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestQuery_Filters(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	require.NoError(t, j.BeginRun(ctx, "run", ""))

	events := []trace.Event{
		{Step: 1, Seq: 1, Type: trace.EventTickStart},
		{Step: 2, Seq: 1, Type: trace.EventAbility, ID: 1, Name: "a", Depth: 1, ValueKind: "void"},
		{Step: 3, Seq: 1, Type: trace.EventAbility, ID: 2, Name: "b", Depth: 2, ValueKind: "void"},
		{Step: 4, Seq: 1, Type: trace.EventTickEnd, Abilities: 1},
		{Step: 5, Seq: 2, Type: trace.EventTickStart},
		{Step: 6, Seq: 2, Type: trace.EventAbility, ID: 1, Name: "a", Depth: 1, ValueKind: "void"},
		{Step: 7, Seq: 2, Type: trace.EventTickEnd, Abilities: 1},
	}
	for _, e := range events {
		require.NoError(t, j.Append(ctx, "run", e))
	}

	steps := func(es []trace.Event) []int64 {
		out := make([]int64, len(es))
		for i, e := range es {
			out[i] = e.Step
		}
		return out
	}

	got, err := j.Query(ctx, "run", Filter{Types: []trace.EventType{trace.EventAbility}, ID: 1, HasID: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 6}, steps(got))

	got, err = j.Query(ctx, "run", Filter{FromSeq: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6, 7}, steps(got))

	got, err = j.Query(ctx, "run", Filter{ToSeq: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, steps(got))
}
