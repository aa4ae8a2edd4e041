package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/atmo/internal/trace"
)

// Run is one recorded runtime session.
type Run struct {
	ID        string
	StartedAt string
	Config    string
	Events    int
}

// BeginRun registers runID. config is stored verbatim (JSON). Beginning
// the same run twice is a no-op.
func (j *Journal) BeginRun(ctx context.Context, runID, config string) error {
	if runID == "" {
		return fmt.Errorf("begin run: empty run id")
	}
	if config == "" {
		config = "{}"
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, config) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, runID, config)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// Append stores e under runID. The payload is the event's canonical JSON;
// a duplicate step is ignored.
func (j *Journal) Append(ctx context.Context, runID string, e trace.Event) error {
	payload, err := trace.MarshalCanonical(e)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO events (run_id, step, seq, event, ref_id, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, runID, e.Step, e.Seq, string(e.Type), e.ID, string(payload))
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Events returns the events of runID ordered by step.
func (j *Journal) Events(ctx context.Context, runID string) ([]trace.Event, error) {
	return j.Query(ctx, runID, Filter{})
}

// Query returns the events of runID matching f, ordered by step.
func (j *Journal) Query(ctx context.Context, runID string, f Filter) ([]trace.Event, error) {
	query, args := f.compile(runID)
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []trace.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		var e trace.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Runs lists recorded runs, most recent first.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.config, COUNT(e.step)
		FROM runs r
		LEFT JOIN events e ON e.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Config, &r.Events); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Sink adapts a run to trace.Sink.
func (j *Journal) Sink(ctx context.Context, runID string) trace.Sink {
	return &runSink{ctx: ctx, j: j, runID: runID}
}

type runSink struct {
	ctx   context.Context
	j     *Journal
	runID string
}

func (s *runSink) Append(e trace.Event) error {
	return s.j.Append(s.ctx, s.runID, e)
}
