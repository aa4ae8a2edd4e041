package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/atmo/internal/journal"
	"github.com/roach88/atmo/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	JSONL   bool
	Events  []string
	ID      uint32
	FromSeq int64
	ToSeq   int64
	Limit   int
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Show runs recorded in a journal",
		Long: `List the runs recorded by "atmo run --journal", or print the events of one
run. "latest" selects the most recent run.

Example:
  atmo trace --journal ./atmo.db
  atmo trace --journal ./atmo.db latest
  atmo trace --journal ./atmo.db --jsonl 0192f0c4-...
  atmo trace --journal ./atmo.db --event ability --id 3 latest`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runTrace(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the journal SQLite file (required)")
	cmd.Flags().BoolVar(&opts.JSONL, "jsonl", false, "print events as canonical JSON lines")
	cmd.Flags().StringSliceVar(&opts.Events, "event", nil, "only show these event types (tick_start, ability, trigger, ...)")
	cmd.Flags().Uint32Var(&opts.ID, "id", 0, "only show events for this ability or trigger id")
	cmd.Flags().Int64Var(&opts.FromSeq, "from-tick", 0, "first tick to show")
	cmd.Flags().Int64Var(&opts.ToSeq, "to-tick", 0, "last tick to show")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	runs, err := j.Runs(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if runID == "" {
		var b strings.Builder
		for i, r := range runs {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%s  %s  %d events", r.ID, r.StartedAt, r.Events)
		}
		if len(runs) == 0 {
			b.WriteString("no runs recorded")
		}
		return formatter.Success(runs, b.String())
	}

	if runID == "latest" {
		if len(runs) == 0 {
			_ = formatter.Error("E300", "no runs recorded", nil)
			return NewExitError(ExitFailure, "no runs recorded")
		}
		runID = runs[0].ID
	}
	found := false
	for _, r := range runs {
		if r.ID == runID {
			found = true
			break
		}
	}
	if !found {
		_ = formatter.Error("E301", fmt.Sprintf("run %q not found", runID), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("run %q not found", runID))
	}

	filter := journal.Filter{
		ID:      opts.ID,
		HasID:   cmd.Flags().Changed("id"),
		FromSeq: opts.FromSeq,
		ToSeq:   opts.ToSeq,
		Limit:   opts.Limit,
	}
	for _, e := range opts.Events {
		filter.Types = append(filter.Types, trace.EventType(e))
	}

	events, err := j.Query(ctx, runID, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}
	switch {
	case opts.JSONL:
		return trace.WriteJSONL(cmd.OutOrStdout(), events)
	case formatter.JSON():
		return formatter.Success(events, "")
	default:
		return trace.WriteText(cmd.OutOrStdout(), events)
	}
}
