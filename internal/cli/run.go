package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/atmo/internal/config"
	"github.com/roach88/atmo/internal/core"
	"github.com/roach88/atmo/internal/dispatch"
	"github.com/roach88/atmo/internal/journal"
	"github.com/roach88/atmo/internal/metrics"
	"github.com/roach88/atmo/internal/trace"
	"github.com/roach88/atmo/internal/value"
	"github.com/roach88/atmo/internal/wiring"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config      string
	Ticks       int
	Journal     string
	MetricsAddr string
	Inject      []string
	Trace       bool

	// RunIDs overrides run id generation (for testing). Defaults to UUIDv7.
	RunIDs core.RunIDGenerator
}

// RunSummary is printed when the runtime stops.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Ticks     int           `json:"ticks"`
	Abilities int           `json:"abilities"`
	Callbacks int           `json:"callbacks"`
	Failures  int           `json:"failures"`
	Trace     []trace.Event `json:"trace,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <wiring-file>",
		Short: "Run a wiring graph on the host runtime",
		Long: `Load a wiring file (YAML or CUE), register its abilities and triggers,
start interval producers and run the scheduler.

Without --ticks the scheduler runs until interrupted. --inject queues an
ability before the first tick; the value is written kind:text.

Example:
  atmo run ./thermostat.yaml
  atmo run --ticks 1 --inject 1=float:25 --trace ./thermostat.yaml
  atmo run --journal ./atmo.db --metrics-addr :9100 ./thermostat.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWiring(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "runtime config file (YAML)")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "stop after N ticks (0 runs until interrupted)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the trace to this SQLite file")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().StringArrayVar(&opts.Inject, "inject", nil, "queue ability before the first tick: id[=kind:text] (repeatable)")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print the trace when the run ends")

	return cmd
}

// injection is a parsed --inject flag.
type injection struct {
	id uint32
	v  value.Value
}

func parseInjection(s string) (injection, error) {
	idText, lit, hasValue := strings.Cut(s, "=")
	id, err := strconv.ParseUint(strings.TrimSpace(idText), 10, 32)
	if err != nil {
		return injection{}, fmt.Errorf("inject %q: ability id: %w", s, err)
	}
	if !hasValue {
		return injection{id: uint32(id)}, nil
	}
	kind, text, ok := strings.Cut(lit, ":")
	if !ok {
		return injection{}, fmt.Errorf("inject %q: value must be kind:text", s)
	}
	v, err := (&wiring.Literal{Kind: kind, Text: text}).Value()
	if err != nil {
		return injection{}, fmt.Errorf("inject %q: %w", s, err)
	}
	return injection{id: uint32(id), v: v}, nil
}

// tally sums TickStats across a run.
type tally struct {
	core.NopObserver
	mu sync.Mutex
	s  RunSummary
}

func (t *tally) TickFinished(s core.TickStats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Ticks++
	t.s.Abilities += s.Abilities
	t.s.Callbacks += s.Callbacks
	t.s.Failures += s.Failures
}

func (t *tally) summary() RunSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}

func runWiring(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Journal != "" {
		cfg.JournalPath = opts.Journal
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}
	level, _ := cfg.Level()
	logger := newLogger(cmd.ErrOrStderr(), level, opts.Verbose)

	f, err := wiring.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load wiring", err)
	}
	for _, w := range wiring.AnalyzeCycles(f) {
		logger.Warn("wiring cycle", "cycle", w.Message)
	}

	injections := make([]injection, 0, len(opts.Inject))
	defer func() {
		for i := range injections {
			injections[i].v.Free()
		}
	}()
	for _, s := range opts.Inject {
		inj, err := parseInjection(s)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --inject", err)
		}
		injections = append(injections, inj)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := opts.RunIDs
	if gen == nil {
		gen = core.UUIDv7Generator{}
	}
	runID := gen.Generate()

	counts := &tally{}
	coreOpts := append(cfg.RuntimeOptions(),
		core.WithLogger(logger),
		core.WithRunIDGenerator(core.NewFixedGenerator(runID)),
		core.WithObserver(counts),
	)
	regOpts := append(cfg.RegistryOptions(), dispatch.WithLogger(logger))

	var recOpts []trace.Option
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if err := j.Close(); err != nil {
				logger.Error("error closing journal", "error", err)
			}
		}()
		cfgJSON, _ := json.Marshal(cfg)
		if err := j.BeginRun(ctx, runID, string(cfgJSON)); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		sink := trace.NewAsyncSink(j.Sink(context.WithoutCancel(ctx), runID), trace.DefaultAsyncBuffer, logger)
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Warn("journal incomplete", "error", err)
			}
		}()
		recOpts = append(recOpts, trace.WithSink(sink), trace.WithLogger(logger))
		if !opts.Trace {
			recOpts = append(recOpts, trace.WithoutBuffer())
		}
		logger.Info("journal ready", "path", cfg.JournalPath, "run_id", runID)
	}
	var rec *trace.Recorder
	if opts.Trace || cfg.JournalPath != "" {
		rec = trace.NewRecorder(recOpts...)
		coreOpts = append(coreOpts, core.WithObserver(rec))
		regOpts = append(regOpts, dispatch.WithObserver(rec))
	}

	var metricsDone chan error
	if cfg.MetricsAddr != "" {
		promReg := prometheus.NewRegistry()
		m := metrics.New(promReg)
		if err := m.Register(); err != nil {
			return WrapExitError(ExitCommandError, "failed to register metrics", err)
		}
		ln, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to listen for metrics", err)
		}
		coreOpts = append(coreOpts, core.WithObserver(m))
		regOpts = append(regOpts, dispatch.WithObserver(m))
		metricsDone = make(chan error, 1)
		go func() { metricsDone <- metrics.Serve(ctx, ln, promReg, logger) }()
	}

	host := core.NewHostPlatform(logger)
	reg, err := wiring.Build(f, host, regOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build wiring", err)
	}

	prodCtx, stopProducers := context.WithCancel(ctx)
	defer stopProducers()
	var producers *wiring.Producers
	coreOpts = append(coreOpts, core.WithSetup(func(_ context.Context, rt *core.Runtime) error {
		var err error
		producers, err = wiring.StartProducers(prodCtx, f, rt, logger)
		return err
	}))

	rt, err := core.New(host, reg, coreOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create runtime", err)
	}
	if err := rt.Init(ctx); err != nil {
		return WrapExitError(ExitFailure, "runtime init failed", err)
	}

	for i := range injections {
		if err := rt.AddAbilityExecute(injections[i].id, &injections[i].v); err != nil {
			return WrapExitError(ExitFailure, "inject failed", err)
		}
	}

	logger.Info("running wiring", "name", f.Name, "run_id", runID, "abilities", len(f.Abilities), "triggers", len(f.Triggers))
	runErr := runTicks(ctx, rt, opts.Ticks, cfg.TickInterval)

	stopProducers()
	if producers != nil {
		producers.Wait()
	}
	stop()
	if metricsDone != nil {
		if err := <-metricsDone; err != nil {
			logger.Error("metrics server", "error", err)
		}
	}
	if runErr != nil {
		return WrapExitError(ExitFailure, "runtime error", runErr)
	}

	summary := counts.summary()
	summary.RunID = runID
	if opts.Trace && rec != nil {
		summary.Trace = rec.Events()
	}
	if formatter.JSON() {
		return formatter.Success(summary, "")
	}
	if opts.Trace && rec != nil {
		if err := trace.WriteText(cmd.OutOrStdout(), summary.Trace); err != nil {
			return err
		}
	}
	return formatter.Success(summary, fmt.Sprintf("run %s: %d ticks, %d abilities, %d callbacks, %d failures",
		summary.RunID, summary.Ticks, summary.Abilities, summary.Callbacks, summary.Failures))
}

// runTicks runs exactly n ticks spaced by interval, or the free-running
// loop when n is 0. Cancellation is a clean stop.
func runTicks(ctx context.Context, rt *core.Runtime, n int, interval time.Duration) error {
	if n <= 0 {
		err := rt.Run(ctx, interval)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
	for i := 0; i < n; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interval):
			}
		}
		rt.Tick(ctx)
	}
	return nil
}
