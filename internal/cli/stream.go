package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/etrace/internal/config"
	"github.com/roach88/etrace/internal/harness"
	"github.com/roach88/etrace/internal/reasoner"
	"github.com/roach88/etrace/internal/store"
)

// StreamOptions holds flags for the stream command.
type StreamOptions struct {
	*RootOptions
	Database string
	Seed     uint64
	Interval time.Duration
	Duration time.Duration

	// SessionGenerator overrides the session id source for scenarios
	// without a session_id (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionGenerator reasoner.SessionIDGenerator
}

// StreamSummary is the state of the engine after its loop stopped.
type StreamSummary struct {
	Scenario    string `json:"scenario"`
	SessionID   string `json:"session_id"`
	Events      int    `json:"events"`
	Cycles      int64  `json:"cycles"`
	Now         int64  `json:"now"`
	TraceLength int    `json:"trace_length"`
	Concepts    int    `json:"concepts"`
	Admissions  int64  `json:"admissions"`
}

// NewStreamCommand creates the stream command.
func NewStreamCommand(rootOpts *RootOptions) *cobra.Command {
	return newStreamCommand(&StreamOptions{RootOptions: rootOpts})
}

func newStreamCommand(opts *StreamOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream <scenario.yaml>",
		Short: "Feed a scenario through the engine's event loop",
		Long: `Queue a scenario's steps as events and process them on the engine's
single-writer event loop.

Without --interval the loop drains the queue and stops. With --interval
it keeps cycling on a ticker after the queue is drained until --duration
elapses or the process receives SIGINT/SIGTERM. Assertions are not
evaluated; use run for that.

Examples:
  etrace stream ./scenarios/chain.yaml --db ./etrace.db
  etrace stream ./scenarios/chain.yaml --interval 10ms --duration 2s`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (overrides the scenario's)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "cycle on a ticker with this period")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "stop the ticking loop after this long (0 waits for a signal)")

	return cmd
}

func runStream(opts *StreamOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	params := config.Defaults()
	if scenario.Params != "" {
		if params, err = config.Load(scenario.Params); err != nil {
			return WrapExitError(ExitCommandError, "failed to load params", err)
		}
	}

	seed := scenario.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.Seed
	}
	if seed == 0 {
		seed = reasoner.DefaultSeed
	}

	var ids reasoner.SessionIDGenerator = reasoner.NewFixedGenerator(scenario.SessionID)
	if scenario.SessionID == "" {
		ids = opts.SessionGenerator
		if ids == nil {
			ids = reasoner.UUIDv7Generator{}
		}
	}

	engineOpts := []reasoner.EngineOption{
		reasoner.WithSeed(seed),
		reasoner.WithSessionGenerator(ids),
		reasoner.WithCycleInterval(opts.Interval),
		reasoner.WithLogger(logger),
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer closeStore(st, logger)
		engineOpts = append(engineOpts, reasoner.WithJournal(st))
	}

	eng, err := reasoner.New(params, engineOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create reasoner", err)
	}

	// Tasks are built before the loop starts: the engine's serial counter
	// belongs to the Run goroutine once it is running.
	events := 0
	for i, step := range scenario.Steps {
		ev := reasoner.CycleEvent(step.Cycles)
		if step.Input != nil {
			task, err := harness.BuildTask(eng, step.Input)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("step %d", i), err)
			}
			ev = reasoner.InputEvent(task)
		}
		eng.Enqueue(ev)
		events++
	}
	if opts.Interval <= 0 {
		eng.Stop()
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.Interval > 0 && opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	formatter.VerboseLog("streaming %d events for session %s", events, eng.SessionID())
	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	summary := StreamSummary{
		Scenario:    scenario.Name,
		SessionID:   eng.SessionID(),
		Events:      events,
		Cycles:      eng.Cycles(),
		Now:         eng.Now(),
		TraceLength: eng.State().Trace().Len(),
		Concepts:    eng.Memory().Len(),
		Admissions:  eng.Memory().Admitted(),
	}
	return formatter.Success(summary, func(w io.Writer) {
		fmt.Fprintf(w, "Session:    %s\n", summary.SessionID)
		fmt.Fprintf(w, "Events:     %d\n", summary.Events)
		fmt.Fprintf(w, "Cycles:     %d (now %d)\n", summary.Cycles, summary.Now)
		fmt.Fprintf(w, "Trace:      %d items\n", summary.TraceLength)
		fmt.Fprintf(w, "Concepts:   %d\n", summary.Concepts)
		fmt.Fprintf(w, "Admissions: %d\n", summary.Admissions)
	})
}

// commandContext returns the command's context, which tests set, or
// context.Background().
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
