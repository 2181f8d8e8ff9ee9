package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/etrace/internal/harness"
	"github.com/roach88/etrace/internal/reasoner"
	"github.com/roach88/etrace/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Seed     uint64

	// SessionGenerator overrides the session id source for journaled runs
	// of scenarios without a session_id (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionGenerator reasoner.SessionIDGenerator
}

// RunSummary is the JSON payload of the run command.
type RunSummary struct {
	Scenario string `json:"scenario"`
	*harness.Result
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario step by step",
		Long: `Run a YAML scenario synchronously and check its assertions.

Each input step is processed immediately and each cycles step runs that
many control cycles. With --db, the session and every admission are
recorded to a SQLite journal (created if it doesn't exist).

Exit codes:
  0 - Every input accepted and every assertion held
  1 - An input was refused or an assertion failed
  2 - Command error (missing scenario, bad parameters, journal failure)

Examples:
  etrace run ./scenarios/chain.yaml
  etrace run ./scenarios/chain.yaml --db ./etrace.db --seed 7
  etrace run ./scenarios/chain.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (overrides the scenario's)")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	if cmd.Flags().Changed("seed") {
		scenario.Seed = opts.Seed
	}

	hopts := []harness.Option{harness.WithLogger(logger)}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer closeStore(st, logger)
		hopts = append(hopts, harness.WithJournal(st))

		// A fixed default id would make every journaled run after the
		// first a silent no-op.
		if scenario.SessionID == "" {
			gen := opts.SessionGenerator
			if gen == nil {
				gen = reasoner.UUIDv7Generator{}
			}
			hopts = append(hopts, harness.WithSessionGenerator(gen))
		}
	}

	formatter.VerboseLog("running scenario %s (%d steps)", scenario.Name, len(scenario.Steps))
	result, err := harness.Run(scenario, hopts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario run failed", err)
	}

	summary := RunSummary{Scenario: scenario.Name, Result: result}
	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: summary, SessionID: result.SessionID}
		if !result.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_SCENARIO_FAILED", Message: fmt.Sprintf("%d failure(s)", len(result.Errors))}
		}
		if err := formatter.encode(resp); err != nil {
			return err
		}
	} else {
		writeRunText(formatter.Writer, summary)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed with %d error(s)", scenario.Name, len(result.Errors)))
	}
	return nil
}

func writeRunText(w io.Writer, s RunSummary) {
	fmt.Fprintf(w, "Scenario: %s\n", s.Scenario)
	fmt.Fprintf(w, "Session:  %s\n", s.SessionID)
	fmt.Fprintf(w, "Cycles:   %d (now %d)\n", len(s.Cycles), s.Snapshot.Now)
	fmt.Fprintf(w, "Trace:    %d items, %d salient terms\n", len(s.Snapshot.Trace), len(s.Snapshot.Salience))
	fmt.Fprintf(w, "Admitted: %d\n", len(s.Admitted))
	for _, a := range s.Admitted {
		fmt.Fprintf(w, "  %s\n", a)
	}

	if s.Pass {
		fmt.Fprintln(w, "✓ passed")
		return
	}
	fmt.Fprintln(w, "✗ failed")
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func closeStore(st *store.Store, logger *slog.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}
