package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/etrace/internal/config"
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/reasoner"
	"github.com/roach88/etrace/internal/testutil"
)

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	journal reasoner.Journal
	ids     reasoner.SessionIDGenerator
	logger  *slog.Logger
}

// WithJournal records the run to j.
func WithJournal(j reasoner.Journal) Option {
	return func(c *runConfig) { c.journal = j }
}

// WithSessionGenerator replaces the scenario's fixed session id.
func WithSessionGenerator(g reasoner.SessionIDGenerator) Option {
	return func(c *runConfig) { c.ids = g }
}

// WithLogger sets the reasoner's logger. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load parameters (defaults, or the scenario's CUE file)
//  2. Create a reasoner with a fixed session id and the scenario seed
//  3. Execute steps; refused inputs are recorded and the run continues
//  4. Flush pending admissions and take the snapshot
//  5. Evaluate assertions
//
// An error is returned only when the run itself cannot proceed: bad
// parameters or a failing journal.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		ids:    testutil.NewFixedSessionGenerator(scenario.SessionID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	params := config.Defaults()
	if scenario.Params != "" {
		p, err := config.Load(scenario.Params)
		if err != nil {
			return nil, fmt.Errorf("failed to load params: %w", err)
		}
		params = p
	}

	seed := scenario.Seed
	if seed == 0 {
		seed = reasoner.DefaultSeed
	}
	engineOpts := []reasoner.EngineOption{
		reasoner.WithSeed(seed),
		reasoner.WithSessionGenerator(cfg.ids),
		reasoner.WithLogger(cfg.logger),
	}
	if cfg.journal != nil {
		engineOpts = append(engineOpts, reasoner.WithJournal(cfg.journal))
	}
	eng, err := reasoner.New(params, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create reasoner: %w", err)
	}

	ctx := context.Background()
	result := NewResult()
	result.SessionID = eng.SessionID()

	if err := executeSteps(ctx, eng, scenario.Steps, result); err != nil {
		return nil, err
	}
	if err := eng.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to flush journal: %w", err)
	}

	result.Snapshot = TakeSnapshot(scenario.Name, eng)

	actx := &AssertionContext{Engine: eng}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func executeSteps(ctx context.Context, eng *reasoner.Engine, steps []Step, result *Result) error {
	for i, step := range steps {
		if step.Input == nil {
			for range step.Cycles {
				report, err := eng.Step(ctx)
				if err != nil {
					return fmt.Errorf("step %d: %w", i, err)
				}
				for _, c := range report.Admitted {
					result.Admitted = append(result.Admitted, c.Term.String())
				}
				result.Cycles = append(result.Cycles, CycleSummary{
					Now:      eng.Now(),
					Sampled:  report.Sampled,
					Derived:  report.Derived,
					Admitted: len(report.Admitted),
				})
			}
			continue
		}

		task, err := BuildTask(eng, step.Input)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if err := eng.Input(ctx, task); err != nil {
			if reasoner.IsJournalError(err) {
				return fmt.Errorf("step %d: %w", i, err)
			}
			result.AddError(fmt.Sprintf("step %d: input %s refused: %v", i, task, err))
		}
	}
	return nil
}

// BuildTask turns an input step into an input task stamped by eng.
func BuildTask(eng *reasoner.Engine, in *InputStep) (*nal.Task, error) {
	t, err := in.Build()
	if err != nil {
		return nil, err
	}
	punct, err := nal.ParsePunctuation(in.Punctuation)
	if err != nil {
		return nil, err
	}

	truth := nal.NewTruth(1, 0.9)
	if in.Frequency != nil {
		truth.Frequency = *in.Frequency
	}
	if in.Confidence != nil {
		truth.Confidence = *in.Confidence
	}

	at := nal.Eternal
	if in.At != nil && !in.Eternal {
		at = *in.At
	}
	return eng.NewInputTask(t, punct, truth, at), nil
}

// TakeSnapshot captures the trace and salience state of eng.
func TakeSnapshot(name string, eng *reasoner.Engine) Snapshot {
	state := eng.State()
	snap := Snapshot{
		Scenario: name,
		Now:      eng.Now(),
		Trace:    []TraceItem{},
		Salience: []SalienceEntry{},
	}
	for _, item := range state.Trace().Items() {
		ti := TraceItem{Time: item.Time, Events: make([]string, len(item.Events))}
		for i, ev := range item.Events {
			ti.Events[i] = ev.String()
		}
		snap.Trace = append(snap.Trace, ti)
	}
	for _, e := range state.Salience().Ranked() {
		snap.Salience = append(snap.Salience, SalienceEntry{
			Term:     e.Term.String(),
			Salience: e.Salience,
		})
	}
	return snap
}
