package reasoner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/roach88/etrace/internal/config"
	"github.com/roach88/etrace/internal/control"
	"github.com/roach88/etrace/internal/deriver"
	"github.com/roach88/etrace/internal/memory"
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/store"
	"github.com/roach88/etrace/internal/term"
)

// DefaultSeed seeds the random source when WithSeed is not given.
const DefaultSeed uint64 = 1

// InputBudget is the budget given to tasks built by NewInputTask.
var InputBudget = nal.NewBudget(0.8, 0.5, 0.5)

// Journal records sessions and admissions. *store.Store satisfies it.
type Journal interface {
	memory.Journal
	WriteSession(ctx context.Context, s store.Session) error
}

// Engine is the single-writer reasoning loop around one control state.
//
// Thread-safety model:
//   - Enqueue(), Stop(), QueueLen(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Input(), Step(): synchronous path; never mix with a running Run()
//
// INVARIANTS:
//   - Logical time never decreases
//   - Every random draw comes from one seeded source, so a session is
//     reproducible from its seed and its input sequence
type Engine struct {
	params  config.Params
	state   *control.State
	memory  *memory.Table
	deriver control.Deriver
	rng     *rand.Rand
	seed    uint64
	clock   *Clock
	queue   *eventQueue

	ids       SessionIDGenerator
	sessionID string
	journal   Journal
	recorded  bool

	serial   int64
	cycles   int64
	interval time.Duration
	memOpts  []memory.Option
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDeriver replaces the default temporal deriver.
func WithDeriver(d control.Deriver) EngineOption {
	return func(e *Engine) { e.deriver = d }
}

// WithJournal records the session and every admission to j.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) { e.journal = j }
}

// WithSeed seeds the random source.
func WithSeed(seed uint64) EngineOption {
	return func(e *Engine) { e.seed = seed }
}

// WithSessionGenerator sets the session id source.
// Default: UUIDv7Generator.
func WithSessionGenerator(g SessionIDGenerator) EngineOption {
	return func(e *Engine) { e.ids = g }
}

// WithClock starts the engine at the clock's current time.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithCycleInterval makes Run step on a ticker in addition to queued
// cycle events. Zero (the default) disables the ticker.
func WithCycleInterval(d time.Duration) EngineOption {
	return func(e *Engine) { e.interval = d }
}

// WithMemoryOptions passes options to the concept table.
func WithMemoryOptions(opts ...memory.Option) EngineOption {
	return func(e *Engine) { e.memOpts = append(e.memOpts, opts...) }
}

// WithLogger sets the logger for the engine and all components.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine for one reasoning session.
func New(p config.Params, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		params: p,
		seed:   DefaultSeed,
		clock:  NewClock(),
		queue:  newEventQueue(),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	state, err := control.New(p, control.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	e.state = state
	e.sessionID = e.ids.Generate()
	e.rng = rand.New(rand.NewPCG(e.seed, e.seed))

	if e.deriver == nil {
		e.deriver = deriver.NewTemporal(p)
	}

	memOpts := []memory.Option{memory.WithLogger(e.logger)}
	if e.journal != nil {
		memOpts = append(memOpts, memory.WithJournal(e.journal, e.sessionID))
	}
	e.memory = memory.New(append(memOpts, e.memOpts...)...)

	return e, nil
}

// SessionID returns the id of this session.
func (e *Engine) SessionID() string { return e.sessionID }

// Seed returns the seed of the random source.
func (e *Engine) Seed() uint64 { return e.seed }

// Now returns the current logical time.
func (e *Engine) Now() int64 { return e.clock.Current() }

// Cycles returns the number of cycles run.
func (e *Engine) Cycles() int64 { return e.cycles }

// Params returns the session parameters.
func (e *Engine) Params() config.Params { return e.params }

// State returns the control state. Callers must not use it concurrently
// with Run.
func (e *Engine) State() *control.State { return e.state }

// Memory returns the concept table.
func (e *Engine) Memory() *memory.Table { return e.memory }

// NewInputTask builds an input task with a fresh evidence serial, created
// now and occurring at the given time (nal.Eternal for none).
func (e *Engine) NewInputTask(t term.Term, punct nal.Punctuation, truth nal.Truth, at int64) *nal.Task {
	e.serial++
	return nal.NewTask(&nal.Sentence{
		Term:        t,
		Punctuation: punct,
		Truth:       truth,
		Stamp:       nal.NewStamp(e.serial, e.clock.Current(), at),
	}, InputBudget, nal.OriginInput)
}

// Input processes an externally supplied task immediately: memory admits
// it, then the control state heats its term and traces it if eligible.
// Logical time moves forward to the task's occurrence time.
func (e *Engine) Input(ctx context.Context, task *nal.Task) error {
	if task == nil || task.Sentence == nil || task.Sentence.Term == nil {
		return e.runtimeError(ErrCodeInvalidInput, "empty task", nil)
	}
	if !task.IsInput() {
		return e.runtimeError(ErrCodeInvalidInput, "derived task supplied as input: "+task.String(), nil)
	}
	if err := e.recordSession(ctx); err != nil {
		return err
	}

	if !task.Sentence.IsEternal() {
		e.clock.AdvanceTo(task.Occurrence())
	}
	if err := e.memory.Admit(task, memory.LabelInput); err != nil {
		return e.runtimeError(ErrCodeInvalidInput, "admit "+task.String(), err)
	}

	heated := e.state.ProcessInput(task)
	e.logger.Debug("input processed",
		"task", task.String(),
		"heated", heated,
		"now", e.clock.Current(),
	)
	return nil
}

// Step runs one control cycle: advance time, update decay and bounds,
// sample and derive, cool down, then flush admissions to the journal.
func (e *Engine) Step(ctx context.Context) (control.CycleReport, error) {
	if err := e.recordSession(ctx); err != nil {
		return control.CycleReport{}, err
	}

	now := e.clock.Next()
	e.cycles++

	e.state.Update(now)
	report := e.state.Cycle(e.memory, e.deriver, e.rng, now)
	e.state.Cooldown()

	e.logger.Debug("cycle complete",
		"session", e.sessionID,
		"now", now,
		"sampled", report.Sampled,
		"derived", report.Derived,
		"admitted", len(report.Admitted),
	)

	if err := e.memory.Flush(ctx, now); err != nil {
		return report, e.runtimeError(ErrCodeJournal, "flush admissions", err)
	}
	return report, nil
}

// Flush writes pending admissions, such as those of inputs supplied
// after the last cycle, to the journal.
func (e *Engine) Flush(ctx context.Context) error {
	if err := e.recordSession(ctx); err != nil {
		return err
	}
	if err := e.memory.Flush(ctx, e.clock.Current()); err != nil {
		return e.runtimeError(ErrCodeJournal, "flush admissions", err)
	}
	return nil
}

// Enqueue submits an event for the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.queue.Enqueue(ev)
}

// QueueLen returns the number of events waiting for Run.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Run processes queued events, and cycles on a ticker when an interval is
// configured. It blocks until ctx is cancelled or Stop is called, then
// flushes pending admissions.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// ERROR HANDLING: a failed event is logged with its context and the loop
// continues. Retrying would consume random draws and break replay.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "session", e.sessionID, "seed", e.seed)

	var tick <-chan time.Time
	if e.interval > 0 {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	defer func() {
		if err := e.Flush(context.WithoutCancel(ctx)); err != nil {
			e.logger.Error("final flush failed", "session", e.sessionID, "error", err)
		}
	}()

	for {
		if ev, ok := e.queue.TryDequeue(); ok {
			if err := e.processEvent(ctx, ev); err != nil {
				e.logEventError(ev, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled", "session", e.sessionID)
			e.queue.Close()
			return ctx.Err()

		case <-tick:
			if _, err := e.Step(ctx); err != nil {
				e.logger.Error("cycle failed", "session", e.sessionID, "error", err)
			}

		case <-e.queue.Wait():
			// The signal channel is closed by Stop, so this fires
			// immediately once the queue is closed.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed", "session", e.sessionID)
				return nil
			}
		}
	}
}

// Stop closes the event queue. Run drains what is queued and returns.
func (e *Engine) Stop() {
	e.queue.Close()
}

// processEvent routes an event.
// CRITICAL: Called only from the Run goroutine.
func (e *Engine) processEvent(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventTypeInput:
		return e.Input(ctx, ev.Task)

	case EventTypeCycle:
		for range max(ev.Cycles, 1) {
			if _, err := e.Step(ctx); err != nil {
				return err
			}
		}
		return nil

	default:
		return e.runtimeError(ErrCodeUnknownEvent, fmt.Sprintf("event type %d", ev.Type), nil)
	}
}

func (e *Engine) logEventError(ev Event, err error) {
	attrs := []any{
		"session", e.sessionID,
		"event_type", ev.Type,
		"now", e.clock.Current(),
		"error", err,
	}
	if ev.Task != nil {
		attrs = append(attrs, "task", ev.Task.String())
	}
	e.logger.Error("event processing failed", attrs...)
}

// recordSession writes the session row before the first admission.
func (e *Engine) recordSession(ctx context.Context) error {
	if e.journal == nil || e.recorded {
		return nil
	}
	sess, err := store.NewSession(e.sessionID, e.seed, e.params)
	if err != nil {
		return e.runtimeError(ErrCodeJournal, "encode session", err)
	}
	if err := e.journal.WriteSession(ctx, sess); err != nil {
		return e.runtimeError(ErrCodeJournal, "write session", err)
	}
	e.recorded = true
	return nil
}

func (e *Engine) runtimeError(code RuntimeErrorCode, msg string, err error) *RuntimeError {
	return &RuntimeError{
		Code:      code,
		Message:   msg,
		SessionID: e.sessionID,
		Cycle:     e.clock.Current(),
		Err:       err,
	}
}
