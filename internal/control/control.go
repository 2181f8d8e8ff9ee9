// Package control drives the attention core: it ingests input events,
// runs a fixed number of pair draws per cycle through a deriver, filters
// the conclusions and routes the survivors to memory and back into the
// eligibility trace.
//
// All state lives in one State value owned by the reasoning session and
// passed explicitly. Nothing is global. A State is not safe for concurrent
// use; the caller serializes access to it and to the random source.
package control

import (
	"fmt"
	"log/slog"

	"github.com/roach88/etrace/internal/attention"
	"github.com/roach88/etrace/internal/config"
	"github.com/roach88/etrace/internal/filter"
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/sampler"
	"github.com/roach88/etrace/internal/term"
	"github.com/roach88/etrace/internal/trace"
)

// State is the control state of one reasoning session.
type State struct {
	params   config.Params
	salience *attention.Store
	trace    *trace.Trace
	sampler  *sampler.Sampler
	recency  *filter.DerivationFilter
	logger   *slog.Logger
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger used by the state and its components.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *State) {
		s.logger = l
	}
}

// New creates an empty control state. The parameters are validated.
func New(p config.Params, opts ...Option) (*State, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("control parameters: %w", err)
	}

	s := &State{
		params: p,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.salience = attention.New(p, attention.WithLogger(s.logger))
	s.trace = trace.New(p.TraceMaxLength, trace.WithLogger(s.logger))
	s.sampler = sampler.New(s.salience, s.trace, p, sampler.WithLogger(s.logger))
	s.recency = filter.NewDerivationFilter(p.RecencyWindow)
	return s, nil
}

// Reset clears salience, trace and recency history, keeping parameters.
func (s *State) Reset() {
	s.salience.Reset()
	s.trace.Reset()
	s.recency.Reset()
}

// Params returns the parameters the state was created with.
func (s *State) Params() config.Params {
	return s.params
}

// Salience returns the salience store.
func (s *State) Salience() *attention.Store {
	return s.salience
}

// Trace returns the eligibility trace.
func (s *State) Trace() *trace.Trace {
	return s.trace
}

// ProcessInput handles a freshly supplied input event: it heats up the
// term (goals included) and adds judgments to the trace. It returns false
// when the salience store ignored the event.
func (s *State) ProcessInput(task *nal.Task) bool {
	heated := s.salience.Ingest(task)
	if attention.ValidInput(task, false) {
		s.trace.AddEvent(task)
	}
	return heated
}

// Cooldown decays all salience once. Called once per cycle.
func (s *State) Cooldown() {
	s.salience.Decay()
}

// Update recomputes trace decay for the wall-clock time, enforces the
// trace and salience bounds and recomputes the salience mass.
func (s *State) Update(wallclock int64) {
	s.trace.UpdateDecay(wallclock, s.params.TraceDecayFactor)
	s.trace.LimitMemory()
	s.salience.Evict()
	s.salience.UpdateMass()
}

// Recent returns the events of the most recent trace items, as used for
// decision making.
func (s *State) Recent() []*nal.Task {
	return s.trace.Recent(s.params.RecentHorizon)
}

// CycleReport summarizes one Cycle.
type CycleReport struct {
	Draws    int // Sampling attempts
	Sampled  int // Draws that produced a pair
	Gated    int // Pairs rejected by premise gates
	Bridged  int // Pairs folded into a three-event sequence premise
	Derived  int // Raw conclusions from the deriver
	Accepted int // Conclusions passing the acceptance table
	Unique   int // Conclusions left after deduplication

	// Admitted are the conclusions that passed the recency filter, in
	// derivation order.
	Admitted []*nal.Sentence

	// Traced counts admitted conclusions fed back into the trace.
	Traced int

	// Errors holds one *AdmitError per refused admission.
	Errors []error
}

// Cycle runs the per-cycle inference pass at time now.
func (s *State) Cycle(mem Memory, deriver Deriver, rng Random, now int64) CycleReport {
	var report CycleReport
	hasConcept := func(t term.Term) bool {
		_, ok := mem.ConceptFor(t)
		return ok
	}

	var conclusions []*nal.Sentence
	for range s.params.InferencesPerCycle {
		report.Draws++
		pair, ok := s.sampler.Sample(rng, hasConcept)
		if !ok {
			continue
		}
		report.Sampled++

		if !s.admissiblePremises(pair) {
			report.Gated++
			continue
		}

		premise := pair.A.Sentence
		if pair.Middle != nil && !nal.Overlaps(pair.A.Sentence.Stamp, pair.Middle.Sentence.Stamp) {
			premise = s.bridge(pair.A.Sentence, pair.Middle.Sentence, now)
			report.Bridged++
		}

		conclusions = append(conclusions, deriver.Derive(premise, pair.B.Sentence, now)...)
	}
	report.Derived = len(conclusions)

	accepted := make([]*nal.Sentence, 0, len(conclusions))
	for _, c := range conclusions {
		if filter.Accept(c.Term) {
			accepted = append(accepted, c)
		}
	}
	report.Accepted = len(accepted)

	unique := filter.Unique(accepted)
	report.Unique = len(unique)

	report.Admitted = s.recency.Recent(unique)
	for _, c := range report.Admitted {
		s.logger.Debug("derived conclusion", "sentence", c.String())
		report.Errors = append(report.Errors, s.admit(mem, c)...)
		if s.feedsTrace(c) {
			s.trace.AddEvent(nal.NewTask(c, s.params.DerivedBudget, nal.OriginDerived))
			report.Traced++
		}
	}
	return report
}

// admissiblePremises applies the operator and shape gates. Evidence
// independence is already guaranteed by the sampler.
func (s *State) admissiblePremises(p sampler.Pair) bool {
	if filter.BothOperators(p.A.Term(), p.B.Term()) {
		return false
	}
	if !filter.ValidPremise(p.A.Term(), true) || !filter.ValidPremise(p.B.Term(), false) {
		return false
	}
	if p.Middle != nil && !filter.ValidPremise(p.Middle.Term(), false) {
		return false
	}
	return true
}

// bridge folds a and a later middle event m into (&/, a, +dt, m), where dt
// is the gap between the end of a and m. The result occurs when m occurs.
func (s *State) bridge(a, m *nal.Sentence, now int64) *nal.Sentence {
	dt := m.Occurrence() - a.Occurrence() - term.Span(a.Term)
	return &nal.Sentence{
		Term:        term.Sequence(a.Term, term.Interval{N: dt}, m.Term),
		Punctuation: nal.Judgment,
		Truth:       nal.Intersection(a.Truth, m.Truth),
		Stamp:       nal.Merge(a.Stamp, m.Stamp, now, s.params.MaxBaseLength),
	}
}

// admit submits c as an event and as an eternal belief.
func (s *State) admit(mem Memory, c *nal.Sentence) []error {
	var errs []error
	for _, sent := range []*nal.Sentence{c, c.Eternalized()} {
		task := nal.NewTask(sent, s.params.DerivedBudget, nal.OriginDerived)
		if err := mem.Admit(task, LabelDerived); err != nil {
			ae := &AdmitError{Task: task.String(), Label: LabelDerived, Err: err}
			s.logger.Error("admission failed",
				"task", ae.Task,
				"label", ae.Label,
				"error", err,
			)
			errs = append(errs, ae)
		}
	}
	return errs
}

// feedsTrace reports whether c goes back into the trace to build longer
// chains: non-eternal forward sequences and forward implications.
func (s *State) feedsTrace(c *nal.Sentence) bool {
	if c.IsEternal() {
		return false
	}
	return term.IsSequence(c.Term) || term.IsForwardImplication(c.Term)
}
