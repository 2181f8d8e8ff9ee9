// Package sampler draws candidate premise pairs from the salience store and
// the eligibility trace.
//
// A draw picks a primary term proportionally to salience, a trace item of
// that term proportionally to decay, and a secondary event either from the
// same item (co-occurrence) or from a window of neighbouring items. Events
// strictly between the two may be chosen as a bridging middle event.
//
// All randomness comes from one caller-owned source, so a sampler is a pure
// function of trace state, salience state and that source.
package sampler

import (
	"log/slog"
	"math"

	"github.com/roach88/etrace/internal/attention"
	"github.com/roach88/etrace/internal/config"
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/term"
	"github.com/roach88/etrace/internal/trace"
)

// Random is the pseudo-random source consumed by Sample.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// Pair is a sampled premise candidate. A occurs no later than B; Middle, if
// set, lies strictly between them in the trace.
type Pair struct {
	A, B   *nal.Task
	Middle *nal.Task

	// SameTime is set when B was drawn from A's own trace item.
	SameTime bool
}

// Sampler draws pairs. It reads but never mutates the store and trace.
type Sampler struct {
	salience *attention.Store
	trace    *trace.Trace

	sameTime        float64
	narrowWindow    int
	wideWindow      int
	narrowProb      float64
	uniformProb     float64
	opMiddleProb    float64
	secondaryFactor float64

	logger *slog.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Sampler) {
		s.logger = l
	}
}

// New creates a sampler over the given store and trace.
func New(salience *attention.Store, tr *trace.Trace, p config.Params, opts ...Option) *Sampler {
	s := &Sampler{
		salience:        salience,
		trace:           tr,
		sameTime:        p.SameTimeProbability,
		narrowWindow:    p.NarrowWindow,
		wideWindow:      p.WideWindow,
		narrowProb:      p.NarrowWindowProbability,
		uniformProb:     p.UniformProbability,
		opMiddleProb:    p.OperatorMiddleProbability,
		secondaryFactor: p.SecondaryDecayFactor,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample draws at most one pair. The boolean is false when nothing could be
// drawn; that is routine and the caller just skips the iteration.
//
// hasConcept reports whether memory knows the primary term; a nil
// hasConcept accepts every term.
func (s *Sampler) Sample(rng Random, hasConcept func(term.Term) bool) (Pair, bool) {
	entry, ok := s.primaryTerm(rng)
	if !ok {
		return Pair{}, false
	}
	if hasConcept != nil && !hasConcept(entry.Term) {
		return Pair{}, false
	}

	item, ok := s.primaryItem(rng, entry.Term)
	if !ok {
		return Pair{}, false
	}

	primary, ok := pick(rng, filter(item.Events, func(e *nal.Task) bool {
		return term.Equal(e.Term(), entry.Term)
	}))
	if !ok {
		return Pair{}, false
	}

	var pair Pair
	if len(item.Events) > 1 && rng.Float64() < s.sameTime {
		secondary, ok := pick(rng, filter(item.Events, func(e *nal.Task) bool {
			return !term.Equal(e.Term(), primary.Term())
		}))
		if !ok {
			return Pair{}, false
		}
		pair = Pair{A: primary, B: secondary, SameTime: true}
	} else {
		secondary, middle, ok := s.neighbour(rng, primary)
		if !ok {
			return Pair{}, false
		}
		pair = Pair{A: primary, B: secondary, Middle: middle}
		if pair.A.Occurrence() > pair.B.Occurrence() {
			pair.A, pair.B = pair.B, pair.A
		}
	}

	if !independent(pair) {
		s.logger.Debug("sampled pair rejected: overlapping evidence",
			"a", pair.A.String(),
			"b", pair.B.String(),
		)
		return Pair{}, false
	}

	s.logger.Debug("sampled pair",
		"a", pair.A.String(),
		"b", pair.B.String(),
		"middle", middleString(pair.Middle),
		"same_time", pair.SameTime,
	)
	return pair, true
}

// primaryTerm walks the ranked entries until the running salience exceeds
// a uniform draw over the total mass.
func (s *Sampler) primaryTerm(rng Random) (*attention.Entry, bool) {
	mass := s.salience.TotalMass()
	if mass <= 0 {
		return nil, false
	}
	u := rng.Float64() * mass
	var acc float64
	for _, e := range s.salience.Ranked() {
		acc += e.Salience
		if acc > u {
			return e, true
		}
	}
	return nil, false
}

// primaryItem draws one of the term's trace items proportionally to decay.
func (s *Sampler) primaryItem(rng Random, t term.Term) (*trace.Item, bool) {
	items := s.trace.ItemsByTerm(t)
	if len(items) == 0 {
		return nil, false
	}
	var mass float64
	for _, it := range items {
		mass += it.Decay
	}
	if mass <= 0 {
		return nil, false
	}
	u := rng.Float64() * mass
	var acc float64
	for _, it := range items {
		acc += it.Decay
		if acc > u {
			return it, true
		}
	}
	return nil, false
}

// neighbour draws the secondary event from a window around the primary's
// item, and a middle event from the items strictly between the two.
func (s *Sampler) neighbour(rng Random, primary *nal.Task) (secondary, middle *nal.Task, ok bool) {
	idx, found := s.trace.ClosestIndex(primary.Occurrence())
	if !found {
		return nil, nil, false
	}

	window := s.wideWindow
	if rng.Float64() < s.narrowProb {
		window = s.narrowWindow
	}
	uniform := rng.Float64() < s.uniformProb
	lo := max(idx-window, 0)
	hi := min(idx+window, s.trace.Len()-1)

	weight := func(it *trace.Item) float64 {
		if uniform {
			return 1.0
		}
		dt := math.Abs(float64(primary.Occurrence() - it.Time))
		return math.Exp(-dt*s.secondaryFactor) * it.Decay
	}

	var mass float64
	for j := lo; j <= hi; j++ {
		if j != idx {
			mass += weight(s.trace.At(j))
		}
	}
	if mass <= 0 {
		return nil, nil, false
	}

	onlyOps := rng.Float64() < s.opMiddleProb
	u := rng.Float64() * mass
	secIdx := -1
	var acc float64
	for j := lo; j <= hi; j++ {
		if j == idx {
			continue
		}
		acc += weight(s.trace.At(j))
		if acc > u {
			secIdx = j
			break
		}
	}
	if secIdx < 0 {
		return nil, nil, false
	}

	var candidates []*nal.Task
	for j := min(idx, secIdx) + 1; j < max(idx, secIdx); j++ {
		for _, e := range s.trace.At(j).Events {
			if !onlyOps || term.IsOperation(e.Term()) {
				candidates = append(candidates, e)
			}
		}
	}
	middle, _ = pick(rng, candidates)

	secondary, ok = pick(rng, s.trace.At(secIdx).Events)
	if !ok {
		return nil, nil, false
	}
	return secondary, middle, true
}

// independent reports whether no two of A, B and Middle share evidence.
func independent(p Pair) bool {
	if nal.Overlaps(p.A.Sentence.Stamp, p.B.Sentence.Stamp) {
		return false
	}
	if p.Middle == nil {
		return true
	}
	return !nal.Overlaps(p.A.Sentence.Stamp, p.Middle.Sentence.Stamp) &&
		!nal.Overlaps(p.B.Sentence.Stamp, p.Middle.Sentence.Stamp)
}

func filter(events []*nal.Task, keep func(*nal.Task) bool) []*nal.Task {
	var out []*nal.Task
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func pick(rng Random, events []*nal.Task) (*nal.Task, bool) {
	if len(events) == 0 {
		return nil, false
	}
	return events[rng.IntN(len(events))], true
}

func middleString(t *nal.Task) string {
	if t == nil {
		return ""
	}
	return t.String()
}
