// Package attention keeps a bounded, decaying salience score per term.
//
// Input events heat their term up; every control cycle cools all terms
// down; periodic eviction keeps only the hottest terms. The sampler draws
// primary terms proportionally to salience.
package attention

import (
	"log/slog"
	"slices"

	"github.com/roach88/etrace/internal/config"
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/term"
)

// ExcludedOperators are operators whose events never receive attention.
// Anticipation and the belief/desire mental operators derive mostly noise.
var ExcludedOperators = []string{"^anticipate", "^believe", "^want"}

// Entry is the salience record of one term.
type Entry struct {
	Term     term.Term
	Last     *nal.Task // Most recent valid input event for Term
	Salience float64
}

// Store is the salience store.
//
// INVARIANTS:
//   - At most one entry per structurally distinct term
//   - Salience is never negative
//   - After Evict, Len() <= MaxSize
//
// Not safe for concurrent use; the control loop owns it.
type Store struct {
	heatUp           float64
	noveltyThreshold float64
	noveltyBoost     float64
	cooldown         float64
	maxSize          int

	byKey  map[string]*Entry
	ranked []*Entry // Insertion order between evictions, descending after Evict
	mass   float64

	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an empty store from the salience parameters.
func New(p config.Params, opts ...Option) *Store {
	s := &Store{
		heatUp:           p.HeatUp,
		noveltyThreshold: p.NoveltyThreshold,
		noveltyBoost:     p.NoveltyBoost(),
		cooldown:         p.CooldownFactor,
		maxSize:          p.SalienceMaxSize,
		byKey:            make(map[string]*Entry),
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidInput reports whether task may enter attention or the trace: an
// input, non-eternal judgment (or goal when allowGoal is set) that does not
// mention an excluded operator.
func ValidInput(task *nal.Task, allowGoal bool) bool {
	if task == nil || task.Sentence == nil || task.Sentence.Term == nil {
		return false
	}
	s := task.Sentence
	if !s.IsJudgment() && !(allowGoal && s.IsGoal()) {
		return false
	}
	if s.IsEternal() || !task.IsInput() {
		return false
	}
	for _, op := range ExcludedOperators {
		if term.MentionsOperator(s.Term, op) {
			return false
		}
	}
	return true
}

// Ingest heats up the term of an input event. It returns false, without
// changing anything, when the event is not a valid input (goals allowed).
func (s *Store) Ingest(task *nal.Task) bool {
	if !ValidInput(task, true) {
		return false
	}

	t := task.Term()
	key := term.Key(t)
	e, ok := s.byKey[key]
	if !ok {
		e = &Entry{Term: t}
		s.byKey[key] = e
		s.ranked = append(s.ranked, e)
	}
	e.Last = task

	if e.Salience < s.noveltyThreshold {
		e.Salience = s.noveltyBoost
		s.logger.Debug("novel event", "term", t.String(), "salience", e.Salience)
	} else {
		e.Salience += s.heatUp
	}
	return true
}

// Decay multiplies every salience by the cooldown factor.
func (s *Store) Decay() {
	for _, e := range s.ranked {
		e.Salience *= s.cooldown
	}
}

// Evict sorts entries by descending salience and drops everything past
// MaxSize. Ties keep their previous relative order.
func (s *Store) Evict() {
	slices.SortStableFunc(s.ranked, func(a, b *Entry) int {
		switch {
		case a.Salience > b.Salience:
			return -1
		case a.Salience < b.Salience:
			return 1
		default:
			return 0
		}
	})

	if len(s.ranked) <= s.maxSize {
		return
	}
	for _, e := range s.ranked[s.maxSize:] {
		delete(s.byKey, term.Key(e.Term))
	}
	clear(s.ranked[s.maxSize:])
	s.ranked = s.ranked[:s.maxSize]
}

// UpdateMass recomputes the total salience from scratch.
func (s *Store) UpdateMass() {
	s.mass = 0
	for _, e := range s.ranked {
		s.mass += e.Salience
	}
}

// TotalMass returns the mass computed by the last UpdateMass.
func (s *Store) TotalMass() float64 {
	return s.mass
}

// Ranked returns the entries in sampling order. The slice must not be
// modified.
func (s *Store) Ranked() []*Entry {
	return s.ranked
}

// Get returns the entry for t.
func (s *Store) Get(t term.Term) (*Entry, bool) {
	e, ok := s.byKey[term.Key(t)]
	return e, ok
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.ranked)
}

// MaxSize returns the eviction bound.
func (s *Store) MaxSize() int {
	return s.maxSize
}

// Reset drops all entries.
func (s *Store) Reset() {
	clear(s.byKey)
	clear(s.ranked)
	s.ranked = s.ranked[:0]
	s.mass = 0
}
