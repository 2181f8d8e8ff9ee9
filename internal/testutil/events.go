package testutil

import (
	"math/rand/v2"

	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/term"
)

// DefaultTruth is the truth value of events built by EventBuilder.
var DefaultTruth = nal.NewTruth(1, 0.9)

// EventBuilder builds input tasks with distinct evidence serials.
type EventBuilder struct {
	serials *SerialCounter
	budget  nal.Budget
}

// NewEventBuilder creates a builder whose first task has serial 1.
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{
		serials: NewSerialCounter(),
		budget:  nal.NewBudget(0.8, 0.5, 0.5),
	}
}

// Judgment builds an input judgment about t occurring at time at.
func (b *EventBuilder) Judgment(t term.Term, at int64) *nal.Task {
	return b.task(t, nal.Judgment, at)
}

// Goal builds an input goal about t occurring at time at.
func (b *EventBuilder) Goal(t term.Term, at int64) *nal.Task {
	return b.task(t, nal.Goal, at)
}

// Derived builds a derived judgment, which the attention core must ignore
// as input.
func (b *EventBuilder) Derived(t term.Term, at int64) *nal.Task {
	task := b.task(t, nal.Judgment, at)
	task.Origin = nal.OriginDerived
	return task
}

// Reset restarts evidence serials at 1.
func (b *EventBuilder) Reset() {
	b.serials.Reset()
}

func (b *EventBuilder) task(t term.Term, punct nal.Punctuation, at int64) *nal.Task {
	return nal.NewTask(&nal.Sentence{
		Term:        t,
		Punctuation: punct,
		Truth:       DefaultTruth,
		Stamp:       nal.NewStamp(b.serials.Next(), at, at),
	}, b.budget, nal.OriginInput)
}

// NewRand returns a PCG-backed random source seeded the same way the
// reasoner seeds its own.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
