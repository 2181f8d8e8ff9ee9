package control

import (
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/sampler"
	"github.com/roach88/etrace/internal/term"
)

// LabelDerived is the origin label attached to admitted conclusions.
const LabelDerived = "Derived"

// Concept is the memory-side record of a term.
type Concept interface {
	Term() term.Term
}

// Memory is the concept and task store the loop reads from and admits into.
type Memory interface {
	// ConceptFor returns the concept for t, if memory has one.
	ConceptFor(t term.Term) (Concept, bool)

	// Admit submits a task. label names where the task came from.
	Admit(task *nal.Task, label string) error
}

// Deriver maps two premises to zero or more conclusions. a occurs no later
// than b. Implementations must not retain or mutate the premises.
type Deriver interface {
	Derive(a, b *nal.Sentence, now int64) []*nal.Sentence
}

// Random is the single pseudo-random stream consumed by a cycle.
type Random = sampler.Random
