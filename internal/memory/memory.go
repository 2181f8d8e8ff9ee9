// Package memory provides a bounded concept table that stores the tasks
// admitted by the control loop and optionally journals every admission.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/etrace/internal/control"
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/store"
	"github.com/roach88/etrace/internal/term"
)

// LabelInput marks tasks supplied from outside the reasoner.
const LabelInput = "Input"

const (
	DefaultMaxConcepts  = 10000
	DefaultTaskCapacity = 20
)

var (
	// ErrFull is returned when admitting a task would need more concepts
	// than the table holds.
	ErrFull = errors.New("concept table full")

	// ErrNilTask is returned for a nil task or sentence.
	ErrNilTask = errors.New("nil task")
)

// Journal receives admissions on Flush. *store.Store satisfies it.
type Journal interface {
	WriteAdmissions(ctx context.Context, admissions []store.Admission) error
}

// Concept holds the tasks about one term, each list bounded and ordered
// oldest first.
type Concept struct {
	term      term.Term
	Beliefs   []*nal.Task // eternal judgments
	Events    []*nal.Task // judgments with an occurrence time
	Goals     []*nal.Task
	Questions []*nal.Task
}

// Term implements control.Concept.
func (c *Concept) Term() term.Term { return c.term }

type pending struct {
	seq   int64
	label string
	task  *nal.Task
}

// Table is a concept table keyed by structural term identity.
// It is not safe for concurrent use.
type Table struct {
	concepts     map[string]*Concept
	order        []*Concept
	maxConcepts  int
	taskCapacity int

	seq       int64
	pending   []pending
	journal   Journal
	sessionID string

	logger *slog.Logger
}

var _ control.Memory = (*Table)(nil)

// Option configures a Table.
type Option func(*Table)

// WithMaxConcepts bounds the number of concepts.
func WithMaxConcepts(n int) Option {
	return func(t *Table) { t.maxConcepts = n }
}

// WithTaskCapacity bounds each per-concept task list.
func WithTaskCapacity(n int) Option {
	return func(t *Table) { t.taskCapacity = n }
}

// WithJournal records every admission under sessionID when Flush is called.
func WithJournal(j Journal, sessionID string) Option {
	return func(t *Table) {
		t.journal = j
		t.sessionID = sessionID
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) { t.logger = l }
}

// New creates an empty table.
func New(opts ...Option) *Table {
	t := &Table{
		concepts:     make(map[string]*Concept),
		maxConcepts:  DefaultMaxConcepts,
		taskCapacity: DefaultTaskCapacity,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ConceptFor implements control.Memory.
func (t *Table) ConceptFor(tm term.Term) (control.Concept, bool) {
	c, ok := t.concepts[term.Key(tm)]
	if !ok {
		return nil, false
	}
	return c, true
}

// Concept returns the concept for tm with its concrete type.
func (t *Table) Concept(tm term.Term) (*Concept, bool) {
	c, ok := t.concepts[term.Key(tm)]
	return c, ok
}

// Admit implements control.Memory. It conceptualizes the task's term and
// every subterm except intervals, then files the task under its own term.
// Either all needed concepts are created or ErrFull is returned and the
// table is unchanged.
func (t *Table) Admit(task *nal.Task, label string) error {
	if task == nil || task.Sentence == nil || task.Sentence.Term == nil {
		return ErrNilTask
	}

	var missing []term.Term
	seen := make(map[string]bool)
	term.Walk(task.Term(), func(sub term.Term) bool {
		if _, ok := sub.(term.Interval); ok {
			return true
		}
		k := term.Key(sub)
		if _, ok := t.concepts[k]; !ok && !seen[k] {
			seen[k] = true
			missing = append(missing, sub)
		}
		return true
	})
	if len(t.concepts)+len(missing) > t.maxConcepts {
		return fmt.Errorf("%w: %d concepts, %d more needed for %s",
			ErrFull, len(t.concepts), len(missing), task.Term())
	}
	for _, sub := range missing {
		c := &Concept{term: sub}
		t.concepts[term.Key(sub)] = c
		t.order = append(t.order, c)
	}

	c := t.concepts[term.Key(task.Term())]
	if !t.file(c, task) {
		t.logger.Debug("duplicate task ignored", "task", task.String())
		return nil
	}

	t.seq++
	t.pending = append(t.pending, pending{seq: t.seq, label: label, task: task})
	return nil
}

// file stores task in the matching list of c. It returns false if an
// equal sentence is already there.
func (t *Table) file(c *Concept, task *nal.Task) bool {
	var list *[]*nal.Task
	switch s := task.Sentence; {
	case s.IsJudgment() && s.IsEternal():
		list = &c.Beliefs
	case s.IsJudgment():
		list = &c.Events
	case s.IsGoal():
		list = &c.Goals
	default:
		list = &c.Questions
	}
	for _, have := range *list {
		if have.Sentence.Equal(task.Sentence) {
			return false
		}
	}
	*list = append(*list, task)
	if over := len(*list) - t.taskCapacity; over > 0 {
		*list = (*list)[over:]
	}
	return true
}

// Flush writes the admissions made since the last flush to the journal,
// tagged with cycle. On error the admissions stay pending and a retry
// rewrites them under the same sequence numbers.
func (t *Table) Flush(ctx context.Context, cycle int64) error {
	if len(t.pending) == 0 {
		return nil
	}
	if t.journal == nil {
		t.pending = t.pending[:0]
		return nil
	}

	records := make([]store.Admission, 0, len(t.pending))
	for _, p := range t.pending {
		records = append(records, store.NewAdmission(t.sessionID, p.seq, cycle, p.label, p.task))
	}
	if err := t.journal.WriteAdmissions(ctx, records); err != nil {
		return fmt.Errorf("flush %d admissions: %w", len(records), err)
	}
	t.pending = t.pending[:0]
	return nil
}

// Len returns the number of concepts.
func (t *Table) Len() int { return len(t.concepts) }

// Admitted returns the number of tasks admitted so far.
func (t *Table) Admitted() int64 { return t.seq }

// Pending returns the number of admissions not yet flushed.
func (t *Table) Pending() int { return len(t.pending) }

// Concepts returns all concepts in creation order.
func (t *Table) Concepts() []*Concept {
	return append([]*Concept{}, t.order...)
}
