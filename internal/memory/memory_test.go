package memory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/etrace/internal/control"
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/store"
	"github.com/roach88/etrace/internal/term"
)

func task(t term.Term, serial, occ int64) *nal.Task {
	return nal.NewTask(&nal.Sentence{
		Term:        t,
		Punctuation: nal.Judgment,
		Truth:       nal.NewTruth(1, 0.9),
		Stamp:       nal.NewStamp(serial, occ, occ),
	}, nal.NewBudget(0.9, 0.5, 0.5), nal.OriginDerived)
}

type failingJournal struct {
	err   error
	calls int
	got   [][]store.Admission
}

func (j *failingJournal) WriteAdmissions(_ context.Context, a []store.Admission) error {
	j.calls++
	j.got = append(j.got, a)
	if j.calls == 1 {
		return j.err
	}
	return nil
}

func TestAdmit_ConceptualizesSubterms(t *testing.T) {
	m := New()
	seq := term.Sequence(term.NewAtom("a"), term.Interval{N: 5}, term.NewOperation("left"))

	require.NoError(t, m.Admit(task(seq, 1, 10), control.LabelDerived))

	for _, tm := range []term.Term{seq, term.NewAtom("a"), term.NewOperation("left")} {
		_, ok := m.ConceptFor(tm)
		assert.True(t, ok, "concept for %s", tm)
	}
	_, ok := m.ConceptFor(term.Interval{N: 5})
	assert.False(t, ok, "intervals are not conceptualized")
	assert.Equal(t, 3, m.Len())
}

func TestAdmit_FilesByKind(t *testing.T) {
	m := New()
	a := term.NewAtom("a")
	event := task(a, 1, 10)
	belief := nal.NewTask(event.Sentence.Eternalized(), event.Budget, event.Origin)
	goal := task(a, 2, 11)
	goal.Sentence.Punctuation = nal.Goal

	for _, tk := range []*nal.Task{event, belief, goal} {
		require.NoError(t, m.Admit(tk, LabelInput))
	}

	c, ok := m.Concept(a)
	require.True(t, ok)
	assert.Equal(t, []*nal.Task{event}, c.Events)
	assert.Equal(t, []*nal.Task{belief}, c.Beliefs)
	assert.Equal(t, []*nal.Task{goal}, c.Goals)
	assert.Equal(t, a, c.Term())
}

func TestAdmit_IgnoresDuplicates(t *testing.T) {
	m := New()
	a := term.NewAtom("a")

	require.NoError(t, m.Admit(task(a, 1, 10), LabelInput))
	require.NoError(t, m.Admit(task(a, 1, 10), LabelInput))

	c, _ := m.Concept(a)
	assert.Len(t, c.Events, 1)
	assert.Equal(t, int64(1), m.Admitted())
	assert.Equal(t, 1, m.Pending())
}

func TestAdmit_TaskCapacityDropsOldest(t *testing.T) {
	m := New(WithTaskCapacity(2))
	a := term.NewAtom("a")
	for i := range int64(3) {
		require.NoError(t, m.Admit(task(a, i+1, 10+i), LabelInput))
	}

	c, _ := m.Concept(a)
	require.Len(t, c.Events, 2)
	assert.Equal(t, int64(11), c.Events[0].Occurrence())
	assert.Equal(t, int64(12), c.Events[1].Occurrence())
}

func TestAdmit_FullTableUnchanged(t *testing.T) {
	m := New(WithMaxConcepts(2))
	require.NoError(t, m.Admit(task(term.NewAtom("a"), 1, 1), LabelInput))

	seq := term.Sequence(term.NewAtom("b"), term.Interval{N: 1}, term.NewAtom("c"))
	err := m.Admit(task(seq, 2, 2), LabelInput)

	assert.ErrorIs(t, err, ErrFull)
	assert.Equal(t, 1, m.Len())
	_, ok := m.ConceptFor(term.NewAtom("b"))
	assert.False(t, ok)
}

func TestAdmit_NilTask(t *testing.T) {
	m := New()
	assert.ErrorIs(t, m.Admit(nil, LabelInput), ErrNilTask)
	assert.ErrorIs(t, m.Admit(&nal.Task{}, LabelInput), ErrNilTask)
}

func TestFlush_WithoutJournalDropsPending(t *testing.T) {
	m := New()
	require.NoError(t, m.Admit(task(term.NewAtom("a"), 1, 1), LabelInput))

	require.NoError(t, m.Flush(context.Background(), 1))
	assert.Zero(t, m.Pending())
	require.NoError(t, m.Flush(context.Background(), 2))
}

func TestFlush_RetryKeepsSequence(t *testing.T) {
	j := &failingJournal{err: errors.New("disk full")}
	m := New(WithJournal(j, "s1"))
	require.NoError(t, m.Admit(task(term.NewAtom("a"), 1, 1), LabelInput))

	err := m.Flush(context.Background(), 1)
	assert.ErrorIs(t, err, j.err)
	assert.Equal(t, 1, m.Pending())

	require.NoError(t, m.Admit(task(term.NewAtom("b"), 2, 2), control.LabelDerived))
	require.NoError(t, m.Flush(context.Background(), 2))
	assert.Zero(t, m.Pending())

	require.Len(t, j.got, 2)
	second := j.got[1]
	require.Len(t, second, 2)
	assert.Equal(t, int64(1), second[0].Seq)
	assert.Equal(t, int64(2), second[1].Seq)
	assert.Equal(t, "Derived", second[1].Label)
	assert.Equal(t, int64(2), second[1].Cycle)
}

func TestFlush_ToStore(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	sess, err := store.NewSession("s1", 1, struct{}{})
	require.NoError(t, err)
	require.NoError(t, s.WriteSession(ctx, sess))

	m := New(WithJournal(s, "s1"))
	a := task(term.NewAtom("a"), 1, 10)
	require.NoError(t, m.Admit(a, LabelInput))
	require.NoError(t, m.Admit(nal.NewTask(a.Sentence.Eternalized(), a.Budget, a.Origin), control.LabelDerived))
	require.NoError(t, m.Flush(ctx, 3))

	got, err := s.ReadAdmissions(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Term)
	assert.False(t, got[0].IsEternal())
	assert.True(t, got[1].IsEternal())
	assert.Equal(t, int64(3), got[1].Cycle)
}

func TestConcepts_CreationOrder(t *testing.T) {
	m := New()
	for i, name := range []string{"z", "a", "m"} {
		require.NoError(t, m.Admit(task(term.NewAtom(name), int64(i+1), 1), LabelInput))
	}

	var names []string
	for _, c := range m.Concepts() {
		names = append(names, c.Term().String())
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}
