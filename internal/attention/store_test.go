package attention

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/etrace/internal/config"
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/term"
)

var serial int64

func input(t term.Term, occurrence int64, punct nal.Punctuation) *nal.Task {
	serial++
	s := &nal.Sentence{
		Term:        t,
		Punctuation: punct,
		Truth:       nal.NewTruth(1, 0.9),
		Stamp:       nal.NewStamp(serial, occurrence, occurrence),
	}
	return nal.NewTask(s, nal.NewBudget(0.8, 0.5, 0.5), nal.OriginInput)
}

func event(name string, occurrence int64) *nal.Task {
	return input(term.NewAtom(name), occurrence, nal.Judgment)
}

func TestIngest_NovelTermsGetBoost(t *testing.T) {
	s := New(config.Defaults())

	for i, name := range []string{"A", "B", "C"} {
		require.True(t, s.Ingest(event(name, int64(10*(i+1)))))
	}

	for _, name := range []string{"A", "B", "C"} {
		e, ok := s.Get(term.NewAtom(name))
		require.True(t, ok)
		assert.InDelta(t, 50.0, e.Salience, 1e-9, "term %s", name)
	}
}

func TestIngest_RepeatedTermIncrements(t *testing.T) {
	s := New(config.Defaults())
	first := event("A", 1)
	second := event("A", 2)

	s.Ingest(first)
	s.Ingest(second)

	e, ok := s.Get(term.NewAtom("A"))
	require.True(t, ok)
	assert.InDelta(t, 50.05, e.Salience, 1e-9)
	assert.Same(t, second, e.Last)
	assert.Equal(t, 1, s.Len())
}

func TestIngest_DecayedBelowThresholdIsNovelAgain(t *testing.T) {
	p := config.Defaults()
	p.CooldownFactor = 0.001
	s := New(p)

	s.Ingest(event("A", 1))
	s.Decay() // 0.05
	s.Ingest(event("A", 2))

	e, _ := s.Get(term.NewAtom("A"))
	assert.InDelta(t, 50.0, e.Salience, 1e-9)
}

func TestIngest_Rejections(t *testing.T) {
	derived := event("A", 1)
	derived.Origin = nal.OriginDerived

	eternal := event("A", 1)
	eternal.Sentence = eternal.Sentence.Eternalized()

	tests := []struct {
		name string
		task *nal.Task
	}{
		{"derived", derived},
		{"eternal", eternal},
		{"question", input(term.NewAtom("A"), 1, nal.Question)},
		{"anticipate", input(term.NewOperation("anticipate", term.NewAtom("x")), 1, nal.Judgment)},
		{"believe nested", input(term.Inheritance{
			Subject:   term.NewProduct(term.NewOperation("believe")),
			Predicate: term.NewAtom("x"),
		}, 1, nal.Judgment)},
		{"want", input(term.NewOperation("^want"), 1, nal.Judgment)},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(config.Defaults())
			assert.False(t, s.Ingest(tt.task))
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestValidInput_GoalOnlyWhenAllowed(t *testing.T) {
	goal := input(term.NewAtom("G"), 1, nal.Goal)
	assert.True(t, ValidInput(goal, true))
	assert.False(t, ValidInput(goal, false))
}

func TestDecay(t *testing.T) {
	s := New(config.Defaults())
	s.Ingest(event("A", 1))
	s.Decay()
	s.Decay()

	e, _ := s.Get(term.NewAtom("A"))
	assert.InDelta(t, 50*0.98*0.98, e.Salience, 1e-9)
}

func TestEvict_KeepsHottest(t *testing.T) {
	p := config.Defaults()
	p.SalienceMaxSize = 3
	s := New(p)

	for i := range 5 {
		name := fmt.Sprintf("t%d", i)
		s.Ingest(event(name, int64(i)))
		// Give later terms more heat.
		for range i {
			s.Ingest(event(name, int64(i)))
		}
	}

	s.Evict()
	s.UpdateMass()

	require.Equal(t, 3, s.Len())
	ranked := s.Ranked()
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Salience, ranked[i].Salience)
	}
	for _, name := range []string{"t0", "t1"} {
		_, ok := s.Get(term.NewAtom(name))
		assert.False(t, ok, "%s should be evicted", name)
	}
	for _, name := range []string{"t2", "t3", "t4"} {
		_, ok := s.Get(term.NewAtom(name))
		assert.True(t, ok, "%s should survive", name)
	}

	var sum float64
	for _, e := range ranked {
		sum += e.Salience
	}
	assert.InDelta(t, sum, s.TotalMass(), 1e-9)
}

func TestUpdateMass_Recomputed(t *testing.T) {
	s := New(config.Defaults())
	s.Ingest(event("A", 1))
	s.Ingest(event("B", 2))
	s.UpdateMass()
	assert.InDelta(t, 100.0, s.TotalMass(), 1e-9)

	s.Decay()
	assert.InDelta(t, 100.0, s.TotalMass(), 1e-9, "mass only changes on UpdateMass")
	s.UpdateMass()
	assert.InDelta(t, 98.0, s.TotalMass(), 1e-9)
}

func TestReset(t *testing.T) {
	s := New(config.Defaults())
	s.Ingest(event("A", 1))
	s.UpdateMass()
	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.Zero(t, s.TotalMass())
	_, ok := s.Get(term.NewAtom("A"))
	assert.False(t, ok)
}
