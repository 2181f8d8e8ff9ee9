package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/etrace/internal/config"
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/reasoner"
	"github.com/roach88/etrace/internal/term"
	"github.com/roach88/etrace/internal/testutil"
)

// newAssertionContext builds an engine holding the events a@10 and b@20.
func newAssertionContext(t *testing.T) *AssertionContext {
	t.Helper()
	eng, err := reasoner.New(config.Defaults(),
		reasoner.WithSessionGenerator(testutil.NewFixedSessionGenerator("")))
	require.NoError(t, err)

	for _, in := range []struct {
		name string
		at   int64
	}{{"a", 10}, {"b", 20}} {
		task := eng.NewInputTask(term.NewAtom(in.name), nal.Judgment, testutil.DefaultTruth, in.at)
		require.NoError(t, eng.Input(context.Background(), task))
	}
	return &AssertionContext{Engine: eng}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	actx := newAssertionContext(t)
	result := NewResult()
	result.Admitted = []string{"(&/,a,+10,b)"}

	failures := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceLength, Count: 2},
		{Type: AssertTraceInvariants},
		{Type: AssertSalience, Term: &TermSpec{Atom: "a"}, Min: ptr(50.0)},
		{Type: AssertConceptExists, Term: &TermSpec{Atom: "b"}},
		{Type: AssertAdmittedContains, Match: "(&/,a,+10,b)"},
		{Type: AssertAdmittedAbsent, Match: "(&|,a,b)"},
		{Type: AssertAdmittedMin, Count: 1},
	}, actx)

	assert.Empty(t, failures)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	actx := newAssertionContext(t)
	result := NewResult()
	result.Admitted = []string{"(&/,a,+10,b)"}

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{
			name:      "trace length",
			assertion: Assertion{Type: AssertTraceLength, Count: 3},
			want:      "Actual: 2 trace items",
		},
		{
			name:      "salience above max",
			assertion: Assertion{Type: AssertSalience, Term: &TermSpec{Atom: "b"}, Min: ptr(0.0), Max: ptr(10.0)},
			want:      "salience of b in [0, 10]",
		},
		{
			name:      "salience missing",
			assertion: Assertion{Type: AssertSalience, Term: &TermSpec{Atom: "c"}, Min: ptr(0.0)},
			want:      "Actual: no entry",
		},
		{
			name:      "concept missing",
			assertion: Assertion{Type: AssertConceptExists, Term: &TermSpec{Atom: "c"}},
			want:      "Actual: not in memory",
		},
		{
			name:      "admitted missing",
			assertion: Assertion{Type: AssertAdmittedContains, Match: "(&|,a,b)"},
			want:      "conclusion (&|,a,b) admitted",
		},
		{
			name:      "admitted present",
			assertion: Assertion{Type: AssertAdmittedAbsent, Match: "(&/,a,+10,b)"},
			want:      "never admitted",
		},
		{
			name:      "too few admitted",
			assertion: Assertion{Type: AssertAdmittedMin, Count: 2},
			want:      "at least 2 admitted conclusions",
		},
		{
			name:      "unknown type",
			assertion: Assertion{Type: "bogus"},
			want:      "unknown assertion type: bogus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(result, []Assertion{tt.assertion}, actx)
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], "assertions[0]: ")
			assert.Contains(t, failures[0], tt.want)
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertTraceLength, Expected: "3 trace items", Actual: "2 trace items"}
	assert.Equal(t,
		"Assertion failed: trace_length\n  Expected: 3 trace items\n  Actual: 2 trace items",
		err.Error())
}

func TestBounds(t *testing.T) {
	assert.Equal(t, "[-inf, +inf]", bounds(nil, nil))
	assert.Equal(t, "[0.5, +inf]", bounds(ptr(0.5), nil))
	assert.Equal(t, "[-inf, 2]", bounds(nil, ptr(2.0)))
}
