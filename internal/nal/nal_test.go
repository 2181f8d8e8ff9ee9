package nal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/etrace/internal/term"
)

func event(name string, occurrence int64, base ...int64) *Sentence {
	return &Sentence{
		Term:        term.NewAtom(name),
		Punctuation: Judgment,
		Truth:       NewTruth(1, 0.9),
		Stamp:       Stamp{Base: base, Creation: occurrence, Occurrence: occurrence},
	}
}

func TestIntersection(t *testing.T) {
	got := Intersection(NewTruth(0.5, 0.9), NewTruth(1, 0.8))
	assert.InDelta(t, 0.5, got.Frequency, 1e-12)
	assert.InDelta(t, 0.72, got.Confidence, 1e-12)
}

func TestInduction(t *testing.T) {
	got := Induction(NewTruth(1, 0.9), NewTruth(0.8, 0.9), DefaultHorizon)
	assert.InDelta(t, 0.8, got.Frequency, 1e-12)
	assert.InDelta(t, 0.81/1.81, got.Confidence, 1e-12)
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(Stamp{Base: []int64{1, 2}}, Stamp{Base: []int64{3, 2}}))
	assert.False(t, Overlaps(Stamp{Base: []int64{1, 2}}, Stamp{Base: []int64{3, 4}}))
	assert.False(t, Overlaps(Stamp{}, Stamp{Base: []int64{3}}))
}

func TestMerge(t *testing.T) {
	a := Stamp{Base: []int64{1, 2}, Occurrence: 10}
	b := Stamp{Base: []int64{3, 2}, Occurrence: 20}

	merged := Merge(a, b, 25, 0)
	assert.ElementsMatch(t, []int64{1, 2, 3}, merged.Base)
	assert.Equal(t, int64(20), merged.Occurrence)
	assert.Equal(t, int64(25), merged.Creation)
	assert.True(t, Overlaps(merged, a))
	assert.True(t, Overlaps(merged, b))
}

func TestMerge_Capped(t *testing.T) {
	a := Stamp{Base: []int64{1, 2, 3}}
	b := Stamp{Base: []int64{4, 5, 6}}

	merged := Merge(a, b, 0, 4)
	require.Len(t, merged.Base, 4)
	// Newest evidence of each side survives the cap.
	assert.Contains(t, merged.Base, int64(6))
	assert.Contains(t, merged.Base, int64(3))
}

func TestEternalize(t *testing.T) {
	s := event("a", 10, 1)
	e := s.Eternalized()

	assert.True(t, e.IsEternal())
	assert.False(t, s.IsEternal(), "original must not change")
	assert.True(t, term.Equal(s.Term, e.Term))
	assert.Equal(t, s.Truth, e.Truth)

	e.Stamp.Base[0] = 99
	assert.Equal(t, int64(1), s.Stamp.Base[0], "base must be copied")
}

func TestSentenceEqual(t *testing.T) {
	a := event("a", 10, 1, 2)
	b := event("a", 10, 2, 1)
	b.Stamp.Creation = 99

	assert.True(t, a.Equal(b), "base order and creation time are not content")
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := event("a", 11, 1, 2)
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	d := event("a", 10, 1, 2)
	d.Truth = NewTruth(0.5, 0.9)
	assert.False(t, a.Equal(d))
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}

func TestSentenceString(t *testing.T) {
	assert.Equal(t, "a. :|10|: %1.00;0.90%", event("a", 10, 1).String())
	assert.Equal(t, "a. %1.00;0.90%", event("a", 10, 1).Eternalized().String())
}

func TestParsePunctuation(t *testing.T) {
	p, err := ParsePunctuation("goal")
	require.NoError(t, err)
	assert.Equal(t, Goal, p)

	p, err = ParsePunctuation("")
	require.NoError(t, err)
	assert.Equal(t, Judgment, p)

	_, err = ParsePunctuation("command")
	assert.Error(t, err)
}
