package nal

import (
	"math"
	"slices"
)

// Eternal is the occurrence time of sentences that hold at all times.
const Eternal int64 = math.MinInt64

// DefaultMaxBaseLength caps the evidential base after a merge.
const DefaultMaxBaseLength = 20000

// Stamp records the evidential base and the timing of a sentence.
//
// INVARIANT: Base holds distinct evidence serials.
type Stamp struct {
	Base       []int64
	Creation   int64
	Occurrence int64
}

// NewStamp creates a stamp with a single fresh evidence serial.
func NewStamp(serial, creation, occurrence int64) Stamp {
	return Stamp{Base: []int64{serial}, Creation: creation, Occurrence: occurrence}
}

// IsEternal reports whether the stamp has no occurrence time.
func (s Stamp) IsEternal() bool {
	return s.Occurrence == Eternal
}

// Eternalize returns a copy with the occurrence time removed.
func (s Stamp) Eternalize() Stamp {
	out := s.clone()
	out.Occurrence = Eternal
	return out
}

func (s Stamp) clone() Stamp {
	return Stamp{
		Base:       slices.Clone(s.Base),
		Creation:   s.Creation,
		Occurrence: s.Occurrence,
	}
}

// Overlaps reports whether two stamps share any evidence.
func Overlaps(a, b Stamp) bool {
	if len(a.Base) > len(b.Base) {
		a, b = b, a
	}
	for _, x := range a.Base {
		if slices.Contains(b.Base, x) {
			return true
		}
	}
	return false
}

// Merge zips the evidential bases of first and second, newest evidence
// first from each, dropping duplicates and capping at maxLen.
//
// The merged stamp occurs when second occurs: when merging an earlier and a
// later premise, the result is anchored at the end of the span it covers.
func Merge(first, second Stamp, now int64, maxLen int) Stamp {
	if maxLen <= 0 {
		maxLen = DefaultMaxBaseLength
	}
	base := make([]int64, 0, min(len(first.Base)+len(second.Base), maxLen))
	i, j := len(first.Base)-1, len(second.Base)-1
	for (i >= 0 || j >= 0) && len(base) < maxLen {
		if j >= 0 {
			if !slices.Contains(base, second.Base[j]) {
				base = append(base, second.Base[j])
			}
			j--
		}
		if i >= 0 && len(base) < maxLen {
			if !slices.Contains(base, first.Base[i]) {
				base = append(base, first.Base[i])
			}
			i--
		}
	}
	slices.Reverse(base)
	return Stamp{Base: base, Creation: now, Occurrence: second.Occurrence}
}

// sortedBase returns the base as a sorted copy for set comparison.
func (s Stamp) sortedBase() []int64 {
	out := slices.Clone(s.Base)
	slices.Sort(out)
	return out
}
