package filter

import (
	"slices"

	"github.com/roach88/etrace/internal/nal"
)

// DefaultRecencyWindow is the number of accepted fingerprints remembered.
const DefaultRecencyWindow = 20

// Unique collapses content-equal sentences, keeping the first of each in
// the original order.
func Unique(sentences []*nal.Sentence) []*nal.Sentence {
	seen := make(map[string]struct{}, len(sentences))
	out := make([]*nal.Sentence, 0, len(sentences))
	for _, s := range sentences {
		fp := s.Fingerprint()
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, s)
	}
	return out
}

// DerivationFilter remembers the fingerprints of the most recently accepted
// conclusions so they are not admitted again right away.
//
// INVARIANT: Len() <= capacity; the oldest fingerprint is dropped first.
type DerivationFilter struct {
	capacity int
	recent   []string
}

// NewDerivationFilter creates a filter remembering capacity fingerprints.
// A non-positive capacity selects DefaultRecencyWindow.
func NewDerivationFilter(capacity int) *DerivationFilter {
	if capacity <= 0 {
		capacity = DefaultRecencyWindow
	}
	return &DerivationFilter{
		capacity: capacity,
		recent:   make([]string, 0, capacity+1),
	}
}

// Contains reports whether fp is among the remembered fingerprints.
func (f *DerivationFilter) Contains(fp string) bool {
	return slices.Contains(f.recent, fp)
}

// Push remembers fp, dropping the oldest fingerprint beyond capacity.
func (f *DerivationFilter) Push(fp string) {
	f.recent = append(f.recent, fp)
	if len(f.recent) > f.capacity {
		f.recent = slices.Delete(f.recent, 0, len(f.recent)-f.capacity)
	}
}

// Admit pushes fp and returns true unless it was already remembered.
func (f *DerivationFilter) Admit(fp string) bool {
	if f.Contains(fp) {
		return false
	}
	f.Push(fp)
	return true
}

// Len returns the number of remembered fingerprints.
func (f *DerivationFilter) Len() int {
	return len(f.recent)
}

// Reset forgets everything.
func (f *DerivationFilter) Reset() {
	f.recent = f.recent[:0]
}

// Recent keeps the sentences whose fingerprints are not remembered and
// remembers them.
func (f *DerivationFilter) Recent(sentences []*nal.Sentence) []*nal.Sentence {
	out := make([]*nal.Sentence, 0, len(sentences))
	for _, s := range sentences {
		if f.Admit(s.Fingerprint()) {
			out = append(out, s)
		}
	}
	return out
}
