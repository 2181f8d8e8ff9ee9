package filter

import "github.com/roach88/etrace/internal/term"

// BothOperators reports whether a and b are both operator terms; such pairs
// are not worth deriving from.
func BothOperators(a, b term.Term) bool {
	return term.IsOperator(a) && term.IsOperator(b)
}

// ValidPremise reports whether t may be used as a premise.
//
// Temporal conjunctions, implications and equivalences are rejected, except
// that the leading premise may be a forward sequence or a forward
// implication so that longer chains can be built. Non-temporal
// conjunctions are always allowed.
func ValidPremise(t term.Term, leading bool) bool {
	if leading && (term.IsSequence(t) || term.IsForwardImplication(t)) {
		return true
	}
	switch t.(type) {
	case term.Conjunction, term.Implication, term.Equivalence:
		return term.TemporalOrder(t) == term.OrderNone
	default:
		return true
	}
}
