// Package filter decides which premises may be combined and which derived
// conclusions are admitted.
//
// Premise gates run before derivation. After a cycle's derivations, the
// acceptance table, structural deduplication and the recency filter run in
// that order.
package filter

import (
	"strconv"

	"github.com/roach88/etrace/internal/term"
)

// Rule identifies one row of the conclusion acceptance table.
type Rule int

const (
	// R1 rejects <X =/> Y> where Y is a forward-ordered compound.
	R1 Rule = iota + 1
	// R2 rejects <X =/> Y> where Y is an operator term.
	R2
	// R3 rejects <(&/, ^op, +n) =/> Y>.
	R3
	// R4 rejects the sequences (&/, ^a, ^b) and (&/, ^a, +n, ^b).
	R4
	// R5 rejects <X =\> Y> where X is an operator term.
	R5
	// R6 rejects <(&/, ...) =/> Y> with more than four sequence components.
	R6
	// R7 rejects any statement, at any depth, whose subject is a sequence
	// starting with an operation.
	R7
)

// maxAntecedentLength bounds the sequence length checked by R6.
const maxAntecedentLength = 4

func (r Rule) String() string {
	return "R" + strconv.Itoa(int(r))
}

// Violations returns every acceptance rule that t breaks, in rule order.
func Violations(t term.Term) []Rule {
	var out []Rule
	add := func(r Rule, broken bool) {
		if broken {
			out = append(out, r)
		}
	}

	switch v := t.(type) {
	case term.Implication:
		switch v.Order {
		case term.OrderForward:
			add(R1, term.IsCompound(v.Predicate) && term.TemporalOrder(v.Predicate) == term.OrderForward)
			add(R2, term.IsOperator(v.Predicate))
			if seq, ok := v.Subject.(term.Conjunction); ok && seq.Order == term.OrderForward {
				add(R3, len(seq.Terms) == 2 && isOperation(seq.Terms[0]) && isInterval(seq.Terms[1]))
				add(R6, len(seq.Terms) > maxAntecedentLength)
			}
		case term.OrderBackward:
			add(R5, term.IsOperator(v.Subject))
		}
	case term.Conjunction:
		if v.Order == term.OrderForward {
			add(R4, opOpSequence(v.Terms))
		}
	}

	add(R7, operatorLedSubject(t))
	return out
}

// Accept reports whether t passes the acceptance table.
func Accept(t term.Term) bool {
	return len(Violations(t)) == 0
}

func opOpSequence(terms []term.Term) bool {
	switch len(terms) {
	case 2:
		return isOperation(terms[0]) && isOperation(terms[1])
	case 3:
		return isOperation(terms[0]) && isInterval(terms[1]) && isOperation(terms[2])
	default:
		return false
	}
}

func operatorLedSubject(t term.Term) bool {
	found := false
	term.Walk(t, func(sub term.Term) bool {
		var subject term.Term
		switch v := sub.(type) {
		case term.Inheritance:
			subject = v.Subject
		case term.Similarity:
			subject = v.Subject
		case term.Implication:
			subject = v.Subject
		case term.Equivalence:
			subject = v.Subject
		default:
			return true
		}
		if seq, ok := subject.(term.Conjunction); ok && seq.Order == term.OrderForward &&
			len(seq.Terms) > 0 && isOperation(seq.Terms[0]) {
			found = true
		}
		return !found
	})
	return found
}

func isOperation(t term.Term) bool {
	return term.IsOperation(t)
}

func isInterval(t term.Term) bool {
	_, ok := t.(term.Interval)
	return ok
}
