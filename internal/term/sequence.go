package term

import "strings"

// Sequence joins parts into a forward conjunction (&/, ...).
//
// Nested sequences are spliced in place, adjacent intervals are summed and
// non-positive intervals are dropped. A single remaining component is
// returned as is.
func Sequence(parts ...Term) Term {
	var out []Term
	push := func(t Term) {
		iv, ok := t.(Interval)
		if !ok {
			out = append(out, t)
			return
		}
		if iv.N <= 0 {
			return
		}
		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(Interval); ok {
				out[n-1] = Interval{N: prev.N + iv.N}
				return
			}
		}
		out = append(out, iv)
	}

	for _, p := range parts {
		if p == nil {
			continue
		}
		if IsSequence(p) {
			for _, c := range p.(Conjunction).Terms {
				push(c)
			}
			continue
		}
		push(p)
	}

	if len(out) == 1 {
		return out[0]
	}
	return Conjunction{Terms: out, Order: OrderForward}
}

// Span returns the summed interval length inside a sequence, 0 otherwise.
func Span(t Term) int64 {
	c, ok := t.(Conjunction)
	if !ok || c.Order != OrderForward {
		return 0
	}
	var total int64
	for _, comp := range c.Terms {
		if iv, ok := comp.(Interval); ok {
			total += iv.N
		}
	}
	return total
}

// IsOperation reports whether t is an Operation.
func IsOperation(t Term) bool {
	_, ok := t.(Operation)
	return ok
}

// IsOperator reports whether t denotes an executable action: an Operation,
// or one of the two-place forms <X --> ^op>, <X <-> ^op> and <^op <-> X>.
func IsOperator(t Term) bool {
	switch v := t.(type) {
	case Operation:
		return true
	case Inheritance:
		return sigilled(v.Predicate)
	case Similarity:
		return sigilled(v.Predicate) || sigilled(v.Subject)
	default:
		return false
	}
}

func sigilled(t Term) bool {
	return t != nil && strings.HasPrefix(t.String(), OperatorSigil)
}

// MentionsOperator reports whether the operator name occurs anywhere in t,
// either as an Operation or as an atom.
func MentionsOperator(t Term, operator string) bool {
	if !strings.HasPrefix(operator, OperatorSigil) {
		operator = OperatorSigil + operator
	}
	found := false
	Walk(t, func(sub Term) bool {
		switch v := sub.(type) {
		case Operation:
			found = v.Operator == operator
		case Atom:
			found = v.Name == operator
		}
		return !found
	})
	return found
}
