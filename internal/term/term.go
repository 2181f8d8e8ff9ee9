package term

import (
	"strconv"
	"strings"
)

// Order is the temporal order carried by implications, equivalences and
// conjunctions.
type Order int

const (
	// OrderNone marks an eternal (non-temporal) relation.
	OrderNone Order = iota
	// OrderForward marks "first, then" (=/>, </>, &/).
	OrderForward
	// OrderBackward marks "after" (=\>).
	OrderBackward
	// OrderConcurrent marks "at the same time" (=|>, <|>, &|).
	OrderConcurrent
)

// String returns the order name.
func (o Order) String() string {
	switch o {
	case OrderForward:
		return "forward"
	case OrderBackward:
		return "backward"
	case OrderConcurrent:
		return "concurrent"
	default:
		return "none"
	}
}

// OperatorSigil prefixes the names of executable operators.
const OperatorSigil = "^"

// Term is a sealed interface. Only the variants in this package implement it.
type Term interface {
	term() // Sealed
	String() string
}

// Atom is a named atomic term. Operator names start with OperatorSigil.
type Atom struct {
	Name string
}

// Interval is a numeric time gap inside a sequence.
type Interval struct {
	N int64
}

// Inheritance is <S --> P>.
type Inheritance struct {
	Subject   Term
	Predicate Term
}

// Similarity is <S <-> P>.
type Similarity struct {
	Subject   Term
	Predicate Term
}

// Implication is <S ==> P> with a temporal order.
type Implication struct {
	Subject   Term
	Predicate Term
	Order     Order
}

// Equivalence is <S <=> P> with a temporal order.
type Equivalence struct {
	Subject   Term
	Predicate Term
	Order     Order
}

// Conjunction is (&&, ...), (&/, ...) or (&|, ...) depending on Order.
// A forward conjunction is a sequence and may contain Interval components.
type Conjunction struct {
	Terms []Term
	Order Order
}

// Operation is an executable action (^op, args...).
type Operation struct {
	Operator string
	Args     []Term
}

// ExtSet is an extensional set {a, b}.
type ExtSet struct {
	Terms []Term
}

// IntSet is an intensional set [a, b].
type IntSet struct {
	Terms []Term
}

// Product is (*, a, b).
type Product struct {
	Terms []Term
}

func (Atom) term()        {}
func (Interval) term()    {}
func (Inheritance) term() {}
func (Similarity) term()  {}
func (Implication) term() {}
func (Equivalence) term() {}
func (Conjunction) term() {}
func (Operation) term()   {}
func (ExtSet) term()      {}
func (IntSet) term()      {}
func (Product) term()     {}

// NewAtom creates an Atom.
func NewAtom(name string) Atom {
	return Atom{Name: name}
}

// NewOperation creates an Operation. The sigil is added when missing.
func NewOperation(operator string, args ...Term) Operation {
	if !strings.HasPrefix(operator, OperatorSigil) {
		operator = OperatorSigil + operator
	}
	return Operation{Operator: operator, Args: copyTerms(args)}
}

// NewConjunction creates a conjunction with the given order.
// Use Sequence for forward conjunctions that need flattening.
func NewConjunction(order Order, terms ...Term) Conjunction {
	return Conjunction{Terms: copyTerms(terms), Order: order}
}

// NewExtSet creates an extensional set.
func NewExtSet(terms ...Term) ExtSet {
	return ExtSet{Terms: copyTerms(terms)}
}

// NewIntSet creates an intensional set.
func NewIntSet(terms ...Term) IntSet {
	return IntSet{Terms: copyTerms(terms)}
}

// NewProduct creates a product.
func NewProduct(terms ...Term) Product {
	return Product{Terms: copyTerms(terms)}
}

func copyTerms(terms []Term) []Term {
	if len(terms) == 0 {
		return nil
	}
	out := make([]Term, len(terms))
	copy(out, terms)
	return out
}

func (a Atom) String() string {
	return a.Name
}

func (i Interval) String() string {
	return "+" + strconv.FormatInt(i.N, 10)
}

func (s Inheritance) String() string {
	return statement(s.Subject, "-->", s.Predicate)
}

func (s Similarity) String() string {
	return statement(s.Subject, "<->", s.Predicate)
}

func (s Implication) String() string {
	copula := "==>"
	switch s.Order {
	case OrderForward:
		copula = "=/>"
	case OrderBackward:
		copula = `=\>`
	case OrderConcurrent:
		copula = "=|>"
	}
	return statement(s.Subject, copula, s.Predicate)
}

func (s Equivalence) String() string {
	copula := "<=>"
	switch s.Order {
	case OrderForward:
		copula = "</>"
	case OrderBackward:
		copula = `<\>`
	case OrderConcurrent:
		copula = "<|>"
	}
	return statement(s.Subject, copula, s.Predicate)
}

func (c Conjunction) String() string {
	op := "&&"
	switch c.Order {
	case OrderForward:
		op = "&/"
	case OrderBackward:
		op = `&\`
	case OrderConcurrent:
		op = "&|"
	}
	return compound("("+op+",", c.Terms, ")")
}

func (o Operation) String() string {
	if len(o.Args) == 0 {
		return "(" + o.Operator + ")"
	}
	return compound("("+o.Operator+",", o.Args, ")")
}

func (s ExtSet) String() string {
	return compound("{", s.Terms, "}")
}

func (s IntSet) String() string {
	return compound("[", s.Terms, "]")
}

func (p Product) String() string {
	return compound("(*,", p.Terms, ")")
}

func statement(subject Term, copula string, predicate Term) string {
	return "<" + subject.String() + " " + copula + " " + predicate.String() + ">"
}

func compound(open string, terms []Term, closing string) string {
	var b strings.Builder
	b.WriteString(open)
	for i, t := range terms {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.String())
	}
	b.WriteString(closing)
	return b.String()
}

// TemporalOrder returns the order of a temporal compound, OrderNone otherwise.
func TemporalOrder(t Term) Order {
	switch v := t.(type) {
	case Implication:
		return v.Order
	case Equivalence:
		return v.Order
	case Conjunction:
		return v.Order
	default:
		return OrderNone
	}
}

// IsCompound reports whether t has components.
func IsCompound(t Term) bool {
	switch t.(type) {
	case Atom, Interval:
		return false
	default:
		return t != nil
	}
}

// IsSequence reports whether t is a forward conjunction.
func IsSequence(t Term) bool {
	c, ok := t.(Conjunction)
	return ok && c.Order == OrderForward
}

// IsForwardImplication reports whether t is <S =/> P>.
func IsForwardImplication(t Term) bool {
	i, ok := t.(Implication)
	return ok && i.Order == OrderForward
}

// Components returns the direct children of t in order.
func Components(t Term) []Term {
	switch v := t.(type) {
	case Inheritance:
		return []Term{v.Subject, v.Predicate}
	case Similarity:
		return []Term{v.Subject, v.Predicate}
	case Implication:
		return []Term{v.Subject, v.Predicate}
	case Equivalence:
		return []Term{v.Subject, v.Predicate}
	case Conjunction:
		return v.Terms
	case Operation:
		return v.Args
	case ExtSet:
		return v.Terms
	case IntSet:
		return v.Terms
	case Product:
		return v.Terms
	default:
		return nil
	}
}

// Walk visits t and its subterms depth-first, pre-order. Returning false
// from fn stops the walk.
func Walk(t Term, fn func(Term) bool) bool {
	if t == nil {
		return true
	}
	if !fn(t) {
		return false
	}
	for _, c := range Components(t) {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}
