package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/etrace/internal/reasoner"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext gives assertions access to the finished run.
type AssertionContext struct {
	Engine *reasoner.Engine
}

// EvaluateAssertions checks every assertion and returns the failure
// messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a, actx); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertTraceLength:
		return assertTraceLength(actx, a)
	case AssertTraceInvariants:
		if err := actx.Engine.State().Trace().CheckInvariants(); err != nil {
			return &AssertionError{Type: a.Type, Expected: "consistent trace", Actual: err.Error()}
		}
		return nil
	case AssertSalience:
		return assertSalience(actx, a)
	case AssertConceptExists:
		return assertConceptExists(actx, a)
	case AssertAdmittedContains:
		return assertAdmitted(result, a, true)
	case AssertAdmittedAbsent:
		return assertAdmitted(result, a, false)
	case AssertAdmittedMin:
		if n := len(result.Admitted); n < a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("at least %d admitted conclusions", a.Count),
				Actual:   fmt.Sprintf("%d admitted", n),
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertTraceLength(actx *AssertionContext, a Assertion) error {
	n := actx.Engine.State().Trace().Len()
	if n != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d trace items", a.Count),
			Actual:   fmt.Sprintf("%d trace items", n),
		}
	}
	return nil
}

func assertSalience(actx *AssertionContext, a Assertion) error {
	t, err := a.Term.Build()
	if err != nil {
		return err
	}
	entry, ok := actx.Engine.State().Salience().Get(t)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("salience entry for %s", t), Actual: "no entry"}
	}

	if (a.Min != nil && entry.Salience < *a.Min) || (a.Max != nil && entry.Salience > *a.Max) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("salience of %s in %s", t, bounds(a.Min, a.Max)),
			Actual:   fmt.Sprintf("%g", entry.Salience),
		}
	}
	return nil
}

func bounds(lo, hi *float64) string {
	l, h := "-inf", "+inf"
	if lo != nil {
		l = fmt.Sprintf("%g", *lo)
	}
	if hi != nil {
		h = fmt.Sprintf("%g", *hi)
	}
	return "[" + l + ", " + h + "]"
}

func assertConceptExists(actx *AssertionContext, a Assertion) error {
	t, err := a.Term.Build()
	if err != nil {
		return err
	}
	if _, ok := actx.Engine.Memory().ConceptFor(t); !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("concept for %s", t), Actual: "not in memory"}
	}
	return nil
}

// assertAdmitted matches admitted conclusion terms against a.Match.
func assertAdmitted(result *Result, a Assertion, want bool) error {
	found := false
	for _, s := range result.Admitted {
		if s == a.Match {
			found = true
			break
		}
	}
	if found == want {
		return nil
	}
	if want {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("conclusion %s admitted", a.Match),
			Actual:   fmt.Sprintf("admitted: %v", result.Admitted),
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("conclusion %s never admitted", a.Match),
		Actual:   "admitted",
	}
}
