package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/term"
)

// Scenario is a scripted reasoning session with assertions.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Seed seeds the reasoner's random source. Zero means the default.
	Seed uint64 `yaml:"seed,omitempty"`

	// Params is an optional CUE parameter file, relative to the scenario.
	Params string `yaml:"params,omitempty"`

	// SessionID fixes the session id for journals and snapshots.
	SessionID string `yaml:"session_id,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is either one input event or a number of control cycles.
type Step struct {
	Input  *InputStep `yaml:"input,omitempty"`
	Cycles int        `yaml:"cycles,omitempty"`
}

// InputStep describes one input task.
type InputStep struct {
	TermSpec `yaml:",inline"`

	// At is the occurrence time. Omit it, or set eternal, for an
	// eternal task.
	At      *int64 `yaml:"at,omitempty"`
	Eternal bool   `yaml:"eternal,omitempty"`

	// Punctuation is judgment (default), goal or question.
	Punctuation string `yaml:"punctuation,omitempty"`

	Frequency  *float64 `yaml:"frequency,omitempty"`
	Confidence *float64 `yaml:"confidence,omitempty"`
}

// TermSpec is the structural YAML form of a term. Exactly one field is set.
type TermSpec struct {
	Atom      string     `yaml:"atom,omitempty"`
	Operation string     `yaml:"operation,omitempty"`
	Args      []string   `yaml:"args,omitempty"` // atom arguments of an operation
	Interval  int64      `yaml:"interval,omitempty"`
	Sequence  []TermSpec `yaml:"sequence,omitempty"`
}

// Assertion validates the final state of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Term selects the term for salience and concept_exists.
	Term *TermSpec `yaml:"term,omitempty"`

	// Match is the printed conclusion term for admitted_contains and
	// admitted_absent.
	Match string `yaml:"match,omitempty"`

	// Count is used by trace_length and admitted_min.
	Count int `yaml:"count,omitempty"`

	// Min and Max bound the salience assertion; either may be omitted.
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceLength      = "trace_length"
	AssertTraceInvariants  = "trace_invariants"
	AssertSalience         = "salience"
	AssertConceptExists    = "concept_exists"
	AssertAdmittedContains = "admitted_contains"
	AssertAdmittedAbsent   = "admitted_absent"
	AssertAdmittedMin      = "admitted_min"
)

// LoadScenario reads and parses a scenario YAML file. A relative params
// path is resolved against the scenario's directory.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos) or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.Params != "" && !filepath.IsAbs(s.Params) {
		s.Params = filepath.Join(filepath.Dir(path), s.Params)
	}
	return s, nil
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch {
		case step.Input != nil && step.Cycles != 0:
			return fmt.Errorf("steps[%d]: set either input or cycles, not both", i)
		case step.Input != nil:
			if err := validateInput(step.Input); err != nil {
				return fmt.Errorf("steps[%d].input: %w", i, err)
			}
		case step.Cycles <= 0:
			return fmt.Errorf("steps[%d]: cycles must be positive", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateInput(in *InputStep) error {
	if _, err := in.TermSpec.Build(); err != nil {
		return err
	}
	if in.Eternal && in.At != nil {
		return fmt.Errorf("eternal input cannot have a time")
	}
	if _, err := nal.ParsePunctuation(in.Punctuation); err != nil {
		return err
	}
	for name, v := range map[string]*float64{"frequency": in.Frequency, "confidence": in.Confidence} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be in [0, 1]", name)
		}
	}
	if in.Confidence != nil && *in.Confidence == 1 {
		return fmt.Errorf("confidence must be below 1")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceLength, AssertAdmittedMin:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertTraceInvariants:
	case AssertSalience, AssertConceptExists:
		if a.Term == nil {
			return fmt.Errorf("assertions[%d]: term is required for %s", index, a.Type)
		}
		if _, err := a.Term.Build(); err != nil {
			return fmt.Errorf("assertions[%d].term: %w", index, err)
		}
		if a.Type == AssertSalience && a.Min == nil && a.Max == nil {
			return fmt.Errorf("assertions[%d]: min or max is required for salience", index)
		}
	case AssertAdmittedContains, AssertAdmittedAbsent:
		if a.Match == "" {
			return fmt.Errorf("assertions[%d]: match is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// Build converts the YAML description into a term.
func (s TermSpec) Build() (term.Term, error) {
	set := 0
	for _, ok := range []bool{s.Atom != "", s.Operation != "", s.Interval != 0, len(s.Sequence) > 0} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of atom, operation, interval or sequence is required")
	}
	if len(s.Args) > 0 && s.Operation == "" {
		return nil, fmt.Errorf("args are only allowed on an operation")
	}

	switch {
	case s.Atom != "":
		return term.NewAtom(s.Atom), nil

	case s.Operation != "":
		args := make([]term.Term, len(s.Args))
		for i, a := range s.Args {
			args[i] = term.NewAtom(a)
		}
		return term.NewOperation(s.Operation, args...), nil

	case s.Interval != 0:
		if s.Interval < 0 {
			return nil, fmt.Errorf("interval must be positive")
		}
		return term.Interval{N: s.Interval}, nil

	default:
		parts := make([]term.Term, len(s.Sequence))
		for i, p := range s.Sequence {
			t, err := p.Build()
			if err != nil {
				return nil, fmt.Errorf("sequence[%d]: %w", i, err)
			}
			parts[i] = t
		}
		return term.Sequence(parts...), nil
	}
}
