// Package harness runs scripted reasoning sessions and checks what they
// leave behind.
//
// A scenario feeds timed input events to a reasoner, runs control cycles
// and then evaluates assertions against the final attention state and the
// admitted conclusions. Runs are deterministic: the session id is fixed
// and the random source is seeded from the scenario.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario checks"
//	seed: 7                 # optional, default 1
//	params: params.cue      # optional, relative to the scenario file
//	steps:
//	  - input: { atom: a, at: 10 }
//	  - input: { operation: left, at: 20 }
//	  - input: { atom: c, at: 30, punctuation: goal }
//	  - cycles: 5
//	assertions:
//	  - type: trace_length
//	    count: 2
//	  - type: salience
//	    term: { atom: a }
//	    min: 49.9
//
// Terms are written structurally (atom, operation with args, interval,
// sequence), never parsed from Narsese.
//
// # Assertion Types
//
//   - trace_length: the eligibility trace holds exactly count items
//   - trace_invariants: the trace and its indexes are consistent
//   - salience: the term's salience lies within [min, max]
//   - concept_exists: memory holds a concept for the term
//   - admitted_contains: some admitted conclusion prints as match
//   - admitted_absent: no admitted conclusion prints as match
//   - admitted_min: at least count conclusions were admitted
package harness
