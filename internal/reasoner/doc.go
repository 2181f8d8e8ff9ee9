// Package reasoner drives a reasoning session: it owns the control state,
// the concept table, the logical clock and the seeded random source, and
// plays the scheduler that feeds inputs in and runs control cycles.
//
// ARCHITECTURE:
//
// Single-Writer Loop:
// All core state is mutated by one goroutine. Producers hand work to the
// engine through Enqueue, which is safe from any goroutine; Run dequeues
// events one at a time. Tests, the scenario harness and the CLI use the
// synchronous Input and Step methods instead.
//
// Cycle:
//  1. The clock advances by one
//  2. Trace decay is recomputed and memory bounds are enforced
//  3. The control loop samples pairs, derives and admits conclusions
//  4. Salience cools down
//  5. Admissions are flushed to the journal, if one is configured
//
// Determinism:
// With the same seed and the same sequence of inputs and cycles, a session
// admits the same conclusions in the same order.
package reasoner
