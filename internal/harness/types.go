package harness

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every input was accepted and every assertion held.
	Pass bool `json:"pass"`

	// Errors holds refused inputs and failed assertions, in order.
	Errors []string `json:"errors,omitempty"`

	// SessionID is the id the run was journaled under.
	SessionID string `json:"session_id"`

	// Cycles summarizes every control cycle in order.
	Cycles []CycleSummary `json:"cycles"`

	// Admitted lists the printed term of every admitted conclusion, in
	// admission order.
	Admitted []string `json:"admitted"`

	// Snapshot is the attention state after the last step.
	Snapshot Snapshot `json:"snapshot"`
}

// CycleSummary is the per-cycle counters of a control cycle.
type CycleSummary struct {
	Now      int64 `json:"now"`
	Sampled  int   `json:"sampled"`
	Derived  int   `json:"derived"`
	Admitted int   `json:"admitted"`
}

// Snapshot is the ingest-side attention state: the trace with its events
// and the salience of every term in rank order.
type Snapshot struct {
	Scenario string          `json:"scenario"`
	Now      int64           `json:"now"`
	Trace    []TraceItem     `json:"trace"`
	Salience []SalienceEntry `json:"salience"`
}

// TraceItem is one time slot of the eligibility trace.
type TraceItem struct {
	Time   int64    `json:"time"`
	Events []string `json:"events"`
}

// SalienceEntry is one term of the salience store.
type SalienceEntry struct {
	Term     string  `json:"term"`
	Salience float64 `json:"salience"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Errors:   []string{},
		Cycles:   []CycleSummary{},
		Admitted: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
