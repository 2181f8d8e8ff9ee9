package store

import (
	"fmt"

	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/term"
)

// DomainParams separates parameter hashes from term and sentence digests.
const DomainParams = "etrace/params/v1"

// Session is one reasoning run.
type Session struct {
	ID         string
	Seed       uint64
	Params     string // JSON encoding of the parameters
	ParamsHash string
}

// NewSession builds a session record, encoding params as JSON.
func NewSession(id string, seed uint64, params any) (Session, error) {
	data, err := marshalJSON(params)
	if err != nil {
		return Session{}, fmt.Errorf("marshal params: %w", err)
	}
	return Session{
		ID:         id,
		Seed:       seed,
		Params:     data,
		ParamsHash: term.Digest(DomainParams, []byte(data)),
	}, nil
}

// Admission is one task submitted to memory.
type Admission struct {
	SessionID   string
	Seq         int64
	Cycle       int64
	Label       string
	Punctuation string
	Term        string
	Frequency   float64
	Confidence  float64
	Occurrence  *int64 // nil for eternal tasks
	Evidence    []int64
	Budget      nal.Budget
	Fingerprint string
}

// NewAdmission flattens task into a journal record.
func NewAdmission(sessionID string, seq, cycle int64, label string, task *nal.Task) Admission {
	s := task.Sentence
	a := Admission{
		SessionID:   sessionID,
		Seq:         seq,
		Cycle:       cycle,
		Label:       label,
		Punctuation: string(rune(s.Punctuation)),
		Term:        s.Term.String(),
		Frequency:   s.Truth.Frequency,
		Confidence:  s.Truth.Confidence,
		Evidence:    append([]int64{}, s.Stamp.Base...),
		Budget:      task.Budget,
		Fingerprint: s.Fingerprint(),
	}
	if !s.IsEternal() {
		occ := s.Occurrence()
		a.Occurrence = &occ
	}
	return a
}

// IsEternal reports whether the admitted task had no occurrence time.
func (a Admission) IsEternal() bool {
	return a.Occurrence == nil
}
