package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/term"
)

// createTestStore opens a fresh store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession writes a session with fixed parameters.
func createTestSession(t *testing.T, s *Store, id string) Session {
	t.Helper()
	sess, err := NewSession(id, 42, map[string]float64{"heat_up": 0.05})
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	if err := s.WriteSession(context.Background(), sess); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	return sess
}

// createTestAdmission builds an admission for atom name occurring at occ.
func createTestAdmission(sessionID string, seq, cycle int64, name string, occ int64) Admission {
	task := nal.NewTask(&nal.Sentence{
		Term:        term.NewAtom(name),
		Punctuation: nal.Judgment,
		Truth:       nal.NewTruth(1, 0.9),
		Stamp:       nal.NewStamp(seq, occ, occ),
	}, nal.NewBudget(0.9, 0.5, 0.5), nal.OriginDerived)
	return NewAdmission(sessionID, seq, cycle, "Derived", task)
}
