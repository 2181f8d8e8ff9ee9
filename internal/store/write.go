package store

import (
	"context"
	"fmt"
)

// WriteSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - rewriting a session is
// silently ignored.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, seed, params, params_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		int64(sess.Seed),
		sess.Params,
		sess.ParamsHash,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteAdmissions inserts a batch of admissions in a single transaction.
// Duplicate (session_id, seq) pairs are silently ignored, so retrying a
// partially failed flush is safe.
//
// Note: the session referenced by each admission must exist (foreign key).
func (s *Store) WriteAdmissions(ctx context.Context, admissions []Admission) error {
	if len(admissions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write admissions: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO admissions
		(session_id, seq, cycle, label, punctuation, term, frequency, confidence,
		 occurrence, evidence, budget, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write admissions: prepare: %w", err)
	}
	defer stmt.Close()

	for _, a := range admissions {
		evidence, err := marshalEvidence(a.Evidence)
		if err != nil {
			return fmt.Errorf("write admission %d: %w", a.Seq, err)
		}
		budget, err := marshalBudget(a.Budget)
		if err != nil {
			return fmt.Errorf("write admission %d: %w", a.Seq, err)
		}

		var occurrence any
		if a.Occurrence != nil {
			occurrence = *a.Occurrence
		}

		if _, err := stmt.ExecContext(ctx,
			a.SessionID,
			a.Seq,
			a.Cycle,
			a.Label,
			a.Punctuation,
			a.Term,
			a.Frequency,
			a.Confidence,
			occurrence,
			evidence,
			budget,
			a.Fingerprint,
		); err != nil {
			return fmt.Errorf("write admission %d: %w", a.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write admissions: commit: %w", err)
	}
	return nil
}
