package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by ReadSession for an unknown id.
var ErrSessionNotFound = errors.New("session not found")

// ReadSession returns the session with the given id.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	var seed int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seed, params, params_hash
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &seed, &sess.Params, &sess.ParamsHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	sess.Seed = uint64(seed)
	return sess, nil
}

// ReadSessions returns every session ordered by id. Session ids are
// UUIDv7, so this is creation order.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ReadSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, params, params_hash
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		var seed int64
		if err := rows.Scan(&sess.ID, &seed, &sess.Params, &sess.ParamsHash); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.Seed = uint64(seed)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

const admissionColumns = `session_id, seq, cycle, label, punctuation, term, frequency,
	confidence, occurrence, evidence, budget, fingerprint`

// ReadAdmissions returns all admissions of a session ordered by seq.
//
// Returns an empty slice (not nil) if the session has none.
func (s *Store) ReadAdmissions(ctx context.Context, sessionID string) ([]Admission, error) {
	return s.readAdmissions(ctx, `
		SELECT `+admissionColumns+`
		FROM admissions
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
}

// ReadCycle returns the admissions made during one cycle, ordered by seq.
func (s *Store) ReadCycle(ctx context.Context, sessionID string, cycle int64) ([]Admission, error) {
	return s.readAdmissions(ctx, `
		SELECT `+admissionColumns+`
		FROM admissions
		WHERE session_id = ? AND cycle = ?
		ORDER BY seq ASC
	`, sessionID, cycle)
}

// FindByFingerprint returns every admission of a sentence across sessions,
// ordered by session then seq.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) ([]Admission, error) {
	return s.readAdmissions(ctx, `
		SELECT `+admissionColumns+`
		FROM admissions
		WHERE fingerprint = ?
		ORDER BY session_id COLLATE BINARY ASC, seq ASC
	`, fingerprint)
}

// CountAdmissions returns the number of admissions recorded for a session.
func (s *Store) CountAdmissions(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM admissions WHERE session_id = ?
	`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count admissions: %w", err)
	}
	return n, nil
}

func (s *Store) readAdmissions(ctx context.Context, query string, args ...any) ([]Admission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query admissions: %w", err)
	}
	defer rows.Close()

	admissions := []Admission{}
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, err
		}
		admissions = append(admissions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admissions: %w", err)
	}
	return admissions, nil
}

func scanAdmission(rows *sql.Rows) (Admission, error) {
	var a Admission
	var occurrence sql.NullInt64
	var evidence, budget string
	err := rows.Scan(
		&a.SessionID,
		&a.Seq,
		&a.Cycle,
		&a.Label,
		&a.Punctuation,
		&a.Term,
		&a.Frequency,
		&a.Confidence,
		&occurrence,
		&evidence,
		&budget,
		&a.Fingerprint,
	)
	if err != nil {
		return Admission{}, fmt.Errorf("scan admission: %w", err)
	}

	if occurrence.Valid {
		occ := occurrence.Int64
		a.Occurrence = &occ
	}
	if a.Evidence, err = unmarshalEvidence(evidence); err != nil {
		return Admission{}, err
	}
	if a.Budget, err = unmarshalBudget(budget); err != nil {
		return Admission{}, err
	}
	return a, nil
}
