package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"foreign_keys": "1",
		"busy_timeout": "5000",
	} {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_SetsSchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}

	var name string
	err := s.db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND name = 'idx_admissions_cycle'
	`).Scan(&name)
	if err != nil {
		t.Fatalf("cycle index missing: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	sess, _ := NewSession("s1", 1, struct{}{})
	if err := s.WriteSession(ctx, sess); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s.Close()

	sessions, err := s.ReadSessions(ctx)
	if err != nil {
		t.Fatalf("ReadSessions() failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("got %d sessions after reopen, want 1", len(sessions))
	}
}

func TestClose_NilDB(t *testing.T) {
	var s Store
	if err := s.Close(); err != nil {
		t.Errorf("Close() on empty store = %v", err)
	}
}

func TestQuery(t *testing.T) {
	s := createTestStore(t)
	createTestSession(t, s, "s1")

	rows, err := s.Query(context.Background(), "SELECT id FROM sessions")
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 1 || ids[0] != "s1" {
		t.Errorf("ids = %v, want [s1]", ids)
	}
}

func TestForeignKeys_Enforced(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteAdmissions(context.Background(), []Admission{
		createTestAdmission("missing", 1, 1, "a", 10),
	})
	if err == nil {
		t.Fatal("expected foreign key error for unknown session")
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM admissions").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("failed batch left %d rows behind", n)
	}
}
