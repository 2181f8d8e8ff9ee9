package testutil

// DefaultSessionID is used when a scenario does not name its session.
const DefaultSessionID = "test-session-default"

// FixedSessionGenerator returns the same session id every time.
//
// The same scenario run with a FixedSessionGenerator produces
// byte-identical journals and snapshots.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator for id. If id is empty,
// Generate returns DefaultSessionID.
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSessionID
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session id.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
