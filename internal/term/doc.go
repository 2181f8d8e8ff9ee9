// Package term provides the term algebra used by the temporal attention core.
//
// Terms are a sealed sum type: only the variants declared in this package
// implement Term. Consumers dispatch with type switches instead of chained
// instanceof-style checks.
//
// Identity is structural. Key returns an unambiguous canonical encoding of the
// term tree and is the only value that should be used as a map key for terms.
// The printed form (String) is for humans and logs; two distinct terms may
// print alike, so it must never be used for indexing.
//
// Key design constraints:
//   - Terms are immutable once constructed; constructors copy their inputs
//   - Atom and operator names are NFC normalized at the key boundary
//   - Fingerprint is SHA-256 over Key with domain separation
package term
