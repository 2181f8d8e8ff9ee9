package term

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for fingerprints. The version suffix allows the encoding
// to change without silently colliding with old journals.
const (
	DomainTerm     = "etrace/term/v1"
	DomainSentence = "etrace/sentence/v1"
)

// Variant tags used in the canonical encoding.
const (
	tagAtom        = 'a'
	tagInterval    = 'i'
	tagInheritance = 'h'
	tagSimilarity  = 's'
	tagImplication = 'm'
	tagEquivalence = 'e'
	tagConjunction = 'c'
	tagOperation   = 'o'
	tagExtSet      = 'x'
	tagIntSet      = 'n'
	tagProduct     = 'p'
)

// Key returns the canonical structural encoding of t.
//
// The encoding is a prefix code: every node writes its variant tag, its
// temporal order where one exists, length-prefixed names and a component
// count before its children. Two terms have equal keys iff they are
// structurally equal.
func Key(t Term) string {
	var b strings.Builder
	encode(&b, t)
	return b.String()
}

// Equal reports structural equality.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Key(a) == Key(b)
}

// Fingerprint computes the content-addressed identity of a term.
func Fingerprint(t Term) string {
	return Digest(DomainTerm, []byte(Key(t)))
}

// Digest computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + part0 + 0x00 + part1 ...)
// The null separators prevent boundary ambiguity between parts.
func Digest(domain string, parts ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func encode(b *strings.Builder, t Term) {
	switch v := t.(type) {
	case nil:
		b.WriteByte('0')
	case Atom:
		b.WriteByte(tagAtom)
		writeName(b, v.Name)
	case Interval:
		b.WriteByte(tagInterval)
		b.WriteString(strconv.FormatInt(v.N, 10))
		b.WriteByte(';')
	case Inheritance:
		b.WriteByte(tagInheritance)
		encode(b, v.Subject)
		encode(b, v.Predicate)
	case Similarity:
		b.WriteByte(tagSimilarity)
		encode(b, v.Subject)
		encode(b, v.Predicate)
	case Implication:
		b.WriteByte(tagImplication)
		writeOrder(b, v.Order)
		encode(b, v.Subject)
		encode(b, v.Predicate)
	case Equivalence:
		b.WriteByte(tagEquivalence)
		writeOrder(b, v.Order)
		encode(b, v.Subject)
		encode(b, v.Predicate)
	case Conjunction:
		b.WriteByte(tagConjunction)
		writeOrder(b, v.Order)
		encodeList(b, v.Terms)
	case Operation:
		b.WriteByte(tagOperation)
		writeName(b, v.Operator)
		encodeList(b, v.Args)
	case ExtSet:
		b.WriteByte(tagExtSet)
		encodeList(b, v.Terms)
	case IntSet:
		b.WriteByte(tagIntSet)
		encodeList(b, v.Terms)
	case Product:
		b.WriteByte(tagProduct)
		encodeList(b, v.Terms)
	}
}

func encodeList(b *strings.Builder, terms []Term) {
	b.WriteString(strconv.Itoa(len(terms)))
	b.WriteByte(':')
	for _, c := range terms {
		encode(b, c)
	}
}

// writeName writes an NFC-normalized, length-prefixed name.
func writeName(b *strings.Builder, name string) {
	normalized := norm.NFC.String(name)
	b.WriteString(strconv.Itoa(len(normalized)))
	b.WriteByte(':')
	b.WriteString(normalized)
}

func writeOrder(b *strings.Builder, o Order) {
	b.WriteByte('0' + byte(o))
}
