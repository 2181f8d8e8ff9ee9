package nal

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/etrace/internal/term"
)

// Punctuation distinguishes judgments, goals and questions.
type Punctuation byte

const (
	Judgment Punctuation = '.'
	Goal     Punctuation = '!'
	Question Punctuation = '?'
)

// ParsePunctuation maps "judgment", "goal" and "question" (or their
// punctuation characters) to a Punctuation.
func ParsePunctuation(s string) (Punctuation, error) {
	switch strings.ToLower(s) {
	case "", "judgment", "belief", ".":
		return Judgment, nil
	case "goal", "!":
		return Goal, nil
	case "question", "?":
		return Question, nil
	default:
		return 0, fmt.Errorf("unknown punctuation %q", s)
	}
}

// Sentence is a term with punctuation, truth and stamp.
type Sentence struct {
	Term        term.Term
	Punctuation Punctuation
	Truth       Truth
	Stamp       Stamp
}

// IsJudgment reports whether the sentence is a belief.
func (s *Sentence) IsJudgment() bool { return s.Punctuation == Judgment }

// IsGoal reports whether the sentence is a goal.
func (s *Sentence) IsGoal() bool { return s.Punctuation == Goal }

// IsEternal reports whether the sentence has no occurrence time.
func (s *Sentence) IsEternal() bool { return s.Stamp.IsEternal() }

// Occurrence returns the occurrence time.
func (s *Sentence) Occurrence() int64 { return s.Stamp.Occurrence }

// Eternalized returns a copy that holds at all times. Term, truth and
// punctuation are kept as is.
func (s *Sentence) Eternalized() *Sentence {
	return &Sentence{
		Term:        s.Term,
		Punctuation: s.Punctuation,
		Truth:       s.Truth,
		Stamp:       s.Stamp.Eternalize(),
	}
}

// Equal reports content identity: same term, punctuation, truth,
// occurrence and evidential base (as a set). Creation time is ignored.
func (s *Sentence) Equal(o *Sentence) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Punctuation == o.Punctuation &&
		s.Truth == o.Truth &&
		s.Stamp.Occurrence == o.Stamp.Occurrence &&
		slices.Equal(s.Stamp.sortedBase(), o.Stamp.sortedBase()) &&
		term.Equal(s.Term, o.Term)
}

// Fingerprint is the structural hash of the sentence content. Sentences
// that are Equal have equal fingerprints.
func (s *Sentence) Fingerprint() string {
	var meta strings.Builder
	meta.WriteByte(byte(s.Punctuation))
	meta.WriteByte(';')
	meta.WriteString(strconv.FormatUint(math.Float64bits(s.Truth.Frequency), 16))
	meta.WriteByte(';')
	meta.WriteString(strconv.FormatUint(math.Float64bits(s.Truth.Confidence), 16))
	meta.WriteByte(';')
	meta.WriteString(strconv.FormatInt(s.Stamp.Occurrence, 10))
	for _, b := range s.Stamp.sortedBase() {
		meta.WriteByte(';')
		meta.WriteString(strconv.FormatInt(b, 10))
	}
	return term.Digest(term.DomainSentence, []byte(term.Key(s.Term)), []byte(meta.String()))
}

func (s *Sentence) String() string {
	var b strings.Builder
	b.WriteString(s.Term.String())
	b.WriteByte(byte(s.Punctuation))
	if !s.IsEternal() {
		b.WriteString(" :|")
		b.WriteString(strconv.FormatInt(s.Stamp.Occurrence, 10))
		b.WriteString("|:")
	}
	if s.Punctuation != Question {
		b.WriteByte(' ')
		b.WriteString(s.Truth.String())
	}
	return b.String()
}

// Budget is the attention budget attached to a task.
type Budget struct {
	Priority   float64 `json:"priority"`
	Durability float64 `json:"durability"`
	Quality    float64 `json:"quality"`
}

// NewBudget creates a budget.
func NewBudget(priority, durability, quality float64) Budget {
	return Budget{Priority: priority, Durability: durability, Quality: quality}
}

// Origin tells whether a task came from outside or from inference.
type Origin int

const (
	OriginInput Origin = iota
	OriginDerived
)

func (o Origin) String() string {
	if o == OriginDerived {
		return "derived"
	}
	return "input"
}

// Task is a sentence with a budget and an origin.
type Task struct {
	Sentence *Sentence
	Budget   Budget
	Origin   Origin
}

// NewTask creates a task.
func NewTask(s *Sentence, b Budget, origin Origin) *Task {
	return &Task{Sentence: s, Budget: b, Origin: origin}
}

// Term returns the sentence term.
func (t *Task) Term() term.Term { return t.Sentence.Term }

// IsInput reports whether the task was supplied from outside.
func (t *Task) IsInput() bool { return t.Origin == OriginInput }

// Occurrence returns the sentence occurrence time.
func (t *Task) Occurrence() int64 { return t.Sentence.Stamp.Occurrence }

func (t *Task) String() string {
	return t.Sentence.String()
}
