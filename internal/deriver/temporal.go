// Package deriver provides a small temporal deriver: from two events it
// builds their conjunction and, when they are ordered in time, a predictive
// implication. It is enough to exercise the control loop end to end.
package deriver

import (
	"github.com/roach88/etrace/internal/config"
	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/term"
)

// Temporal derives from two judgments a and b, a occurring no later than b:
//
//	same time:  (&|, a, b)                  intersection truth
//	dt > 0:     (&/, a, +dt, b)             intersection truth
//	            <(&/, a, +dt) =/> b>        induction truth
//
// Conclusions occur when b occurs and carry the merged evidence of both.
type Temporal struct {
	horizon       float64
	maxBaseLength int
}

// NewTemporal creates a deriver using the horizon and base length from p.
func NewTemporal(p config.Params) *Temporal {
	return &Temporal{horizon: p.Horizon, maxBaseLength: p.MaxBaseLength}
}

// Derive implements control.Deriver.
func (d *Temporal) Derive(a, b *nal.Sentence, now int64) []*nal.Sentence {
	if a == nil || b == nil || !a.IsJudgment() || !b.IsJudgment() {
		return nil
	}
	if a.IsEternal() || b.IsEternal() {
		return nil
	}
	if nal.Overlaps(a.Stamp, b.Stamp) {
		return nil
	}
	if a.Occurrence() > b.Occurrence() {
		a, b = b, a
	}

	stamp := func() nal.Stamp {
		return nal.Merge(a.Stamp, b.Stamp, now, d.maxBaseLength)
	}

	dt := b.Occurrence() - a.Occurrence()
	if dt == 0 {
		if term.Equal(a.Term, b.Term) {
			return nil
		}
		return []*nal.Sentence{{
			Term:        term.NewConjunction(term.OrderConcurrent, a.Term, b.Term),
			Punctuation: nal.Judgment,
			Truth:       nal.Intersection(a.Truth, b.Truth),
			Stamp:       stamp(),
		}}
	}

	gap := term.Interval{N: dt}
	return []*nal.Sentence{
		{
			Term:        term.Sequence(a.Term, gap, b.Term),
			Punctuation: nal.Judgment,
			Truth:       nal.Intersection(a.Truth, b.Truth),
			Stamp:       stamp(),
		},
		{
			Term: term.Implication{
				Subject:   term.Sequence(a.Term, gap),
				Predicate: b.Term,
				Order:     term.OrderForward,
			},
			Punctuation: nal.Judgment,
			Truth:       nal.Induction(a.Truth, b.Truth, d.horizon),
			Stamp:       stamp(),
		},
	}
}
