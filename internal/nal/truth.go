// Package nal provides the sentence-level entities the attention core
// consumes: truth values, evidential stamps, budgets, sentences and tasks.
package nal

import "fmt"

// DefaultHorizon is the evidential horizon k used by W2C.
const DefaultHorizon = 1.0

// Truth is a (frequency, confidence) pair.
type Truth struct {
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
}

// NewTruth creates a truth value.
func NewTruth(frequency, confidence float64) Truth {
	return Truth{Frequency: frequency, Confidence: confidence}
}

func (t Truth) String() string {
	return fmt.Sprintf("%%%.2f;%.2f%%", t.Frequency, t.Confidence)
}

// Intersection is the conjunctive truth function: (f1*f2, c1*c2).
func Intersection(a, b Truth) Truth {
	return Truth{
		Frequency:  a.Frequency * b.Frequency,
		Confidence: a.Confidence * b.Confidence,
	}
}

// Induction derives <a ==> b> from a and b: f = fb, c = w2c(fa*ca*cb).
func Induction(a, b Truth, horizon float64) Truth {
	w := a.Frequency * a.Confidence * b.Confidence
	return Truth{
		Frequency:  b.Frequency,
		Confidence: W2C(w, horizon),
	}
}

// W2C converts evidence weight to confidence.
func W2C(w, horizon float64) float64 {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return w / (w + horizon)
}
