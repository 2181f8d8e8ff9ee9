// Package config holds the tunable parameters of the attention core and
// loads them from CUE parameter files.
package config

import (
	"fmt"

	"github.com/roach88/etrace/internal/nal"
)

// Params are the tunable constants of salience, trace, sampling and
// conclusion filtering. The json tags are the CUE field names.
type Params struct {
	// Salience
	HeatUp           float64 `json:"heat_up"`
	NoveltyThreshold float64 `json:"novelty_threshold"`
	SalienceMaxSize  int     `json:"salience_max_size"`
	CooldownFactor   float64 `json:"cooldown_factor"`

	// Eligibility trace
	TraceMaxLength       int     `json:"trace_max_length"`
	TraceDecayFactor     float64 `json:"trace_decay_factor"`
	SecondaryDecayFactor float64 `json:"secondary_decay_factor"`

	// Sampling
	InferencesPerCycle        int     `json:"inferences_per_cycle"`
	SameTimeProbability       float64 `json:"same_time_probability"`
	NarrowWindow              int     `json:"narrow_window"`
	WideWindow                int     `json:"wide_window"`
	NarrowWindowProbability   float64 `json:"narrow_window_probability"`
	UniformProbability        float64 `json:"uniform_probability"`
	OperatorMiddleProbability float64 `json:"operator_middle_probability"`

	// Conclusions
	RecencyWindow int        `json:"recency_window"`
	RecentHorizon int        `json:"recent_horizon"`
	Horizon       float64    `json:"horizon"`
	MaxBaseLength int        `json:"max_base_length"`
	DerivedBudget nal.Budget `json:"derived_budget"`
}

// Defaults returns the reference parameter set.
func Defaults() Params {
	return Params{
		HeatUp:           0.05,
		NoveltyThreshold: 0.5,
		SalienceMaxSize:  500,
		CooldownFactor:   0.98,

		TraceMaxLength:       10000,
		TraceDecayFactor:     0.001,
		SecondaryDecayFactor: 0.01,

		InferencesPerCycle:        6,
		SameTimeProbability:       0.3,
		NarrowWindow:              5,
		WideWindow:                500,
		NarrowWindowProbability:   0.8,
		UniformProbability:        0.8,
		OperatorMiddleProbability: 0.5,

		RecencyWindow: 20,
		RecentHorizon: 2,
		Horizon:       nal.DefaultHorizon,
		MaxBaseLength: nal.DefaultMaxBaseLength,
		DerivedBudget: nal.NewBudget(0.9, 0.5, 0.5),
	}
}

// NoveltyBoost is the salience assigned to a term seen for the first time.
func (p Params) NoveltyBoost() float64 {
	return p.HeatUp * 1000
}

// Validate checks bounds that the CUE schema cannot express on its own.
// It also catches hand-built Params that never went through a file.
func (p Params) Validate() error {
	switch {
	case p.HeatUp <= 0:
		return invalid("heat_up", "must be positive")
	case p.NoveltyThreshold < 0:
		return invalid("novelty_threshold", "must not be negative")
	case p.SalienceMaxSize <= 0:
		return invalid("salience_max_size", "must be positive")
	case p.CooldownFactor <= 0 || p.CooldownFactor > 1:
		return invalid("cooldown_factor", "must be in (0, 1]")
	case p.TraceMaxLength <= 0:
		return invalid("trace_max_length", "must be positive")
	case p.TraceDecayFactor < 0:
		return invalid("trace_decay_factor", "must not be negative")
	case p.SecondaryDecayFactor < 0:
		return invalid("secondary_decay_factor", "must not be negative")
	case p.InferencesPerCycle < 0:
		return invalid("inferences_per_cycle", "must not be negative")
	case p.NarrowWindow <= 0:
		return invalid("narrow_window", "must be positive")
	case p.WideWindow < p.NarrowWindow:
		return invalid("wide_window", fmt.Sprintf("must be at least narrow_window (%d)", p.NarrowWindow))
	case p.RecencyWindow <= 0:
		return invalid("recency_window", "must be positive")
	case p.RecentHorizon <= 0:
		return invalid("recent_horizon", "must be positive")
	case p.Horizon <= 0:
		return invalid("horizon", "must be positive")
	case p.MaxBaseLength <= 0:
		return invalid("max_base_length", "must be positive")
	}
	probabilities := []struct {
		name string
		v    float64
	}{
		{"same_time_probability", p.SameTimeProbability},
		{"narrow_window_probability", p.NarrowWindowProbability},
		{"uniform_probability", p.UniformProbability},
		{"operator_middle_probability", p.OperatorMiddleProbability},
	}
	for _, pr := range probabilities {
		if pr.v < 0 || pr.v > 1 {
			return invalid(pr.name, "must be a probability in [0, 1]")
		}
	}
	return nil
}

func invalid(field, msg string) *LoadError {
	return &LoadError{Code: ErrCodeInvalidValue, Field: field, Message: msg}
}
