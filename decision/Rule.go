package decision

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/utils/floatutils"
)

// RuleConfig configures a Rule
type RuleConfig struct {
	Weights []float64 `json:"weights" yaml:"weights"`
	Bias    float64   `json:"bias" yaml:"bias"`

	// Scores are clamped to [Min, Max] if Min < Max
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Rule scores inputs with a fixed weighted sum
type Rule struct {
	weights []float64
	bias    float64
	bounds  r1.Interval
}

// NewRule creates a new Rule
func NewRule(cfg RuleConfig) (*Rule, error) {
	if len(cfg.Weights) == 0 {
		return nil, errs.New(errs.InvalidConfiguration,
			"newRule: at least one weight is required")
	}
	if cfg.Min > cfg.Max {
		return nil, errs.New(errs.InvalidConfiguration,
			"newRule: min %v > max %v", cfg.Min, cfg.Max)
	}

	weights := make([]float64, len(cfg.Weights))
	copy(weights, cfg.Weights)
	return &Rule{
		weights: weights,
		bias:    cfg.Bias,
		bounds:  r1.Interval{Min: cfg.Min, Max: cfg.Max},
	}, nil
}

// Decide implements the Decider interface
func (r *Rule) Decide(_ context.Context, input []float64) (float64, error) {
	if len(input) != len(r.weights) {
		return 0, errs.New(errs.InvalidArgument, "decide: rule expects %d "+
			"inputs (got %d)", len(r.weights), len(input))
	}

	score := floats.Dot(r.weights, input) + r.bias
	if r.bounds.Min < r.bounds.Max {
		score = floatutils.ClipInterval(score, r.bounds)
	}
	return score, nil
}
