// Package decision implements deciders which map a vector of inputs to
// a single score.
//
// Every variant implements the Decider interface and is selected by
// Kind when constructed with New:
//
//	rule    a weighted linear score, optionally clamped
//	model   a linear model fit by least squares
//	policy  the greedy action value of a tabular Q-learning agent
//	chain   the ether balance of an account read over JSON-RPC
package decision

import (
	"context"

	"github.com/samuelfneumann/tabular/errs"
)

// Decider maps an input vector to a score
type Decider interface {
	Decide(ctx context.Context, input []float64) (float64, error)
}

// Kind selects a Decider variant
type Kind string

const (
	KindRule   Kind = "rule"
	KindModel  Kind = "model"
	KindPolicy Kind = "policy"
	KindChain  Kind = "chain"
)

// Config configures a Decider. Only the section matching Kind is used.
type Config struct {
	Kind   Kind         `json:"kind" yaml:"kind"`
	Rule   RuleConfig   `json:"rule" yaml:"rule"`
	Model  ModelConfig  `json:"model" yaml:"model"`
	Policy PolicyConfig `json:"policy" yaml:"policy"`
	Chain  ChainConfig  `json:"chain" yaml:"chain"`
}

// New constructs the Decider described by cfg. Errors in cfg are
// tagged errs.InvalidConfiguration.
func New(ctx context.Context, cfg Config) (Decider, error) {
	switch cfg.Kind {
	case KindRule:
		return NewRule(cfg.Rule)
	case KindModel:
		return NewModel(cfg.Model)
	case KindPolicy:
		return NewPolicyFromConfig(cfg.Policy)
	case KindChain:
		return DialChain(ctx, cfg.Chain)
	default:
		return nil, errs.New(errs.InvalidConfiguration,
			"new: unknown decider kind %q", cfg.Kind)
	}
}

// Close releases any resources held by d
func Close(d Decider) {
	if c, ok := d.(interface{ Close() }); ok {
		c.Close()
	}
}
