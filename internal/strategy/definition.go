package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/stakebot/internal/config"
)

// Predicate and action kinds accepted in rule configuration
const (
	KindEvery           = "every"
	KindEveryStreakOf   = "every_streak_of"
	KindIncrease        = "increase"
	KindReset           = "reset"
	KindSwitchCondition = "switch_condition"
)

// BuildRuleSet turns configured rule definitions into a rule set, preserving order
func BuildRuleSet(defs []config.RuleConfig) (RuleSet, error) {
	rules := make(RuleSet, 0, len(defs))
	for i, def := range defs {
		on, err := BuildPredicate(def.When)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		do, err := BuildAction(def.Then)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, NewRule(on, do))
	}
	return rules, nil
}

// BuildPredicate creates a fresh predicate from its definition
func BuildPredicate(def config.PredicateConfig) (Predicate, error) {
	metric, err := ParseMetric(def.Metric)
	if err != nil {
		return nil, err
	}

	switch def.Kind {
	case KindEvery:
		return NewEvery(def.N, metric)
	case KindEveryStreakOf:
		return NewEveryStreakOf(def.N, metric)
	default:
		return nil, fmt.Errorf("%w: predicate kind %q", ErrInvalidDefinition, def.Kind)
	}
}

// BuildAction creates an action from its definition
func BuildAction(def config.ActionConfig) (Action, error) {
	switch def.Kind {
	case KindIncrease:
		target, err := ParseTarget(def.Target)
		if err != nil {
			return nil, err
		}
		return NewIncrease(target, decimal.NewFromFloat(def.Percent))
	case KindReset:
		target, err := ParseTarget(def.Target)
		if err != nil {
			return nil, err
		}
		return NewReset(target)
	case KindSwitchCondition:
		return SwitchCondition{}, nil
	default:
		return nil, fmt.Errorf("%w: action kind %q", ErrInvalidDefinition, def.Kind)
	}
}

// DefaultRuleConfigs is the stock martingale chain: reset the stake on every win,
// flip direction every second win, and raise the stake by 3% on every loss.
func DefaultRuleConfigs() []config.RuleConfig {
	return []config.RuleConfig{
		{
			When: config.PredicateConfig{Kind: KindEvery, N: 1, Metric: string(MetricWins)},
			Then: config.ActionConfig{Kind: KindReset, Target: string(TargetAmount)},
		},
		{
			When: config.PredicateConfig{Kind: KindEvery, N: 2, Metric: string(MetricWins)},
			Then: config.ActionConfig{Kind: KindSwitchCondition},
		},
		{
			When: config.PredicateConfig{Kind: KindEvery, N: 1, Metric: string(MetricLosses)},
			Then: config.ActionConfig{Kind: KindIncrease, Target: string(TargetAmount), Percent: 3},
		},
	}
}
