package strategy

import (
	"errors"
	"fmt"

	"github.com/yourusername/stakebot/internal/models"
)

// ErrInvalidDefinition indicates a predicate, action or rule was configured with bad arguments
var ErrInvalidDefinition = errors.New("invalid rule definition")

// Rule binds one predicate to one action
type Rule struct {
	on Predicate
	do Action
}

// NewRule creates a rule that runs do whenever on fires
func NewRule(on Predicate, do Action) *Rule {
	return &Rule{on: on, do: do}
}

// Apply evaluates the predicate against outcome and, if it fires, runs the action.
// It reports whether the rule fired.
func (r *Rule) Apply(outcome *models.BetResult, m *models.WagerModifiers) bool {
	if !r.on.Evaluate(outcome) {
		return false
	}
	r.do.Apply(m)
	return true
}

func (r *Rule) String() string {
	return fmt.Sprintf("(on=%s, do=%s)", r.on, r.do)
}

// RuleSet is an ordered sequence of rules. Rules run in declared order and each
// rule sees the modifications made by the rules before it on the same outcome.
type RuleSet []*Rule

// Apply runs every rule against outcome and returns the rules that fired
func (rs RuleSet) Apply(outcome *models.BetResult, m *models.WagerModifiers) []*Rule {
	var fired []*Rule
	for _, r := range rs {
		if r.Apply(outcome, m) {
			fired = append(fired, r)
		}
	}
	return fired
}

// Strings returns the rule descriptions in order
func (rs RuleSet) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.String()
	}
	return out
}
