package strategy

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/stakebot/internal/models"
)

// Target selects which wager modifier an action changes
type Target string

const (
	TargetAmount Target = "amount"
	TargetChance Target = "chance"
)

// ParseTarget parses a target name case-insensitively
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(s))
	if _, ok := targetFields[t]; !ok {
		return "", fmt.Errorf("%w: target %q", ErrInvalidDefinition, s)
	}
	return t, nil
}

// field gives access to the current and base value of one modifier
type field struct {
	current func(m *models.WagerModifiers) *decimal.Decimal
	base    func(m *models.WagerModifiers) decimal.Decimal
}

var targetFields = map[Target]field{
	TargetAmount: {
		current: func(m *models.WagerModifiers) *decimal.Decimal { return &m.Amount },
		base:    func(m *models.WagerModifiers) decimal.Decimal { return m.BaseAmount },
	},
	TargetChance: {
		current: func(m *models.WagerModifiers) *decimal.Decimal { return &m.Chance },
		base:    func(m *models.WagerModifiers) decimal.Decimal { return m.BaseChance },
	},
}

var hundred = decimal.NewFromInt(100)

// Action mutates wager modifiers in place. Actions never fail and do not clamp values.
type Action interface {
	Apply(m *models.WagerModifiers)
	String() string
}

// Increase grows the target by a percentage of its current value.
// Negative percentages decrease it.
type Increase struct {
	target  Target
	percent decimal.Decimal
	field   field
}

// NewIncrease creates an Increase action
func NewIncrease(target Target, percent decimal.Decimal) (*Increase, error) {
	f, ok := targetFields[target]
	if !ok {
		return nil, fmt.Errorf("%w: target %q", ErrInvalidDefinition, target)
	}
	return &Increase{target: target, percent: percent, field: f}, nil
}

// Apply implements Action
func (a *Increase) Apply(m *models.WagerModifiers) {
	v := a.field.current(m)
	*v = v.Add(v.Mul(a.percent).Div(hundred))
}

func (a *Increase) String() string {
	return fmt.Sprintf("INCREASE_%s_BY_%s", strings.ToUpper(string(a.target)), a.percent)
}

// Reset restores the target to its base value
type Reset struct {
	target Target
	field  field
}

// NewReset creates a Reset action
func NewReset(target Target) (*Reset, error) {
	f, ok := targetFields[target]
	if !ok {
		return nil, fmt.Errorf("%w: target %q", ErrInvalidDefinition, target)
	}
	return &Reset{target: target, field: f}, nil
}

// Apply implements Action
func (a *Reset) Apply(m *models.WagerModifiers) {
	*a.field.current(m) = a.field.base(m)
}

func (a *Reset) String() string {
	return fmt.Sprintf("RESET_%s", strings.ToUpper(string(a.target)))
}

// SwitchCondition toggles the dice direction between above and below
type SwitchCondition struct{}

// Apply implements Action
func (SwitchCondition) Apply(m *models.WagerModifiers) {
	m.Direction = m.Direction.Toggle()
}

func (SwitchCondition) String() string {
	return "SWITCH_CONDITION"
}
