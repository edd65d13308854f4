package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Direction is the dice condition a bet is placed on
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Toggle returns the opposite direction
func (d Direction) Toggle() Direction {
	if d == DirectionAbove {
		return DirectionBelow
	}
	return DirectionAbove
}

// ParseDirection parses a direction name case-insensitively
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case DirectionAbove:
		return DirectionAbove, nil
	case DirectionBelow:
		return DirectionBelow, nil
	default:
		return "", fmt.Errorf("%w: direction %q", ErrUnknownEnum, s)
	}
}

// Currency is a casino wallet currency
type Currency string

const (
	CurrencyBTC  Currency = "btc"
	CurrencyETH  Currency = "eth"
	CurrencyLTC  Currency = "ltc"
	CurrencyTRX  Currency = "trx"
	CurrencyUSDT Currency = "usdt"
	CurrencyUSDC Currency = "usdc"
)

var currencies = map[Currency]struct{}{
	CurrencyBTC:  {},
	CurrencyETH:  {},
	CurrencyLTC:  {},
	CurrencyTRX:  {},
	CurrencyUSDT: {},
	CurrencyUSDC: {},
}

// ParseCurrency parses a currency code case-insensitively
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToLower(s))
	if _, ok := currencies[c]; !ok {
		return "", fmt.Errorf("%w: currency %q", ErrUnknownEnum, s)
	}
	return c, nil
}

// Game identifies the casino game a bet belongs to
type Game string

const (
	GameDice  Game = "dice"
	GameLimbo Game = "limbo"
)

// ParseGame parses a game name case-insensitively
func ParseGame(s string) (Game, error) {
	switch Game(strings.ToLower(s)) {
	case GameDice:
		return GameDice, nil
	case GameLimbo:
		return GameLimbo, nil
	default:
		return "", fmt.Errorf("%w: game %q", ErrUnknownEnum, s)
	}
}

var (
	hundred   = decimal.NewFromInt(100)
	houseEdge = decimal.NewFromInt(99)

	// MinLimboMultiplier is the lowest multiplier target the casino accepts
	MinLimboMultiplier = decimal.RequireFromString("1.01")
)

// WagerModifiers is the mutable parameter set consumed by every bet request.
// Only rule actions mutate it once a run has started.
type WagerModifiers struct {
	BaseAmount decimal.Decimal `json:"base_amount"`
	Amount     decimal.Decimal `json:"amount"`
	BaseChance decimal.Decimal `json:"base_chance"`
	Chance     decimal.Decimal `json:"chance"`
	Direction  Direction       `json:"direction"`
	Currency   Currency        `json:"currency"`
}

// NewWagerModifiers creates modifiers with the current values set to the base values
func NewWagerModifiers(baseAmount, baseChance decimal.Decimal, direction Direction, currency Currency) (*WagerModifiers, error) {
	m := &WagerModifiers{
		BaseAmount: baseAmount,
		Amount:     baseAmount,
		BaseChance: baseChance,
		Chance:     baseChance,
		Direction:  direction,
		Currency:   currency,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks amount > 0 and 0 < chance < 100
func (m *WagerModifiers) Validate() error {
	if !m.Amount.IsPositive() {
		return fmt.Errorf("%w: amount %s", ErrInvalidWager, m.Amount)
	}
	if !m.Chance.IsPositive() || m.Chance.GreaterThanOrEqual(hundred) {
		return fmt.Errorf("%w: chance %s", ErrInvalidWager, m.Chance)
	}
	if m.Direction != DirectionAbove && m.Direction != DirectionBelow {
		return fmt.Errorf("%w: direction %q", ErrInvalidWager, m.Direction)
	}
	return nil
}

// ValidateFor adds the per-game limits to Validate. Limbo rejects multiplier targets
// below MinLimboMultiplier, so a chance above roughly 98.02 cannot be bet.
func (m *WagerModifiers) ValidateFor(game Game) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if game == GameLimbo && m.LimboMultiplierTarget().LessThan(MinLimboMultiplier) {
		return fmt.Errorf("%w: chance %s gives limbo target %s below %s",
			ErrInvalidWager, m.Chance, m.LimboMultiplierTarget(), MinLimboMultiplier)
	}
	return nil
}

// DiceTarget converts the win chance into the dice roll target for the current direction
func (m *WagerModifiers) DiceTarget() decimal.Decimal {
	if m.Direction == DirectionBelow {
		return m.Chance
	}
	return hundred.Sub(m.Chance)
}

// LimboMultiplierTarget converts the win chance into a limbo multiplier target
func (m *WagerModifiers) LimboMultiplierTarget() decimal.Decimal {
	return houseEdge.DivRound(m.Chance, 4)
}
