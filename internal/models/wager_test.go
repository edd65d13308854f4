package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWagerModifiersValidation(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		chance  string
		wantErr bool
	}{
		{name: "valid", amount: "0.00001", chance: "49.5"},
		{name: "zero amount", amount: "0", chance: "49.5", wantErr: true},
		{name: "negative amount", amount: "-1", chance: "49.5", wantErr: true},
		{name: "zero chance", amount: "1", chance: "0", wantErr: true},
		{name: "chance of 100", amount: "1", chance: "100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewWagerModifiers(
				decimal.RequireFromString(tt.amount),
				decimal.RequireFromString(tt.chance),
				DirectionAbove,
				CurrencyUSDT,
			)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidWager)
				return
			}
			require.NoError(t, err)
			assert.True(t, m.Amount.Equal(m.BaseAmount))
			assert.True(t, m.Chance.Equal(m.BaseChance))
		})
	}
}

func TestDiceTarget(t *testing.T) {
	m, err := NewWagerModifiers(decimal.NewFromInt(1), decimal.RequireFromString("49.5"), DirectionAbove, CurrencyBTC)
	require.NoError(t, err)

	assert.Equal(t, "50.5", m.DiceTarget().String())

	m.Direction = m.Direction.Toggle()
	assert.Equal(t, DirectionBelow, m.Direction)
	assert.Equal(t, "49.5", m.DiceTarget().String())
}

func TestLimboMultiplierTarget(t *testing.T) {
	m, err := NewWagerModifiers(decimal.NewFromInt(1), decimal.NewFromInt(50), DirectionAbove, CurrencyBTC)
	require.NoError(t, err)

	assert.Equal(t, "1.98", m.LimboMultiplierTarget().String())
}

func TestParseEnums(t *testing.T) {
	c, err := ParseCurrency("USDT")
	require.NoError(t, err)
	assert.Equal(t, CurrencyUSDT, c)

	_, err = ParseCurrency("doge")
	assert.ErrorIs(t, err, ErrUnknownEnum)

	g, err := ParseGame("Limbo")
	require.NoError(t, err)
	assert.Equal(t, GameLimbo, g)

	d, err := ParseDirection("BELOW")
	require.NoError(t, err)
	assert.Equal(t, DirectionBelow, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestBalancesAvailable(t *testing.T) {
	balances := Balances{
		{Available: Amount{Amount: decimal.NewFromInt(3), Currency: CurrencyBTC}},
		{Available: Amount{Amount: decimal.RequireFromString("12.5"), Currency: CurrencyUSDT}},
	}

	amount, ok := balances.Available(CurrencyUSDT)
	require.True(t, ok)
	assert.Equal(t, "12.5", amount.String())

	_, ok = balances.Available(CurrencyLTC)
	assert.False(t, ok)
}

func TestValidateForGame(t *testing.T) {
	tests := []struct {
		name    string
		chance  string
		game    Game
		wantErr bool
	}{
		{name: "limbo at the minimum target", chance: "98", game: GameLimbo},
		{name: "limbo below the minimum target", chance: "98.02", game: GameLimbo, wantErr: true},
		{name: "limbo near certain", chance: "99.9", game: GameLimbo, wantErr: true},
		{name: "dice has no multiplier limit", chance: "99.9", game: GameDice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewWagerModifiers(decimal.NewFromInt(1), decimal.RequireFromString(tt.chance), DirectionAbove, CurrencyUSDT)
			require.NoError(t, err)

			err = m.ValidateFor(tt.game)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWager)
				return
			}
			assert.NoError(t, err)
		})
	}
}
