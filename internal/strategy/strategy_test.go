package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stakebot/internal/models"
)

var (
	win  = outcome(true)
	loss = outcome(false)
)

func outcome(won bool) *models.BetResult {
	mult := decimal.Zero
	payout := decimal.Zero
	if won {
		mult = decimal.NewFromInt(2)
		payout = decimal.NewFromInt(2)
	}
	return &models.BetResult{
		ID:               "test",
		Amount:           decimal.NewFromInt(1),
		Payout:           payout,
		PayoutMultiplier: mult,
		Game:             models.GameDice,
		State:            models.DiceState{},
	}
}

func newModifiers(t *testing.T, amount string) *models.WagerModifiers {
	t.Helper()
	m, err := models.NewWagerModifiers(
		decimal.RequireFromString(amount),
		decimal.RequireFromString("49.5"),
		models.DirectionAbove,
		models.CurrencyUSDT,
	)
	require.NoError(t, err)
	return m
}

// firings returns the 1-based call indexes at which p fired
func firings(p Predicate, outcomes ...*models.BetResult) []int {
	var fired []int
	for i, o := range outcomes {
		if p.Evaluate(o) {
			fired = append(fired, i+1)
		}
	}
	return fired
}
