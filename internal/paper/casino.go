// Package paper provides an in-memory casino that settles bets locally, for dry runs and tests.
package paper

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/stakebot/internal/config"
	"github.com/yourusername/stakebot/internal/models"
	"github.com/yourusername/stakebot/internal/stake"
)

var (
	returnToPlayer = decimal.NewFromInt(99)
	limboEdge      = decimal.RequireFromString("0.99")
	minLimboHit    = decimal.NewFromInt(1)
)

// Casino settles dice and limbo bets against a local balance with a 1% house edge
type Casino struct {
	mu       sync.Mutex
	rng      *rand.Rand
	clock    quartz.Clock
	currency models.Currency
	balance  decimal.Decimal
	minBet   decimal.Decimal
	user     models.User
}

// NewCasino creates a simulated casino holding balance in one currency
func NewCasino(balance, minBet decimal.Decimal, currency models.Currency, seed int64, clock quartz.Clock) *Casino {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Casino{
		rng:      rand.New(rand.NewSource(seed)),
		clock:    clock,
		currency: currency,
		balance:  balance,
		minBet:   minBet,
		user:     models.User{ID: uuid.NewString(), Name: "paper"},
	}
}

// NewCasinoFromConfig creates a simulated casino from the paper and strategy sections
func NewCasinoFromConfig(cfg *config.Config, clock quartz.Clock) (*Casino, error) {
	currency, err := models.ParseCurrency(cfg.Strategy.Currency)
	if err != nil {
		return nil, err
	}
	return NewCasino(
		decimal.NewFromFloat(cfg.Paper.StartingBalance),
		decimal.NewFromFloat(cfg.Paper.MinBet),
		currency,
		cfg.Paper.Seed,
		clock,
	), nil
}

// GetBalances returns the simulated balance
func (c *Casino) GetBalances(ctx context.Context) (models.Balances, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.Balances{{
		Available: models.Amount{Amount: c.balance, Currency: c.currency},
		Vault:     models.Amount{Amount: decimal.Zero, Currency: c.currency},
	}}, nil
}

// PlaceBet settles one bet with the current modifiers. It fails the same way the
// live API does for stakes it would reject.
func (c *Casino) PlaceBet(ctx context.Context, game models.Game, m *models.WagerModifiers) (*models.BetResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if m.Currency != c.currency {
		return nil, &stake.APIError{ErrorType: "currencyNotSupported", Message: fmt.Sprintf("paper casino holds %s only", c.currency)}
	}
	if !m.Amount.IsPositive() || m.Amount.LessThan(c.minBet) {
		return nil, stake.NewInsignificantBetError(fmt.Sprintf("amount %s is below the minimum of %s", m.Amount, c.minBet))
	}
	if m.Amount.GreaterThan(c.balance) {
		return nil, stake.NewInsufficientBalanceError(fmt.Sprintf("amount %s exceeds balance %s", m.Amount, c.balance))
	}

	var (
		state      models.GameState
		multiplier decimal.Decimal
	)
	switch game {
	case models.GameDice:
		state, multiplier = c.rollDice(m)
	case models.GameLimbo:
		state, multiplier = c.rollLimbo(m)
	default:
		return nil, fmt.Errorf("%w: game %q", models.ErrUnknownEnum, game)
	}

	payout := m.Amount.Mul(multiplier).Round(8)
	c.balance = c.balance.Sub(m.Amount).Add(payout)

	return &models.BetResult{
		ID:               uuid.NewString(),
		PayoutMultiplier: multiplier,
		AmountMultiplier: decimal.NewFromInt(1),
		Amount:           m.Amount,
		Payout:           payout,
		UpdatedAt:        c.clock.Now().UTC().Format(time.RFC1123),
		Currency:         c.currency,
		Game:             game,
		User:             c.user,
		State:            state,
	}, nil
}

// rollDice draws a result in [0, 100] with two decimals
func (c *Casino) rollDice(m *models.WagerModifiers) (models.DiceState, decimal.Decimal) {
	target := m.DiceTarget()
	result := decimal.New(int64(c.rng.Intn(10001)), -2)

	win := result.GreaterThan(target)
	if m.Direction == models.DirectionBelow {
		win = result.LessThan(target)
	}

	multiplier := decimal.Zero
	if win {
		multiplier = returnToPlayer.DivRound(m.Chance, 4)
	}
	return models.DiceState{Target: target, Result: result, Condition: m.Direction}, multiplier
}

// rollLimbo draws 0.99/(1-u), so a target t is reached with probability 0.99/t
func (c *Casino) rollLimbo(m *models.WagerModifiers) (models.LimboState, decimal.Decimal) {
	target := m.LimboMultiplierTarget()
	u := decimal.NewFromFloat(c.rng.Float64())
	result := limboEdge.DivRound(decimal.NewFromInt(1).Sub(u), 4).RoundDown(2)
	if result.LessThan(minLimboHit) {
		result = minLimboHit
	}

	multiplier := decimal.Zero
	if result.GreaterThanOrEqual(target) {
		multiplier = target
	}
	return models.LimboState{Result: result, MultiplierTarget: target}, multiplier
}

// Balance returns the current simulated balance
func (c *Casino) Balance() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance
}
