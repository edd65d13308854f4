package models

import (
	"github.com/shopspring/decimal"
)

// User identifies the account a bet was placed from
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameState is the game-specific part of a bet result. It is either DiceState or LimboState.
type GameState interface {
	Game() Game
}

// DiceState is the outcome of a dice roll
type DiceState struct {
	Target    decimal.Decimal `json:"target"`
	Result    decimal.Decimal `json:"result"`
	Condition Direction       `json:"condition"`
}

// Game implements GameState
func (DiceState) Game() Game { return GameDice }

// LimboState is the outcome of a limbo bet
type LimboState struct {
	Result           decimal.Decimal `json:"result"`
	MultiplierTarget decimal.Decimal `json:"multiplier_target"`
}

// Game implements GameState
func (LimboState) Game() Game { return GameLimbo }

// BetResult is a settled bet as returned by the casino
type BetResult struct {
	ID               string          `json:"id"`
	Active           bool            `json:"active"`
	PayoutMultiplier decimal.Decimal `json:"payout_multiplier"`
	AmountMultiplier decimal.Decimal `json:"amount_multiplier"`
	Amount           decimal.Decimal `json:"amount"`
	Payout           decimal.Decimal `json:"payout"`
	UpdatedAt        string          `json:"updated_at"`
	Currency         Currency        `json:"currency"`
	Game             Game            `json:"game"`
	User             User            `json:"user"`
	State            GameState       `json:"state"`
}

// Win reports whether the bet paid out
func (b *BetResult) Win() bool {
	return b.PayoutMultiplier.IsPositive()
}

// Profit returns payout minus amount
func (b *BetResult) Profit() decimal.Decimal {
	return b.Payout.Sub(b.Amount)
}

// Amount is a currency-denominated value
type Amount struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// Balance is the available and vaulted amount of one currency
type Balance struct {
	Available Amount `json:"available"`
	Vault     Amount `json:"vault"`
}

// Balances is the per-currency balance list of an account
type Balances []Balance

// Available returns the available amount for the given currency
func (bs Balances) Available(currency Currency) (decimal.Decimal, bool) {
	for _, b := range bs {
		if b.Available.Currency == currency {
			return b.Available.Amount, true
		}
	}
	return decimal.Zero, false
}
