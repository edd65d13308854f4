package bot

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stakebot/internal/config"
	"github.com/yourusername/stakebot/internal/models"
)

// StopReason explains why a run ended
type StopReason string

const (
	StopCancelled     StopReason = "cancelled"
	StopError         StopReason = "error"
	StopMaxBets       StopReason = "max_bets"
	StopLoss          StopReason = "stop_loss"
	StopTakeProfit    StopReason = "take_profit"
	StopMaxLossStreak StopReason = "max_loss_streak"
	StopLowBalance    StopReason = "low_balance"
	StopManual        StopReason = "manual"
)

// GuardState represents the state of the guard
type GuardState int

const (
	// GuardArmed means betting continues
	GuardArmed GuardState = iota
	// GuardTripped means the run must stop before the next bet
	GuardTripped
)

// String returns string representation of guard state
func (s GuardState) String() string {
	switch s {
	case GuardArmed:
		return "ARMED"
	case GuardTripped:
		return "TRIPPED"
	default:
		return "UNKNOWN"
	}
}

// GuardConfig defines the stop thresholds. Zero values disable a check.
type GuardConfig struct {
	MaxBets          int64           `json:"max_bets"`
	StopLoss         decimal.Decimal `json:"stop_loss"`
	TakeProfit       decimal.Decimal `json:"take_profit"`
	MaxLossStreak    int64           `json:"max_loss_streak"`
	StopOnLowBalance bool            `json:"stop_on_low_balance"`
}

// GuardConfigFromConfig converts the guard section
func GuardConfigFromConfig(cfg config.GuardConfig) GuardConfig {
	return GuardConfig{
		MaxBets:          cfg.MaxBets,
		StopLoss:         decimal.NewFromFloat(cfg.StopLoss),
		TakeProfit:       decimal.NewFromFloat(cfg.TakeProfit),
		MaxLossStreak:    cfg.MaxLossStreak,
		StopOnLowBalance: cfg.StopOnLowBalance,
	}
}

// TripCallback is called once when the guard trips
type TripCallback func(reason StopReason, detail string) error

// Guard is the external stop signal the loop consults between bets. It also
// carries the balance bound-check that actions themselves never perform.
type Guard struct {
	config    GuardConfig
	state     GuardState
	reason    StopReason
	detail    string
	mu        sync.RWMutex
	logger    *logrus.Logger
	callbacks []TripCallback
}

// NewGuard creates a new guard
func NewGuard(config GuardConfig, logger *logrus.Logger) *Guard {
	if logger == nil {
		logger = logrus.New()
	}
	return &Guard{
		config:    config,
		state:     GuardArmed,
		logger:    logger,
		callbacks: make([]TripCallback, 0),
	}
}

// Check evaluates the thresholds against the statistics so far and the wager
// about to be placed. It returns the reason once tripped.
func (g *Guard) Check(s models.Snapshot, next *models.WagerModifiers) (StopReason, bool) {
	g.mu.Lock()

	if g.state == GuardTripped {
		reason := g.reason
		g.mu.Unlock()
		return reason, true
	}

	var (
		reason StopReason
		detail string
	)
	cfg := g.config
	switch {
	case cfg.MaxBets > 0 && s.Bets >= cfg.MaxBets:
		reason, detail = StopMaxBets, fmt.Sprintf("%d bets placed (limit %d)", s.Bets, cfg.MaxBets)
	case cfg.StopLoss.IsPositive() && s.Profit.LessThanOrEqual(cfg.StopLoss.Neg()):
		reason, detail = StopLoss, fmt.Sprintf("profit %s reached stop loss -%s", s.Profit, cfg.StopLoss)
	case cfg.TakeProfit.IsPositive() && s.Profit.GreaterThanOrEqual(cfg.TakeProfit):
		reason, detail = StopTakeProfit, fmt.Sprintf("profit %s reached take profit %s", s.Profit, cfg.TakeProfit)
	case cfg.MaxLossStreak > 0 && s.CurrentLossStreak >= cfg.MaxLossStreak:
		reason, detail = StopMaxLossStreak, fmt.Sprintf("%d consecutive losses (limit %d)", s.CurrentLossStreak, cfg.MaxLossStreak)
	case cfg.StopOnLowBalance && next != nil && next.Amount.GreaterThan(s.Balance):
		reason, detail = StopLowBalance, fmt.Sprintf("next amount %s exceeds balance %s", next.Amount, s.Balance)
	default:
		g.mu.Unlock()
		return "", false
	}

	callbacks := g.tripLocked(reason, detail)
	g.mu.Unlock()

	g.notify(callbacks, reason, detail)
	return reason, true
}

// Trip stops the run before the next bet. It returns false when the guard had
// already tripped.
func (g *Guard) Trip(reason StopReason, detail string) bool {
	g.mu.Lock()
	if g.state == GuardTripped {
		g.mu.Unlock()
		g.logger.WithField("reason", string(reason)).Warn("Guard already tripped, ignoring duplicate call")
		return false
	}
	callbacks := g.tripLocked(reason, detail)
	g.mu.Unlock()

	g.notify(callbacks, reason, detail)
	return true
}

// RequestStop trips the guard on operator request
func (g *Guard) RequestStop(detail string) bool {
	return g.Trip(StopManual, detail)
}

// IsTripped returns true if the run must stop
func (g *Guard) IsTripped() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.state == GuardTripped
}

// Reason returns the reason and detail of the trip, if any
func (g *Guard) Reason() (StopReason, string) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.reason, g.detail
}

// RegisterTripCallback registers a callback for when the guard trips
func (g *Guard) RegisterTripCallback(callback TripCallback) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.callbacks = append(g.callbacks, callback)
}

// tripLocked records the trip and returns the callbacks to run once the lock is released
func (g *Guard) tripLocked(reason StopReason, detail string) []TripCallback {
	oldState := g.state
	g.state = GuardTripped
	g.reason = reason
	g.detail = detail

	g.logger.WithFields(logrus.Fields{
		"old_state": oldState.String(),
		"new_state": g.state.String(),
		"reason":    string(reason),
		"detail":    detail,
	}).Warn("Guard tripped")

	callbacks := make([]TripCallback, len(g.callbacks))
	copy(callbacks, g.callbacks)
	return callbacks
}

func (g *Guard) notify(callbacks []TripCallback, reason StopReason, detail string) {
	for i, callback := range callbacks {
		if err := callback(reason, detail); err != nil {
			g.logger.WithFields(logrus.Fields{
				"callback_index": i,
				"error":          err.Error(),
			}).Error("Trip callback failed")
		}
	}
}
