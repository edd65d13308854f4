// Package bot runs the betting loop: place a bet, fold the outcome into the
// statistics, let the rules adjust the next wager, repeat until stopped.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stakebot/internal/models"
	"github.com/yourusername/stakebot/internal/strategy"
)

// ErrAlreadyRun is returned when Run is called on a loop that has already run
var ErrAlreadyRun = errors.New("loop has already run")

// LoopState represents the lifecycle of a loop
type LoopState int

const (
	LoopReady LoopState = iota
	LoopRunning
	LoopStopped
)

// String returns string representation of loop state
func (s LoopState) String() string {
	switch s {
	case LoopReady:
		return "READY"
	case LoopRunning:
		return "RUNNING"
	case LoopStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// BetPlacer settles one bet with the given modifiers
type BetPlacer interface {
	PlaceBet(ctx context.Context, game models.Game, m *models.WagerModifiers) (*models.BetResult, error)
}

// BalanceFetcher reads account balances
type BalanceFetcher interface {
	GetBalances(ctx context.Context) (models.Balances, error)
}

// BalanceSettler is implemented by balance sources that keep a local copy, such as
// a cache, and must fold a settled bet into it before the next read
type BalanceSettler interface {
	Settle(currency models.Currency, profit decimal.Decimal)
}

// ErrorClassifier reports whether an error must end the run. It decides which
// balance refresh failures may fall back to local bookkeeping.
type ErrorClassifier func(err error) bool

// Observer receives a read-only view of every completed tick
type Observer interface {
	OnTick(tick models.Tick)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(tick models.Tick)

// OnTick implements Observer
func (f ObserverFunc) OnTick(tick models.Tick) { f(tick) }

// Result is the outcome of a run
type Result struct {
	RunID      string                `json:"run_id"`
	Snapshot   models.Snapshot       `json:"snapshot"`
	Modifiers  models.WagerModifiers `json:"modifiers"`
	StopReason StopReason            `json:"stop_reason"`
	Detail     string                `json:"detail,omitempty"`
}

// LoopConfig holds the run parameters
type LoopConfig struct {
	Game     models.Game
	Interval time.Duration
}

// LoopDeps holds the collaborators of a loop. Balances, Guard and Clock are optional.
// Without IsTerminal every balance refresh failure ends the run.
type LoopDeps struct {
	Placer     BetPlacer
	Balances   BalanceFetcher
	IsTerminal ErrorClassifier
	Rules      strategy.RuleSet
	Modifiers  *models.WagerModifiers
	Guard      *Guard
	Clock      quartz.Clock
	Logger     *logrus.Logger
	Observers  []Observer
}

// Loop is a single run. It is owned by the goroutine calling Run; modifiers and
// statistics have no other writer.
type Loop struct {
	runID     string
	config    LoopConfig
	placer    BetPlacer
	balances  BalanceFetcher
	terminal  ErrorClassifier
	rules     strategy.RuleSet
	modifiers *models.WagerModifiers
	stats     models.RollingStatistics
	guard     *Guard
	clock     quartz.Clock
	logger    *logrus.Logger
	observers []Observer

	mu    sync.RWMutex
	state LoopState
}

// NewLoop creates a new betting loop
func NewLoop(cfg LoopConfig, deps LoopDeps) (*Loop, error) {
	if deps.Placer == nil {
		return nil, fmt.Errorf("bet placer is required")
	}
	if deps.Modifiers == nil {
		return nil, fmt.Errorf("wager modifiers are required")
	}
	if err := deps.Modifiers.Validate(); err != nil {
		return nil, err
	}
	if _, err := models.ParseGame(string(cfg.Game)); err != nil {
		return nil, err
	}
	if err := deps.Modifiers.ValidateFor(cfg.Game); err != nil {
		return nil, err
	}
	if deps.IsTerminal == nil {
		deps.IsTerminal = func(error) bool { return true }
	}
	if deps.Clock == nil {
		deps.Clock = quartz.NewReal()
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
		deps.Logger.SetOutput(io.Discard)
	}

	return &Loop{
		runID:     uuid.NewString(),
		config:    cfg,
		placer:    deps.Placer,
		balances:  deps.Balances,
		terminal:  deps.IsTerminal,
		rules:     deps.Rules,
		modifiers: deps.Modifiers,
		guard:     deps.Guard,
		clock:     deps.Clock,
		logger:    deps.Logger,
		observers: deps.Observers,
		state:     LoopReady,
	}, nil
}

// RunID identifies this run in logs and the monitoring feed
func (l *Loop) RunID() string {
	return l.runID
}

// State returns the lifecycle state
func (l *Loop) State() LoopState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Loop) setState(s LoopState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = s
}

// Run bets until ctx is cancelled, the guard trips or a bet fails. Cancellation is
// observed between ticks only; a bet already in flight completes first. A failed bet
// ends the run and its error is returned unchanged next to the final statistics.
func (l *Loop) Run(ctx context.Context) (Result, error) {
	l.mu.Lock()
	if l.state != LoopReady {
		l.mu.Unlock()
		return Result{}, ErrAlreadyRun
	}
	l.state = LoopRunning
	l.mu.Unlock()
	defer l.setState(LoopStopped)

	// In-flight requests are never interrupted by the stop signal
	requestCtx := context.WithoutCancel(ctx)

	log := l.logger.WithFields(logrus.Fields{
		"component": "bot",
		"run_id":    l.runID,
		"game":      string(l.config.Game),
	})
	log.WithFields(logrus.Fields{
		"amount":    l.modifiers.Amount.String(),
		"chance":    l.modifiers.Chance.String(),
		"direction": string(l.modifiers.Direction),
		"rules":     l.rules.Strings(),
	}).Info("Run started")

	if l.balances != nil {
		if err := l.fetchBalance(requestCtx); err != nil {
			return l.finish(log, StopError, err.Error()), err
		}
	}

	for tick := int64(1); ; tick++ {
		if tick > 1 && l.config.Interval > 0 {
			if !l.pause(ctx) {
				return l.finish(log, StopCancelled, ""), nil
			}
		}
		if ctx.Err() != nil {
			return l.finish(log, StopCancelled, ""), nil
		}
		if l.guard != nil {
			// Without a balance source the low-balance check has nothing to compare against
			next := l.modifiers
			if l.balances == nil {
				next = nil
			}
			if reason, tripped := l.guard.Check(l.stats.Snapshot(), next); tripped {
				_, detail := l.guard.Reason()
				return l.finish(log, reason, detail), nil
			}
		}

		start := l.clock.Now()
		outcome, err := l.placer.PlaceBet(requestCtx, l.config.Game, l.modifiers)
		if err != nil {
			return l.finish(log, StopError, err.Error()), err
		}
		latency := l.clock.Since(start)

		l.stats.Record(outcome)
		fired := l.rules.Apply(outcome, l.modifiers)
		refreshErr := l.refreshBalance(requestCtx, log, outcome)

		l.publish(models.Tick{
			RunID:     l.runID,
			Number:    tick,
			Outcome:   outcome,
			Fired:     ruleNames(fired),
			Modifiers: *l.modifiers,
			Snapshot:  l.stats.Snapshot(),
			Latency:   latency,
		})

		if refreshErr != nil {
			return l.finish(log, StopError, refreshErr.Error()), refreshErr
		}
	}
}

// pause waits for the bet interval. It returns false when ctx ends first.
func (l *Loop) pause(ctx context.Context) bool {
	timer := l.clock.NewTimer(l.config.Interval, "bot", "pause")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (l *Loop) fetchBalance(ctx context.Context) error {
	balances, err := l.balances.GetBalances(ctx)
	if err != nil {
		return err
	}
	available, ok := balances.Available(l.modifiers.Currency)
	if !ok {
		return fmt.Errorf("no %s balance on account", l.modifiers.Currency)
	}
	l.stats.SetBalance(available)
	return nil
}

// refreshBalance re-reads the balance after a bet. A recoverable read failure falls
// back to applying the bet's profit to the last known balance; a terminal one is
// returned after the same local update so the settled bet is still accounted for.
func (l *Loop) refreshBalance(ctx context.Context, log *logrus.Entry, outcome *models.BetResult) error {
	if l.balances == nil {
		l.stats.SetBalance(l.stats.Balance.Add(outcome.Profit()))
		return nil
	}

	if settler, ok := l.balances.(BalanceSettler); ok {
		settler.Settle(l.modifiers.Currency, outcome.Profit())
	}

	err := l.fetchBalance(ctx)
	if err == nil {
		return nil
	}
	l.stats.SetBalance(l.stats.Balance.Add(outcome.Profit()))
	if l.terminal(err) {
		return err
	}
	log.WithError(err).Warn("Balance refresh failed, using local balance")
	return nil
}

func (l *Loop) publish(tick models.Tick) {
	for _, o := range l.observers {
		o.OnTick(tick)
	}
}

func (l *Loop) finish(log *logrus.Entry, reason StopReason, detail string) Result {
	result := Result{
		RunID:      l.runID,
		Snapshot:   l.stats.Snapshot(),
		Modifiers:  *l.modifiers,
		StopReason: reason,
		Detail:     detail,
	}

	entry := log.WithFields(logrus.Fields{
		"stop_reason": string(reason),
		"bets":        result.Snapshot.Bets,
		"wins":        result.Snapshot.Wins,
		"losses":      result.Snapshot.Losses,
		"profit":      result.Snapshot.Profit.String(),
		"wagered":     result.Snapshot.Wagered.String(),
	})
	if reason == StopError {
		entry.WithField("error", detail).Error("Run terminated")
	} else {
		entry.Info("Run stopped")
	}
	return result
}

func ruleNames(rules []*strategy.Rule) []string {
	if len(rules) == 0 {
		return nil
	}
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.String()
	}
	return names
}
