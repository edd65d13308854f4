package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stakebot/internal/models"
	"github.com/yourusername/stakebot/internal/paper"
	"github.com/yourusername/stakebot/internal/stake"
	"github.com/yourusername/stakebot/internal/strategy"
)

// MockBetPlacer is a mock implementation of BetPlacer
type MockBetPlacer struct {
	mock.Mock
}

func (m *MockBetPlacer) PlaceBet(ctx context.Context, game models.Game, mods *models.WagerModifiers) (*models.BetResult, error) {
	args := m.Called(ctx, game, mods)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetResult), args.Error(1)
}

// scriptedPlacer settles bets from a fixed win/loss script, then fails with err
type scriptedPlacer struct {
	script     []bool
	err        error
	amounts    []decimal.Decimal
	directions []models.Direction
	onBet      func(ctx context.Context)
}

func (p *scriptedPlacer) PlaceBet(ctx context.Context, game models.Game, m *models.WagerModifiers) (*models.BetResult, error) {
	if p.onBet != nil {
		p.onBet(ctx)
	}
	i := len(p.amounts)
	if i >= len(p.script) {
		if p.err != nil {
			return nil, p.err
		}
		i = len(p.script) - 1
	}
	p.amounts = append(p.amounts, m.Amount)
	p.directions = append(p.directions, m.Direction)
	return settled(m.Amount, p.script[i]), nil
}

func settled(amount decimal.Decimal, won bool) *models.BetResult {
	mult := decimal.Zero
	if won {
		mult = decimal.NewFromInt(2)
	}
	return &models.BetResult{
		ID:               "bet",
		PayoutMultiplier: mult,
		Amount:           amount,
		Payout:           amount.Mul(mult),
		Currency:         models.CurrencyUSDT,
		Game:             models.GameDice,
		State:            models.DiceState{},
	}
}

type staticBalances struct {
	balance decimal.Decimal
	err     error
}

func (s *staticBalances) GetBalances(ctx context.Context) (models.Balances, error) {
	if s.err != nil {
		return nil, s.err
	}
	return models.Balances{{Available: models.Amount{Amount: s.balance, Currency: models.CurrencyUSDT}}}, nil
}

// flakyBalances answers the first ok reads, then fails every read with err
type flakyBalances struct {
	balance decimal.Decimal
	ok      int
	err     error
	reads   int
}

func (f *flakyBalances) GetBalances(ctx context.Context) (models.Balances, error) {
	f.reads++
	if f.reads > f.ok {
		return nil, f.err
	}
	return models.Balances{{Available: models.Amount{Amount: f.balance, Currency: models.CurrencyUSDT}}}, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func defaultRules(t *testing.T) strategy.RuleSet {
	t.Helper()
	rules, err := strategy.BuildRuleSet(strategy.DefaultRuleConfigs())
	require.NoError(t, err)
	return rules
}

func newModifiers(t *testing.T, amount string) *models.WagerModifiers {
	t.Helper()
	m, err := models.NewWagerModifiers(decimal.RequireFromString(amount), decimal.RequireFromString("49.5"), models.DirectionAbove, models.CurrencyUSDT)
	require.NoError(t, err)
	return m
}

func newTestLoop(t *testing.T, deps LoopDeps) *Loop {
	t.Helper()
	if deps.Logger == nil {
		deps.Logger = testLogger()
	}
	if deps.Clock == nil {
		deps.Clock = quartz.NewMock(t)
	}
	loop, err := NewLoop(LoopConfig{Game: models.GameDice}, deps)
	require.NoError(t, err)
	return loop
}

func TestRunAppliesRulesAndStopsOnTerminalError(t *testing.T) {
	insufficient := stake.NewInsufficientBalanceError("Not enough funds")
	placer := &scriptedPlacer{script: []bool{false, false, true, true}, err: insufficient}
	m := newModifiers(t, "1")

	var ticks []models.Tick
	loop := newTestLoop(t, LoopDeps{
		Placer:    placer,
		Rules:     defaultRules(t),
		Modifiers: m,
		Observers: []Observer{ObserverFunc(func(tick models.Tick) { ticks = append(ticks, tick) })},
	})

	result, err := loop.Run(context.Background())
	require.Error(t, err)
	assert.Same(t, insufficient, err, "terminal errors are returned verbatim")
	assert.Equal(t, StopError, result.StopReason)
	assert.Equal(t, LoopStopped, loop.State())

	expectedAmounts := []string{"1", "1.03", "1.0609", "1"}
	require.Len(t, placer.amounts, len(expectedAmounts))
	for i, want := range expectedAmounts {
		assert.True(t, placer.amounts[i].Equal(decimal.RequireFromString(want)), "bet %d amount %s", i+1, placer.amounts[i])
	}
	assert.Equal(t, []models.Direction{models.DirectionAbove, models.DirectionAbove, models.DirectionAbove, models.DirectionAbove}, placer.directions)

	s := result.Snapshot
	assert.Equal(t, int64(4), s.Bets)
	assert.Equal(t, int64(2), s.Wins)
	assert.Equal(t, int64(2), s.Losses)
	assert.Equal(t, s.Bets, s.Wins+s.Losses)
	assert.True(t, s.Wagered.Equal(decimal.RequireFromString("4.0909")))
	assert.True(t, s.Profit.Equal(decimal.RequireFromString("0.0309")))
	assert.Equal(t, models.DirectionBelow, result.Modifiers.Direction, "second win switches the condition")

	require.Len(t, ticks, 4)
	assert.Equal(t, int64(4), ticks[3].Number)
	assert.Equal(t, []string{"(on=EVERY_1_WINS, do=RESET_AMOUNT)", "(on=EVERY_2_WINS, do=SWITCH_CONDITION)"}, ticks[3].Fired)
	assert.Equal(t, loop.RunID(), ticks[0].RunID)
}

func TestRunWithMockPlacerSurfacesErrorOnFirstBet(t *testing.T) {
	placer := new(MockBetPlacer)
	insignificant := stake.NewInsignificantBetError("too small")
	placer.On("PlaceBet", mock.Anything, models.GameDice, mock.AnythingOfType("*models.WagerModifiers")).Return(nil, insignificant).Once()

	loop := newTestLoop(t, LoopDeps{Placer: placer, Rules: defaultRules(t), Modifiers: newModifiers(t, "1")})
	result, err := loop.Run(context.Background())

	var target *stake.InsignificantBetError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, int64(0), result.Snapshot.Bets)
	placer.AssertExpectations(t)
	placer.AssertNumberOfCalls(t, "PlaceBet", 1)
}

func TestRunStopsBetweenTicksOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	placer := &scriptedPlacer{script: []bool{false}}
	loop := newTestLoop(t, LoopDeps{
		Placer:    placer,
		Rules:     defaultRules(t),
		Modifiers: newModifiers(t, "1"),
		Observers: []Observer{ObserverFunc(func(tick models.Tick) {
			if tick.Number == 3 {
				cancel()
			}
		})},
	})

	result, err := loop.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, StopCancelled, result.StopReason)
	assert.Equal(t, int64(3), result.Snapshot.Bets)
	assert.Len(t, placer.amounts, 3)
}

func TestInFlightBetIsNotInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var requestErrs []error
	placer := &scriptedPlacer{script: []bool{true}}
	placer.onBet = func(requestCtx context.Context) {
		cancel()
		requestErrs = append(requestErrs, requestCtx.Err())
	}

	loop := newTestLoop(t, LoopDeps{Placer: placer, Modifiers: newModifiers(t, "1")})
	result, err := loop.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []error{nil}, requestErrs)
	assert.Equal(t, int64(1), result.Snapshot.Bets)
	assert.Equal(t, StopCancelled, result.StopReason)
}

func TestRunStopsOnGuard(t *testing.T) {
	placer := &scriptedPlacer{script: []bool{true, false}}
	guard := NewGuard(GuardConfig{MaxBets: 5}, testLogger())

	loop := newTestLoop(t, LoopDeps{Placer: placer, Modifiers: newModifiers(t, "1"), Guard: guard})
	result, err := loop.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopMaxBets, result.StopReason)
	assert.Contains(t, result.Detail, "5 bets")
	assert.Equal(t, int64(5), result.Snapshot.Bets)
}

func TestRunTracksBalance(t *testing.T) {
	placer := &scriptedPlacer{script: []bool{false}}
	balances := &staticBalances{balance: decimal.RequireFromString("2.05")}
	guard := NewGuard(GuardConfig{StopOnLowBalance: true}, testLogger())

	loop := newTestLoop(t, LoopDeps{Placer: placer, Balances: balances, Rules: defaultRules(t), Modifiers: newModifiers(t, "2"), Guard: guard})
	result, err := loop.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopLowBalance, result.StopReason)
	assert.Equal(t, int64(1), result.Snapshot.Bets, "the 2.06 follow-up exceeds the balance of 2.05")
	assert.True(t, result.Snapshot.Balance.Equal(decimal.RequireFromString("2.05")))
}

func TestRunFailsWhenInitialBalanceUnavailable(t *testing.T) {
	placer := new(MockBetPlacer)
	fetchErr := &stake.TransientNetworkError{Attempts: 10, Cause: errors.New("connection refused")}

	loop := newTestLoop(t, LoopDeps{Placer: placer, Balances: &staticBalances{err: fetchErr}, Modifiers: newModifiers(t, "1")})
	result, err := loop.Run(context.Background())

	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, StopError, result.StopReason)
	placer.AssertNotCalled(t, "PlaceBet", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnlyOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := newTestLoop(t, LoopDeps{Placer: &scriptedPlacer{script: []bool{true}}, Modifiers: newModifiers(t, "1")})
	_, err := loop.Run(ctx)
	require.NoError(t, err)

	_, err = loop.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRun)
}

func TestNewLoopValidation(t *testing.T) {
	_, err := NewLoop(LoopConfig{Game: models.GameDice}, LoopDeps{Modifiers: newModifiers(t, "1")})
	assert.Error(t, err)

	_, err = NewLoop(LoopConfig{Game: "roulette"}, LoopDeps{Placer: &scriptedPlacer{}, Modifiers: newModifiers(t, "1")})
	assert.ErrorIs(t, err, models.ErrUnknownEnum)

	bad := newModifiers(t, "1")
	bad.Chance = decimal.NewFromInt(100)
	_, err = NewLoop(LoopConfig{Game: models.GameDice}, LoopDeps{Placer: &scriptedPlacer{}, Modifiers: bad})
	assert.ErrorIs(t, err, models.ErrInvalidWager)
}

func TestRunPacesBetsWithClock(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	start := clock.Now()
	loop, err := NewLoop(LoopConfig{Game: models.GameDice, Interval: time.Second}, LoopDeps{
		Placer:    &scriptedPlacer{script: []bool{true}},
		Modifiers: newModifiers(t, "1"),
		Guard:     NewGuard(GuardConfig{MaxBets: 3}, testLogger()),
		Clock:     clock,
		Logger:    testLogger(),
	})
	require.NoError(t, err)

	done := make(chan Result, 1)
	go func() {
		result, _ := loop.Run(ctx)
		done <- result
	}()

	var result Result
	for finished := false; !finished; {
		select {
		case result = <-done:
			finished = true
		default:
			clock.Advance(time.Second).MustWait(ctx)
			time.Sleep(time.Millisecond)
		}
	}

	assert.Equal(t, StopMaxBets, result.StopReason)
	assert.Equal(t, int64(3), result.Snapshot.Bets)
	assert.GreaterOrEqual(t, clock.Now().Sub(start), 2*time.Second)
}

func TestRunAgainstPaperCasino(t *testing.T) {
	casino := paper.NewCasino(decimal.NewFromInt(1), decimal.RequireFromString("0.00000001"), models.CurrencyUSDT, 11, quartz.NewMock(t))
	guard := NewGuard(GuardConfig{MaxBets: 500, StopOnLowBalance: true}, testLogger())

	var mu sync.Mutex
	var last models.Tick
	loop := newTestLoop(t, LoopDeps{
		Placer:    casino,
		Balances:  casino,
		Rules:     defaultRules(t),
		Modifiers: newModifiers(t, "0.01"),
		Guard:     guard,
		Observers: []Observer{ObserverFunc(func(tick models.Tick) {
			mu.Lock()
			defer mu.Unlock()
			last = tick
		})},
	})

	result, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []StopReason{StopMaxBets, StopLowBalance}, result.StopReason)

	s := result.Snapshot
	assert.Equal(t, s.Bets, s.Wins+s.Losses)
	assert.True(t, s.Balance.Equal(casino.Balance()))
	assert.True(t, s.Balance.Equal(decimal.NewFromInt(1).Add(s.Profit)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, s, last.Snapshot)
}

func TestRunSettlesCachedBalance(t *testing.T) {
	casino := paper.NewCasino(decimal.NewFromInt(100), decimal.RequireFromString("0.00000001"), models.CurrencyUSDT, 7, quartz.NewMock(t))

	loop := newTestLoop(t, LoopDeps{
		Placer:     casino,
		Balances:   stake.NewCachedBalances(casino, time.Minute),
		IsTerminal: stake.IsTerminal,
		Rules:      defaultRules(t),
		Modifiers:  newModifiers(t, "5"),
		Guard:      NewGuard(GuardConfig{MaxBets: 5}, testLogger()),
	})

	result, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopMaxBets, result.StopReason)

	s := result.Snapshot
	assert.Equal(t, int64(5), s.Bets)
	assert.True(t, s.Balance.Equal(casino.Balance()), "stats %s, casino %s", s.Balance, casino.Balance())
	assert.True(t, s.Balance.Equal(decimal.NewFromInt(100).Add(s.Profit)))
}

func TestRunStopsOnTerminalBalanceError(t *testing.T) {
	shape := stake.NewUnrecognizedResponseShapeError("user.balances missing")
	balances := &flakyBalances{balance: decimal.NewFromInt(10), ok: 1, err: shape}
	placer := &scriptedPlacer{script: []bool{true}}

	var ticks []models.Tick
	loop := newTestLoop(t, LoopDeps{
		Placer:     placer,
		Balances:   balances,
		IsTerminal: stake.IsTerminal,
		Modifiers:  newModifiers(t, "1"),
		Guard:      NewGuard(GuardConfig{MaxBets: 5}, testLogger()),
		Observers:  []Observer{ObserverFunc(func(tick models.Tick) { ticks = append(ticks, tick) })},
	})

	result, err := loop.Run(context.Background())
	assert.Same(t, shape, err)
	assert.Equal(t, StopError, result.StopReason)
	assert.Equal(t, int64(1), result.Snapshot.Bets)
	assert.Len(t, placer.amounts, 1)
	assert.True(t, result.Snapshot.Balance.Equal(decimal.NewFromInt(11)), "the settled bet is still accounted for")
	require.Len(t, ticks, 1, "the settled bet is published before stopping")
}

func TestRunFallsBackOnTransientBalanceError(t *testing.T) {
	transient := &stake.TransientNetworkError{Attempts: 3, Cause: errors.New("connection reset")}
	balances := &flakyBalances{balance: decimal.NewFromInt(10), ok: 1, err: transient}
	placer := &scriptedPlacer{script: []bool{true, false, true}}

	loop := newTestLoop(t, LoopDeps{
		Placer:     placer,
		Balances:   balances,
		IsTerminal: stake.IsTerminal,
		Modifiers:  newModifiers(t, "1"),
		Guard:      NewGuard(GuardConfig{MaxBets: 3}, testLogger()),
	})

	result, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopMaxBets, result.StopReason)
	assert.Equal(t, 4, balances.reads)
	assert.True(t, result.Snapshot.Balance.Equal(decimal.NewFromInt(11)), "10 + 1 - 1 + 1")
}

func TestRunWithoutClassifierTreatsRefreshErrorsAsTerminal(t *testing.T) {
	transient := &stake.TransientNetworkError{Attempts: 3, Cause: errors.New("connection reset")}
	balances := &flakyBalances{balance: decimal.NewFromInt(10), ok: 1, err: transient}

	loop := newTestLoop(t, LoopDeps{Placer: &scriptedPlacer{script: []bool{false}}, Balances: balances, Modifiers: newModifiers(t, "1")})
	result, err := loop.Run(context.Background())

	assert.ErrorIs(t, err, transient)
	assert.Equal(t, StopError, result.StopReason)
	assert.Equal(t, int64(1), result.Snapshot.Bets)
}

func TestRunStopsOnManualRequest(t *testing.T) {
	guard := NewGuard(GuardConfig{}, testLogger())
	loop := newTestLoop(t, LoopDeps{
		Placer:    &scriptedPlacer{script: []bool{true}},
		Modifiers: newModifiers(t, "1"),
		Guard:     guard,
		Observers: []Observer{ObserverFunc(func(tick models.Tick) {
			if tick.Number == 2 {
				guard.RequestStop("operator")
			}
		})},
	})

	result, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopManual, result.StopReason)
	assert.Equal(t, "operator", result.Detail)
	assert.Equal(t, int64(2), result.Snapshot.Bets)
}
