package metrics

import (
	"time"

	"github.com/yourusername/stakebot/internal/models"
)

// Recorder feeds loop ticks and transport retries into the registry
type Recorder struct{}

// NewRecorder initializes the registry and returns a recorder
func NewRecorder() *Recorder {
	InitRegistry()
	return &Recorder{}
}

// OnTick records one settled bet
func (Recorder) OnTick(tick models.Tick) {
	if tick.Outcome != nil {
		RecordBet(string(tick.Outcome.Game), tick.Outcome.Win())
	}
	for _, rule := range tick.Fired {
		RecordRuleFired(rule)
	}

	s := tick.Snapshot
	UpdateBalance(s.Balance.InexactFloat64())
	UpdateRunTotals(s.Profit.InexactFloat64(), s.Wagered.InexactFloat64())
	UpdateStreaks(s.CurrentWinStreak, s.CurrentLossStreak)
	UpdateWager(tick.Modifiers.Amount.InexactFloat64(), tick.Modifiers.Chance.InexactFloat64())
	RecordBetPlacementLatency(tick.Latency.Seconds())
}

// OnRetry records a transport retry
func (Recorder) OnRetry(operation string, _ int, _ time.Duration) {
	RecordRetry(operation)
}
