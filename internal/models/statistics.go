package models

import (
	"github.com/shopspring/decimal"
)

// RollingStatistics are counters derived from the sequence of bet outcomes of one run.
// They are written by a single goroutine; readers get copies through Snapshot.
type RollingStatistics struct {
	Bets              int64           `json:"bets"`
	Wins              int64           `json:"wins"`
	Losses            int64           `json:"losses"`
	CurrentWinStreak  int64           `json:"current_win_streak"`
	CurrentLossStreak int64           `json:"current_loss_streak"`
	HighestWinStreak  int64           `json:"highest_win_streak"`
	HighestLossStreak int64           `json:"highest_loss_streak"`
	Wagered           decimal.Decimal `json:"wagered"`
	Profit            decimal.Decimal `json:"profit"`
	Balance           decimal.Decimal `json:"balance"`
}

// Record folds one settled bet into the statistics
func (s *RollingStatistics) Record(outcome *BetResult) {
	s.Bets++

	if outcome.Win() {
		s.Wins++
		s.CurrentWinStreak++
		s.CurrentLossStreak = 0
		if s.CurrentWinStreak > s.HighestWinStreak {
			s.HighestWinStreak = s.CurrentWinStreak
		}
	} else {
		s.Losses++
		s.CurrentLossStreak++
		s.CurrentWinStreak = 0
		if s.CurrentLossStreak > s.HighestLossStreak {
			s.HighestLossStreak = s.CurrentLossStreak
		}
	}

	s.Wagered = s.Wagered.Add(outcome.Amount)
	s.Profit = s.Profit.Add(outcome.Profit())
}

// SetBalance stores the last fetched balance
func (s *RollingStatistics) SetBalance(balance decimal.Decimal) {
	s.Balance = balance
}

// Snapshot returns a read-only copy for presentation layers
func (s *RollingStatistics) Snapshot() Snapshot {
	return Snapshot(*s)
}

// Snapshot is a copy of RollingStatistics taken after a tick. It has no mutators.
type Snapshot RollingStatistics

// WinRate returns wins/bets as a percentage
func (s Snapshot) WinRate() float64 {
	if s.Bets == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Bets) * 100
}
