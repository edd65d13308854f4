package scheduler

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stakebot/internal/models"
)

// Reporter keeps the latest tick of a run and logs a statistics summary on demand.
// It is a loop observer; Report is the scheduled job.
type Reporter struct {
	logger *logrus.Entry
	mu     sync.RWMutex
	latest models.Tick
	seen   bool
}

// NewReporter creates a new statistics reporter
func NewReporter(logger *logrus.Logger) *Reporter {
	return &Reporter{logger: logger.WithField("component", "report")}
}

// OnTick stores the tick for the next report
func (r *Reporter) OnTick(tick models.Tick) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = tick
	r.seen = true
}

// Latest returns the last observed tick
func (r *Reporter) Latest() (models.Tick, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.seen
}

// Report logs the latest statistics. Nothing is logged before the first tick.
func (r *Reporter) Report() {
	r.mu.RLock()
	tick, seen := r.latest, r.seen
	r.mu.RUnlock()

	if !seen {
		return
	}

	s := tick.Snapshot
	r.logger.WithFields(logrus.Fields{
		"run_id":              tick.RunID,
		"bets":                s.Bets,
		"wins":                s.Wins,
		"losses":              s.Losses,
		"win_rate":            s.WinRate(),
		"highest_win_streak":  s.HighestWinStreak,
		"highest_loss_streak": s.HighestLossStreak,
		"wagered":             s.Wagered.String(),
		"profit":              s.Profit.String(),
		"balance":             s.Balance.String(),
		"amount":              tick.Modifiers.Amount.String(),
		"chance":              tick.Modifiers.Chance.String(),
	}).Info("Run statistics")
}
