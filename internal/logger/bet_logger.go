// Package logger provides bet-level logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stakebot/internal/models"
)

// BetLogger logs every settled bet. It is a loop observer.
type BetLogger struct {
	*logrus.Entry
}

// NewBetLogger creates a new bet logger.
func NewBetLogger(baseLogger *logrus.Logger) *BetLogger {
	return &BetLogger{
		Entry: baseLogger.WithField("component", "bet"),
	}
}

// OnTick logs the bet settled in tick.
func (bl *BetLogger) OnTick(tick models.Tick) {
	bl.LogBet(tick)
}

// LogBet logs a settled bet together with the running totals.
func (bl *BetLogger) LogBet(tick models.Tick) {
	fields := logrus.Fields{
		"run_id":  tick.RunID,
		"bet":     tick.Number,
		"profit":  tick.Snapshot.Profit.String(),
		"balance": tick.Snapshot.Balance.String(),
		"latency": tick.Latency.String(),
		"next":    tick.Modifiers.Amount.String(),
	}
	if o := tick.Outcome; o != nil {
		fields["bet_id"] = o.ID
		fields["game"] = string(o.Game)
		fields["amount"] = o.Amount.String()
		fields["payout"] = o.Payout.String()
		fields["multiplier"] = o.PayoutMultiplier.String()
		fields["win"] = o.Win()
	}
	if len(tick.Fired) > 0 {
		fields["fired"] = tick.Fired
	}
	bl.WithFields(fields).Debug("Bet settled")
}

// LogRetry logs a retried casino request.
func (bl *BetLogger) LogRetry(operation string, attempt int, wait time.Duration) {
	bl.WithFields(logrus.Fields{
		"operation": operation,
		"attempt":   attempt,
		"wait":      wait.String(),
	}).Warn("Casino request retried")
}
