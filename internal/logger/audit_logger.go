// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stakebot/internal/models"
)

// AuditLogger provides dedicated audit trail logging for run lifecycle events.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRunStarted logs the start of a run.
func (al *AuditLogger) LogRunStarted(runID string, game models.Game, m models.WagerModifiers, paper bool) {
	al.WithFields(logrus.Fields{
		"run_id":      runID,
		"game":        string(game),
		"currency":    string(m.Currency),
		"base_amount": m.BaseAmount.String(),
		"base_chance": m.BaseChance.String(),
		"direction":   string(m.Direction),
		"paper":       paper,
	}).Info("Run started")
}

// LogRunStopped logs the end of a run with its final statistics.
func (al *AuditLogger) LogRunStopped(runID, reason, detail string, s models.Snapshot, runErr error) {
	entry := al.WithFields(logrus.Fields{
		"run_id":              runID,
		"stop_reason":         reason,
		"detail":              detail,
		"bets":                s.Bets,
		"wins":                s.Wins,
		"losses":              s.Losses,
		"highest_win_streak":  s.HighestWinStreak,
		"highest_loss_streak": s.HighestLossStreak,
		"wagered":             s.Wagered.String(),
		"profit":              s.Profit.String(),
		"balance":             s.Balance.String(),
	})
	if runErr != nil {
		entry.WithError(runErr).Error("Run terminated by error")
		return
	}
	entry.Info("Run stopped")
}

// LogGuardTrip logs a guard stopping the run.
func (al *AuditLogger) LogGuardTrip(reason, detail string) {
	al.WithFields(logrus.Fields{
		"reason": reason,
		"detail": detail,
	}).Warn("Guard tripped")
}
