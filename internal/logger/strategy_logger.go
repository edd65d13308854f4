// Package logger provides strategy-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stakebot/internal/models"
)

// StrategyLogger provides dedicated logging for rule activity.
type StrategyLogger struct {
	*logrus.Entry
}

// NewStrategyLogger creates a new strategy logger.
func NewStrategyLogger(baseLogger *logrus.Logger) *StrategyLogger {
	return &StrategyLogger{
		Entry: baseLogger.WithField("component", "strategy"),
	}
}

// OnTick logs the rules fired in tick.
func (sl *StrategyLogger) OnTick(tick models.Tick) {
	for _, rule := range tick.Fired {
		sl.LogRuleFired(tick.Number, rule, tick.Modifiers)
	}
}

// LogRuleSet logs the rule chain a run starts with.
func (sl *StrategyLogger) LogRuleSet(rules []string) {
	sl.WithFields(logrus.Fields{
		"rules": rules,
		"count": len(rules),
	}).Info("Rule set loaded")
}

// LogRuleFired logs a rule firing and the modifiers it left behind.
func (sl *StrategyLogger) LogRuleFired(bet int64, rule string, m models.WagerModifiers) {
	sl.WithFields(logrus.Fields{
		"bet":       bet,
		"rule":      rule,
		"amount":    m.Amount.String(),
		"chance":    m.Chance.String(),
		"direction": string(m.Direction),
	}).Debug("Rule fired")
}
