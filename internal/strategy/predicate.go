// Package strategy implements the wager progression engine: predicates over the
// outcome stream, actions over wager modifiers, and ordered rule sets binding them.
package strategy

import (
	"fmt"
	"strings"

	"github.com/yourusername/stakebot/internal/models"
)

// Metric selects which outcomes a predicate counts
type Metric string

const (
	MetricBets   Metric = "bets"
	MetricWins   Metric = "wins"
	MetricLosses Metric = "losses"
)

// ParseMetric parses a metric name case-insensitively
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(s))
	if _, ok := everyCounters[m]; !ok {
		return "", fmt.Errorf("%w: metric %q", ErrInvalidDefinition, s)
	}
	return m, nil
}

func (m Metric) label() string {
	return strings.ToUpper(string(m))
}

// counterFunc advances a predicate counter for one outcome
type counterFunc func(count int, win bool) int

// everyCounters count qualifying events and ignore the rest
var everyCounters = map[Metric]counterFunc{
	MetricBets: func(count int, _ bool) int { return count + 1 },
	MetricWins: func(count int, win bool) int {
		if win {
			return count + 1
		}
		return count
	},
	MetricLosses: func(count int, win bool) int {
		if !win {
			return count + 1
		}
		return count
	},
}

// streakCounters extend an unbroken run and reset it on a disqualifying outcome
var streakCounters = map[Metric]counterFunc{
	MetricBets: func(count int, _ bool) int { return count + 1 },
	MetricWins: func(count int, win bool) int {
		if win {
			return count + 1
		}
		return 0
	},
	MetricLosses: func(count int, win bool) int {
		if !win {
			return count + 1
		}
		return 0
	},
}

// Predicate is a stateful boolean function of the outcome stream
type Predicate interface {
	Evaluate(outcome *models.BetResult) bool
	String() string
}

// counter is the state shared by both predicate families
type counter struct {
	n      int
	metric Metric
	count  int
	step   counterFunc
}

func (c *counter) evaluate(outcome *models.BetResult) bool {
	c.count = c.step(c.count, outcome.Win())
	if c.count == c.n {
		c.count = 0
		return true
	}
	return false
}

// Every fires on every Nth qualifying event since it last fired
type Every struct {
	counter
}

// NewEvery creates an Every predicate. N must be at least 1.
func NewEvery(n int, metric Metric) (*Every, error) {
	if err := checkPredicateArgs(n, metric); err != nil {
		return nil, err
	}
	return &Every{counter{n: n, metric: metric, step: everyCounters[metric]}}, nil
}

// Evaluate implements Predicate
func (e *Every) Evaluate(outcome *models.BetResult) bool {
	return e.evaluate(outcome)
}

func (e *Every) String() string {
	return fmt.Sprintf("EVERY_%d_%s", e.n, e.metric.label())
}

// EveryStreakOf fires each time an unbroken run of qualifying outcomes reaches N.
// The run restarts from zero after firing and after any disqualifying outcome.
// The first outcome starts a run only if it qualifies on its own.
type EveryStreakOf struct {
	counter
}

// NewEveryStreakOf creates an EveryStreakOf predicate. N must be at least 1.
func NewEveryStreakOf(n int, metric Metric) (*EveryStreakOf, error) {
	if err := checkPredicateArgs(n, metric); err != nil {
		return nil, err
	}
	return &EveryStreakOf{counter{n: n, metric: metric, step: streakCounters[metric]}}, nil
}

// Evaluate implements Predicate
func (e *EveryStreakOf) Evaluate(outcome *models.BetResult) bool {
	return e.evaluate(outcome)
}

func (e *EveryStreakOf) String() string {
	return fmt.Sprintf("EVERY_STREAK_OF_%d_%s", e.n, e.metric.label())
}

func checkPredicateArgs(n int, metric Metric) error {
	if n < 1 {
		return fmt.Errorf("%w: n must be >= 1, got %d", ErrInvalidDefinition, n)
	}
	if _, ok := everyCounters[metric]; !ok {
		return fmt.Errorf("%w: metric %q", ErrInvalidDefinition, metric)
	}
	return nil
}
