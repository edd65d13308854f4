// Package metrics provides centralized Prometheus metrics registry for the betting bot.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stakebot"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	BetsPlacedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_placed_total",
		Help:      "Total number of settled bets by game and outcome",
	}, []string{"game", "outcome"})
	GuardTripsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_trips_total",
		Help:      "Total number of runs stopped by the guard",
	}, []string{"reason"})
)

// Gauge metrics
var (
	CurrentBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "balance",
		Help:      "Last known available balance in the betting currency",
	})
	RunProfit = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_profit",
		Help:      "Profit of the current run",
	})
	RunWagered = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_wagered",
		Help:      "Total amount wagered in the current run",
	})
	WagerAmount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "wager_amount",
		Help:      "Amount of the next bet",
	})
	WagerChance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "wager_chance_percent",
		Help:      "Win chance of the next bet",
	})
	CurrentStreak = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "current_streak",
		Help:      "Current run of consecutive wins or losses",
	}, []string{"kind"})
)

// Histogram metrics
var (
	BetPlacementLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "bet_placement_latency_seconds",
		Help:      "Latency of bet placement including retries in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 30, 60, 120},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(GuardTripsTotal)

		// Register gauge metrics
		registry.MustRegister(CurrentBalance)
		registry.MustRegister(RunProfit)
		registry.MustRegister(RunWagered)
		registry.MustRegister(WagerAmount)
		registry.MustRegister(WagerChance)
		registry.MustRegister(CurrentStreak)

		// Register histogram metrics
		registry.MustRegister(BetPlacementLatency)

		// Register rule metrics
		registry.MustRegister(RuleFiringsTotal)

		// Register API metrics
		registry.MustRegister(APIRetriesTotal)
		registry.MustRegister(APIErrorsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordBet records a settled bet.
func RecordBet(game string, win bool) {
	outcome := "loss"
	if win {
		outcome = "win"
	}
	BetsPlacedTotal.WithLabelValues(game, outcome).Inc()
}

// RecordGuardTrip records a guard stopping the run.
func RecordGuardTrip(reason string) {
	GuardTripsTotal.WithLabelValues(reason).Inc()
}

// UpdateBalance updates the balance gauge.
func UpdateBalance(amount float64) {
	CurrentBalance.Set(amount)
}

// UpdateRunTotals updates the profit and wagered gauges.
func UpdateRunTotals(profit, wagered float64) {
	RunProfit.Set(profit)
	RunWagered.Set(wagered)
}

// UpdateWager updates the next-bet gauges.
func UpdateWager(amount, chance float64) {
	WagerAmount.Set(amount)
	WagerChance.Set(chance)
}

// UpdateStreaks updates the streak gauges.
func UpdateStreaks(wins, losses int64) {
	CurrentStreak.WithLabelValues("win").Set(float64(wins))
	CurrentStreak.WithLabelValues("loss").Set(float64(losses))
}

// RecordBetPlacementLatency records bet placement latency.
func RecordBetPlacementLatency(durationSeconds float64) {
	BetPlacementLatency.Observe(durationSeconds)
}
