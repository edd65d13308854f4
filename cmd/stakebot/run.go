package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stakebot/internal/bot"
	"github.com/yourusername/stakebot/internal/health"
	applogger "github.com/yourusername/stakebot/internal/logger"
	"github.com/yourusername/stakebot/internal/metrics"
	"github.com/yourusername/stakebot/internal/models"
	"github.com/yourusername/stakebot/internal/paper"
	"github.com/yourusername/stakebot/internal/scheduler"
	"github.com/yourusername/stakebot/internal/stake"
	"github.com/yourusername/stakebot/internal/strategy"
)

// casino is what the loop bets against: the live API or the simulator
type casino interface {
	bot.BetPlacer
	stake.BalanceFetcher
}

func runBot(ctx context.Context) error {
	strategyLogger := applogger.NewStrategyLogger(logger)
	betLogger := applogger.NewBetLogger(logger)
	auditLogger := applogger.NewAuditLogger(logger)
	recorder := metrics.NewRecorder()

	house, closeHouse, err := newCasino(recorder, betLogger)
	if err != nil {
		return err
	}
	defer closeHouse()

	game, err := models.ParseGame(cfg.Strategy.Game)
	if err != nil {
		return err
	}
	modifiers, err := newModifiers()
	if err != nil {
		return err
	}

	defs := cfg.Strategy.Rules
	if len(defs) == 0 {
		defs = strategy.DefaultRuleConfigs()
	}
	rules, err := strategy.BuildRuleSet(defs)
	if err != nil {
		return err
	}
	strategyLogger.LogRuleSet(rules.Strings())

	guard := bot.NewGuard(bot.GuardConfigFromConfig(cfg.Guard), logger)
	guard.RegisterTripCallback(func(reason bot.StopReason, detail string) error {
		metrics.RecordGuardTrip(string(reason))
		auditLogger.LogGuardTrip(string(reason), detail)
		return nil
	})

	reporter := scheduler.NewReporter(logger)
	observers := []bot.Observer{betLogger, strategyLogger, recorder, reporter}

	var feed *health.Feed
	if cfg.Metrics.Enabled {
		feed = health.NewFeed(logger)
		observers = append(observers, feed)
	}

	loop, err := bot.NewLoop(bot.LoopConfig{
		Game:     game,
		Interval: cfg.Strategy.BetInterval(),
	}, bot.LoopDeps{
		Placer:     house,
		Balances:   stake.NewCachedBalances(house, cfg.Stake.BalanceCacheTTL()),
		IsTerminal: stake.IsTerminal,
		Rules:      rules,
		Modifiers:  modifiers,
		Guard:      guard,
		Logger:     logger,
		Observers:  observers,
	})
	if err != nil {
		return err
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Report.Schedule != "" {
		sched := scheduler.NewScheduler(logger)
		if _, err := sched.Schedule("report", cfg.Report.Schedule, reporter.Report); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				logger.WithError(err).Error("Error during scheduler shutdown")
			}
		}()
	}

	if cfg.Metrics.Enabled {
		monitor := health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        strconv.Itoa(cfg.Metrics.Port),
			Logger:      logger,
			Casino: health.PingerFunc(func(ctx context.Context) error {
				_, err := house.GetBalances(ctx)
				return err
			}),
			Stats:   reporter,
			Stopper: guard,
			Feed:    feed,
			Metrics: metrics.Handler(),
		})
		if err := monitor.Start(ctx); err != nil {
			return err
		}
		monitor.SetReady(true)
		defer monitor.Shutdown()
	}

	auditLogger.LogRunStarted(loop.RunID(), game, *modifiers, cfg.Paper.Enabled)

	result, runErr := loop.Run(ctx)
	if runErr != nil {
		metrics.RecordAPIError(stake.ErrorLabel(runErr))
	}
	auditLogger.LogRunStopped(result.RunID, string(result.StopReason), result.Detail, result.Snapshot, runErr)
	reporter.Report()

	if runErr != nil {
		return fmt.Errorf("run %s stopped: %w", result.RunID, runErr)
	}
	return nil
}

// newCasino builds the live client or the simulator. The returned func releases it.
func newCasino(recorder *metrics.Recorder, betLogger *applogger.BetLogger) (casino, func(), error) {
	if cfg.Paper.Enabled {
		sim, err := paper.NewCasinoFromConfig(cfg, quartz.NewReal())
		if err != nil {
			return nil, nil, err
		}
		logger.WithFields(logrus.Fields{
			"starting_balance": cfg.Paper.StartingBalance,
			"seed":             cfg.Paper.Seed,
		}).Warn("Paper mode: bets are simulated locally")
		return sim, func() {}, nil
	}

	client, err := stake.NewClientFromConfig(cfg.Stake, logger)
	if err != nil {
		return nil, nil, err
	}
	client.Transport().OnRetry(betLogger.LogRetry)
	client.Transport().OnRetry(recorder.OnRetry)

	return client, func() {
		if err := client.Transport().Close(); err != nil {
			logger.WithError(err).Warn("Failed to close transport")
		}
	}, nil
}

func newModifiers() (*models.WagerModifiers, error) {
	direction, err := models.ParseDirection(cfg.Strategy.Direction)
	if err != nil {
		return nil, err
	}
	currency, err := models.ParseCurrency(cfg.Strategy.Currency)
	if err != nil {
		return nil, err
	}
	return models.NewWagerModifiers(
		decimal.NewFromFloat(cfg.Strategy.BaseAmount),
		decimal.NewFromFloat(cfg.Strategy.BaseChance),
		direction,
		currency,
	)
}
