// Package main provides the entry point for the wager bot.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stakebot/internal/config"
	applogger "github.com/yourusername/stakebot/internal/logger"
	"github.com/yourusername/stakebot/internal/stake"
	"github.com/yourusername/stakebot/internal/strategy"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	paperMode  bool
	cfg        *config.Config
	logger     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	runCmd.Flags().BoolVar(&paperMode, "paper", false, "Bet against the local simulator instead of the live API")
}

var rootCmd = &cobra.Command{
	Use:           "stakebot",
	Short:         "Rule-driven wager bot for dice and limbo",
	Long:          `Places a continuous series of dice or limbo bets, adjusting the wager after every outcome according to a configured rule chain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start betting until interrupted or a stop condition is met",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Print the account balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printBalances(cmd.Context())
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the configured rule chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRules()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stakebot %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	rootCmd.AddCommand(runCmd, balancesCmd, rulesCmd, versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if paperMode {
		cfg.Paper.Enabled = true
	}

	if err := config.LoadDotenvCredentials(cfg); err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger = applogger.NewLoggerWithOptions(applogger.Options{
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
		JSON:  cfg.IsProduction(),
	})
	return nil
}

func printBalances(ctx context.Context) error {
	client, err := stake.NewClientFromConfig(cfg.Stake, logger)
	if err != nil {
		return err
	}
	defer client.Transport().Close()

	balances, err := client.GetBalances(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch balances: %w", err)
	}

	for _, b := range balances {
		fmt.Fprintf(os.Stdout, "%-6s available %s  vault %s\n",
			strings.ToUpper(string(b.Available.Currency)), b.Available.Amount.String(), b.Vault.Amount.String())
	}
	return nil
}

func printRules() error {
	defs := cfg.Strategy.Rules
	if len(defs) == 0 {
		defs = strategy.DefaultRuleConfigs()
	}
	rules, err := strategy.BuildRuleSet(defs)
	if err != nil {
		return err
	}

	for i, rule := range rules.Strings() {
		fmt.Fprintf(os.Stdout, "%d. %s\n", i+1, rule)
	}
	return nil
}
