// Package config provides configuration management for the stakebot application.
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Stake    StakeConfig    `mapstructure:"stake" validate:"required"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Strategy StrategyConfig `mapstructure:"strategy" validate:"required"`
	Guard    GuardConfig    `mapstructure:"guard"`
	Paper    PaperConfig    `mapstructure:"paper"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Report   ReportConfig   `mapstructure:"report"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFile     string `mapstructure:"log_file"`
}

// StakeConfig represents the casino API connection and its credentials
type StakeConfig struct {
	APIURL                string  `mapstructure:"api_url" validate:"required,url"`
	AccessToken           string  `mapstructure:"access_token"`
	CFClearance           string  `mapstructure:"cf_clearance"`
	CFBM                  string  `mapstructure:"cf_bm"`
	CFUVID                string  `mapstructure:"cfuvid"`
	DotenvFile            string  `mapstructure:"dotenv_file"`
	UserAgent             string  `mapstructure:"user_agent"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	MaxAttempts           int     `mapstructure:"max_attempts" validate:"required,gt=0"`
	RetryWaitMinMs        int     `mapstructure:"retry_wait_min_ms" validate:"required,gt=0"`
	RetryWaitMaxMs        int     `mapstructure:"retry_wait_max_ms" validate:"required,gtefield=RetryWaitMinMs"`
	RateLimit             float64 `mapstructure:"rate_limit" validate:"gte=0"`
	Identifier            string  `mapstructure:"identifier" validate:"required"`
	RandomIdentifier      bool    `mapstructure:"random_identifier"`
	BalanceCacheTTLMs     int     `mapstructure:"balance_cache_ttl_ms" validate:"gte=0"`
}

// SecretsConfig enables the AWS Secrets Manager credential overlay
type SecretsConfig struct {
	AWSEnabled bool   `mapstructure:"aws_enabled"`
	Region     string `mapstructure:"region" validate:"required_if=AWSEnabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=AWSEnabled true"`
}

// StrategyConfig represents the wager parameters and the rule chain
type StrategyConfig struct {
	Game          string       `mapstructure:"game" validate:"required,oneof=dice limbo"`
	Currency      string       `mapstructure:"currency" validate:"required,currency"`
	BaseAmount    float64      `mapstructure:"base_amount" validate:"required,gt=0"`
	BaseChance    float64      `mapstructure:"base_chance" validate:"required,gt=0,lt=100"`
	Direction     string       `mapstructure:"direction" validate:"required,oneof=above below"`
	BetIntervalMs int          `mapstructure:"bet_interval_ms" validate:"gte=0"`
	Rules         []RuleConfig `mapstructure:"rules" validate:"dive"`
}

// RuleConfig binds a predicate definition to an action definition
type RuleConfig struct {
	When PredicateConfig `mapstructure:"when" validate:"required"`
	Then ActionConfig    `mapstructure:"then" validate:"required"`
}

// PredicateConfig describes when a rule fires
type PredicateConfig struct {
	Kind   string `mapstructure:"kind" validate:"required,oneof=every every_streak_of"`
	N      int    `mapstructure:"n" validate:"required,gte=1"`
	Metric string `mapstructure:"metric" validate:"required,oneof=bets wins losses"`
}

// ActionConfig describes what a rule does when it fires
type ActionConfig struct {
	Kind    string  `mapstructure:"kind" validate:"required,oneof=increase reset switch_condition"`
	Target  string  `mapstructure:"target" validate:"omitempty,oneof=amount chance"`
	Percent float64 `mapstructure:"percent"`
}

// GuardConfig represents the conditions that stop a run between bets. Zero disables a limit.
type GuardConfig struct {
	MaxBets          int64   `mapstructure:"max_bets" validate:"gte=0"`
	StopLoss         float64 `mapstructure:"stop_loss" validate:"gte=0"`
	TakeProfit       float64 `mapstructure:"take_profit" validate:"gte=0"`
	MaxLossStreak    int64   `mapstructure:"max_loss_streak" validate:"gte=0"`
	StopOnLowBalance bool    `mapstructure:"stop_on_low_balance"`
}

// PaperConfig represents the simulated casino used instead of the live API
type PaperConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	StartingBalance float64 `mapstructure:"starting_balance" validate:"gte=0"`
	MinBet          float64 `mapstructure:"min_bet" validate:"gte=0"`
	Seed            int64   `mapstructure:"seed"`
}

// MetricsConfig represents the monitoring server configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// ReportConfig represents the periodic statistics report
type ReportConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// RequestTimeout returns the per-attempt HTTP timeout
func (s StakeConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// RetryWaitMin returns the first backoff interval
func (s StakeConfig) RetryWaitMin() time.Duration {
	return time.Duration(s.RetryWaitMinMs) * time.Millisecond
}

// RetryWaitMax returns the backoff cap
func (s StakeConfig) RetryWaitMax() time.Duration {
	return time.Duration(s.RetryWaitMaxMs) * time.Millisecond
}

// BalanceCacheTTL returns how long a fetched balance is reused
func (s StakeConfig) BalanceCacheTTL() time.Duration {
	return time.Duration(s.BalanceCacheTTLMs) * time.Millisecond
}

// BetInterval returns the pause between two bets
func (s StrategyConfig) BetInterval() time.Duration {
	return time.Duration(s.BetIntervalMs) * time.Millisecond
}
