// Package config provides configuration management for the stakebot application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "STAKEBOT"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing config file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix(envPrefix)

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stakebot")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")

	v.SetDefault("stake.api_url", "https://stake.krd/_api/graphql")
	// Credentials default to empty so STAKEBOT_STAKE_* environment variables bind
	v.SetDefault("stake.access_token", "")
	v.SetDefault("stake.cf_clearance", "")
	v.SetDefault("stake.cf_bm", "")
	v.SetDefault("stake.cfuvid", "")
	v.SetDefault("stake.dotenv_file", "")
	v.SetDefault("stake.user_agent", "")
	v.SetDefault("stake.request_timeout_seconds", 30)
	v.SetDefault("stake.max_attempts", 10)
	v.SetDefault("stake.retry_wait_min_ms", 1000)
	v.SetDefault("stake.retry_wait_max_ms", 16000)
	v.SetDefault("stake.rate_limit", 0)
	v.SetDefault("stake.identifier", "PeLCm-dvHjrDsj-CeIKCk")
	v.SetDefault("stake.random_identifier", false)
	v.SetDefault("stake.balance_cache_ttl_ms", 0)

	v.SetDefault("secrets.aws_enabled", false)
	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.secret_name", "")

	v.SetDefault("strategy.game", "dice")
	v.SetDefault("strategy.currency", "usdt")
	v.SetDefault("strategy.base_chance", 49.5)
	v.SetDefault("strategy.direction", "above")
	v.SetDefault("strategy.bet_interval_ms", 0)

	v.SetDefault("paper.enabled", false)
	v.SetDefault("paper.starting_balance", 1)
	v.SetDefault("paper.min_bet", 0)
	v.SetDefault("paper.seed", 0)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("report.schedule", "")
}
