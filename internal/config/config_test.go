// Package config provides configuration management for the stakebot application.
package config

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	credentialsEnvPath    = "testdata/credentials.env"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
)

func loadValid(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	return cfg
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	t.Setenv("TEST_STAKE_ACCESS_TOKEN", "expanded-token")
	cfg := loadValid(t)

	assert.Equal(t, "stakebot", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "expanded-token", cfg.Stake.AccessToken)
	assert.Equal(t, 10, cfg.Stake.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Stake.RetryWaitMin())
	assert.Equal(t, 16*time.Second, cfg.Stake.RetryWaitMax())
	assert.Equal(t, 2*time.Second, cfg.Stake.BalanceCacheTTL())
	assert.Equal(t, "dice", cfg.Strategy.Game)
	assert.InDelta(t, 0.0000101, cfg.Strategy.BaseAmount, 1e-12)

	require.Len(t, cfg.Strategy.Rules, 3)
	assert.Equal(t, "every", cfg.Strategy.Rules[0].When.Kind)
	assert.Equal(t, "reset", cfg.Strategy.Rules[0].Then.Kind)
	assert.Equal(t, 2, cfg.Strategy.Rules[1].When.N)
	assert.Equal(t, "switch_condition", cfg.Strategy.Rules[1].Then.Kind)
	assert.InDelta(t, 15.0, cfg.Strategy.Rules[2].Then.Percent, 1e-9)

	assert.Equal(t, int64(1000), cfg.Guard.MaxBets)
	assert.True(t, cfg.Paper.Enabled)
	assert.Equal(t, int64(42), cfg.Paper.Seed)
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	require.Error(t, err)
}

// TestLoadWithDefaultsMissingFile falls back to defaults
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "stakebot", cfg.App.Name)
	assert.Equal(t, "https://stake.krd/_api/graphql", cfg.Stake.APIURL)
	assert.Equal(t, 10, cfg.Stake.MaxAttempts)
	assert.Equal(t, "above", cfg.Strategy.Direction)
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("STAKEBOT_APP_NAME", "test-app")
	t.Setenv("STAKEBOT_STAKE_CFUVID", "env-uvid")

	cfg := loadValid(t)

	assert.Equal(t, "test-app", cfg.App.Name)
	assert.Equal(t, "env-uvid", cfg.Stake.CFUVID)
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg := loadValid(t)
	require.NoError(t, Validate(cfg))
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		expect string
	}{
		{
			name:   "invalid environment",
			mutate: func(cfg *Config) { cfg.App.Environment = "invalid" },
			expect: "Environment",
		},
		{
			name:   "invalid currency",
			mutate: func(cfg *Config) { cfg.Strategy.Currency = "doge" },
			expect: "Currency",
		},
		{
			name:   "chance of 100",
			mutate: func(cfg *Config) { cfg.Strategy.BaseChance = 100 },
			expect: "BaseChance",
		},
		{
			name:   "zero rule threshold",
			mutate: func(cfg *Config) { cfg.Strategy.Rules[0].When.N = 0 },
			expect: "N",
		},
		{
			name:   "unknown action",
			mutate: func(cfg *Config) { cfg.Strategy.Rules[0].Then.Kind = "double" },
			expect: "Kind",
		},
		{
			name:   "retry cap below base",
			mutate: func(cfg *Config) { cfg.Stake.RetryWaitMaxMs = 10 },
			expect: "RetryWaitMaxMs",
		},
		{
			name:   "bad cron schedule",
			mutate: func(cfg *Config) { cfg.Report.Schedule = "every now and then" },
			expect: "report.schedule",
		},
		{
			name: "paper mode in production",
			mutate: func(cfg *Config) {
				cfg.App.Environment = "production"
			},
			expect: "paper mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)
		})
	}
}

func TestLoadDotenvCredentials(t *testing.T) {
	cfg := loadValid(t)
	cfg.Stake.AccessToken = ""
	cfg.Stake.CFBM = ""
	cfg.Stake.DotenvFile = credentialsEnvPath

	require.NoError(t, LoadDotenvCredentials(cfg))

	assert.Equal(t, "file-token", cfg.Stake.AccessToken)
	assert.Equal(t, "file-bm", cfg.Stake.CFBM)
	// values from the config file are kept
	assert.Equal(t, "clearance", cfg.Stake.CFClearance)
	assert.Equal(t, "uvid", cfg.Stake.CFUVID)
}

func TestLoadDotenvCredentialsFromProcessEnv(t *testing.T) {
	t.Setenv(EnvAccessToken, "process-token")
	cfg := loadValid(t)
	cfg.Stake.AccessToken = ""

	require.NoError(t, LoadDotenvCredentials(cfg))
	assert.Equal(t, "process-token", cfg.Stake.AccessToken)
}

func TestLoadDotenvCredentialsMissingFile(t *testing.T) {
	cfg := loadValid(t)
	cfg.Stake.DotenvFile = "testdata/missing.env"

	assert.Error(t, LoadDotenvCredentials(cfg))
}

func TestSecretsOverlay(t *testing.T) {
	out := &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"stake_api_key":"aws-token","stake_cf_bm":"aws-bm"}`),
	}
	secrets, err := parseSecretData(out)
	require.NoError(t, err)

	cfg := loadValid(t)
	overlaySecretsOnConfig(cfg, secrets)

	assert.Equal(t, "aws-token", cfg.Stake.AccessToken)
	assert.Equal(t, "aws-bm", cfg.Stake.CFBM)
	assert.Equal(t, "clearance", cfg.Stake.CFClearance)
}

func TestParseSecretDataEmpty(t *testing.T) {
	_, err := parseSecretData(&secretsmanager.GetSecretValueOutput{})
	assert.ErrorIs(t, err, errNoSecretDataFound)
}

func TestLoadSecretsFromAWSDisabled(t *testing.T) {
	cfg := loadValid(t)
	require.NoError(t, LoadSecretsFromAWS(context.Background(), cfg))
}
