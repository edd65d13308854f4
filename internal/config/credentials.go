package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Variable names written by the browser cookie export tooling
const (
	EnvAccessToken = "STAKE_API_KEY"
	EnvCFClearance = "STAKE_CF_CLEARANCE"
	EnvCFBM        = "STAKE_CF_BM"
	EnvCFUVID      = "STAKE_CFUVID"
)

// LoadDotenvCredentials fills credentials that are still empty, first from the
// configured .env file and then from process environment variables of the same names.
// Values already set in the config file or STAKEBOT_STAKE_* variables win.
func LoadDotenvCredentials(cfg *Config) error {
	values := map[string]string{}

	if cfg.Stake.DotenvFile != "" {
		fileValues, err := godotenv.Read(cfg.Stake.DotenvFile)
		if err != nil {
			return fmt.Errorf("failed to read dotenv file %s: %w", cfg.Stake.DotenvFile, err)
		}
		values = fileValues
	}

	lookup := func(key string) string {
		if v := values[key]; v != "" {
			return v
		}
		return os.Getenv(key)
	}

	fill(&cfg.Stake.AccessToken, lookup(EnvAccessToken))
	fill(&cfg.Stake.CFClearance, lookup(EnvCFClearance))
	fill(&cfg.Stake.CFBM, lookup(EnvCFBM))
	fill(&cfg.Stake.CFUVID, lookup(EnvCFUVID))

	return nil
}

func fill(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}
