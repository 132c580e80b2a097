package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds the service settings, loaded from environment variables with
// an optional .env file for local development.
type Config struct {
	ServerPort               string        `mapstructure:"SERVER_PORT"`
	SignerKey                string        `mapstructure:"SIGNER_KEY"`
	TokenIssuer              string        `mapstructure:"TOKEN_ISSUER"`
	TokenValidDuration       time.Duration `mapstructure:"TOKEN_VALID_DURATION"`
	TokenRefreshableDuration time.Duration `mapstructure:"TOKEN_REFRESHABLE_DURATION"`
	DatabaseURL              string        `mapstructure:"DATABASE_URL"`
	RedisURL                 string        `mapstructure:"REDIS_URL"`
	IndexerBaseURL           string        `mapstructure:"INDEXER_BASE_URL"`
	IndexerProjectID         string        `mapstructure:"INDEXER_PROJECT_ID"`
	PaymentBaseUnit          string        `mapstructure:"PAYMENT_BASE_UNIT"`
}

// Load reads configuration from the environment. path points at the directory
// holding the optional .env file.
func Load(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("TOKEN_ISSUER", "chaincampus")
	viper.SetDefault("TOKEN_VALID_DURATION", "1h")
	viper.SetDefault("TOKEN_REFRESHABLE_DURATION", "336h")
	viper.SetDefault("INDEXER_BASE_URL", "https://cardano-preprod.blockfrost.io/api/v0")
	viper.SetDefault("PAYMENT_BASE_UNIT", "lovelace")

	for _, key := range []string{
		"SERVER_PORT", "SIGNER_KEY", "TOKEN_ISSUER",
		"TOKEN_VALID_DURATION", "TOKEN_REFRESHABLE_DURATION",
		"DATABASE_URL", "REDIS_URL",
		"INDEXER_BASE_URL", "INDEXER_PROJECT_ID", "PAYMENT_BASE_UNIT",
	} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.SignerKey == "" {
		return Config{}, errors.New("SIGNER_KEY is required")
	}
	if cfg.TokenRefreshableDuration < cfg.TokenValidDuration {
		return Config{}, errors.New("TOKEN_REFRESHABLE_DURATION must not be shorter than TOKEN_VALID_DURATION")
	}
	return cfg, nil
}
