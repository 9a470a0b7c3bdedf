package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/screwyprof/unstaker/pkg/taostats"
	"github.com/screwyprof/unstaker/pkg/wallet"
)

var (
	ErrMissingAPIKey       = errors.New("taostats api key is required")
	ErrMissingSubtensorURL = errors.New("subtensor gateway url is required")
	ErrInvalidConcurrency  = errors.New("scoring concurrency must be positive")
	ErrInvalidPollInterval = errors.New("block poll interval must be positive")
)

// Config holds all configuration loaded from environment variables
type Config struct {
	Netuid             uint16        `env:"VALIDATOR_NETUID" envDefault:"18"`
	TaostatsAPIKey     string        `env:"VALIDATOR_TAOSTATS_API_KEY"`
	TaostatsAPIURL     string        `env:"VALIDATOR_TAOSTATS_API_URL"`     // empty uses taostats.DefaultBaseURL
	Tempo              uint64        `env:"VALIDATOR_TEMPO" envDefault:"0"` // 0 uses the chain tempo
	SubtensorURL       string        `env:"VALIDATOR_SUBTENSOR_URL" envDefault:"http://localhost:3000"`
	WalletPath         string        `env:"VALIDATOR_WALLET_PATH"` // empty uses wallet.DefaultPath
	WalletName         string        `env:"VALIDATOR_WALLET_NAME" envDefault:"default"`
	WalletHotkey       string        `env:"VALIDATOR_WALLET_HOTKEY" envDefault:"default"`
	HttpClientTimeout  time.Duration `env:"VALIDATOR_HTTP_CLIENT_TIMEOUT" envDefault:"30s"`
	BlockPollInterval  time.Duration `env:"VALIDATOR_BLOCK_POLL_INTERVAL" envDefault:"2s"`
	FallbackDelay      time.Duration `env:"VALIDATOR_FALLBACK_DELAY" envDefault:"1s"`
	ScoringConcurrency int           `env:"VALIDATOR_SCORING_CONCURRENCY" envDefault:"4"`
	StatusAddr         string        `env:"VALIDATOR_STATUS_ADDR" envDefault:"localhost:8080"` // empty disables the status API
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogHumanFriendly   bool          `env:"LOG_HUMAN_FRIENDLY" envDefault:"false"`
}

// New loads all configuration from environment variables.
// Values are not validated; flags may still override them.
func New() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.TaostatsAPIURL == "" {
		cfg.TaostatsAPIURL = taostats.DefaultBaseURL
	}
	if cfg.WalletPath == "" {
		cfg.WalletPath = wallet.DefaultPath
	}
	return cfg, nil
}

// Validate reports the first setting the validator cannot start with
func (c Config) Validate() error {
	switch {
	case c.TaostatsAPIKey == "":
		return ErrMissingAPIKey
	case c.SubtensorURL == "":
		return ErrMissingSubtensorURL
	case c.ScoringConcurrency < 1:
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.ScoringConcurrency)
	case c.BlockPollInterval <= 0:
		return fmt.Errorf("%w: %s", ErrInvalidPollInterval, c.BlockPollInterval)
	}
	return nil
}
