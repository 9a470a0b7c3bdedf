package testcfg

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds test-specific configuration for gateway acceptance tests.
// Tests only read chain state; they never submit weights.
type Config struct {
	GatewayURL   string        `env:"SUBTENSOR_TEST_GATEWAY_URL"`
	Netuid       uint16        `env:"SUBTENSOR_TEST_NETUID" envDefault:"18"`
	HTTPTimeout  time.Duration `env:"SUBTENSOR_TEST_HTTP_TIMEOUT" envDefault:"10s"`
	PollInterval time.Duration `env:"SUBTENSOR_TEST_POLL_INTERVAL" envDefault:"1s"`
	WaitTimeout  time.Duration `env:"SUBTENSOR_TEST_WAIT_TIMEOUT" envDefault:"30s"`
}

// parseConfig wraps env.Parse to return (Config, error) for use with env.Must
func parseConfig() (Config, error) {
	var cfg Config
	err := env.Parse(&cfg)
	return cfg, err
}

// New loads test configuration from environment variables
func New() Config {
	return env.Must(parseConfig())
}
