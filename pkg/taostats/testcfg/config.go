package testcfg

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds test-specific configuration for ledger client acceptance tests
type Config struct {
	APIKey      string        `env:"TAOSTATS_TEST_API_KEY"`
	Nominator   string        `env:"TAOSTATS_TEST_NOMINATOR" envDefault:"5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"`
	Netuid      uint16        `env:"TAOSTATS_TEST_NETUID" envDefault:"18"`
	HTTPTimeout time.Duration `env:"TAOSTATS_TEST_HTTP_TIMEOUT" envDefault:"30s"`
	BaseURL     string        `env:"TAOSTATS_TEST_BASE_URL" envDefault:"https://api.taostats.io"`
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
