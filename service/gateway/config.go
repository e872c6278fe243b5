package gateway

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the HTTP gateway settings.
type Config struct {
	Addr            string        `env:"GATOR_HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"GATOR_HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"GATOR_HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"GATOR_HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// NewConfigFromEnv loads gateway configuration from environment variables.
func NewConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
