// Package config loads the process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":9090"`
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	IdentityBaseURL string        `envconfig:"IDENTITY_BASE_URL" required:"true"`
	AdminRole       string        `envconfig:"ADMIN_ROLE" default:"admin"`
	RemoteTimeout   time.Duration `envconfig:"REMOTE_TIMEOUT" default:"5s"`
	RetryInterval   time.Duration `envconfig:"RETRY_INTERVAL" default:"30s"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
