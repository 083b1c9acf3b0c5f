package server

import (
	"fmt"
	"time"

	"github.com/chatterspace/mediahub/internal/server/auth"
	"github.com/chatterspace/mediahub/internal/server/upload"
)

const (
	DefaultAddr      = "0.0.0.0:8080"
	DefaultDBPath    = "./data/mediahub.db"
	DefaultRateLimit = "500-M"
)

type HTTPConfig struct {
	Addr     string `mapstructure:"addr"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

type SweeperConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	SessionMaxAge time.Duration `mapstructure:"session_max_age"`
}

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Auth      auth.Config     `mapstructure:"auth"`
	Storage   upload.S3Config `mapstructure:"storage"`
	Sweeper   SweeperConfig   `mapstructure:"sweeper"`
	DBPath    string          `mapstructure:"db_path"`
	RateLimit string          `mapstructure:"rate_limit"`
}

func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultAddr
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.RateLimit == "" {
		c.RateLimit = DefaultRateLimit
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	return nil
}
