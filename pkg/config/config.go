// Package config loads grove-stack settings from the repository's
// .grove/config.yaml and GSTACK_* environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config carries the tunables every command shares. Zero configuration
// is the common case; all fields have working defaults.
type Config struct {
	// Trunk is the conventional integration branch used as the default
	// base and the fallback during import inference.
	Trunk string `mapstructure:"trunk"`

	// AdapterTimeout bounds each individual version-control call made
	// during staleness checks and aggregation.
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout"`

	// AggregateParallelism caps concurrent per-repository reads during
	// multi-repo aggregation.
	AggregateParallelism int `mapstructure:"aggregate_parallelism"`

	// JSON switches command output to machine-readable form.
	JSON bool `mapstructure:"json"`
}

// Load reads configuration for the given repository root. A missing
// config file is not an error.
func Load(repoRoot string) (*Config, error) {
	v := viper.New()
	v.SetDefault("trunk", "main")
	v.SetDefault("adapter_timeout", 2*time.Second)
	v.SetDefault("aggregate_parallelism", 4)
	v.SetDefault("json", false)

	v.SetEnvPrefix("GSTACK")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(repoRoot, ".grove"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.AggregateParallelism < 1 {
		cfg.AggregateParallelism = 1
	}
	return &cfg, nil
}
