// Package config loads client configuration from a yaml file and environment.
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// APIConfig selects the backend endpoint and request limits.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PollConfig controls the job status polling loop.
type PollConfig struct {
	Interval time.Duration
}

// AppConfig is the root configuration for the client.
type AppConfig struct {
	Environment string
	API         APIConfig
	Poll        PollConfig
}

// Load reads config.yaml (if present) and SOLIDGEN_* environment variables,
// with defaults suitable for local development.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("SOLIDGEN")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "production")

	v.SetDefault("api.baseurl", "http://localhost:8080")
	v.SetDefault("api.timeout", "30s")

	v.SetDefault("poll.interval", "2500ms")
}
