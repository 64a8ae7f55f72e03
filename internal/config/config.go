// Package config loads the settings of the demo programs.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/xraph/go-utils/log"
	"go.uber.org/zap/zapcore"

	"github.com/xraph/berth/news"
)

// EnvPrefix prefixes every environment variable, e.g. BERTH_VEHICLE_SCOPE.
const EnvPrefix = "BERTH"

// Config holds the demo settings. The zero environment reproduces the
// default lab behaviour.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Vehicle VehicleConfig `mapstructure:"vehicle"`
	News    NewsConfig    `mapstructure:"news"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig controls the program logger.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// VehicleConfig controls the identity scenario.
type VehicleConfig struct {
	Scope string `mapstructure:"scope" validate:"required,oneof=dependent singleton"`
}

// NewsConfig controls the observer scenario.
type NewsConfig struct {
	Subscribe bool   `mapstructure:"subscribe"`
	Headline  string `mapstructure:"headline" validate:"required"`
}

// MetricsConfig turns on container metrics, logged when the program ends.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads an optional .env file, then BERTH_* environment variables over
// the defaults, and validates the result.
func Load(envFiles ...string) (*Config, error) {
	// a missing .env is normal
	_ = godotenv.Load(envFiles...)

	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("vehicle.scope", "dependent")
	v.SetDefault("news.subscribe", true)
	v.SetDefault("news.headline", news.DefaultHeadline)
	v.SetDefault("metrics.enabled", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"log.level", "vehicle.scope", "news.subscribe", "news.headline", "metrics.enabled"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// NewLogger builds the development logger at the configured level.
func (c *Config) NewLogger() (log.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}

	return log.NewDevelopmentLoggerWithLevel(level), nil
}
