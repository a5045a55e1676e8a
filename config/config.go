// Package config contains the configuration of the settlement engine and its tools.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/spacemeshos/go-entrypoint/entrypoint"
)

const defaultConfigFileName = "./config.toml"

// Config defines the top level configuration.
type Config struct {
	BaseConfig `mapstructure:"main"`
	Logging    LoggerConfig      `mapstructure:"logging"`
	Engine     entrypoint.Config `mapstructure:"engine"`
	Genesis    GenesisConfig     `mapstructure:"genesis"`
}

// BaseConfig defines the options shared by the tools.
type BaseConfig struct {
	// Database is the path of the sqlite state.
	Database string `mapstructure:"database"`
	// Preset is applied before the config file.
	Preset string `mapstructure:"preset"`

	CollectMetrics bool `mapstructure:"metrics"`
	MetricsPort    int  `mapstructure:"metrics-port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseConfig: defaultBaseConfig(),
		Logging:    defaultLoggingConfig(),
		Engine:     entrypoint.DefaultConfig(),
	}
}

func defaultBaseConfig() BaseConfig {
	return BaseConfig{
		Database:    "entrypoint.sql",
		MetricsPort: 1010,
	}
}

// LoadConfig reads the config file into the viper instance.
func LoadConfig(fileLocation string, vip *viper.Viper) error {
	if fileLocation == "" {
		fileLocation = defaultConfigFileName
	}
	vip.SetConfigFile(fileLocation)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %w", err)
	}
	return nil
}

// Decode unmarshals values loaded into vip over cfg. Durations are parsed from strings,
// addresses and bytes from hex.
func Decode(vip *viper.Viper, cfg *Config) error {
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(hook),
		WithIgnoreUntagged(),
		WithErrorUnused(),
	}
	if err := vip.Unmarshal(cfg, opts...); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// WithIgnoreUntagged skips fields without mapstructure tag.
func WithIgnoreUntagged() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.IgnoreUntaggedFields = true
	}
}

// WithErrorUnused fails on keys that don't match any field.
func WithErrorUnused() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	}
}
