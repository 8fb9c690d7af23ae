// Package config loads the CLI's run-time defaults: the strict/priority/
// usage_limit values applied to a YAML block definition when it omits
// them, read through viper so they can come from a config file or the
// environment, with the usual precedence.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// RunConfig holds the defaults the CLI applies to every parse run.
type RunConfig struct {
	DefaultPriority   int  `mapstructure:"default_priority"`
	DefaultUsageLimit int  `mapstructure:"default_usage_limit"`
	DefaultStrict     bool `mapstructure:"default_strict"`
}

// Default returns the built-in RunConfig used when no config file is found.
func Default() RunConfig {
	return RunConfig{
		DefaultPriority:   1,
		DefaultUsageLimit: 0,
		DefaultStrict:     false,
	}
}

// Load reads RunConfig from path (if non-empty) and the LINEBLOCK_-prefixed
// environment, falling back to Default for anything unset.
func Load(path string) (RunConfig, error) {
	v := viper.New()
	cfg := Default()

	v.SetDefault("default_priority", cfg.DefaultPriority)
	v.SetDefault("default_usage_limit", cfg.DefaultUsageLimit)
	v.SetDefault("default_strict", cfg.DefaultStrict)

	v.SetEnvPrefix("LINEBLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
