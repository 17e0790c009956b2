package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml and from environment
// variables with the AVATALES_ prefix. Environment variables take precedence
// over file values, which take precedence over defaults. The loaded
// configuration is validated before being returned.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("AVATALES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is a real error.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults installs the defaults that apply when neither the config file
// nor the environment provides a value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime", "15m")
	v.SetDefault("auth.refresh_token_lifetime", "168h")
	v.SetDefault("auth.bcrypt_cost", 0) // 0 selects the bcrypt default cost
	v.SetDefault("auth.max_login_attempts", 5)
	v.SetDefault("auth.lockout_duration", "15m")
	v.SetDefault("story.model", "gemini-2.0-flash")
	v.SetDefault("story.worker_count", 2)
	v.SetDefault("story.queue_size", 64)
}
