package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// FEEDSCRIBE_SERVER_PORT overrides server.port.
const envPrefix = "FEEDSCRIBE"

// Load reads configuration from an optional config.yaml in the working
// directory and from environment variables. Environment variables take
// precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment can carry
		// everything. Any other read failure is not.
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
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults for everything that has a sensible one.
// Secrets deliberately have none.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Registered empty so viper knows the keys exist; AutomaticEnv only
	// overrides keys it has seen. Validation rejects the empty values.
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_password_hash", "")
	v.SetDefault("translation.gemini_api_key", "")
	v.SetDefault("translation.openai_api_key", "")
	v.SetDefault("translation.openai_base_url", "")

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("tasks.max_workers", 5)
	v.SetDefault("tasks.max_task_history", 1000)
	v.SetDefault("tasks.restart_threshold", 200)
	v.SetDefault("tasks.max_record_age_hours", 1)

	v.SetDefault("translation.provider", "gemini")
	v.SetDefault("translation.model", "gemini-2.0-flash")
	v.SetDefault("translation.target_language", "English")
	v.SetDefault("translation.max_retries", 3)
	v.SetDefault("translation.retry_delay_seconds", 2)
	v.SetDefault("translation.max_chunk_tokens", 3000)
}
