package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files and use
// the HOMEROOM_ prefix with underscores for nesting, e.g. HOMEROOM_SERVER_PORT.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars carry the settings.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("HOMEROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys to Unmarshal;
	// binding each key explicitly makes them visible.
	for _, key := range configKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env var for %q: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("generation.model_name", "gemini-2.0-flash")
}

func configKeys() []string {
	return []string{
		"server.port",
		"server.log_level",
		"server.cors_allowed_origins",
		"database.url",
		"database.max_open_conns",
		"database.max_idle_conns",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"auth.bcrypt_cost",
		"review.min_ease_factor",
		"review.max_ease_factor",
		"review.initial_ease_factor",
		"review.first_review_hard_interval_days",
		"review.first_review_good_interval_days",
		"review.first_review_easy_interval_days",
		"review.hard_interval_multiplier",
		"review.easy_bonus_multiplier",
		"review.lapse_good_multiplier",
		"review.again_review_minutes",
		"review.micro_session_cards",
		"review.standard_session_cards",
		"generation.gemini_api_key",
		"generation.model_name",
	}
}
