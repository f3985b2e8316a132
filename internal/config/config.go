package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Review     ReviewConfig     `mapstructure:"review"`
	Generation GenerationConfig `mapstructure:"generation"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// CORSAllowedOrigins lists origins permitted to call the API from a
	// browser. Empty means same-origin only.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`

	MaxOpenConns int `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is how long an issued access token stays valid.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// BCryptCost is the work factor for password hashing. Zero selects the
	// bcrypt package default.
	BCryptCost int `mapstructure:"bcrypt_cost" validate:"gte=0,lte=31"`
}

// ReviewConfig tunes the spaced repetition scheduler and session sizing.
// Zero values select the scheduler defaults.
type ReviewConfig struct {
	MinEaseFactor          float64 `mapstructure:"min_ease_factor" validate:"gte=0"`
	MaxEaseFactor          float64 `mapstructure:"max_ease_factor" validate:"gte=0"`
	InitialEaseFactor      float64 `mapstructure:"initial_ease_factor" validate:"gte=0"`
	HardIntervalMultiplier float64 `mapstructure:"hard_interval_multiplier" validate:"gte=0"`
	EasyBonusMultiplier    float64 `mapstructure:"easy_bonus_multiplier" validate:"gte=0"`
	LapseGoodMultiplier    float64 `mapstructure:"lapse_good_multiplier" validate:"gte=0"`
	AgainReviewMinutes     int     `mapstructure:"again_review_minutes" validate:"gte=0"`

	// First graded review intervals, in days, per outcome.
	FirstReviewHardIntervalDays float64 `mapstructure:"first_review_hard_interval_days" validate:"gte=0"`
	FirstReviewGoodIntervalDays float64 `mapstructure:"first_review_good_interval_days" validate:"gte=0"`
	FirstReviewEasyIntervalDays float64 `mapstructure:"first_review_easy_interval_days" validate:"gte=0"`

	// MicroSessionCards and StandardSessionCards cap the review queue for
	// the two slot types.
	MicroSessionCards    int `mapstructure:"micro_session_cards" validate:"gte=0"`
	StandardSessionCards int `mapstructure:"standard_session_cards" validate:"gte=0"`
}

// GenerationConfig contains draft card generation settings.
type GenerationConfig struct {
	// GeminiAPIKey enables the draft generator when set. An empty key
	// disables the generation endpoints.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
}
