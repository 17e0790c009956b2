package config

import "time"

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Story    StoryConfig    `mapstructure:"story"    validate:"required"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication and account-lockout settings.
type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetime        time.Duration `mapstructure:"token_lifetime"         validate:"required"`
	RefreshTokenLifetime time.Duration `mapstructure:"refresh_token_lifetime" validate:"required"`
	BcryptCost           int           `mapstructure:"bcrypt_cost"            validate:"gte=0,lte=31"`
	MaxLoginAttempts     int           `mapstructure:"max_login_attempts"     validate:"required,gte=1"`
	LockoutDuration      time.Duration `mapstructure:"lockout_duration"       validate:"required"`
}

// StoryConfig contains story-generation settings.
type StoryConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	Model        string `mapstructure:"model"        validate:"required"`
	WorkerCount  int    `mapstructure:"worker_count" validate:"required,gte=1,lte=32"`
	QueueSize    int    `mapstructure:"queue_size"   validate:"required,gte=1"`
}
