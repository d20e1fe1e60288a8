package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInsecureSecret is returned when production runs with the development JWT secret.
var ErrInsecureSecret = errors.New("JWT_SECRET must be set in production")

const devSecret = "dev_secret_change_me"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env           string        `mapstructure:"env"`            // local, production
	Port          string        `mapstructure:"port"`           // HTTP listen port
	LogLevel      string        `mapstructure:"log_level"`      // zerolog level name
	LogFormat     string        `mapstructure:"log_format"`     // json | console
	DatabasePath  string        `mapstructure:"database_path"`  // SQLite file for results and users
	ClientOrigin  string        `mapstructure:"client_origin"`  // allowed CORS origin
	CountriesFile string        `mapstructure:"countries_file"` // optional YAML pool; empty uses the embedded one
	DailySalt     string        `mapstructure:"daily_salt"`     // HMAC salt for the daily challenge
	RedisURL      string        `mapstructure:"redis_url"`      // when set, sessions live in Redis
	SessionTTL    time.Duration `mapstructure:"session_ttl"`    // Redis expiry for idle sessions
	Auth          Auth          `mapstructure:"auth"`
}

// Auth contains token and cookie settings.
type Auth struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpiresDays int    `mapstructure:"jwt_expires_days"`
	CookieName     string `mapstructure:"cookie_name"`
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c *Config) Production() bool { return c.Env == "production" }

// Load reads configuration from config files and environment variables.
// Call godotenv.Load first if a .env file should be honoured.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("port", "5175")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("database_path", "./data/app.db")
	v.SetDefault("client_origin", "http://localhost:5173")
	v.SetDefault("countries_file", "")
	v.SetDefault("daily_salt", "local_dev_salt")
	v.SetDefault("redis_url", "")
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("auth.jwt_secret", devSecret)
	v.SetDefault("auth.jwt_expires_days", 14)
	v.SetDefault("auth.cookie_name", "flagquiz_token")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// flat env names used by the deployment scripts
	_ = v.BindEnv("env", "APP_ENV", "NODE_ENV")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_format", "LOG_FORMAT")
	_ = v.BindEnv("database_path", "DATABASE_PATH")
	_ = v.BindEnv("client_origin", "CLIENT_ORIGIN")
	_ = v.BindEnv("countries_file", "COUNTRIES_FILE")
	_ = v.BindEnv("daily_salt", "DAILY_SALT")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("session_ttl", "SESSION_TTL")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("auth.jwt_expires_days", "JWT_EXPIRES_DAYS")
	_ = v.BindEnv("auth.cookie_name", "COOKIE_NAME")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.Production() && cfg.Auth.JWTSecret == devSecret {
		return nil, ErrInsecureSecret
	}
	return &cfg, nil
}
