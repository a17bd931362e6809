package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Auth      AuthConfig
	PriceFeed PriceFeedConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `mapstructure:"SERVER_IDLE_TIMEOUT"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"POSTGRES_HOST"`
	Port     int    `mapstructure:"POSTGRES_PORT"`
	User     string `mapstructure:"POSTGRES_USER"`
	Password string `mapstructure:"POSTGRES_PASSWORD"`
	DBName   string `mapstructure:"POSTGRES_DB"`
	SSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	MaxConns int32  `mapstructure:"POSTGRES_MAX_CONNS"`
	MinConns int32  `mapstructure:"POSTGRES_MIN_CONNS"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     int    `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	PoolSize int    `mapstructure:"REDIS_POOL_SIZE"`
}

// AuthConfig holds OTP and JWT settings.
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"AUTH_JWT_SECRET"`
	TokenTTL        time.Duration `mapstructure:"AUTH_TOKEN_TTL"`
	OTPTTL          time.Duration `mapstructure:"AUTH_OTP_TTL"`
	MaxSendPerIP    int           `mapstructure:"AUTH_MAX_SEND_PER_IP"`
	MaxSendPerPhone int           `mapstructure:"AUTH_MAX_SEND_PER_PHONE"`
	MaxVerifyTries  int           `mapstructure:"AUTH_MAX_VERIFY_TRIES"`
	RateLimitWindow time.Duration `mapstructure:"AUTH_RATE_LIMIT_WINDOW"`
}

// PriceFeedConfig holds data.gov.in mandi price feed settings
// (used by cmd/pricesync).
type PriceFeedConfig struct {
	BaseURL    string        `mapstructure:"PRICE_FEED_URL"`
	APIKey     string        `mapstructure:"PRICE_FEED_API_KEY"`
	BatchLimit int           `mapstructure:"PRICE_FEED_BATCH_LIMIT"`
	Timeout    time.Duration `mapstructure:"PRICE_FEED_TIMEOUT"`
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Addr returns the Redis address in host:port format.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerAddr returns the HTTP listen address in host:port format.
func (s *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// ── Defaults ────────────────────────────────────────
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "5s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "agrimandi")
	viper.SetDefault("POSTGRES_PASSWORD", "agrimandi_secret")
	viper.SetDefault("POSTGRES_DB", "agrimandi_db")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_MAX_CONNS", 50)
	viper.SetDefault("POSTGRES_MIN_CONNS", 10)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_POOL_SIZE", 100)

	viper.SetDefault("AUTH_JWT_SECRET", "change_me_in_production")
	viper.SetDefault("AUTH_TOKEN_TTL", "24h")
	viper.SetDefault("AUTH_OTP_TTL", "5m")
	viper.SetDefault("AUTH_MAX_SEND_PER_IP", 5)
	viper.SetDefault("AUTH_MAX_SEND_PER_PHONE", 3)
	viper.SetDefault("AUTH_MAX_VERIFY_TRIES", 5)
	viper.SetDefault("AUTH_RATE_LIMIT_WINDOW", "15m")

	viper.SetDefault("PRICE_FEED_URL", "https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070")
	viper.SetDefault("PRICE_FEED_API_KEY", "")
	viper.SetDefault("PRICE_FEED_BATCH_LIMIT", 500)
	viper.SetDefault("PRICE_FEED_TIMEOUT", "30s")

	// Try to read .env file. If it doesn't exist (e.g., inside Docker),
	// env vars injected by docker-compose env_file are used instead.
	_ = viper.ReadInConfig()

	cfg := &Config{}

	// ── Server ──────────────────────────────────────────
	cfg.Server = ServerConfig{
		Host:         viper.GetString("SERVER_HOST"),
		Port:         viper.GetInt("SERVER_PORT"),
		ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:  viper.GetDuration("SERVER_IDLE_TIMEOUT"),
	}

	// ── Postgres ────────────────────────────────────────
	cfg.Postgres = PostgresConfig{
		Host:     viper.GetString("POSTGRES_HOST"),
		Port:     viper.GetInt("POSTGRES_PORT"),
		User:     viper.GetString("POSTGRES_USER"),
		Password: viper.GetString("POSTGRES_PASSWORD"),
		DBName:   viper.GetString("POSTGRES_DB"),
		SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		MaxConns: viper.GetInt32("POSTGRES_MAX_CONNS"),
		MinConns: viper.GetInt32("POSTGRES_MIN_CONNS"),
	}

	// ── Redis ───────────────────────────────────────────
	cfg.Redis = RedisConfig{
		Host:     viper.GetString("REDIS_HOST"),
		Port:     viper.GetInt("REDIS_PORT"),
		Password: viper.GetString("REDIS_PASSWORD"),
		DB:       viper.GetInt("REDIS_DB"),
		PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
	}

	// ── Auth ────────────────────────────────────────────
	cfg.Auth = AuthConfig{
		JWTSecret:       viper.GetString("AUTH_JWT_SECRET"),
		TokenTTL:        viper.GetDuration("AUTH_TOKEN_TTL"),
		OTPTTL:          viper.GetDuration("AUTH_OTP_TTL"),
		MaxSendPerIP:    viper.GetInt("AUTH_MAX_SEND_PER_IP"),
		MaxSendPerPhone: viper.GetInt("AUTH_MAX_SEND_PER_PHONE"),
		MaxVerifyTries:  viper.GetInt("AUTH_MAX_VERIFY_TRIES"),
		RateLimitWindow: viper.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
	}

	// ── Price feed ──────────────────────────────────────
	cfg.PriceFeed = PriceFeedConfig{
		BaseURL:    viper.GetString("PRICE_FEED_URL"),
		APIKey:     viper.GetString("PRICE_FEED_API_KEY"),
		BatchLimit: viper.GetInt("PRICE_FEED_BATCH_LIMIT"),
		Timeout:    viper.GetDuration("PRICE_FEED_TIMEOUT"),
	}

	return cfg, nil
}
