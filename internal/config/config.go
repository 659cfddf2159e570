package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	HTTP    HTTPConfig    `yaml:"http"`
	DB      DBConfig      `yaml:"database"`
	Redis   RedisConfig   `yaml:"redis"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
}

type HTTPConfig struct {
	Port string `yaml:"port"`
}

type DBConfig struct {
	DSN string `yaml:"dsn"`
	// QueryTimeout bounds every repository call; an unset value falls
	// back to 10s.
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"` // json | console
	Output   string `yaml:"output"` // stdout | stderr | file
	FilePath string `yaml:"file_path"`
}

// Load reads CONFIG_FILE (YAML) if present, then lets environment
// variables override individual fields. A missing .env file is fine.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		App:     AppConfig{Name: "craftconnect", Environment: "development"},
		HTTP:    HTTPConfig{Port: "8080"},
		DB:      DBConfig{DSN: "craftconnect.db", QueryTimeout: 10 * time.Second},
		Redis:   RedisConfig{Address: "localhost:6379"},
		Auth:    AuthConfig{JWTSecret: "dev-secret-change-me", TokenTTL: 24 * time.Hour},
		Logging: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	overrideString(&cfg.HTTP.Port, "PORT")
	overrideString(&cfg.DB.DSN, "DB_DSN")
	overrideDuration(&cfg.DB.QueryTimeout, "DB_QUERY_TIMEOUT")
	overrideBool(&cfg.Redis.Enabled, "REDIS_ENABLED")
	overrideString(&cfg.Redis.Address, "REDIS_ADDR")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")
	overrideString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	overrideDuration(&cfg.Auth.TokenTTL, "TOKEN_TTL")
	overrideString(&cfg.Logging.Level, "LOG_LEVEL")
	overrideString(&cfg.Logging.Format, "LOG_FORMAT")
	overrideString(&cfg.Logging.Output, "LOG_OUTPUT")
	overrideString(&cfg.Logging.FilePath, "LOG_FILE")

	if cfg.DB.QueryTimeout <= 0 {
		cfg.DB.QueryTimeout = 10 * time.Second
	}
	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func overrideDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
