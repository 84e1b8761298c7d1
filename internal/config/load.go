package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// NOTIFIER_REDIS_ADDR for redis.addr.
const EnvPrefix = "NOTIFIER"

// defaults lists every known key. Keys without a sensible default are
// registered with a zero value so that AutomaticEnv can populate them
// during Unmarshal.
var defaults = map[string]any{
	"server.port":             8080,
	"server.log_level":        "info",
	"server.shutdown_timeout": 15 * time.Second,

	"database.url":          "",
	"database.auto_migrate": true,

	"redis.addr":         "127.0.0.1:6379",
	"redis.password":     "",
	"redis.db":           0,
	"redis.max_idle":     8,
	"redis.idle_timeout": 240 * time.Second,
	"redis.dial_timeout": 5 * time.Second,

	"auth.jwt_secret": "",

	"smtp.host":     "",
	"smtp.port":     587,
	"smtp.username": "",
	"smtp.password": "",
	"smtp.from":     `"Todo App" <no-reply@todo.local>`,

	"nats.url": "",

	"scheduler.reminder_schedule":  "*/10 * * * *",
	"scheduler.overdue_schedule":   "*/30 * * * *",
	"scheduler.cleanup_schedule":   "0 * * * *",
	"scheduler.keepalive_schedule": "*/10 * * * *",
	"scheduler.keepalive_url":      "",
	"scheduler.reminder_horizon":   30 * time.Minute,
	"scheduler.reminder_cooldown":  25 * time.Minute,
	"scheduler.overdue_cooldown":   60 * time.Minute,
	"scheduler.scan_ttl":           5 * time.Minute,
	"scheduler.notification_ttl":   2 * time.Hour,
	"scheduler.stale_after":        2 * time.Hour,
	"scheduler.delivery_workers":   1,
	"scheduler.delivery_timeout":   30 * time.Second,
	"scheduler.timezone":           "UTC",
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate runs struct validation on cfg.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
