package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL         string `mapstructure:"url" validate:"required,url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig configures the key-value cache backing scan results and
// notification records.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr" validate:"required,hostname_port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db" validate:"gte=0"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"gte=0"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"gte=0"`
}

// AuthConfig contains the secret used to validate access tokens issued by
// the CRUD service.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// SMTPConfig configures outgoing email. An empty Host disables email.
type SMTPConfig struct {
	Host     string `mapstructure:"host" validate:"omitempty,hostname|ip"`
	Port     int    `mapstructure:"port" validate:"omitempty,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Enabled reports whether email delivery is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// NATSConfig configures the optional notification mirror. An empty URL
// disables it.
type NATSConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// SchedulerConfig holds the job schedules and the time windows of the scans
// and the dedup policy.
type SchedulerConfig struct {
	ReminderSchedule  string `mapstructure:"reminder_schedule" validate:"required"`
	OverdueSchedule   string `mapstructure:"overdue_schedule" validate:"required"`
	CleanupSchedule   string `mapstructure:"cleanup_schedule" validate:"required"`
	KeepAliveSchedule string `mapstructure:"keepalive_schedule" validate:"required"`
	KeepAliveURL      string `mapstructure:"keepalive_url" validate:"omitempty,url"`

	ReminderHorizon  time.Duration `mapstructure:"reminder_horizon" validate:"gt=0"`
	ReminderCooldown time.Duration `mapstructure:"reminder_cooldown" validate:"gt=0"`
	OverdueCooldown  time.Duration `mapstructure:"overdue_cooldown" validate:"gt=0"`
	ScanTTL          time.Duration `mapstructure:"scan_ttl" validate:"gte=1s"`
	NotificationTTL  time.Duration `mapstructure:"notification_ttl" validate:"gte=1s"`
	StaleAfter       time.Duration `mapstructure:"stale_after" validate:"gt=0"`

	// DeliveryWorkers bounds concurrent per-recipient deliveries in one tick.
	DeliveryWorkers int `mapstructure:"delivery_workers" validate:"gte=1,lte=64"`
	// DeliveryTimeout bounds one recipient's delivery. Zero disables it.
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout" validate:"gte=0"`

	// Timezone is used to render due dates in emails.
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
}
