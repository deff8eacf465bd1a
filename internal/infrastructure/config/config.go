package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared/valueobject"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Policy    PolicyConfig
	Billing   BillingConfig
	Scheduler SchedulerConfig
	Messaging MessagingConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite or memory
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds the Redis room-lock settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	LockTTL  time.Duration
}

// PolicyConfig holds the front-desk business thresholds
type PolicyConfig struct {
	AllowDirtyCheckIn  bool
	MinimumHourlyBlock int
	DailyCutoverHour   int
	MonthlyDayFactor   int
	DueOutSameDay      bool
	AlertHorizon       time.Duration
	UrgentThreshold    time.Duration
	WarningThreshold   time.Duration
	Currency           string
	Timezone           string // IANA name; empty uses the timestamps' own location
}

// BillingConfig holds settlement defaults
type BillingConfig struct {
	DefaultVATRate decimal.Decimal // percent
}

// SchedulerConfig holds checkout alert scheduler configuration
type SchedulerConfig struct {
	AlertEnabled  bool
	AlertInterval time.Duration
}

// MessagingConfig holds the NATS event forwarding settings
type MessagingConfig struct {
	NATSEnabled   bool
	NATSURL       string
	SubjectPrefix string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool          // Whether to enable OpenTelemetry
	CollectorEndpoint string        // OTEL Collector endpoint (e.g., "localhost:4317")
	ServiceName       string        // Service name for metrics
	Insecure          bool          // Use insecure (non-TLS) connection (development only)
	ExportInterval    time.Duration // Metric export interval
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with FRONTDESK_ prefix (e.g., FRONTDESK_DATABASE_PASSWORD)
// 2. A .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/frontdesk")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("FRONTDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans whose default is true need an explicit default so that
	// "unset" and "false" can be told apart
	v.SetDefault("policy.allow_dirty_check_in", true)
	v.SetDefault("policy.due_out_same_day", true)
	v.SetDefault("scheduler.alert_enabled", true)
	// Zero is a valid cutover hour
	v.SetDefault("policy.daily_cutover_hour", room.DefaultPolicy().DailyCutoverHour)

	vat, err := decimal.NewFromString(orDefault(v.GetString("billing.default_vat_rate"), "0"))
	if err != nil {
		return nil, fmt.Errorf("billing.default_vat_rate: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			LockTTL:  v.GetDuration("redis.lock_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Policy: PolicyConfig{
			AllowDirtyCheckIn:  v.GetBool("policy.allow_dirty_check_in"),
			MinimumHourlyBlock: v.GetInt("policy.minimum_hourly_block"),
			DailyCutoverHour:   v.GetInt("policy.daily_cutover_hour"),
			MonthlyDayFactor:   v.GetInt("policy.monthly_day_factor"),
			DueOutSameDay:      v.GetBool("policy.due_out_same_day"),
			AlertHorizon:       v.GetDuration("policy.alert_horizon"),
			UrgentThreshold:    v.GetDuration("policy.urgent_threshold"),
			WarningThreshold:   v.GetDuration("policy.warning_threshold"),
			Currency:           v.GetString("policy.currency"),
			Timezone:           v.GetString("policy.timezone"),
		},
		Billing: BillingConfig{
			DefaultVATRate: vat,
		},
		Scheduler: SchedulerConfig{
			AlertEnabled:  v.GetBool("scheduler.alert_enabled"),
			AlertInterval: v.GetDuration("scheduler.alert_interval"),
		},
		Messaging: MessagingConfig{
			NATSEnabled:   v.GetBool("messaging.nats_enabled"),
			NATSURL:       v.GetString("messaging.nats_url"),
			SubjectPrefix: v.GetString("messaging.subject_prefix"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "frontdesk"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "frontdesk"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "frontdesk.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.LockTTL == 0 {
		cfg.Redis.LockTTL = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	defaults := room.DefaultPolicy()
	if cfg.Policy.MinimumHourlyBlock == 0 {
		cfg.Policy.MinimumHourlyBlock = defaults.MinimumHourlyBlock
	}
	if cfg.Policy.MonthlyDayFactor == 0 {
		cfg.Policy.MonthlyDayFactor = defaults.MonthlyDayFactor
	}
	if cfg.Policy.AlertHorizon == 0 {
		cfg.Policy.AlertHorizon = defaults.AlertHorizon
	}
	if cfg.Policy.UrgentThreshold == 0 {
		cfg.Policy.UrgentThreshold = defaults.UrgentThreshold
	}
	if cfg.Policy.WarningThreshold == 0 {
		cfg.Policy.WarningThreshold = defaults.WarningThreshold
	}
	if cfg.Policy.Currency == "" {
		cfg.Policy.Currency = string(defaults.Currency)
	}

	if cfg.Scheduler.AlertInterval == 0 {
		cfg.Scheduler.AlertInterval = time.Minute
	}
	if cfg.Messaging.NATSURL == "" {
		cfg.Messaging.NATSURL = "nats://localhost:4222"
	}
	if cfg.Messaging.SubjectPrefix == "" {
		cfg.Messaging.SubjectPrefix = "frontdesk"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "frontdesk"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 15 * time.Second
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("database.driver must be postgres, sqlite or memory, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Database.Driver != "postgres" {
			return fmt.Errorf("database.driver must be postgres in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	if c.Billing.DefaultVATRate.IsNegative() || c.Billing.DefaultVATRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("billing.default_vat_rate must be between 0 and 100, got %s", c.Billing.DefaultVATRate)
	}
	if !c.Billing.DefaultVATRate.Equal(c.Billing.DefaultVATRate.Truncate(2)) {
		return fmt.Errorf("billing.default_vat_rate allows at most 2 decimal places, got %s", c.Billing.DefaultVATRate)
	}
	if c.Scheduler.AlertInterval < time.Second {
		return fmt.Errorf("scheduler.alert_interval must be at least 1s, got %s", c.Scheduler.AlertInterval)
	}

	if _, err := c.RoomPolicy(); err != nil {
		return err
	}

	return nil
}

// RoomPolicy converts the policy section into a room.Policy
func (c *Config) RoomPolicy() (room.Policy, error) {
	p := room.Policy{
		AllowDirtyCheckIn:  c.Policy.AllowDirtyCheckIn,
		MinimumHourlyBlock: c.Policy.MinimumHourlyBlock,
		DailyCutoverHour:   c.Policy.DailyCutoverHour,
		MonthlyDayFactor:   c.Policy.MonthlyDayFactor,
		DueOutSameDay:      c.Policy.DueOutSameDay,
		AlertHorizon:       c.Policy.AlertHorizon,
		UrgentThreshold:    c.Policy.UrgentThreshold,
		WarningThreshold:   c.Policy.WarningThreshold,
		Currency:           valueobject.Currency(strings.ToUpper(c.Policy.Currency)),
	}
	if c.Policy.Timezone != "" {
		loc, err := time.LoadLocation(c.Policy.Timezone)
		if err != nil {
			return room.Policy{}, fmt.Errorf("policy.timezone: %w", err)
		}
		p.Location = loc
	}
	if err := p.Validate(); err != nil {
		return room.Policy{}, fmt.Errorf("policy: %w", err)
	}
	return p, nil
}

// DSN returns the postgres connection URL
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
