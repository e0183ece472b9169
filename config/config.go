package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Port             string   `mapstructure:"PORT"`
	Env              string   `mapstructure:"ENV"`
	LogLevel         string   `mapstructure:"LOG_LEVEL"`
	DBURL            string   `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns   int      `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns   int      `mapstructure:"DB_MAX_IDLE_CONNS"`
	RedisAddress     string   `mapstructure:"REDIS_URL"`
	SymmetricKey     string   `mapstructure:"SYMMETRIC_KEY"`
	AdminEmail       string   `mapstructure:"ADMIN_EMAIL"`
	AdminPassword    string   `mapstructure:"ADMIN_PASSWORD"`
	AMQPURL          string   `mapstructure:"AMQP_URL"`
	VisitEventsQueue string   `mapstructure:"VISIT_EVENTS_QUEUE"`
	SMTPHost         string   `mapstructure:"SMTP_HOST"`
	SMTPPort         int      `mapstructure:"SMTP_PORT"`
	SMTPUser         string   `mapstructure:"SMTP_USER"`
	SMTPPass         string   `mapstructure:"SMTP_PASS"`
	CORSOrigins      []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS     float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int      `mapstructure:"RATE_LIMIT_BURST"`
	StatsRefreshCron string   `mapstructure:"STATS_REFRESH_CRON"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"REDIS_URL", "SYMMETRIC_KEY", "ADMIN_EMAIL", "ADMIN_PASSWORD", "AMQP_URL",
	"VISIT_EVENTS_QUEUE", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "STATS_REFRESH_CRON",
}

// Load reads the configuration from the environment, falling back to an optional .env file.
func Load() (*AppConfig, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is skipped,
// a malformed one is an error.
func LoadFile(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8930")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_OPEN_CONNS", 40)
	v.SetDefault("DB_MAX_IDLE_CONNS", 20)
	v.SetDefault("ADMIN_EMAIL", "admin@hospital.iq")
	v.SetDefault("ADMIN_PASSWORD", "Admin@12345")
	v.SetDefault("VISIT_EVENTS_QUEUE", "visit_events")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 15)
	v.SetDefault("RATE_LIMIT_BURST", 30)
	v.SetDefault("STATS_REFRESH_CRON", "@every 5m")

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitOrigins(v.GetString("CORS_ORIGINS"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func (c *AppConfig) validate() error {
	if c.DBURL == "" {
		return errors.New("missing DATABASE_URL environment variable")
	}
	if c.RedisAddress == "" {
		return errors.New("missing REDIS_URL environment variable")
	}
	if len(c.SymmetricKey) != 32 {
		return fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long, got %d", len(c.SymmetricKey))
	}
	return nil
}

// IsDev reports whether the service runs in development mode.
func (c *AppConfig) IsDev() bool {
	return c.Env == "development"
}

// Addr returns the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return ":" + c.Port
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
