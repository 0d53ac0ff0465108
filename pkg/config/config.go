package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Calendar  CalendarConfig
	Exports   ExportsConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the shared secret used to verify tokens from the identity service.
type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the suggestion grid and the commit queue.
type SchedulerConfig struct {
	Enabled                bool
	DayStartHour           int
	DayEndHour             int
	SlotStepMinutes        int
	DefaultSessionMinutes  int
	Timezone               string
	CommitWorkers          int
	CommitRetries          int
	CommitQueueBuffer      int
	JobTTL                 time.Duration
	DefaultCommitWeeks     int
	MaxSuggestionsReturned int
}

// Location resolves the configured timezone, falling back to UTC.
func (c SchedulerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CalendarConfig governs event caching and ICS imports.
type CalendarConfig struct {
	CacheTTL    time.Duration
	ICSMaxBytes int64
}

// ExportsConfig toggles schedule export endpoints.
type ExportsConfig struct {
	Enabled bool
}

// RateLimitConfig bounds per-client request rates on write endpoints.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:                v.GetBool("ENABLE_SCHEDULER"),
		DayStartHour:           v.GetInt("SCHEDULER_DAY_START_HOUR"),
		DayEndHour:             v.GetInt("SCHEDULER_DAY_END_HOUR"),
		SlotStepMinutes:        v.GetInt("SCHEDULER_SLOT_STEP_MINUTES"),
		DefaultSessionMinutes:  v.GetInt("SCHEDULER_DEFAULT_SESSION_MINUTES"),
		Timezone:               v.GetString("SCHEDULER_TIMEZONE"),
		CommitWorkers:          v.GetInt("SCHEDULER_COMMIT_WORKERS"),
		CommitRetries:          v.GetInt("SCHEDULER_COMMIT_RETRIES"),
		CommitQueueBuffer:      v.GetInt("SCHEDULER_COMMIT_QUEUE_BUFFER"),
		JobTTL:                 parseDuration(v.GetString("SCHEDULER_JOB_TTL"), time.Hour),
		DefaultCommitWeeks:     v.GetInt("SCHEDULER_DEFAULT_COMMIT_WEEKS"),
		MaxSuggestionsReturned: v.GetInt("SCHEDULER_MAX_SUGGESTIONS"),
	}
	if cfg.Scheduler.DayEndHour <= cfg.Scheduler.DayStartHour {
		return nil, errors.New("SCHEDULER_DAY_END_HOUR must be after SCHEDULER_DAY_START_HOUR")
	}

	maxICS := v.GetInt64("CALENDAR_ICS_MAX_BYTES")
	if maxICS <= 0 {
		maxICS = 2 * 1024 * 1024
	}
	cfg.Calendar = CalendarConfig{
		CacheTTL:    parseDuration(v.GetString("CALENDAR_CACHE_TTL"), 10*time.Minute),
		ICSMaxBytes: maxICS,
	}

	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	cfg.RateLimit = RateLimitConfig{
		Enabled: v.GetBool("ENABLE_RATE_LIMIT"),
		RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
		Burst:   v.GetInt("RATE_LIMIT_BURST"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "intervention_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SCHEDULER", true)
	v.SetDefault("SCHEDULER_DAY_START_HOUR", 7)
	v.SetDefault("SCHEDULER_DAY_END_HOUR", 17)
	v.SetDefault("SCHEDULER_SLOT_STEP_MINUTES", 15)
	v.SetDefault("SCHEDULER_DEFAULT_SESSION_MINUTES", 30)
	v.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	v.SetDefault("SCHEDULER_COMMIT_WORKERS", 1)
	v.SetDefault("SCHEDULER_COMMIT_RETRIES", 2)
	v.SetDefault("SCHEDULER_COMMIT_QUEUE_BUFFER", 64)
	v.SetDefault("SCHEDULER_JOB_TTL", "1h")
	v.SetDefault("SCHEDULER_DEFAULT_COMMIT_WEEKS", 6)
	v.SetDefault("SCHEDULER_MAX_SUGGESTIONS", 0)

	v.SetDefault("CALENDAR_CACHE_TTL", "10m")
	v.SetDefault("CALENDAR_ICS_MAX_BYTES", 2*1024*1024)

	v.SetDefault("ENABLE_EXPORTS", true)

	v.SetDefault("ENABLE_RATE_LIMIT", true)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
