package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log      Logger   `mapstructure:"logger"`
	DB       Database `mapstructure:"database"`
	API      API      `mapstructure:"api"`
	Gemini   Gemini   `mapstructure:"gemini"`
	Analysis Analysis `mapstructure:"analysis"`
	Cache    Cache    `mapstructure:"cache"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

// Configured reports whether a database was actually set up. Without one the
// app still runs, with the analysis cache degraded to an always-miss store.
func (d Database) Configured() bool {
	return d.Host != "" && d.DBName != ""
}

type API struct {
	Port                 int `mapstructure:"port"`
	MaxRequestsPerMinute int `mapstructure:"max_requests_per_minute"`
	// Fixed budget for generation-triggering endpoints, applied per origin
	// regardless of MaxRequestsPerMinute.
	MaxGenerationsPerMinute int `mapstructure:"max_generations_per_minute"`
}

type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	BaseModel           string        `mapstructure:"base_model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxOutputTokens     int           `mapstructure:"max_output_tokens"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute"`
}

type Analysis struct {
	DemoMode       bool          `mapstructure:"demo_mode"`
	CacheTTLHours  int           `mapstructure:"cache_ttl_hours"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	BulkItemDelay  time.Duration `mapstructure:"bulk_item_delay"`
	SweepSchedule  string        `mapstructure:"sweep_schedule"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// DemoMode is active when explicitly forced or when no Gemini credential is
// present. Demo mode is a first-class operating mode, not an error path.
func (c *Config) DemoMode() bool {
	return c.Analysis.DemoMode || c.Gemini.APIKey == ""
}

func Load() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	// Short env names kept for deployment compatibility.
	_ = viper.BindEnv("analysis.demo_mode", "DEMO_MODE")
	_ = viper.BindEnv("analysis.cache_ttl_hours", "CACHE_TTL_HOURS")
	_ = viper.BindEnv("api.max_requests_per_minute", "MAX_REQUESTS_PER_MINUTE")
	_ = viper.BindEnv("gemini.api_key", "GEMINI_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.max_requests_per_minute", 60)
	viper.SetDefault("api.max_generations_per_minute", 5)

	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	viper.SetDefault("gemini.base_model", "gemini-2.0-flash")
	viper.SetDefault("gemini.timeout", "30s")
	viper.SetDefault("gemini.max_output_tokens", 2048)
	viper.SetDefault("gemini.max_request_per_minute", 10)
	viper.SetDefault("gemini.max_token_per_minute", 250000)

	viper.SetDefault("analysis.cache_ttl_hours", 24)
	viper.SetDefault("analysis.max_attempts", 3)
	viper.SetDefault("analysis.retry_base_delay", "1s")
	viper.SetDefault("analysis.bulk_item_delay", "500ms")
	viper.SetDefault("analysis.sweep_schedule", "@every 1h")

	viper.SetDefault("cache.default_expiration", "5m")
	viper.SetDefault("cache.cleanup_interval", "10m")
}
