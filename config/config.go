package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Env        string           `yaml:"env"`
	Server     ServerConfig     `yaml:"server"`
	Feed       FeedConfig       `yaml:"feed"`
	Liveness   LivenessConfig   `yaml:"liveness"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Maps       MapsConfig       `yaml:"maps"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for bed alert push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are present.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// FeedConfig holds the upstream hospital feed configuration.
type FeedConfig struct {
	Enabled                bool          `yaml:"enabled"`
	URL                    string        `yaml:"url"`
	HTTPProxy              string        `yaml:"http_proxy"`
	TimeoutSeconds         int           `yaml:"timeout_seconds"`
	Timeout                time.Duration `yaml:"-"`
	RefreshIntervalSeconds int           `yaml:"refresh_interval_seconds"`
	RefreshInterval        time.Duration `yaml:"-"`
}

// LivenessConfig controls the periodic ER availability mutation.
type LivenessConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
}

// AssistantConfig controls the recommendation endpoint.
type AssistantConfig struct {
	ThinkingDelayMillis int           `yaml:"thinking_delay_ms"`
	ThinkingDelay       time.Duration `yaml:"-"`
}

// MapsConfig holds the mapping/geocoding provider settings and the default
// reference location used when a request carries none.
type MapsConfig struct {
	APIKey         string  `yaml:"api_key"`
	GeocodeURL     string  `yaml:"geocode_url"`
	DefaultLat     float64 `yaml:"default_lat"`
	DefaultLng     float64 `yaml:"default_lng"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path. Values from the
// environment (or a .env file next to the binary) override secrets in the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GOOGLE_MAPS_API_KEY"); v != "" {
		cfg.Maps.APIKey = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("VAPID_PUBLIC_KEY"); v != "" {
		cfg.Push.PublicKey = v
	}
	if v := os.Getenv("VAPID_PRIVATE_KEY"); v != "" {
		cfg.Push.PrivateKey = v
	}
	if v := os.Getenv("FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds < 0 {
		cfg.Server.CacheTTLSeconds = 0
	}

	if cfg.Feed.TimeoutSeconds <= 0 {
		cfg.Feed.TimeoutSeconds = 10
	}
	cfg.Feed.Timeout = time.Duration(cfg.Feed.TimeoutSeconds) * time.Second
	if cfg.Feed.RefreshIntervalSeconds < 0 {
		cfg.Feed.RefreshIntervalSeconds = 0
	}
	cfg.Feed.RefreshInterval = time.Duration(cfg.Feed.RefreshIntervalSeconds) * time.Second

	if cfg.Liveness.IntervalSeconds <= 0 {
		cfg.Liveness.IntervalSeconds = 30
	}
	cfg.Liveness.Interval = time.Duration(cfg.Liveness.IntervalSeconds) * time.Second

	if cfg.Assistant.ThinkingDelayMillis < 0 {
		cfg.Assistant.ThinkingDelayMillis = 0
	}
	cfg.Assistant.ThinkingDelay = time.Duration(cfg.Assistant.ThinkingDelayMillis) * time.Millisecond

	if cfg.Maps.GeocodeURL == "" {
		cfg.Maps.GeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	}
	if cfg.Maps.DefaultLat == 0 && cfg.Maps.DefaultLng == 0 {
		// San Francisco city centre
		cfg.Maps.DefaultLat = 37.7749
		cfg.Maps.DefaultLng = -122.4194
	}
	if cfg.Maps.TimeoutSeconds <= 0 {
		cfg.Maps.TimeoutSeconds = 10
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:bedfinder?mode=memory&cache=shared"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Warn().Msg("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
