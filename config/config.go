package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Backend    BackendConfig    `yaml:"backend"`
	Auth       AuthConfig       `yaml:"auth"`
	Security   SecurityConfig   `yaml:"security"`
	Cache      CacheConfig      `yaml:"cache"`
	Lab        LabConfig        `yaml:"lab"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"` // defaults to the largest security limit
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrustedProxies  []string `yaml:"trusted_proxies"`
}

// LogConfig selects the zap configuration.
type LogConfig struct {
	Env   string `yaml:"env"`   // "production" or "development"
	Level string `yaml:"level"` // debug, info, warn, error
}

// BackendConfig points at the external REST API that owns all portal data.
type BackendConfig struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

// AuthConfig holds the JWT cookie settings.
type AuthConfig struct {
	JWTSecret    string   `yaml:"jwt_secret"`
	CookieName   string   `yaml:"cookie_name"`
	CookieSecure bool     `yaml:"cookie_secure"`
	CookieDomain string   `yaml:"cookie_domain"`
	AdminRoles   []string `yaml:"admin_roles"`
}

// SecurityConfig configures the fixed-window limiter and the content filter.
type SecurityConfig struct {
	WindowSeconds int            `yaml:"window_seconds"`
	Window        time.Duration  `yaml:"-"`
	MaxRequests   int            `yaml:"max_requests"`
	Limits        map[string]int `yaml:"limits"`
	ExtraPatterns []string       `yaml:"extra_patterns"`
	MaxBodyBytes  int64          `yaml:"max_body_bytes"`
}

// CacheConfig configures the GET response cache.
type CacheConfig struct {
	TTLSeconds    int           `yaml:"ttl_seconds"`
	TTL           time.Duration `yaml:"-"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// LabConfig holds the lab computer roster and the lookup lists shown by the reservation form.
type LabConfig struct {
	Computers    []ComputerConfig `yaml:"computers"`
	MaxRangeDays int              `yaml:"max_range_days"`
	// Timezone names the IANA location "today" is taken in for past-date checks.
	Timezone     string           `yaml:"timezone"`
	UserTypes    []string         `yaml:"user_types"`
	Purposes     []string         `yaml:"purposes"`
	Software     []string         `yaml:"software"`
}

// ComputerConfig describes one lab computer.
type ComputerConfig struct {
	Number      int    `yaml:"number"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for admin web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// Load reads the configuration from the given path, applies environment
// overrides and fills in defaults.
func Load(path string) (*Config, error) {
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

	cfg.applyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	} else if v := os.Getenv("NEXT_PUBLIC_API_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// ApplyDefaults fills every zero value that has a sensible default.
func (c *Config) ApplyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitPerSec <= 0 {
		c.Server.RateLimitPerSec = 10
	}

	if c.Log.Env == "" {
		c.Log.Env = "production"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 30
	}
	c.Backend.Timeout = time.Duration(c.Backend.TimeoutSeconds) * time.Second

	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "auth-token"
	}
	if len(c.Auth.AdminRoles) == 0 {
		c.Auth.AdminRoles = []string{"admin"}
	}

	if c.Security.WindowSeconds <= 0 {
		c.Security.WindowSeconds = 60
	}
	c.Security.Window = time.Duration(c.Security.WindowSeconds) * time.Second
	if c.Security.MaxRequests <= 0 {
		c.Security.MaxRequests = 100
	}
	// The burst bucket must not be stricter than the fixed window it fronts.
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = c.Security.MaxRequests
		for _, n := range c.Security.Limits {
			if n > c.Server.RateLimitBurst {
				c.Server.RateLimitBurst = n
			}
		}
	}
	if c.Security.MaxBodyBytes <= 0 {
		c.Security.MaxBodyBytes = 1 << 20
	}

	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 60
	}
	c.Cache.TTL = time.Duration(c.Cache.TTLSeconds) * time.Second

	if len(c.Lab.Computers) == 0 {
		c.Lab.Computers = DefaultComputers()
	}
	if c.Lab.MaxRangeDays <= 0 {
		c.Lab.MaxRangeDays = 31
	}
	if c.Lab.Timezone == "" {
		c.Lab.Timezone = "Local"
	}

	if c.Database.DSN == "" {
		c.Database.DSN = "file:portal.db"
	}

	if c.Push.TTL <= 0 {
		c.Push.TTL = 3600
	}

	if c.WorkerPool.Size <= 0 {
		c.WorkerPool.Size = 1
	}
	if c.WorkerPool.QueueSize <= 0 {
		c.WorkerPool.QueueSize = 64
	}
}

// DefaultComputers is the stock lab roster: 1-5 general purpose, 6-9 specialized.
func DefaultComputers() []ComputerConfig {
	computers := make([]ComputerConfig, 0, 9)
	for n := 1; n <= 9; n++ {
		category := "general"
		if n >= 6 {
			category = "specialized"
		}
		computers = append(computers, ComputerConfig{Number: n, Category: category})
	}
	return computers
}
