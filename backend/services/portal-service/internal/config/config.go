package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	libconfig "nmsportal/backend/libs/config"
	"nmsportal/backend/libs/derive"
)

// DefaultDataDirs are tried in order when no data directory is configured.
var DefaultDataDirs = []string{"racestudio-compatible-data", "../racestudio-compatible-data"}

// User is a portal account. PasswordHash is a bcrypt hash.
type User struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"passwordHash"`
	Role         string `yaml:"role"`
}

// HTTPConfig controls the listener.
type HTTPConfig struct {
	Port string `yaml:"port" env:"PORTAL_HTTP_PORT"`
}

// DataConfig locates session files and controls derivation.
type DataConfig struct {
	Dir          string `yaml:"dir" env:"PORTAL_DATA_DIR"`
	DefaultUnits string `yaml:"defaultUnits" env:"PORTAL_DEFAULT_UNITS"`
	Workers      int    `yaml:"workers" env:"PORTAL_WORKERS"`
}

// DatabaseConfig points at the summaries database.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"PORTAL_POSTGRES_DSN"`
}

// RedisConfig configures the summary cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"PORTAL_REDIS_ADDR"`
	Password string `yaml:"password" env:"PORTAL_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"PORTAL_REDIS_DB"`
	TTL      int    `yaml:"ttlSeconds" env:"PORTAL_REDIS_TTL"`
}

// JWTConfig configures login tokens.
type JWTConfig struct {
	Secret string        `yaml:"secret" env:"PORTAL_JWT_SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"PORTAL_JWT_TTL"`
}

// ReplayConfig tunes the websocket replay stream.
type ReplayConfig struct {
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"PORTAL_REPLAY_WRITE_TIMEOUT"`
	MaxGap       time.Duration `yaml:"maxGap" env:"PORTAL_REPLAY_MAX_GAP"`
}

// Config defines portal service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Replay   ReplayConfig   `yaml:"replay"`
	Users    []User         `yaml:"users" env:"-"`
}

// Load configuration using shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8085"
	cfg.Data.DefaultUnits = string(derive.Imperial)
	cfg.Data.Workers = 4
	cfg.Redis.TTL = 3600
	cfg.JWT.TTL = 12 * time.Hour
	cfg.Replay.WriteTimeout = 10 * time.Second
	cfg.Replay.MaxGap = time.Second

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and resolves the data directory.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database dsn required")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt secret required")
	}
	if _, err := derive.ParseUnitSystem(c.Data.DefaultUnits); err != nil {
		return fmt.Errorf("config: default units: %w", err)
	}
	for i, u := range c.Users {
		if strings.TrimSpace(u.Username) == "" || strings.TrimSpace(u.PasswordHash) == "" {
			return fmt.Errorf("config: user %d needs username and passwordHash", i)
		}
	}

	dir, err := resolveDataDir(c.Data.Dir)
	if err != nil {
		return err
	}
	c.Data.Dir = dir
	return nil
}

func resolveDataDir(configured string) (string, error) {
	candidates := DefaultDataDirs
	if strings.TrimSpace(configured) != "" {
		candidates = []string{configured}
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("config: telemetry folder not found (tried %s)", strings.Join(candidates, ", "))
}

// DefaultUnits returns the configured unit system.
func (c *Config) DefaultUnits() derive.UnitSystem {
	units, err := derive.ParseUnitSystem(c.Data.DefaultUnits)
	if err != nil {
		return derive.Imperial
	}
	return units
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8085"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// SummaryTTL returns the cache ttl as duration.
func (c *Config) SummaryTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// WorkerCount bounds parallel re-derivation.
func (c *Config) WorkerCount() int {
	if c.Data.Workers <= 0 {
		return 1
	}
	return c.Data.Workers
}
