package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "nmsportal/backend/libs/config"
)

// FieldMapping names a line-protocol field and the session channel it is read from.
type FieldMapping struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
}

// DataConfig locates the session files.
type DataConfig struct {
	Dir     string `yaml:"dir" env:"UPLOADER_DATA_DIR"`
	Pattern string `yaml:"pattern" env:"UPLOADER_PATTERN"`
	Workers int    `yaml:"workers" env:"UPLOADER_WORKERS"`
}

// EndpointConfig points at the write endpoint of the time-series database.
type EndpointConfig struct {
	URL     string        `yaml:"url" env:"GRAFANA_URL"`
	User    string        `yaml:"user" env:"GRAFANA_USER"`
	Token   string        `yaml:"token" env:"GRAFANA_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"UPLOADER_HTTP_TIMEOUT"`
}

// PointConfig shapes each uploaded line.
type PointConfig struct {
	Measurement string            `yaml:"measurement" env:"UPLOADER_MEASUREMENT"`
	Tags        map[string]string `yaml:"tags" env:"-"`
	Fields      []FieldMapping    `yaml:"fields" env:"-"`
}

// Config defines uploader configuration.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Endpoint EndpointConfig `yaml:"endpoint"`
	Point    PointConfig    `yaml:"point"`
}

// DefaultFields are uploaded when no field mapping is configured.
func DefaultFields() []FieldMapping {
	return []FieldMapping{
		{Name: "gps_speed", Column: "GPS Speed"},
		{Name: "rpm", Column: "RPM"},
		{Name: "voltage", Column: "External Voltage"},
	}
}

// Load configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.Data.Dir = "racestudio-compatible-data"
	cfg.Data.Pattern = "*.csv"
	cfg.Data.Workers = 4
	cfg.Endpoint.Timeout = 30 * time.Second
	cfg.Point.Measurement = "fsae_telemetry"

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills collections a YAML file left unset.
func (c *Config) applyDefaults() {
	if c.Point.Tags == nil {
		c.Point.Tags = map[string]string{"vehicle": "BillieJean"}
	}
	if len(c.Point.Fields) == 0 {
		c.Point.Fields = DefaultFields()
	}
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint.URL) == "" {
		return errors.New("config: endpoint url required")
	}
	if strings.TrimSpace(c.Point.Measurement) == "" {
		return errors.New("config: measurement required")
	}
	if len(c.Point.Fields) == 0 {
		return errors.New("config: at least one field mapping required")
	}
	seen := make(map[string]bool, len(c.Point.Fields))
	for i, f := range c.Point.Fields {
		if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Column) == "" {
			return fmt.Errorf("config: field %d needs name and column", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("config: duplicate field %q", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// HTTPTimeout returns the request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	if c.Endpoint.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Endpoint.Timeout
}

// WorkerCount bounds parallel uploads.
func (c *Config) WorkerCount() int {
	if c.Data.Workers <= 0 {
		return 1
	}
	return c.Data.Workers
}
