package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	HTTP struct {
		Port string `yaml:"port" env:"TEST_HTTP_PORT"`
	} `yaml:"http"`
	Data struct {
		Dir     string        `yaml:"dir"`
		Workers int           `yaml:"workers"`
		Timeout time.Duration `yaml:"timeout"`
		Globs   []string      `yaml:"globs"`
	} `yaml:"data"`
	Debug bool `yaml:"debug" env:"-"`
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := "http:\n  port: \"9000\"\ndata:\n  dir: /srv/logs\n  workers: 2\n  timeout: 3s\n"
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATA_WORKERS", "8")
	t.Setenv("DATA_TIMEOUT", "250ms")
	t.Setenv("DATA_GLOBS", "*.csv, *.CSV ,")
	t.Setenv("DEBUG", "true")

	var cfg testConfig
	if err := LoadConfig(&cfg); err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Port != "9000" {
		t.Fatalf("expected yaml port, got %q", cfg.HTTP.Port)
	}
	if cfg.Data.Dir != "/srv/logs" {
		t.Fatalf("expected yaml dir, got %q", cfg.Data.Dir)
	}
	if cfg.Data.Workers != 8 {
		t.Fatalf("expected env override 8, got %d", cfg.Data.Workers)
	}
	if cfg.Data.Timeout != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.Data.Timeout)
	}
	if len(cfg.Data.Globs) != 2 || cfg.Data.Globs[1] != "*.CSV" {
		t.Fatalf("unexpected globs %v", cfg.Data.Globs)
	}
	if cfg.Debug {
		t.Fatalf("env:\"-\" field must not be read from environment")
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATA_WORKERS", "many")

	var cfg testConfig
	if err := LoadConfig(&cfg); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := LoadConfig(cfg); err == nil {
		t.Fatalf("expected error for non-pointer target")
	}
}
