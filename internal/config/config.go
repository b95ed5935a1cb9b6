package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Storage struct {
		Driver string `yaml:"driver"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
		LockTTL  string `yaml:"lock_ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	Contest struct {
		Timezone  string `yaml:"timezone"`
		Scheduler bool   `yaml:"scheduler"`
		Tick      string `yaml:"tick"`
	} `yaml:"contest"`
}

// Load reads YAML config from path and fills defaults for omitted fields.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present: in-memory
// storage, text logs at info level and the scheduler enabled.
func Default() Config {
	cfg := Config{}
	cfg.Contest.Scheduler = true
	_ = cfg.normalize()
	return cfg
}

func (c *Config) normalize() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = DriverMemory
	case DriverMemory, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverPostgres && c.Postgres.URL == "" {
		return fmt.Errorf("storage driver postgres requires postgres.url")
	}
	if c.Storage.Driver == DriverMongo && c.Mongo.URI == "" {
		return fmt.Errorf("storage driver mongo requires mongo.uri")
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "exam_prep"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}

// Location resolves contest.timezone, defaulting to the host's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Contest.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Contest.Timezone)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
