package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"wellbeing-weather-service/internal/domain"
	"wellbeing-weather-service/internal/scoring"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		TTL     string            `yaml:"ttl"`
		Catalog []domain.Question `yaml:"catalog"`
	} `yaml:"questions"`
	Risk   scoring.Thresholds `yaml:"risk"`
	Alerts struct {
		ScoreDropDelta float64 `yaml:"score_drop_delta"`
	} `yaml:"alerts"`
	Stats struct {
		WindowDays int `yaml:"window_days"`
	} `yaml:"stats"`
	// Users seeds the static directory used for scoping.
	Users []domain.User `yaml:"users"`
}

// Load reads YAML config from path, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv lets deployments (and .env files) override connection settings.
func (c *Config) applyEnv() error {
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Thresholds returns the configured risk bands, the defaults when unset.
func (c Config) Thresholds() (scoring.Thresholds, error) {
	if c.Risk == (scoring.Thresholds{}) {
		return scoring.DefaultThresholds, nil
	}
	if err := c.Risk.Validate(); err != nil {
		return scoring.Thresholds{}, err
	}
	return c.Risk, nil
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
