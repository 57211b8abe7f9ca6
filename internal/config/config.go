package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port   int    `yaml:"port"`
		APIKey string `yaml:"api_key"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Reminders struct {
		Enabled            bool   `yaml:"enabled"`
		TelegramBotToken   string `yaml:"telegram_bot_token"`
		CheckIntervalMin   int    `yaml:"check_interval_minutes"`
		HoursBeforeSession int    `yaml:"hours_before_session"`
		MessagesPerSecond  int    `yaml:"messages_per_second"`
	} `yaml:"reminders"`

	Booking struct {
		DefaultDurationMinutes int `yaml:"default_duration_minutes"`
		DefaultGranularity     int `yaml:"default_granularity_minutes"`
	} `yaml:"booking"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/klinik.db"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SessionDuration returns the default session length.
func (c *Config) SessionDuration() int {
	if c.Booking.DefaultDurationMinutes <= 0 {
		return 45
	}
	return c.Booking.DefaultDurationMinutes
}

// SlotGranularity returns the default slot step in minutes.
func (c *Config) SlotGranularity() int {
	if c.Booking.DefaultGranularity <= 0 {
		return 60
	}
	return c.Booking.DefaultGranularity
}

// CacheTTL returns the slot cache TTL; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// ReminderInterval returns how often the reminder loop runs.
func (c *Config) ReminderInterval() time.Duration {
	if c.Reminders.CheckIntervalMin <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Reminders.CheckIntervalMin) * time.Minute
}

// ReminderLead returns how long before a session a reminder goes out.
func (c *Config) ReminderLead() time.Duration {
	if c.Reminders.HoursBeforeSession <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Reminders.HoursBeforeSession) * time.Hour
}
