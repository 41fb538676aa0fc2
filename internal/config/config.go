package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr           string  `yaml:"addr"`
		APIKey         string  `yaml:"api_key"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address        string `yaml:"address"`
		Password       string `yaml:"password"`
		DB             int    `yaml:"db"`
		LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Business struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"business"`

	Reports struct {
		Dir string `yaml:"dir"`
	} `yaml:"reports"`
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

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/washbay.db"
	}
	if cfg.Business.Timezone == "" {
		cfg.Business.Timezone = "Europe/Copenhagen"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}
	if cfg.Reports.Dir != "" {
		if err = os.MkdirAll(cfg.Reports.Dir, 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// RedisLockTTL bounds how long a crashed expansion run can hold its lock.
func (c *Config) RedisLockTTL() time.Duration {
	if c.Redis.LockTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.LockTTLSeconds) * time.Second
}
