// Package config loads the YAML runtime configuration and applies defaults
// so the binary runs with no config file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the root configuration structure.
type Config struct {
	Providers ProvidersConfig `yaml:"providers"`
	Cache     CacheConfig     `yaml:"cache"`
	Database  DatabaseConfig  `yaml:"database"`
	Monitor   MonitorConfig   `yaml:"monitor"`
}

// ProvidersConfig holds upstream feed settings.
type ProvidersConfig struct {
	GovData   GovDataConfig   `yaml:"gov_data"`
	Weather   WeatherConfig   `yaml:"weather"`
	Logistics LogisticsConfig `yaml:"logistics"`
}

// GovDataConfig covers the data.gov.in commodity price resource shared by
// the mandi, eNAM, and trade providers.
type GovDataConfig struct {
	BaseURL    string        `yaml:"base_url"`
	ResourceID string        `yaml:"resource_id"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	Limit      int           `yaml:"limit"` // records per request
}

// WeatherConfig covers the OpenWeatherMap current-conditions API.
type WeatherConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogisticsConfig covers the optional live corridor feed. With no URL
// configured the provider simulates corridor conditions.
type LogisticsConfig struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig selects the signal cache backend. An empty RedisAddr keeps
// the cache in-process.
type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

// DatabaseConfig enables snapshot persistence when a DSN is set.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// MonitorConfig covers the health/metrics listener and the periodic scan
// loop used by the monitor command.
type MonitorConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	ScanInterval time.Duration `yaml:"scan_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Providers: ProvidersConfig{
			GovData: GovDataConfig{
				BaseURL:    "https://api.data.gov.in/resource",
				ResourceID: "9ef84268-d588-465a-a308-a864a43d0070",
				APIKey:     os.Getenv("GOV_DATA_API_KEY"),
				Timeout:    30 * time.Second,
				Limit:      50,
			},
			Weather: WeatherConfig{
				BaseURL: "https://api.openweathermap.org/data/2.5",
				APIKey:  os.Getenv("WEATHER_API_KEY"),
				Timeout: 30 * time.Second,
			},
			Logistics: LogisticsConfig{
				APIURL:  os.Getenv("LOGISTICS_API_URL"),
				Timeout: 30 * time.Second,
			},
		},
		Cache: CacheConfig{
			RedisAddr: os.Getenv("REDIS_ADDR"),
			TTL:       5 * time.Minute,
		},
		Database: DatabaseConfig{
			DSN: os.Getenv("DATABASE_DSN"),
		},
		Monitor: MonitorConfig{
			ListenAddr:   ":8099",
			ScanInterval: 15 * time.Minute,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults backfills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Providers.GovData.BaseURL == "" {
		c.Providers.GovData.BaseURL = def.Providers.GovData.BaseURL
	}
	if c.Providers.GovData.ResourceID == "" {
		c.Providers.GovData.ResourceID = def.Providers.GovData.ResourceID
	}
	if c.Providers.GovData.Timeout == 0 {
		c.Providers.GovData.Timeout = def.Providers.GovData.Timeout
	}
	if c.Providers.GovData.Limit == 0 {
		c.Providers.GovData.Limit = def.Providers.GovData.Limit
	}
	if c.Providers.Weather.BaseURL == "" {
		c.Providers.Weather.BaseURL = def.Providers.Weather.BaseURL
	}
	if c.Providers.Weather.Timeout == 0 {
		c.Providers.Weather.Timeout = def.Providers.Weather.Timeout
	}
	if c.Providers.Logistics.Timeout == 0 {
		c.Providers.Logistics.Timeout = def.Providers.Logistics.Timeout
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = def.Cache.TTL
	}
	if c.Monitor.ListenAddr == "" {
		c.Monitor.ListenAddr = def.Monitor.ListenAddr
	}
	if c.Monitor.ScanInterval == 0 {
		c.Monitor.ScanInterval = def.Monitor.ScanInterval
	}
}
