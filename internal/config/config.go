package config

import (
	"errors"
	"fmt"
	"os"

	"worknow/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App          AppConfig          `yaml:"app"`
	Backend      BackendConfig      `yaml:"backend"`
	Redis        RedisConfig        `yaml:"redis"`
	Database     DatabaseConfig     `yaml:"database"`
	Backup       BackupConfig       `yaml:"backup"`
	Monitoring   MonitoringConfig   `yaml:"monitoring"`
	Logging      LoggingConfig      `yaml:"logging"`
	API          APIConfig          `yaml:"api"`
	Selection    SelectionConfig    `yaml:"selection"`
	Availability AvailabilityConfig `yaml:"availability"`
	Exports      ExportConfig       `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// BackendConfig points at the marketplace REST API this gateway fronts.
type BackendConfig struct {
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// SelectionConfig tunes the time pickers.
type SelectionConfig struct {
	// MaxAdvanceDays limits how far ahead the around-the-clock picker may
	// start: 1 means today or tomorrow.
	MaxAdvanceDays     int `yaml:"max_advance_days"`
	MinDurationMinutes int `yaml:"min_duration_minutes"`
}

const (
	FetchErrorAllow = "allow"
	FetchErrorBlock = "block"
)

// AvailabilityConfig controls the snapshot read path. OnFetchError decides
// whether a failed availability fetch blocks booking or degrades to "treat
// as fully available".
type AvailabilityConfig struct {
	OnFetchError           string `yaml:"on_fetch_error"`
	RefreshIntervalSeconds int    `yaml:"refresh_interval_seconds"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; values referenced from the YAML via ${VAR}
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend base_url is required")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	switch c.Availability.OnFetchError {
	case FetchErrorAllow, FetchErrorBlock:
	default:
		return fmt.Errorf("availability.on_fetch_error must be %q or %q", FetchErrorAllow, FetchErrorBlock)
	}

	return nil
}

// ValidateWorkspaces checks the watch-list for duplicate or empty IDs.
func ValidateWorkspaces(workspaces []models.Workspace) error {
	seen := make(map[string]bool)
	for _, ws := range workspaces {
		if ws.ID == "" {
			return fmt.Errorf("workspace %q has empty ID", ws.Title)
		}
		if seen[ws.ID] {
			return fmt.Errorf("duplicate workspace ID found: %s", ws.ID)
		}
		seen[ws.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = models.DefaultBackendTimeout
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	// auth enabled by default when API is enabled
	if c.API.Enabled && !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}

	if c.Selection.MaxAdvanceDays == 0 {
		c.Selection.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if c.Selection.MinDurationMinutes == 0 {
		c.Selection.MinDurationMinutes = models.DefaultMinDurationMinutes
	}

	if c.Availability.OnFetchError == "" {
		// matches the historical front-end behavior
		c.Availability.OnFetchError = FetchErrorAllow
	}
	if c.Availability.RefreshIntervalSeconds == 0 {
		c.Availability.RefreshIntervalSeconds = models.DefaultRefreshInterval
	}
}
