package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	AI        AIConfig        `yaml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Listings  ListingsConfig  `yaml:"listings"`
	Quota     QuotaConfig     `yaml:"quota"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Seed      SeedConfig      `yaml:"seed"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// AIConfig contains settings for the external description-drafting service
type AIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RateLimitConfig contains rate limiting settings for public write endpoints
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
	RequestsPerDay    int  `yaml:"requests_per_day"`
}

// ListingsConfig contains listing policy settings
type ListingsConfig struct {
	// Category keys whose listings must carry a primary image. A UI
	// convention promoted to config, not a data-layer invariant.
	RequirePrimaryImageCategories []string `yaml:"require_primary_image_categories"`
	DefaultPageLimit              int      `yaml:"default_page_limit"`
	MaxGalleryImages              int      `yaml:"max_gallery_images"`
}

// QuotaConfig contains default broker quotas
type QuotaConfig struct {
	DefaultItems     int     `yaml:"default_items"`
	DefaultStorageMB float64 `yaml:"default_storage_mb"`
}

// CleanupConfig contains retention settings for the cleanup job
type CleanupConfig struct {
	RetentionDays    int  `yaml:"retention_days"`
	MaxDeletionCount int  `yaml:"max_deletion_count"`
	Enabled          bool `yaml:"enabled"`
}

// SchedulerConfig contains nightly job settings
type SchedulerConfig struct {
	Enabled      bool   `yaml:"enabled"`
	NightlyRunAt string `yaml:"nightly_run_at"`
}

// SeedConfig points at the location seed files
type SeedConfig struct {
	RwandaFile string `yaml:"rwanda_file"`
	DRCFile    string `yaml:"drc_file"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8084",
			CORSOrigins: []string{"http://localhost:5173"},
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 10,
			RequestsPerHour:   60,
			RequestsPerDay:    200,
		},
		Listings: ListingsConfig{
			RequirePrimaryImageCategories: []string{"house"},
			DefaultPageLimit:              20,
			MaxGalleryImages:              12,
		},
		Quota: QuotaConfig{
			DefaultItems:     50,
			DefaultStorageMB: 500,
		},
		Cleanup: CleanupConfig{
			RetentionDays:    90,
			MaxDeletionCount: 10000,
			Enabled:          true,
		},
		Scheduler: SchedulerConfig{
			Enabled:      false,
			NightlyRunAt: "02:00",
		},
		AI: AIConfig{
			TimeoutSeconds: 30,
		},
		Seed: SeedConfig{
			RwandaFile: "config/rwanda_locations.json",
			DRCFile:    "config/drc_locations.json",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// GetTimeout returns the AI request timeout as a duration
func (c *AIConfig) GetTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RequiresPrimaryImage reports whether listings of the given category key
// must carry a primary image
func (c *ListingsConfig) RequiresPrimaryImage(categoryKey string) bool {
	for _, key := range c.RequirePrimaryImageCategories {
		if key == categoryKey {
			return true
		}
	}
	return false
}
