// Package config handles configuration loading for the lumap viewer server.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Cache  CacheConfig  `yaml:"cache"`
	Render RenderConfig `yaml:"render"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DataConfig contains bundle source settings.
type DataConfig struct {
	// BaseURL is the root of the bundle layout (coords.bin, colors.bin, ...).
	BaseURL string `yaml:"base_url"`
	// PreloadVariants fetches every attribute's color variant at startup
	// instead of on first switch.
	PreloadVariants bool `yaml:"preload_variants"`
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	SnapshotSizeMB      int `yaml:"snapshot_size_mb"`
	SnapshotTTLMinutes  int `yaml:"snapshot_ttl_minutes"`
	VariantCacheEntries int `yaml:"variant_cache_entries"`
}

// RenderConfig contains snapshot rendering settings.
type RenderConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	PointSize  float64 `yaml:"point_size"`
	Background string  `yaml:"background"`
	Palette    string  `yaml:"palette"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Data: DataConfig{
			BaseURL: "http://localhost:5173/data",
		},
		Cache: CacheConfig{
			SnapshotSizeMB:      128,
			SnapshotTTLMinutes:  10,
			VariantCacheEntries: 16,
		},
		Render: RenderConfig{
			Width:      1024,
			Height:     1024,
			PointSize:  1.5,
			Background: "#0b0e14",
			Palette:    "bright",
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Data.BaseURL == "" {
		cfg.Data.BaseURL = defaults.Data.BaseURL
	}
	if cfg.Cache.SnapshotSizeMB == 0 {
		cfg.Cache.SnapshotSizeMB = defaults.Cache.SnapshotSizeMB
	}
	if cfg.Cache.SnapshotTTLMinutes == 0 {
		cfg.Cache.SnapshotTTLMinutes = defaults.Cache.SnapshotTTLMinutes
	}
	if cfg.Cache.VariantCacheEntries == 0 {
		cfg.Cache.VariantCacheEntries = defaults.Cache.VariantCacheEntries
	}
	if cfg.Render.Width == 0 {
		cfg.Render.Width = defaults.Render.Width
	}
	if cfg.Render.Height == 0 {
		cfg.Render.Height = defaults.Render.Height
	}
	if cfg.Render.PointSize == 0 {
		cfg.Render.PointSize = defaults.Render.PointSize
	}
	if cfg.Render.Background == "" {
		cfg.Render.Background = defaults.Render.Background
	}
	if cfg.Render.Palette == "" {
		cfg.Render.Palette = defaults.Render.Palette
	}
}
