package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds the backend endpoints the click router fetches from.
type APIConfig struct {
	// BaseURL is the root URL of the main application backend.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// ChatBaseURL is the root URL of the chat backend.
	ChatBaseURL string `mapstructure:"chat_base_url" yaml:"chat_base_url"`
}

// StoreConfig controls the notification store's two tiers.
type StoreConfig struct {
	// Capacity is the number of most-recent records kept in memory.
	Capacity int `mapstructure:"capacity" yaml:"capacity"`

	// Mirror selects the durable tier backend: "sqlite" or "redis".
	Mirror string `mapstructure:"mirror" yaml:"mirror"`

	// DBPath is the SQLite database location for the sqlite mirror.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// RedisAddr is the host:port for the redis mirror.
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`

	// MirrorTTLDays bounds how long mirror entries outlive the in-memory
	// tier before the startup sweep removes them.
	MirrorTTLDays int `mapstructure:"mirror_ttl_days" yaml:"mirror_ttl_days"`
}

// AlertConfig holds local alert presentation settings.
type AlertConfig struct {
	ChannelID   string `mapstructure:"channel_id" yaml:"channel_id"`
	ChannelName string `mapstructure:"channel_name" yaml:"channel_name"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig   `mapstructure:"api" yaml:"api"`
	Store   StoreConfig `mapstructure:"store" yaml:"store"`
	Alert   AlertConfig `mapstructure:"alert" yaml:"alert"`
	LogPath string      `mapstructure:"log_path" yaml:"log_path"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/pushcenter/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "pushcenter", "config.yaml")
}

// defaultDataPath returns the default location for local data files.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", name)
	}
	return filepath.Join(home, ".config", "pushcenter", name)
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:     "https://stagingapi.circlespace.in",
			ChatBaseURL: "https://chatapi.circlespace.in/api",
		},
		Store: StoreConfig{
			Capacity:      5,
			Mirror:        "sqlite",
			DBPath:        defaultDataPath("pushcenter.db"),
			RedisAddr:     "localhost:6379",
			MirrorTTLDays: 7,
		},
		Alert: AlertConfig{
			ChannelID:   "default-channel-id",
			ChannelName: "Default Channel",
		},
		LogPath: defaultDataPath("pushcenter.log"),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	def := defaultAppConfig()
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.chat_base_url", def.API.ChatBaseURL)
	v.SetDefault("store.capacity", def.Store.Capacity)
	v.SetDefault("store.mirror", def.Store.Mirror)
	v.SetDefault("store.db_path", def.Store.DBPath)
	v.SetDefault("store.redis_addr", def.Store.RedisAddr)
	v.SetDefault("store.mirror_ttl_days", def.Store.MirrorTTLDays)
	v.SetDefault("alert.channel_id", def.Alert.ChannelID)
	v.SetDefault("alert.channel_name", def.Alert.ChannelName)
	v.SetDefault("log_path", def.LogPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Store.Capacity <= 0 {
		cfg.Store.Capacity = def.Store.Capacity
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("store", cfg.Store)
	v.Set("alert", cfg.Alert)
	v.Set("log_path", cfg.LogPath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
