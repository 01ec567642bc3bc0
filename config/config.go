package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Web   WebConfig   `toml:"web"`
	Files FilesConfig `toml:"files"`
	Log   LogConfig   `toml:"log"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// FilesConfig overrides the snippet and history file locations. Empty
// values resolve to the defaults inside the data directory.
type FilesConfig struct {
	Snippets string `toml:"snippets"`
	History  string `toml:"history"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func defaultConfig() *Config {
	return &Config{
		Web: WebConfig{
			Enabled: true,
			Port:    8371,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DataDir returns the per-user data directory, creating it if needed.
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	dir := filepath.Join(base, "keysnip")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// ConfigPath returns the path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the TOML file.
// If the file doesn't exist, it creates it with default values.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := save(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Unset fields keep their defaults.
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// SnippetsPath resolves the snippet store file location.
func (c *Config) SnippetsPath() (string, error) {
	if c.Files.Snippets != "" {
		return c.Files.Snippets, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snippets.json"), nil
}

// HistoryPath resolves the history log file location.
func (c *Config) HistoryPath() (string, error) {
	if c.Files.History != "" {
		return c.Files.History, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}
