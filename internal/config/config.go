package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Comms   CommsConfig   `yaml:"comms"`
}

type ServerConfig struct {
	Port  int    `yaml:"port"`
	Token string `yaml:"token"` // empty means generate one at startup
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

type CommsConfig struct {
	DrainIntervalSeconds int `yaml:"drain_interval_seconds"`
}

func defaults() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Storage: StorageConfig{DBPath: "./storedeck.db"},
		Comms:   CommsConfig{DrainIntervalSeconds: 1},
	}
}

// Load reads configuration from an optional YAML file, then applies
// STOREDECK_* environment overrides. A missing file is not an error;
// a malformed one is.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STOREDECK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STOREDECK_TOKEN"); v != "" {
		cfg.Server.Token = v
	}
	if v := os.Getenv("STOREDECK_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
}
