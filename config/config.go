// Package config loads daemon configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the factory daemon configuration.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	DatabasePath string `yaml:"database_path"`
	FactoryOwner string `yaml:"factory_owner"`

	BaseFee            uint64 `yaml:"base_fee"`
	DiscountToken      string `yaml:"discount_token"`
	DiscountThreshold  uint64 `yaml:"discount_threshold"`
	DiscountPercentage uint64 `yaml:"discount_percentage"`

	EthereumRPC string `yaml:"ethereum_rpc"`

	LogLevel          string `yaml:"log_level"`
	LogJSON           bool   `yaml:"log_json"`
	EnableColoredLogs bool   `yaml:"enable_colored_logs"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		ListenAddr:        ":8080",
		DatabasePath:      "./data/factory.db",
		FactoryOwner:      "factory-admin",
		BaseFee:           1000,
		LogLevel:          "info",
		EnableColoredLogs: true,
	}
}

// Load reads the YAML file at path (skipped when path is empty) and applies
// environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %v", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ListenAddr = getEnv("FACTORY_LISTEN_ADDR", c.ListenAddr)
	c.DatabasePath = getEnv("FACTORY_DATABASE_PATH", c.DatabasePath)
	c.FactoryOwner = getEnv("FACTORY_OWNER", c.FactoryOwner)
	c.BaseFee = getEnvUint("FACTORY_BASE_FEE", c.BaseFee)
	c.DiscountToken = getEnv("FACTORY_DISCOUNT_TOKEN", c.DiscountToken)
	c.DiscountThreshold = getEnvUint("FACTORY_DISCOUNT_THRESHOLD", c.DiscountThreshold)
	c.DiscountPercentage = getEnvUint("FACTORY_DISCOUNT_PERCENTAGE", c.DiscountPercentage)
	c.EthereumRPC = getEnv("ETHEREUM_RPC", c.EthereumRPC)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogJSON = getEnvBool("LOG_JSON", c.LogJSON)
	c.EnableColoredLogs = getEnvBool("ENABLE_COLORED_LOGS", c.EnableColoredLogs)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
