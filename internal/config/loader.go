package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultConfigDir is the default config directory name.
	DefaultConfigDir = ".papibot"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.json"
	// DefaultEnvFile is the deployment env file checked in the working
	// directory.
	DefaultEnvFile = ".env"

	// EnvTokenKey is the env variable carrying the transport token.
	EnvTokenKey = "TELEGRAM_TOKEN"
	// EnvGroupIDKey is the env variable pinning the monitored group. The
	// identity resolver writes this key back once it captures a group.
	EnvGroupIDKey = "GROUP_ID"
)

// GetConfigDir returns the default config directory path (~/.papibot).
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", DefaultConfigDir)
	}
	return filepath.Join(home, DefaultConfigDir)
}

// GetConfigPath returns the default config file path (~/.papibot/config.json).
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), DefaultConfigFile)
}

// LoadConfig loads configuration from the specified path.
// If path is empty, it uses the default config path (~/.papibot/config.json).
// If the config file doesn't exist, it returns the default configuration.
// A .env file in the working directory and process env variables overlay the
// file: TELEGRAM_TOKEN and GROUP_ID always win over config.json.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}
	path = expandPath(path)

	cfg := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays .env and process environment values onto cfg. Missing
// .env is not an error; a deployment may carry everything in config.json.
func applyEnv(cfg *Config) {
	env, err := godotenv.Read(DefaultEnvFile)
	if err != nil {
		env = map[string]string{}
	}
	// Process env wins over the file, matching godotenv's own precedence.
	for _, key := range []string{EnvTokenKey, EnvGroupIDKey} {
		if v := os.Getenv(key); v != "" {
			env[key] = v
		}
	}

	if v := strings.TrimSpace(env[EnvTokenKey]); v != "" {
		cfg.Telegram.Token = v
	}
	if v := strings.TrimSpace(env[EnvGroupIDKey]); v != "" {
		cfg.Bot.TargetGroupID = v
	}
}

// SaveConfig saves the configuration to the specified path.
// If path is empty, it uses the default config path (~/.papibot/config.json).
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = GetConfigPath()
	}
	path = expandPath(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Config holds the bot token, so owner-only permissions.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// SaveGroupID persists a captured group ID into the env file so the next
// start skips the identity bootstrap. Existing keys in the file are kept.
func SaveGroupID(envPath, groupID string) error {
	if envPath == "" {
		envPath = DefaultEnvFile
	}
	env, err := godotenv.Read(envPath)
	if err != nil {
		env = map[string]string{}
	}
	env[EnvGroupIDKey] = groupID
	if err := godotenv.Write(env, envPath); err != nil {
		return fmt.Errorf("failed to write env file %s: %w", envPath, err)
	}
	return nil
}

// EnsureConfigDir ensures the config directory (~/.papibot) exists.
func EnsureConfigDir() error {
	dir := GetConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return nil
}

// Exists checks if a config file exists at the given path.
// If path is empty, checks the default config path.
func Exists(path string) bool {
	if path == "" {
		path = GetConfigPath()
	}
	path = expandPath(path)
	_, err := os.Stat(path)
	return err == nil
}

// InitConfig creates a default config file if it doesn't exist.
// Returns nil if the config already exists or was created successfully.
func InitConfig() error {
	path := GetConfigPath()

	if Exists(path) {
		return nil
	}

	cfg := DefaultConfig()
	return SaveConfig(cfg, path)
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
