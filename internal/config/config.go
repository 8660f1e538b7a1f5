// Package config holds user identity configuration for commits.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default identity used for app-driven snapshots when the user has not
// configured one.
const (
	DefaultName  = "Muninn"
	DefaultEmail = "snapshots@muninn.local"
)

// Config represents Muninn configuration.
type Config struct {
	User UserConfig `json:"user"`
}

// UserConfig holds user identity information.
type UserConfig struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Author formats the identity the way commit objects record it.
func (c *Config) Author() string {
	name, email := c.User.Name, c.User.Email
	if name == "" {
		name = DefaultName
	}
	if email == "" {
		email = DefaultEmail
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// globalConfigPath returns the path to the global config file.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".muninnconfig"), nil
}

// Load reads configuration for a project. The per-project config file
// under the store directory takes precedence over the global one.
func Load(storeDir string) (*Config, error) {
	cfg := &Config{}

	if globalPath, err := globalConfigPath(); err == nil {
		if data, err := os.ReadFile(globalPath); err == nil {
			var globalCfg Config
			if err := json.Unmarshal(data, &globalCfg); err == nil {
				merge(cfg, &globalCfg)
			}
		}
	}

	repoPath := filepath.Join(storeDir, "config")
	if data, err := os.ReadFile(repoPath); err == nil {
		var repoCfg Config
		if err := json.Unmarshal(data, &repoCfg); err == nil {
			merge(cfg, &repoCfg)
		}
	}

	return cfg, nil
}

// SaveRepo writes configuration into the project's store directory.
func SaveRepo(storeDir string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(storeDir, "config"), data, 0644)
}

func merge(dst, src *Config) {
	if src.User.Name != "" {
		dst.User.Name = src.User.Name
	}
	if src.User.Email != "" {
		dst.User.Email = src.User.Email
	}
}
