package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - FV_CONFIG_PATH: config file location (default: ~/.config/fv.toml)
//   - FV_HOME: base directory for fv data (default: ~/.local/share/fv)
func GetDefaults() (map[string]string, error) {
	configPath, err := fromEnvOrHome("FV_CONFIG_PATH", ".config", "fv.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := fromEnvOrHome("FV_HOME", ".local", "share", "fv")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// fromEnvOrHome returns the value of env if set, otherwise the path below the home directory.
func fromEnvOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
