package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file, overriding discovery.
	EnvConfigPath = "PROPGRAPH_CONFIG"
	// ConfigFileName is the file looked up in the working directory.
	ConfigFileName = "propgraph.yaml"
	// ConfigDirName is the per-user and system config directory name.
	ConfigDirName = "propgraph"
)

// FindConfigPath returns the first existing config file, searching:
// $PROPGRAPH_CONFIG, ./propgraph.yaml, the user config directory
// (os.UserConfigDir, honoring XDG_CONFIG_HOME), then /etc.
// Returns "" when none exists.
func FindConfigPath() string {
	candidates := []string{
		os.Getenv(EnvConfigPath),
		ConfigFileName,
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ConfigDirName, "config.yaml"))
	}
	candidates = append(candidates, filepath.Join("/etc", ConfigDirName, "config.yaml"))

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}
