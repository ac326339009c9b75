// Package config provides configuration for the tikgrab TUI.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the TUI configuration.
type Config struct {
	// Path to the shared YAML config (resolver and download settings)
	ConfigPath string

	// Where saved media goes; overrides the shared config when set
	DownloadDir string

	// Log file; the terminal belongs to the UI
	LogPath string

	// How long status notifications stay visible
	NotifyDuration time.Duration

	// Timeout for probing gallery images
	ProbeTimeout time.Duration

	// UI preferences
	ColorScheme string
}

// Load returns configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		ConfigPath:     getEnv("TIKGRAB_CONFIG", ""),
		DownloadDir:    getEnv("TIKGRAB_DOWNLOAD_DIR", ""),
		LogPath:        getEnv("TIKGRAB_TUI_LOG", filepath.Join(os.TempDir(), "tikgrab-tui.log")),
		NotifyDuration: getDuration("TIKGRAB_NOTIFY_DURATION", 3*time.Second),
		ProbeTimeout:   getDuration("TIKGRAB_PROBE_TIMEOUT", 15*time.Second),
		ColorScheme:    getEnv("TIKGRAB_COLOR_SCHEME", "dark"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
