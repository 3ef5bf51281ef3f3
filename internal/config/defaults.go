package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultHTTPPort returns the default HTTP port.
func DefaultHTTPPort() int {
	return 8000
}

// DefaultConfigPath returns the default path for the dialect-tts config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "dialect-tts", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "dialect-tts")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "dialect-tts")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "dialect-tts")
		}
		return filepath.Join(home, ".config", "dialect-tts")
	}
}

// DefaultModelsPath returns the default path for the dialect models directory.
func DefaultModelsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "dialect-tts", "models")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "dialect-tts", "models")
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "dialect-tts", "models")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "dialect-tts", "models")
		}
		return filepath.Join(home, ".cache", "dialect-tts", "models")
	}
}
