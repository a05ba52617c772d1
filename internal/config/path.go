package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the default data directory based on the host OS.
// It prefers standard locations when available and falls back to a dotdir
// in the user's home directory.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}

	// XDG (Linux) override
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskd")
	}

	if isDir("/var/lib") {
		return "/var/lib/taskd"
	}

	// macOS: ~/Library/Application Support/taskd
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "taskd")
	}

	// Windows: %USERPROFILE%/AppData/Local/taskd
	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "taskd")
	}

	return filepath.Join(homeDir, ".taskd")
}

// DefaultDBPath returns the default sqlite database file path.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "task_queue.db")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
