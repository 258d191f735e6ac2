// Package paths resolves where facetrace keeps its files.
// Linux and macOS follow XDG style locations, Windows uses APPDATA and
// LOCALAPPDATA.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const projectName = "facetrace"

// ConfigDir returns the config directory
// Linux: ~/.config/facetrace/
// Windows: %APPDATA%\facetrace\
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), projectName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", projectName)
}

// LogDir returns the log directory
// Linux: ~/.local/log/facetrace/
// Windows: %LOCALAPPDATA%\facetrace\log\
func LogDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("LOCALAPPDATA"), projectName, "log")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "log", projectName)
}

// ConfigFile returns the CLI settings file path
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "cli.yml")
}

// SessionFile returns the path of the persisted login session
func SessionFile() string {
	return filepath.Join(ConfigDir(), "session.json")
}

// LogFile returns the log file path
func LogFile() string {
	return filepath.Join(LogDir(), "cli.log")
}

// EnsureDirs creates the config and log directories as owner-only.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), LogDir()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
		// Tighten permissions on directories that already existed
		if err := os.Chmod(dir, 0700); err != nil {
			return fmt.Errorf("chmod dir %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureParent creates the parent directory of path
func EnsureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// ResolveConfigPath resolves the --config flag. Empty selects cli.yml,
// relative names resolve inside ConfigDir and a missing extension
// becomes .yml.
func ResolveConfigPath(configFlag string) (string, error) {
	if configFlag == "" {
		return ConfigFile(), nil
	}

	configFlag = ExpandHome(configFlag)
	if filepath.IsAbs(configFlag) {
		return addExtIfNeeded(configFlag)
	}
	return addExtIfNeeded(filepath.Join(ConfigDir(), configFlag))
}

func addExtIfNeeded(path string) (string, error) {
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		return path, nil
	case "":
		for _, ext := range []string{".yml", ".yaml"} {
			if _, err := os.Stat(path + ext); err == nil {
				return path + ext, nil
			}
		}
		return path + ".yml", nil
	default:
		return path, nil
	}
}
