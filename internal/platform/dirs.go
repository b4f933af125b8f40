package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Data layout under the per-user data dir:
//
//	models/   downloaded ggml model files
//	uploads/  media received by the serve mode
//
// ResolveModelDir treats a non-empty override as the model directory
// itself; ResolveDataDir treats one as the data root.
func ResolveModelDir(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	dataDir, err := ResolveDataDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "models"), nil
}

func ResolveUploadDir(dataDirOverride string) (string, error) {
	dataDir, err := ResolveDataDir(dataDirOverride)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "uploads"), nil
}

func ResolveDataDir(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	return DataDirFor(runtime.GOOS, homeDir, os.Getenv("XDG_DATA_HOME"))
}

// DataDirFor returns the per-user data directory for the given OS.
func DataDirFor(goos, homeDir, xdgDataHome string) (string, error) {
	if homeDir == "" {
		return "", errors.New("home directory is empty")
	}

	switch goos {
	case "linux":
		if xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "vaani"), nil
		}
		return filepath.Join(homeDir, ".local", "share", "vaani"), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "vaani"), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", goos)
	}
}
