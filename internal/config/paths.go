package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ProjectConfigFolder returns the per-project state directory under the
// user config dir, creating it when missing. The project root is slugged
// into a single path segment so distinct checkouts never collide.
func ProjectConfigFolder(projectRoot string) (string, error) {
	configDir, err := userConfigDir()
	if err != nil {
		return "", err
	}

	projectSlug := strings.ReplaceAll(projectRoot, "/", "_")
	projectSlug = strings.ReplaceAll(projectSlug, ":", "_")
	projectSlug = strings.ReplaceAll(projectSlug, "\\", "_")

	expectedDir := filepath.Join(configDir, "quill", projectSlug)

	if _, err := os.Stat(expectedDir); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to check directory: %w", err)
		}
		// Directory does not exist, create it
		err = os.MkdirAll(expectedDir, 0755)
		if err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return expectedDir, nil
}

// CacheDBPath returns the location of the persistent diagnostics cache
// for a project.
func CacheDBPath(projectRoot string) (string, error) {
	folder, err := ProjectConfigFolder(projectRoot)
	if err != nil {
		return "", err
	}
	return filepath.Join(folder, "diagnostics.db"), nil
}

func userConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		usr, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("failed to get current user: %w", err)
		}
		return filepath.Join(usr.HomeDir, ".config"), nil
	}
	return configDir, nil
}
