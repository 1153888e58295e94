// Package filex contains small filesystem helpers used by the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppConfigDir returns the per-user config directory for the given app name,
// creating it if needed. On Linux this resolves under $XDG_CONFIG_HOME (or
// ~/.config), on macOS under ~/Library/Application Support.
func AppConfigDir(appName string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}

	dir := filepath.Join(base, appName)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
