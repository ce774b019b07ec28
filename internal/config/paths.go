package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigFile is the environment variable naming one or more candidate
// config files, separated by the OS path list separator.
const EnvConfigFile = "SHAREDEXEC_CONFIG"

// Locator resolves which configuration file a run should use
type Locator struct {
	paths        []string
	explicitPath string
}

// NewLocator creates a new config file locator
// It checks sources in the following order:
// 1. Explicit path (--config flag)
// 2. SHAREDEXEC_CONFIG environment variable (supports multiple paths separated by ':' on Unix or ';' on Windows)
// 3. Default ~/.sharedexec/config.yaml
// 4. Default ~/.sharedexec.yaml
func NewLocator(explicitPath string) *Locator {
	locator := &Locator{
		explicitPath: explicitPath,
		paths:        make([]string, 0),
	}

	// Priority 1: Explicit path from flag
	if explicitPath != "" {
		if expandedPath, err := expandPath(explicitPath); err == nil {
			locator.explicitPath = expandedPath
		}
		locator.paths = append(locator.paths, locator.explicitPath)
		return locator
	}

	// Priority 2: SHAREDEXEC_CONFIG environment variable (can have multiple paths)
	if configEnv := os.Getenv(EnvConfigFile); configEnv != "" {
		for _, path := range filepath.SplitList(configEnv) {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			if expandedPath, err := expandPath(path); err == nil {
				locator.paths = append(locator.paths, expandedPath)
			}
		}
	}

	// Priority 3: Default locations under the home directory
	if len(locator.paths) == 0 {
		if home, err := os.UserHomeDir(); err == nil {
			locator.paths = append(locator.paths,
				filepath.Join(home, defaultConfigDir, "config.yaml"),
				filepath.Join(home, defaultConfigName+".yaml"),
			)
		}
	}

	return locator
}

// Resolve returns the first candidate path that exists as a regular file.
// The boolean reports whether any candidate was found.
func (l *Locator) Resolve() (string, bool) {
	for _, path := range l.paths {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Explicit returns the expanded explicit path, or "" when the locator
// searches the default chain
func (l *Locator) Explicit() string {
	return l.explicitPath
}

// Paths returns the candidate config file paths in resolution order
func (l *Locator) Paths() []string {
	return l.paths
}

// expandPath expands ~ to home directory and evaluates environment variables
func expandPath(path string) (string, error) {
	// Expand environment variables
	path = os.ExpandEnv(path)

	// Expand tilde
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	// Clean the path
	return filepath.Clean(path), nil
}
