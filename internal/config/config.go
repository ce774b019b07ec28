package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/viper"

	"github.com/rshetty/sharedexec/internal/util"
)

const (
	defaultConfigName = ".sharedexec"
	defaultConfigDir  = ".sharedexec"
)

// Manager handles sharedexec configuration
type Manager struct {
	configPath string
	config     *Config
	viper      *viper.Viper
}

// NewManager creates a new configuration manager
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		viper:      viper.New(),
		config:     &Config{},
	}
}

// Load loads the configuration from file
func (m *Manager) Load() (*Config, error) {
	// Set environment variable support
	m.viper.SetEnvPrefix("SHAREDEXEC")
	m.viper.AutomaticEnv()

	// Initialize config to ensure defaults are set even for empty configs
	m.config = &Config{}

	// Resolve the config file through the locator chain
	locator := NewLocator(m.configPath)
	if m.configPath != "" {
		m.configPath = locator.Explicit()
	}
	path, found := locator.Resolve()
	switch {
	case found:
		m.viper.SetConfigFile(path)
		m.viper.SetConfigType("yaml")
	case locator.Explicit() != "":
		// Explicit path that does not exist yet; Save will create it.
		// Reading below fails with os.IsNotExist, which is tolerated.
		m.viper.SetConfigFile(locator.Explicit())
		m.viper.SetConfigType("yaml")
	default:
		// No config file anywhere; run on defaults
		m.applyDefaults()
		return m.config, nil
	}

	// Read config file
	if err := m.viper.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we'll use defaults
		// Check for both ConfigFileNotFoundError and os.IsNotExist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// File doesn't exist, apply defaults and return
		m.applyDefaults()
		return m.config, nil
	}

	// Unmarshal into config struct
	if err := m.viper.Unmarshal(m.config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults
	m.applyDefaults()

	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	return m.config, nil
}

// Save saves the current configuration to file.
// The target is the explicit path when one was given, then the file Load
// resolved, then the first candidate in the locator chain (SHAREDEXEC_CONFIG
// before the default ~/.sharedexec/config.yaml location).
func (m *Manager) Save() error {
	if m.configPath == "" {
		m.configPath = m.viper.ConfigFileUsed()
	}
	if m.configPath == "" {
		if paths := NewLocator("").Paths(); len(paths) > 0 {
			m.configPath = paths[0]
		}
	}
	if m.configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		m.configPath = filepath.Join(home, defaultConfigDir, "config.yaml")
	}

	// Ensure directory exists
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config to file
	if err := m.viper.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Path returns the config file path, empty until resolved by Load or Save
func (m *Manager) Path() string {
	if m.configPath != "" {
		return m.configPath
	}
	return m.viper.ConfigFileUsed()
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// GetProfile returns a named run profile
func (m *Manager) GetProfile(name string) (*Profile, bool) {
	if m.config.Profiles == nil {
		return nil, false
	}

	profile, ok := m.config.Profiles[name]
	return &profile, ok
}

// SetProfile sets or updates a named run profile
func (m *Manager) SetProfile(name string, profile Profile) {
	if m.config.Profiles == nil {
		m.config.Profiles = make(map[string]Profile)
	}

	m.config.Profiles[name] = profile
	m.viper.Set("profiles", m.config.Profiles)
}

// RemoveProfile removes a named run profile
func (m *Manager) RemoveProfile(name string) error {
	if _, ok := m.config.Profiles[name]; !ok {
		return fmt.Errorf("%w: %q", util.ErrProfileNotFound, name)
	}

	delete(m.config.Profiles, name)
	m.viper.Set("profiles", m.config.Profiles)
	return nil
}

// ListProfiles returns the profile names in sorted order
func (m *Manager) ListProfiles() []string {
	names := make([]string, 0, len(m.config.Profiles))
	for name := range m.config.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// applyDefaults sets default values for configuration
func (m *Manager) applyDefaults() {
	if m.config == nil {
		return
	}

	// Set default result timeout
	if m.config.Defaults.Timeout == 0 {
		m.config.Defaults.Timeout = 60 * time.Second
	}

	// Set default prefetch size
	if m.config.Defaults.ChunkSize == 0 {
		m.config.Defaults.ChunkSize = 1
	}

	// Set default shell
	if m.config.Defaults.Shell == "" {
		m.config.Defaults.Shell = "/bin/sh"
	}

	// Set default output format
	if m.config.Defaults.OutputFormat == "" {
		m.config.Defaults.OutputFormat = "table"
	}

	// Workers stays 0 when unset: the pool resolves it to one worker per CPU
}

// Validate checks the configuration for values the pool or runner would reject
func (c *Config) Validate() error {
	if err := validateSettings("defaults", c.Defaults.Workers, c.Defaults.Timeout, c.Defaults.ChunkSize); err != nil {
		return err
	}

	for name, p := range c.Profiles {
		if err := validateSettings("profiles."+name, p.Workers, p.Timeout, p.ChunkSize); err != nil {
			return err
		}
	}

	return nil
}

func validateSettings(scope string, workers int, timeout time.Duration, chunkSize int) error {
	if workers < 0 {
		return util.NewValidationError(scope+".workers", workers, "worker count must not be negative")
	}
	if timeout < 0 {
		return util.NewValidationError(scope+".timeout", timeout, "timeout must not be negative")
	}
	if chunkSize < 0 {
		return util.NewValidationError(scope+".chunkSize", chunkSize, "chunk size must not be negative")
	}
	return nil
}
