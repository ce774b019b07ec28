package config

import "time"

// Config represents the sharedexec configuration file structure
type Config struct {
	// Defaults contains baseline settings for every run
	Defaults Defaults `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	// Profiles is a map of profile names to their run settings
	Profiles map[string]Profile `yaml:"profiles,omitempty" json:"profiles,omitempty"`
}

// Defaults contains default configuration values
type Defaults struct {
	// Workers is the shared pool size; 0 means one worker per CPU
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty"`

	// Timeout bounds how long a run waits for its results
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// ChunkSize is the result prefetch size for bulk mapping
	ChunkSize int `yaml:"chunkSize,omitempty" json:"chunkSize,omitempty"`

	// Shell is the interpreter commands run under
	Shell string `yaml:"shell,omitempty" json:"shell,omitempty"`

	// OutputFormat is the default output format (table, json, yaml)
	OutputFormat string `yaml:"outputFormat,omitempty" json:"outputFormat,omitempty"`

	// NoColor disables colored output
	NoColor bool `yaml:"noColor,omitempty" json:"noColor,omitempty"`
}

// Profile is a named bundle of run settings selected with --profile.
// Zero-valued fields fall back to the defaults at resolution time.
type Profile struct {
	// Description is shown by `sharedexec profile list`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Workers      int           `yaml:"workers,omitempty" json:"workers,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	ChunkSize    int           `yaml:"chunkSize,omitempty" json:"chunkSize,omitempty"`
	Shell        string        `yaml:"shell,omitempty" json:"shell,omitempty"`
	OutputFormat string        `yaml:"outputFormat,omitempty" json:"outputFormat,omitempty"`
	NoColor      bool          `yaml:"noColor,omitempty" json:"noColor,omitempty"`
}
