package types

import (
	"errors"
	"path/filepath"
	"strings"
)

// Config holds the settings a workspace is opened with.
type Config struct {
	VaultDir   string `json:"vault_dir" yaml:"vault_dir" mapstructure:"vault_dir"`
	DBPath     string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
	SchemaFile string `json:"schema_file,omitempty" yaml:"schema_file,omitempty" mapstructure:"schema_file"`
	LogLevel   string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Autosave   bool   `json:"autosave" yaml:"autosave" mapstructure:"autosave"`
}

// Defaults applied when a setting is absent.
const (
	DefaultDBPath   = ".datahoarder/db.sqlite"
	DefaultLogLevel = "info"
)

// Config validation errors.
var (
	ErrDBPathInvalid   = errors.New("db_path must be a relative path inside the vault")
	ErrLogLevelUnknown = errors.New("unknown log level")
)

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		DBPath:   DefaultDBPath,
		LogLevel: DefaultLogLevel,
		Autosave: true,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.DBPath == "" || filepath.IsAbs(c.DBPath) {
		return ErrDBPathInvalid
	}
	clean := filepath.Clean(c.DBPath)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return ErrDBPathInvalid
	}
	if c.LogLevel != "" && !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}
