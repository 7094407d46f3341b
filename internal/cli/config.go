package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/hoard/internal/paths"
	"github.com/mesh-intelligence/hoard/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyVaultDir   = "vault_dir"
	cfgKeyDBPath     = "db_path"
	cfgKeySchemaFile = "schema_file"
	cfgKeyLogLevel   = "log_level"
	cfgKeyAutosave   = "autosave"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# hoard configuration

# Vault directory (optional; overridable by --vault or HOARD_VAULT_DIR)
# vault_dir:

# Blob location relative to the vault
db_path: .datahoarder/db.sqlite

# Custom schema script relative to the vault (optional)
# schema_file:

# debug, info, warn, or error
log_level: info

# Save after every mutating command
autosave: true
`

// loadConfig reads config.yaml from configDir with Viper, creating the
// directory and a default file on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := types.DefaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyDBPath, def.DBPath)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyAutosave, def.Autosave)
	v.SetDefault(cfgKeyVaultDir, "")
	v.SetDefault(cfgKeySchemaFile, "")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFileName)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// buildConfig merges viper settings with the global flags.
func buildConfig(v *viper.Viper, f *rootFlags) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	vault, err := paths.ResolveVaultDir(f.vaultDir, cfg.VaultDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve vault dir: %w", err)
	}
	cfg.VaultDir = vault
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, userError("invalid configuration: %v", err)
	}
	return cfg, nil
}
