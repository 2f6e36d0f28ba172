// Package config provides configuration management for the g2p CLI tool
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/Davincible/g2p/internal/validation"
	"github.com/Davincible/g2p/pkg/field"
)

// Config represents the main configuration structure
type Config struct {
	Version  string          `json:"version"`
	Defaults DefaultSettings `json:"defaults"`
	Build    BuildConfig     `json:"build"`
	Emit     EmitConfig      `json:"emit"`
	UI       UIConfig        `json:"ui"`
	Fields   []FieldEntry    `json:"fields"`
}

// DefaultSettings contains default values for commands that take a field
type DefaultSettings struct {
	Name    string `json:"name"`    // Default: GF256
	Degree  uint64 `json:"degree"`  // Default: 8
	Modulus string `json:"modulus"` // Empty means search for one
}

// BuildConfig controls table construction
type BuildConfig struct {
	Workers     int    `json:"workers"`      // 0 means one per CPU
	MemoryLimit uint64 `json:"memory_limit"` // Bytes, 0 disables the limit
	CacheSize   int    `json:"cache_size"`   // Fields kept by the registry
}

// EmitConfig contains code generation settings
type EmitConfig struct {
	Package   string `json:"package"`    // Go package name of generated files
	OutputDir string `json:"output_dir"` // Where artifacts are stored
}

// UIConfig contains user interface settings
type UIConfig struct {
	UseColor  bool   `json:"use_color"` // Enable colored output
	Verbosity string `json:"verbosity"` // quiet, normal, verbose
}

// FieldEntry declares a named field in the config file
type FieldEntry struct {
	Name    string `json:"name"`
	P       uint64 `json:"p"`
	Modulus string `json:"modulus,omitempty"`
}

// ConfigManager manages configuration loading and saving
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new configuration manager using the default
// config location
func NewConfigManager() (*ConfigManager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewConfigManagerAt(configPath)
}

// NewConfigManagerAt creates a configuration manager for an explicit path,
// writing the default config there if none exists yet
func NewConfigManagerAt(configPath string) (*ConfigManager, error) {
	cm := &ConfigManager{
		configPath: configPath,
	}

	if err := cm.LoadConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cm.config = DefaultConfig()
		if err := cm.SaveConfig(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return cm, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Defaults: DefaultSettings{
			Name:    "GF256",
			Degree:  8,
			Modulus: "",
		},
		Build: BuildConfig{
			Workers:     0,
			MemoryLimit: field.DefaultMemoryLimit,
			CacheSize:   field.DefaultRegistrySize,
		},
		Emit: EmitConfig{
			Package:   "gf",
			OutputDir: ".",
		},
		UI: UIConfig{
			UseColor:  true,
			Verbosity: "normal",
		},
		Fields: []FieldEntry{},
	}
}

// LoadConfig loads the configuration from disk
func (cm *ConfigManager) LoadConfig() error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	cm.config = config
	return nil
}

// SaveConfig saves the configuration to disk
func (cm *ConfigManager) SaveConfig() error {
	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cm.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// SetConfig updates the configuration
func (cm *ConfigManager) SetConfig(config *Config) {
	cm.config = config
}

// Path returns the location of the config file
func (cm *ConfigManager) Path() string {
	return cm.configPath
}

// AddField declares a new field and saves the config
func (cm *ConfigManager) AddField(entry FieldEntry) error {
	if _, err := validation.NewDeclaration(entry.Name, entry.P, entry.Modulus); err != nil {
		return err
	}
	for _, f := range cm.config.Fields {
		if f.Name == entry.Name {
			return &validation.ConfigurationError{Option: "name", Msg: fmt.Sprintf("field '%s' is already declared", entry.Name)}
		}
	}

	cm.config.Fields = append(cm.config.Fields, entry)
	return cm.SaveConfig()
}

// RemoveField deletes a declared field and saves the config
func (cm *ConfigManager) RemoveField(name string) error {
	for i, f := range cm.config.Fields {
		if f.Name == name {
			cm.config.Fields = append(cm.config.Fields[:i], cm.config.Fields[i+1:]...)
			return cm.SaveConfig()
		}
	}
	return fmt.Errorf("field '%s' not found", name)
}

// Declarations validates every declared field
func (cm *ConfigManager) Declarations() ([]validation.Declaration, error) {
	decls := make([]validation.Declaration, 0, len(cm.config.Fields))
	seen := make(map[string]bool, len(cm.config.Fields))

	for i, entry := range cm.config.Fields {
		if seen[entry.Name] {
			return nil, &validation.ConfigurationError{
				Option: "name",
				Msg:    fmt.Sprintf("field %d: '%s' is declared twice", i+1, entry.Name),
			}
		}
		seen[entry.Name] = true

		decl, err := validation.NewDeclaration(entry.Name, entry.P, entry.Modulus)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i+1, err)
		}
		decls = append(decls, decl)
	}

	return decls, nil
}

// Declaration returns the declared field with the given name
func (cm *ConfigManager) Declaration(name string) (validation.Declaration, error) {
	for _, entry := range cm.config.Fields {
		if entry.Name == name {
			return validation.NewDeclaration(entry.Name, entry.P, entry.Modulus)
		}
	}
	return validation.Declaration{}, fmt.Errorf("field '%s' not found", name)
}

// DefaultDeclaration returns the field used when a command is given none
func (cm *ConfigManager) DefaultDeclaration() (validation.Declaration, error) {
	d := cm.config.Defaults
	return validation.NewDeclaration(d.Name, d.Degree, d.Modulus)
}

// BuildOptions translates the build settings into field options
func (cm *ConfigManager) BuildOptions() []field.Option {
	return []field.Option{
		field.WithWorkers(cm.config.Build.Workers),
		field.WithMemoryLimit(cm.config.Build.MemoryLimit),
	}
}

// NewRegistry returns a field registry configured from the build settings
func (cm *ConfigManager) NewRegistry() *field.Registry {
	return field.NewRegistry(cm.config.Build.CacheSize, cm.BuildOptions()...)
}

// getConfigPath returns the configuration file path
func getConfigPath() (string, error) {
	if customPath := os.Getenv("G2P_CONFIG"); customPath != "" {
		return customPath, nil
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "g2p", "config.json"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "g2p", "config.json"), nil
}
