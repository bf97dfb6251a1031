// Package config loads and validates the modslice tool configuration.
//
// Configuration lives at .modslice/config.yaml and controls non-functional
// knobs of the pipeline (§A.2 of SPEC_FULL.md): default output mode,
// escrow sentinel characters, and the memoisation cache location. None of
// the pipeline's semantics (the meta-graph, the entity kinds, the bucket
// routing) are configurable — those are fixed by spec.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the modslice configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the modslice configuration directory.
const ConfigDirName = ".modslice"

// Config holds all modslice configuration.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Escrow EscrowConfig `yaml:"escrow"`
	Cache  CacheConfig  `yaml:"cache"`
}

// OutputConfig controls default emission behaviour (§6 flags).
type OutputConfig struct {
	SingleFile             bool `yaml:"single_file"`
	ElideNonTargetBodies   bool `yaml:"elide_non_target_bodies"`
	RemoveUnusedEnumFields bool `yaml:"remove_unused_enum_fields"`
}

// EscrowConfig controls the placeholder sentinel characters used by the
// text adapter (§4.1). Each class gets its own sentinel so restoration
// never has to disambiguate between classes sharing one index space.
type EscrowConfig struct {
	CommentSentinel    string `yaml:"comment_sentinel"`
	StringSentinel     string `yaml:"string_sentinel"`
	AttributeSentinel  string `yaml:"attribute_sentinel"`
	MacroLineSentinel  string `yaml:"macro_line_sentinel"`
}

// CacheConfig controls the memoisation blob store (§6).
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ErrConfigNotFound is returned when no config file can be found.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .modslice/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking
// up the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path. Merges the loaded
// config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .modslice directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .modslice directory if it doesn't exist.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are usable.
func Validate(cfg *Config) error {
	sentinels := map[string]string{
		"comment_sentinel":    cfg.Escrow.CommentSentinel,
		"string_sentinel":     cfg.Escrow.StringSentinel,
		"attribute_sentinel":  cfg.Escrow.AttributeSentinel,
		"macro_line_sentinel": cfg.Escrow.MacroLineSentinel,
	}
	seen := make(map[string]string, len(sentinels))
	for name, s := range sentinels {
		if s == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, name)
		}
		if isIdentChar(rune(s[0])) {
			return fmt.Errorf("%w: %s must not be a C identifier character, got %q", ErrInvalidConfig, name, s)
		}
		if other, ok := seen[s]; ok {
			return fmt.Errorf("%w: %s and %s must not share a sentinel %q", ErrInvalidConfig, name, other, s)
		}
		seen[s] = name
	}
	return nil
}

func isIdentChar(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// SaveDefault writes the default configuration to .modslice/config.yaml
// in workDir. Creates the .modslice directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# modslice configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
