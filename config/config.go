package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vfsim/vfsim/internal/util"
	"gopkg.in/yaml.v3"
)

// Config contains runtime configuration values for the simulator.
type Config struct {
	Filesystem  string        // Simulated filesystem label, e.g. "ext4" (Default ext4)
	LogLvl      util.LogLevel // Log verbosity (Default info)
	JournalTail int           // Journal records shown by the shell's log command (Default 50)
	SeedTree    bool          // Seed the canonical starter hierarchy on construction (Default true)
	// NOTE: FUSE options only apply in mount mode:

	AttrTimeout  float64 // Attribute cache timeout in seconds (Default 1.0)
	EntryTimeout float64 // Directory entry cache timeout in seconds (Default 1.0)
	AllowOther   bool    // Whether other users can access the mount (Default false)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	Filesystem   *string  `yaml:"filesystem,omitempty" json:"filesystem,omitempty"`
	LogLvl       *int     `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	JournalTail  *int     `yaml:"journal_tail,omitempty" json:"journal_tail,omitempty"`
	SeedTree     *bool    `yaml:"seed_tree,omitempty" json:"seed_tree,omitempty"`
	AttrTimeout  *float64 `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty"`
	EntryTimeout *float64 `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty"`
	AllowOther   *bool    `yaml:"allow_other,omitempty" json:"allow_other,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		Filesystem:   DefaultFilesystem,
		LogLvl:       DefaultLogLvl,
		JournalTail:  DefaultJournalTail,
		SeedTree:     DefaultSeedTree,
		AttrTimeout:  DefaultAttrTimeout,
		EntryTimeout: DefaultEntryTimeout,
		AllowOther:   DefaultAllowOther,
	}
}

// NewConfig creates a Config from defaults with an optional override applied.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.Filesystem != nil {
		c.Filesystem = *override.Filesystem
	}
	if override.LogLvl != nil {
		c.LogLvl = *override.LogLvl
	}
	if override.JournalTail != nil {
		c.JournalTail = *override.JournalTail
	}
	if override.SeedTree != nil {
		c.SeedTree = *override.SeedTree
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
	if override.AllowOther != nil {
		c.AllowOther = *override.AllowOther
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
