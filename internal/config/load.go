package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
)

// Load loads configuration with priority: defaults < preset < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath, presetFlag()); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	} else if err := decode(cfg, nil, presetFlag()); err != nil {
		return nil, err
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./skyconfig.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MidgardSky")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MidgardSky")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "midgard-sky")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "midgard-sky")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// A non-empty forcePreset replaces the file's preset.
func loadFromFile(cfg *Config, path, forcePreset string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return decode(cfg, data, forcePreset)
}

// decode overlays a YAML document on cfg. The document's preset (or
// forcePreset when set) replaces the atmosphere before the document's own
// atmosphere keys are applied, so explicit keys always win over the preset.
func decode(cfg *Config, data []byte, forcePreset string) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if forcePreset != "" {
		cfg.Preset = forcePreset
	}
	if cfg.Preset == "" {
		return nil
	}

	params, err := atmosphere.Preset(cfg.Preset)
	if err != nil {
		return err
	}
	cfg.Atmosphere = params

	// Second pass restores explicit atmosphere keys on top of the preset
	var overlay struct {
		Atmosphere *yaml.Node `yaml:"atmosphere"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return err
	}
	if overlay.Atmosphere != nil {
		return overlay.Atmosphere.Decode(&cfg.Atmosphere)
	}
	return nil
}
