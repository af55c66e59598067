// Package config loads the kotoba.yaml project file describing a content
// pack localization: languages, pacing, dictionary store and the relative
// paths the surrounding tool resolved for the pack.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the project file looked up in the working directory.
const DefaultFileName = "kotoba.yaml"

// Config is the recognized configuration surface.
type Config struct {
	PackName    string `yaml:"pack_name"`    // Pack identity for versioned artifacts
	PackFormat  int    `yaml:"pack_format"`  // pack.mcmeta pack_format
	Description string `yaml:"description"`  // pack.mcmeta description
	SourceLang  string `yaml:"source_lang"`  // e.g. "en_us"
	TargetLang  string `yaml:"target_lang"`  // e.g. "ja_jp"
	Delimiter   string `yaml:"delimiter"`    // Separator between phonetic segments
	IntervalSec int    `yaml:"interval_sec"` // Minimum spacing between translation calls
	MaxAttempts int    `yaml:"max_attempts"` // Attempts per entry against the provider
	Dictionary  string `yaml:"dictionary"`   // Dictionary file path or redis:// URL
	Context     string `yaml:"context"`      // Content context for the provider

	// Paths are relative to the project root; the tool never constructs
	// absolute paths itself.
	ModsDir   string `yaml:"mods_dir"`
	WorkDir   string `yaml:"work_dir"`
	OutputDir string `yaml:"output_dir"`

	Provider Provider `yaml:"provider"`
}

// Provider configures the translation collaborator.
type Provider struct {
	Model     string `yaml:"model"`       // Model name (default "gpt-4o-mini")
	BaseURL   string `yaml:"base_url"`    // Custom endpoint (optional)
	APIKeyEnv string `yaml:"api_key_env"` // Env var holding the API key
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	return &Config{
		PackName:    "LangPack",
		PackFormat:  48,
		Description: "Generated language pack",
		SourceLang:  "en_us",
		TargetLang:  "ja_jp",
		Delimiter:   " ",
		IntervalSec: 3,
		MaxAttempts: 3,
		Dictionary:  "dictionary.json",
		ModsDir:     "mods",
		WorkDir:     "work",
		OutputDir:   "resourcepacks",
		Provider: Provider{
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
	}
}

// Load reads a project file, applying defaults for absent fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot honor.
func (c *Config) Validate() error {
	for name, dir := range map[string]string{
		"mods_dir":   c.ModsDir,
		"work_dir":   c.WorkDir,
		"output_dir": c.OutputDir,
	} {
		if dir == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if filepath.IsAbs(dir) {
			return fmt.Errorf("%s must be a relative path, got %q", name, dir)
		}
	}
	if c.IntervalSec < 0 {
		return fmt.Errorf("interval_sec must not be negative, got %d", c.IntervalSec)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}
