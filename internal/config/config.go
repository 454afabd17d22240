// Package config loads and validates the converter configuration,
// including the error handling policy section.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/graceful"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidLevel    = errors.New("invalid handling level")
	ErrInvalidCategory = errors.New("invalid error category")
	ErrInvalidLimit    = errors.New("limit must be positive")
)

// appConfigDir is the subdirectory under the user config dir searched for
// named configs.
const appConfigDir = "kumihan"

// Config holds all configuration for document generation.
type Config struct {
	Input         InputConfig         `yaml:"input"`
	Output        OutputConfig        `yaml:"output"`
	CSS           CSSConfig           `yaml:"css"`
	Document      DocumentConfig      `yaml:"document"`
	ErrorHandling ErrorHandlingConfig `yaml:"errorHandling"`
	Report        ReportConfig        `yaml:"report"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// CSSConfig defines CSS styling options.
type CSSConfig struct {
	Style string `yaml:"style"` // Name of a built-in style (empty = default)
}

// DocumentConfig defines document-level metadata.
type DocumentConfig struct {
	Title    string `yaml:"title"`    // Document title (empty = derived from file name)
	Template string `yaml:"template"` // Template set name (empty = default)
}

// ErrorHandlingConfig defines the graceful handling policy.
type ErrorHandlingConfig struct {
	DefaultLevel    string            `yaml:"defaultLevel"`    // strict|normal|lenient|ignore
	Levels          map[string]string `yaml:"levels"`          // per-category overrides
	MaxPerCategory  map[string]int    `yaml:"maxPerCategory"`  // abort threshold per category
	ShowSuggestions *bool             `yaml:"showSuggestions"` // nil = true
	ShowStatistics  *bool             `yaml:"showStatistics"`  // nil = true
	DisplayLimit    int               `yaml:"displayLimit"`    // recent records in summaries (0 = default)
	ContextLines    int               `yaml:"contextLines"`    // context lines around violations (0 = default)
	DisableRecovery bool              `yaml:"disableRecovery"` // skip automated recovery entirely
}

// ReportConfig defines error report export options.
type ReportConfig struct {
	Format string `yaml:"format"` // "json", "html", "text" (default: "json")
	Path   string `yaml:"path"`   // Export path (empty = no export)
}

// DefaultConfig returns a neutral configuration: normal handling,
// suggestions and statistics on, no report export.
func DefaultConfig() *Config {
	return &Config{
		Input:  InputConfig{DefaultDir: ""},
		Output: OutputConfig{DefaultDir: ""},
		CSS:    CSSConfig{Style: ""},
		ErrorHandling: ErrorHandlingConfig{
			DefaultLevel: string(graceful.LevelNormal),
		},
		Report: ReportConfig{Format: "json"},
	}
}

// Validate checks the error handling section: levels must be known,
// categories must exist, limits must be positive.
func (c *Config) Validate() error {
	if c.ErrorHandling.DefaultLevel != "" {
		if !graceful.Level(strings.ToLower(c.ErrorHandling.DefaultLevel)).Valid() {
			return fmt.Errorf("%w: errorHandling.defaultLevel %q", ErrInvalidLevel, c.ErrorHandling.DefaultLevel)
		}
	}

	for cat, level := range c.ErrorHandling.Levels {
		if !diagnostic.Category(cat).Valid() {
			return fmt.Errorf("%w: errorHandling.levels key %q", ErrInvalidCategory, cat)
		}
		if !graceful.Level(strings.ToLower(level)).Valid() {
			return fmt.Errorf("%w: errorHandling.levels[%s] = %q", ErrInvalidLevel, cat, level)
		}
	}

	for cat, limit := range c.ErrorHandling.MaxPerCategory {
		if !diagnostic.Category(cat).Valid() {
			return fmt.Errorf("%w: errorHandling.maxPerCategory key %q", ErrInvalidCategory, cat)
		}
		if limit <= 0 {
			return fmt.Errorf("%w: errorHandling.maxPerCategory[%s] = %d", ErrInvalidLimit, cat, limit)
		}
	}

	if c.ErrorHandling.DisplayLimit < 0 {
		return fmt.Errorf("%w: errorHandling.displayLimit = %d", ErrInvalidLimit, c.ErrorHandling.DisplayLimit)
	}
	if c.ErrorHandling.ContextLines < 0 {
		return fmt.Errorf("%w: errorHandling.contextLines = %d", ErrInvalidLimit, c.ErrorHandling.ContextLines)
	}

	if c.Report.Format != "" {
		switch strings.ToLower(c.Report.Format) {
		case "json", "html", "text":
		default:
			return fmt.Errorf("report.format: invalid value %q (must be json, html, or text)", c.Report.Format)
		}
	}

	return nil
}

// Policy converts the error handling section into a session policy.
func (c *Config) Policy() graceful.Policy {
	p := graceful.DefaultPolicy()

	if c.ErrorHandling.DefaultLevel != "" {
		p.DefaultLevel = graceful.ParseLevel(c.ErrorHandling.DefaultLevel)
	}
	for cat, level := range c.ErrorHandling.Levels {
		p.Levels[diagnostic.ParseCategory(cat)] = graceful.ParseLevel(level)
	}
	for cat, limit := range c.ErrorHandling.MaxPerCategory {
		p.MaxPerCategory[diagnostic.ParseCategory(cat)] = limit
	}

	if c.ErrorHandling.ShowSuggestions != nil {
		p.ShowSuggestions = *c.ErrorHandling.ShowSuggestions
	}
	if c.ErrorHandling.ShowStatistics != nil {
		p.ShowStatistics = *c.ErrorHandling.ShowStatistics
	}
	if c.ErrorHandling.DisplayLimit > 0 {
		p.DisplayLimit = c.ErrorHandling.DisplayLimit
	}
	if c.ErrorHandling.ContextLines > 0 {
		p.ContextLines = c.ErrorHandling.ContextLines
	}

	return p
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/kumihan/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appConfigDir, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
