// Package config handles site configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents site configuration stored in .bibsite.yml at the site root.
// Relative paths are resolved against the site root.
type Config struct {
	Bibliography   string        `yaml:"bibliography"`              // BibTeX source
	Output         string        `yaml:"output"`                    // emitted publication document
	Format         string        `yaml:"format,omitempty"`          // json or jsonl; empty follows the output extension
	InternalFields []string      `yaml:"internal_fields,omitempty"` // fields hidden from displayed citations
	PDFRoot        string        `yaml:"pdf_root,omitempty"`        // base directory for relative pdf fields
	LinkRate       float64       `yaml:"link_rate,omitempty"`       // link checks per second
	LinkTimeout    time.Duration `yaml:"link_timeout,omitempty"`    // per-request link check timeout
}

const (
	ConfigFile = ".bibsite.yml"
	EnvFile    = ".env"
	StateDir   = ".bibsite"
	CacheDir   = "cache"
	DBFile     = "publications.db"

	DefaultBibliography = "_bibliography/publications.bib"
	DefaultOutput       = "_data/publications.json"
	DefaultLinkRate     = 2.0
	DefaultLinkTimeout  = 10 * time.Second
)

// Environment variables that override file settings.
const (
	EnvRoot         = "BIBSITE_ROOT"
	EnvBibliography = "BIBSITE_BIBLIOGRAPHY"
	EnvOutput       = "BIBSITE_OUTPUT"
)

// siteMarkers identify a site root when walking up from the working directory.
var siteMarkers = []string{ConfigFile, "_config.yml"}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Bibliography:   DefaultBibliography,
		Output:         DefaultOutput,
		InternalFields: []string{"selected", "type", "presentation", "acceptance_rate"},
		LinkRate:       DefaultLinkRate,
		LinkTimeout:    DefaultLinkTimeout,
	}
}

// ConfigPath returns the path to .bibsite.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, StateDir, CacheDir)
}

// DBPath returns the path to the query index from a root path.
func DBPath(root string) string {
	return filepath.Join(root, StateDir, CacheDir, DBFile)
}

// IsSiteRoot checks if the given path holds a site configuration file.
func IsSiteRoot(dir string) bool {
	for _, marker := range siteMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// FindSiteRoot walks up from start to the nearest directory containing
// .bibsite.yml or _config.yml. If none is found, start itself is the root.
func FindSiteRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for dir := abs; ; {
		if IsSiteRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

// LoadEnvFile loads KEY=value pairs from the site's .env file into the
// process environment. Variables that are already set are kept.
func LoadEnvFile(root string) error {
	err := godotenv.Load(filepath.Join(root, EnvFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", EnvFile, err)
	}
	return nil
}

// Load reads configuration for the site at root. Defaults are overlaid
// with .bibsite.yml (if present) and then with environment overrides.
func Load(root string) (*Config, error) {
	cfg, err := LoadFile(root)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads defaults overlaid with .bibsite.yml only, for editing the file.
func LoadFile(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigPath(root))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides paths from BIBSITE_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBibliography); v != "" {
		c.Bibliography = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bibliography) == "" {
		return fmt.Errorf("bibliography path is empty")
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output path is empty")
	}
	switch c.Format {
	case "", "json", "jsonl":
	default:
		return fmt.Errorf("invalid format: %s (valid: json, jsonl)", c.Format)
	}
	if c.LinkRate <= 0 {
		return fmt.Errorf("link_rate must be positive, got %v", c.LinkRate)
	}
	if c.LinkTimeout <= 0 {
		return fmt.Errorf("link_timeout must be positive, got %v", c.LinkTimeout)
	}
	return nil
}

// Save writes configuration to the site at the given root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// BibliographyPath resolves the bibliography source against root.
func (c *Config) BibliographyPath(root string) string {
	return resolve(root, c.Bibliography)
}

// OutputPath resolves the output document against root.
func (c *Config) OutputPath(root string) string {
	return resolve(root, c.Output)
}

// PDFPath resolves a pdf field value. URLs are returned unchanged with
// local == false.
func (c *Config) PDFPath(root, value string) (path string, local bool) {
	if strings.Contains(value, "://") {
		return value, false
	}
	base := root
	if c.PDFRoot != "" {
		base = resolve(root, c.PDFRoot)
	}
	return resolve(base, strings.TrimPrefix(value, "/")), true
}

func resolve(root, path string) string {
	path = ExpandPath(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
