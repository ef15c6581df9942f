// Package config loads orderexport settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"orderexport/internal/catalogue"
	"orderexport/internal/etl"
	"orderexport/internal/export"
)

const (
	appName        = "orderexport"
	configFileName = "config.yaml"
	dbFileName     = "orderexport.db"
)

// Config is the merged view of defaults and the config file.
type Config struct {
	// DataDir holds the SQLite database.
	DataDir string `yaml:"dataDir"`
	// Catalogue is an optional YAML file replacing the built-in field list.
	Catalogue string `yaml:"catalogue,omitempty"`

	Log     LogConfig                   `yaml:"log"`
	Export  ExportConfig                `yaml:"export"`
	Sources map[string]etl.SourceConfig `yaml:"sources,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	SeqURL string `yaml:"seqURL,omitempty"`
}

type ExportConfig struct {
	OutputDir    string `yaml:"outputDir"`
	TemplateName string `yaml:"templateName"`
	PreviewLimit int    `yaml:"previewLimit"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Log:     LogConfig{Level: "info"},
		Export: ExportConfig{
			OutputDir:    ".",
			TemplateName: export.DefaultTemplateName,
			PreviewLimit: 50,
		},
	}
}

// DefaultPath is <user config dir>/orderexport/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, appName, configFileName)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}

// Load reads path over the defaults. A missing file is not an error; an
// empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) normalize() {
	def := Default()
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = def.DataDir
	}
	c.DataDir = expandHome(c.DataDir)
	c.Catalogue = expandHome(c.Catalogue)
	c.Export.OutputDir = expandHome(c.Export.OutputDir)
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = def.Export.OutputDir
	}
	if strings.TrimSpace(c.Export.TemplateName) == "" {
		c.Export.TemplateName = def.Export.TemplateName
	}
	if c.Export.PreviewLimit <= 0 {
		c.Export.PreviewLimit = def.Export.PreviewLimit
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// DBPath is the SQLite file inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, dbFileName)
}

// LoadCatalogue returns the configured catalogue, or the built-in one.
func (c *Config) LoadCatalogue() (*catalogue.Catalogue, error) {
	if c.Catalogue == "" {
		return catalogue.Default(), nil
	}
	f, err := os.Open(c.Catalogue)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	defer f.Close()
	cat, err := catalogue.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load catalogue %s: %w", c.Catalogue, err)
	}
	return cat, nil
}

// SourceDefaults returns the configured defaults for a source type.
func (c *Config) SourceDefaults(sourceType string) etl.SourceConfig {
	return c.Sources[sourceType].Merge(nil)
}
