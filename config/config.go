/*
Package config loads the configuration of the KG compiler command.

Configuration is read from kgc.yaml (or kgc.yml) or kgc.toml. Values not set
in the file are defaulted; command line flags override file values.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/scanner"
	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration of kgc.
type Config struct {
	Trace       string `yaml:"trace" toml:"trace"`               // trace level
	Output      string `yaml:"output" toml:"output"`             // directory for generated files
	Package     string `yaml:"package" toml:"package"`           // Go package name of generated files
	Workers     int    `yaml:"workers" toml:"workers"`           // parallel workers of a batch
	Templates   string `yaml:"templates" toml:"templates"`       // file with template parts
	Encoding    string `yaml:"encoding" toml:"encoding"`         // encoding of parsed sources
	Format      string `yaml:"format" toml:"format"`             // free or fixed
	LineComment string `yaml:"line-comment" toml:"line_comment"` // prefix of line comments in parsed sources
	Path        string `yaml:"-" toml:"-"`                       // file the configuration has been loaded from
}

// DefaultNames are the file names searched for by Find.
var DefaultNames = []string{"kgc.yaml", "kgc.yml", "kgc.toml"}

// Default returns a configuration with default values.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads a configuration file. The format is selected by the file
// extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &koopa.IOError{Path: path, Err: err}
	}
	c := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		_, err = toml.Decode(string(data), c)
	default:
		return nil, fmt.Errorf("config %s: unknown format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	c.applyDefaults()
	c.Path = path
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Find loads the first of DefaultNames present in dir. If none exists, the
// default configuration is returned.
func Find(dir string) (*Config, error) {
	for _, name := range DefaultNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, &koopa.IOError{Path: path, Err: err}
		}
	}
	return Default(), nil
}

func (c *Config) applyDefaults() {
	if c.Trace == "" {
		c.Trace = "Info"
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Encoding == "" {
		c.Encoding = "utf-8"
	}
	if c.Format == "" {
		c.Format = "free"
	}
}

// Validate checks the values of a configuration.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, is %d", c.Workers)
	}
	if _, err := scanner.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := scanner.Decode(strings.NewReader(""), c.Encoding); err != nil {
		return err
	}
	return nil
}

// TraceLevel returns the configured trace level.
func (c *Config) TraceLevel() tracing.TraceLevel {
	return tracing.TraceLevelFromString(c.Trace)
}

// SourceFormat returns the configured source format.
func (c *Config) SourceFormat() scanner.SourceFormat {
	f, _ := scanner.ParseFormat(c.Format)
	return f
}
