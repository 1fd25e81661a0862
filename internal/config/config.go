// Package config loads .rbfmt.toml / .rbfmt.yml files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	ignore "github.com/sabhiram/go-gitignore"

	"rbfmt/internal/format"
)

// FileNames lists config file names in lookup order inside one directory.
var FileNames = []string{".rbfmt.toml", ".rbfmt.yml", ".rbfmt.yaml"}

// Config is one loaded config file. The zero value means "no file found"
// and resolves to the defaults.
type Config struct {
	// Path is the file the config came from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
	// Root is the directory exclude patterns are relative to.
	Root string `toml:"-" yaml:"-"`

	Format  FormatConfig `toml:"format" yaml:"format"`
	Exclude []string     `toml:"exclude" yaml:"exclude"`

	once    sync.Once
	ignores *ignore.GitIgnore
}

type FormatConfig struct {
	LineWidth   int         `toml:"line_width" yaml:"line_width"`
	IndentWidth int         `toml:"indent_width" yaml:"indent_width"`
	Block       BlockConfig `toml:"block" yaml:"block"`
	Chain       ChainConfig `toml:"chain" yaml:"chain"`
}

type BlockConfig struct {
	MaxInlineWidth      int `toml:"max_inline_width" yaml:"max_inline_width"`
	MaxInlineStatements int `toml:"max_inline_statements" yaml:"max_inline_statements"`
}

type ChainConfig struct {
	MinCalls int `toml:"min_calls" yaml:"min_calls"`
}

// Find walks from startDir up to the filesystem root and returns the first
// config file found.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the config governing startDir. Without a file
// the defaults are returned.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Config{}, nil
	}
	return Load(path)
}

// Load reads one config file. Unknown keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Path: path, Root: filepath.Dir(path)}
	switch filepath.Ext(path) {
	case ".toml":
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case ".yml", ".yaml":
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config format", path)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	f := c.Format
	switch {
	case f.LineWidth < 0:
		return fmt.Errorf("format.line_width must be positive, got %d", f.LineWidth)
	case f.IndentWidth < 0 || f.IndentWidth > 8:
		return fmt.Errorf("format.indent_width must be between 1 and 8, got %d", f.IndentWidth)
	case f.Block.MaxInlineWidth < 0:
		return fmt.Errorf("format.block.max_inline_width must be positive, got %d", f.Block.MaxInlineWidth)
	case f.Block.MaxInlineStatements < 0:
		return fmt.Errorf("format.block.max_inline_statements must be positive, got %d", f.Block.MaxInlineStatements)
	case f.Chain.MinCalls < 0:
		return fmt.Errorf("format.chain.min_calls must be positive, got %d", f.Chain.MinCalls)
	}
	return nil
}

// Options converts the config to formatter options. Unset keys take the
// formatter defaults.
func (c *Config) Options() format.Options {
	var o format.Options
	if c != nil {
		o = format.Options{
			MaxWidth:    c.Format.LineWidth,
			IndentWidth: c.Format.IndentWidth,
			Block: format.BlockPolicy{
				MaxInlineWidth:      c.Format.Block.MaxInlineWidth,
				MaxInlineStatements: c.Format.Block.MaxInlineStatements,
			},
			Chain: format.ChainPolicy{MinCalls: c.Format.Chain.MinCalls},
		}
	}
	return o.WithDefaults()
}

// Excluded reports whether path matches one of the exclude patterns.
// path may be absolute or relative to the working directory.
func (c *Config) Excluded(path string) bool {
	if c == nil || len(c.Exclude) == 0 {
		return false
	}
	c.once.Do(func() { c.ignores = ignore.CompileIgnoreLines(c.Exclude...) })
	rel := path
	if c.Root != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return false
		}
		if rel, err = filepath.Rel(c.Root, abs); err != nil || strings.HasPrefix(rel, "..") {
			return false
		}
	}
	return c.ignores.MatchesPath(filepath.ToSlash(rel))
}
