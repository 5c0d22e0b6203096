// Package config loads reflow.toml and turns it into format options.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"reflow/internal/format"
)

var (
	// ErrInvalidValue indicates a key with a value out of range.
	ErrInvalidValue = errors.New("invalid value")
	// ErrUnknownKey indicates a key reflow does not understand.
	ErrUnknownKey = errors.New("unknown key")
)

// Config is the decoded [format] section.
type Config struct {
	// Path is the file the values came from; empty for defaults.
	Path string

	LineWidth   int
	IndentWidth int
	// Passes holds every named correction switch.
	Passes map[string]bool
}

// Default returns the configuration used when no file is found.
func Default() Config {
	cfg := Config{LineWidth: 80, IndentWidth: 2, Passes: make(map[string]bool)}
	for _, name := range passKeys {
		cfg.Passes[name] = true
	}
	return cfg
}

var passKeys = []string{
	"align_comments",
	"align_case_when",
	"align_call_arguments",
	"align_assignments",
	"dedent_calls",
	"hug_literals",
	"compact_declarations",
}

type fileFormat struct {
	LineWidth           int  `toml:"line_width"`
	IndentWidth         int  `toml:"indent_width"`
	AlignComments       bool `toml:"align_comments"`
	AlignCaseWhen       bool `toml:"align_case_when"`
	AlignCallArguments  bool `toml:"align_call_arguments"`
	AlignAssignments    bool `toml:"align_assignments"`
	DedentCalls         bool `toml:"dedent_calls"`
	HugLiterals         bool `toml:"hug_literals"`
	CompactDeclarations bool `toml:"compact_declarations"`
}

func (f fileFormat) pass(name string) bool {
	switch name {
	case "align_comments":
		return f.AlignComments
	case "align_case_when":
		return f.AlignCaseWhen
	case "align_call_arguments":
		return f.AlignCallArguments
	case "align_assignments":
		return f.AlignAssignments
	case "dedent_calls":
		return f.DedentCalls
	case "hug_literals":
		return f.HugLiterals
	case "compact_declarations":
		return f.CompactDeclarations
	}
	return false
}

type file struct {
	Format fileFormat `toml:"format"`
}

// Load parses path. Keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	var raw file
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}

	cfg := Default()
	cfg.Path = path
	if meta.IsDefined("format", "line_width") {
		if raw.Format.LineWidth <= 0 {
			return Config{}, fmt.Errorf("%s: %w: line_width must be positive, got %d", path, ErrInvalidValue, raw.Format.LineWidth)
		}
		cfg.LineWidth = raw.Format.LineWidth
	}
	if meta.IsDefined("format", "indent_width") {
		if raw.Format.IndentWidth <= 0 {
			return Config{}, fmt.Errorf("%s: %w: indent_width must be positive, got %d", path, ErrInvalidValue, raw.Format.IndentWidth)
		}
		cfg.IndentWidth = raw.Format.IndentWidth
	}
	for _, name := range passKeys {
		if meta.IsDefined("format", name) {
			cfg.Passes[name] = raw.Format.pass(name)
		}
	}
	return cfg, nil
}

// Discover loads the nearest reflow.toml above startDir, or the defaults.
func Discover(startDir string) (Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// FormatOptions converts the configuration into pipeline options.
func (c Config) FormatOptions() format.Options {
	opts := format.Options{Width: c.LineWidth, IndentWidth: c.IndentWidth}
	for name, on := range c.Passes {
		if on {
			continue
		}
		if p, ok := format.PassByName(name); ok {
			opts.Disabled |= p
		}
	}
	return opts
}
