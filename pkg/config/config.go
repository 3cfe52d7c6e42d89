package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xplshn/omnia/pkg/cli"
	"github.com/xplshn/omnia/pkg/coerce"
)

// DefaultMaxDepth bounds expression nesting during evaluation.
const DefaultMaxDepth = 10000

type Feature int

const (
	FeatFold Feature = iota
	FeatStrictNarrowing
	FeatBoolConcat
	FeatCount
)

type Warning int

const (
	WarnNarrowing Warning = iota
	WarnTruncation
	WarnImplicitConcat
	WarnUnaryOp
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	MaxDepth   int
}

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		MaxDepth:   DefaultMaxDepth,
	}

	features := map[Feature]Info{
		FeatFold:            {"fold", false, "Fold constant subexpressions before evaluation."},
		FeatStrictNarrowing: {"strict-narrowing", false, "Reject decimal operands with a fractional part when an integer left operand narrows them."},
		FeatBoolConcat:      {"bool-concat", true, "Allow a `bool` left operand to join char[] text with '+'."},
	}

	warnings := map[Warning]Info{
		WarnNarrowing:      {"narrowing", true, "Warn when a wider right operand is narrowed into the left operand's type."},
		WarnTruncation:     {"truncation", true, "Warn when a decimal operand is truncated into an integer type."},
		WarnImplicitConcat: {"implicit-concat", false, "Warn when a non-text operand is rendered and joined to char[] text."},
		WarnUnaryOp:        {"unary-op", true, "Warn about unary expressions, which cannot be evaluated."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// CoerceOptions returns the conversion options selected by the feature set.
func (c *Config) CoerceOptions() coerce.Options {
	return coerce.Options{StrictNarrowing: c.IsFeatureEnabled(FeatStrictNarrowing)}
}

// Depth returns the effective nesting limit.
func (c *Config) Depth() int {
	if c == nil || c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

func (c *Config) applyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	isNo := strings.HasPrefix(trimmed, "Wno-") || strings.HasPrefix(trimmed, "Fno-")
	enable := !isNo

	var name string
	var isWarning bool

	switch {
	case strings.HasPrefix(trimmed, "W"):
		name = strings.TrimPrefix(trimmed, "W")
		if isNo {
			name = strings.TrimPrefix(name, "no-")
		}
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
		if isNo {
			name = strings.TrimPrefix(name, "no-")
		}
	default:
		name = trimmed
		isWarning = true
	}

	if name == "all" && isWarning {
		for i := Warning(0); i < WarnCount; i++ {
			c.SetWarning(i, enable)
		}
		return nil
	}

	if isWarning {
		if w, ok := c.WarningMap[name]; ok {
			c.SetWarning(w, enable)
			return nil
		}
		return fmt.Errorf("unknown warning '%s'", name)
	}
	if f, ok := c.FeatureMap[name]; ok {
		c.SetFeature(f, enable)
		return nil
	}
	return fmt.Errorf("unknown feature '%s'", name)
}

// ProcessFlags applies -W/-F style flags; -Wall and -Wno-all go first so
// specific flags can override them.
func (c *Config) ProcessFlags(flags []string) error {
	for _, name := range flags {
		if name == "Wall" || name == "Wno-all" {
			if err := c.applyFlag("-" + name); err != nil {
				return err
			}
		}
	}
	for _, name := range flags {
		if name != "Wall" && name != "Wno-all" {
			if err := c.applyFlag("-" + name); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetupFlagGroups registers -W<warning>/-Wno-<warning> and -F<feature>/-Fno-<feature>
// flags, plus -Wall/-Wno-all. The returned entries are indexed by Warning and
// Feature; the warning entry at WarnCount is "all".
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) ([]cli.FlagGroupEntry, []cli.FlagGroupEntry) {
	warningFlags := make([]cli.FlagGroupEntry, WarnCount+1)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warningFlags[i] = groupEntry("W", info.Name, info.Description, info.Enabled)
	}
	warningFlags[WarnCount] = groupEntry("W", "all", "Every warning above; specific warning flags still apply on top.", false)

	featureFlags := make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		featureFlags[i] = groupEntry("F", info.Name, info.Description, info.Enabled)
	}
	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning flag", "Available Warning Flags:", warningFlags)
	fs.AddFlagGroup("Feature Flags", "Enable or disable evaluator features", "feature flag", "Available Features:", featureFlags)
	return warningFlags, featureFlags
}

func groupEntry(prefix, name, usage string, enabled bool) cli.FlagGroupEntry {
	on, off := enabled, false
	return cli.FlagGroupEntry{Name: name, Prefix: prefix, Usage: usage, Enabled: &on, Disabled: &off}
}

// ApplyFlagGroups applies the group flags given on the command line through
// ProcessFlags, leaving everything else as loaded.
func (c *Config) ApplyFlagGroups(fs *cli.FlagSet, warningFlags, featureFlags []cli.FlagGroupEntry) error {
	var given []string
	for _, group := range [][]cli.FlagGroupEntry{warningFlags, featureFlags} {
		for _, entry := range group {
			if name := entry.Prefix + entry.Name; fs.Changed(name) && *entry.Enabled {
				given = append(given, name)
			}
			if name := entry.Prefix + "no-" + entry.Name; fs.Changed(name) && *entry.Disabled {
				given = append(given, name)
			}
		}
	}
	return c.ProcessFlags(given)
}

type fileConfig struct {
	MaxDepth int             `yaml:"max_depth"`
	Features map[string]bool `yaml:"features"`
	Warnings map[string]bool `yaml:"warnings"`
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := NewConfig()
	if err := cfg.Decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode applies a YAML document to c. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fc fileConfig
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if fc.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", fc.MaxDepth)
	}
	if fc.MaxDepth > 0 {
		c.MaxDepth = fc.MaxDepth
	}
	for name, enabled := range fc.Features {
		ft, ok := c.FeatureMap[name]
		if !ok {
			return fmt.Errorf("unknown feature '%s'", name)
		}
		c.SetFeature(ft, enabled)
	}
	for name, enabled := range fc.Warnings {
		wt, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(wt, enabled)
	}
	return nil
}
