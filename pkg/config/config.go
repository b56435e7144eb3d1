package config

import (
	"fmt"

	"github.com/xplshn/gpl0/pkg/cli"
)

// Machine constants of the BOF object format.
const (
	WordSize   = 4
	StackSpace = 4096
	Magic      = "BO32"
)

type Feature int

const (
	FeatElse Feature = iota
	FeatNot
	FeatRelExt
	FeatInitDecl
	FeatCount
)

type Warning int

const (
	WarnInfiniteLoop Warning = iota
	WarnConstantCond
	WarnEmptyBody
	WarnPedantic
	WarnExtra
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
	StdName    string
	WordSize   int
	StackSpace int
	Magic      string
}

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		StdName:    "pl0x",
		WordSize:   WordSize,
		StackSpace: StackSpace,
		Magic:      Magic,
	}

	features := map[Feature]Info{
		FeatElse:     {"else", true, "Allow an 'else' branch on 'if' statements."},
		FeatNot:      {"not", true, "Allow the logical 'not' operator."},
		FeatRelExt:   {"rel-ext", true, "Allow the '>' and '>=' relational operators."},
		FeatInitDecl: {"init-decl", true, "Allow declarations with a constant initializer (lowered 'const')."},
	}

	warnings := map[Warning]Info{
		WarnInfiniteLoop: {"infinite-loop", true, "Warn about 'while' loops whose condition is always true."},
		WarnConstantCond: {"constant-cond", true, "Warn about 'if' conditions that are constant."},
		WarnEmptyBody:    {"empty-body", true, "Warn about loops with an empty body."},
		WarnPedantic:     {"pedantic", false, "Issue all warnings demanded by the strict standard."},
		WarnExtra:        {"extra", false, "Enable extra miscellaneous warnings."},
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

// ApplyStd selects a language dialect. "pl0" is Wirth's language; "pl0x" adds
// else branches, 'not' and the extra relational operators.
func (c *Config) ApplyStd(stdName string) error {
	isPedantic := c.IsWarningEnabled(WarnPedantic)

	type stdSettings struct {
		feature   Feature
		pl0Value  bool
		pl0xValue bool
	}

	settings := []stdSettings{
		{FeatElse, false, true},
		{FeatNot, false, true},
		{FeatRelExt, !isPedantic, true},
		{FeatInitDecl, true, true},
	}

	switch stdName {
	case "pl0":
		for _, s := range settings {
			c.SetFeature(s.feature, s.pl0Value)
		}
		c.SetWarning(WarnExtra, isPedantic)
	case "pl0x":
		for _, s := range settings {
			c.SetFeature(s.feature, s.pl0xValue)
		}
	default:
		return fmt.Errorf("unsupported standard '%s'. Supported: 'pl0', 'pl0x'", stdName)
	}
	c.StdName = stdName
	return nil
}

// SetupFlagGroups registers one -W<name>/-Wno-<name> pair per warning and one
// -F<name>/-Fno-<name> pair per feature. The returned slices are indexed by
// Warning and Feature and are consumed by ApplyFlagGroups after parsing.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) (warningFlags, featureFlags []cli.FlagGroupEntry) {
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warningFlags = append(warningFlags, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description, Default: info.Enabled,
			Enabled: new(bool), Disabled: new(bool),
		})
	}
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		featureFlags = append(featureFlags, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description, Default: info.Enabled,
			Enabled: new(bool), Disabled: new(bool),
		})
	}

	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning flag", "Available Warning Flags:", warningFlags)
	fs.AddFlagGroup("Feature Flags", "Enable or disable specific features", "feature flag", "Available Features:", featureFlags)
	return warningFlags, featureFlags
}

// ApplyFlagGroups applies parsed -W and -F flags on top of the current
// settings, so they override whatever the standard selected.
func (c *Config) ApplyFlagGroups(warningFlags, featureFlags []cli.FlagGroupEntry) {
	for i, entry := range warningFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range featureFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
