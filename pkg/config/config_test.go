package config

import (
	"testing"

	"github.com/xplshn/gpl0/pkg/cli"
)

func TestApplyStd(t *testing.T) {
	tests := []struct {
		std                 string
		elseOn, notOn, relX bool
	}{
		{"pl0", false, false, true},
		{"pl0x", true, true, true},
	}
	for _, tc := range tests {
		cfg := NewConfig()
		if err := cfg.ApplyStd(tc.std); err != nil {
			t.Fatalf("ApplyStd(%q): %v", tc.std, err)
		}
		if got := cfg.IsFeatureEnabled(FeatElse); got != tc.elseOn {
			t.Errorf("%s: else = %v; want %v", tc.std, got, tc.elseOn)
		}
		if got := cfg.IsFeatureEnabled(FeatNot); got != tc.notOn {
			t.Errorf("%s: not = %v; want %v", tc.std, got, tc.notOn)
		}
		if got := cfg.IsFeatureEnabled(FeatRelExt); got != tc.relX {
			t.Errorf("%s: rel-ext = %v; want %v", tc.std, got, tc.relX)
		}
		if cfg.StdName != tc.std {
			t.Errorf("StdName = %q; want %q", cfg.StdName, tc.std)
		}
	}
}

func TestApplyStdPedantic(t *testing.T) {
	cfg := NewConfig()
	cfg.SetWarning(WarnPedantic, true)
	if err := cfg.ApplyStd("pl0"); err != nil {
		t.Fatal(err)
	}
	if cfg.IsFeatureEnabled(FeatRelExt) {
		t.Errorf("pedantic pl0 still allows '>'")
	}
	if !cfg.IsWarningEnabled(WarnExtra) {
		t.Errorf("pedantic pl0 did not enable extra warnings")
	}
}

func TestApplyStdUnknown(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.ApplyStd("pascal"); err == nil {
		t.Fatalf("ApplyStd(pascal) succeeded")
	}
	if cfg.StdName != "pl0x" {
		t.Errorf("StdName changed to %q after a failed ApplyStd", cfg.StdName)
	}
}

func TestFlagGroupsOverrideStd(t *testing.T) {
	cfg := NewConfig()
	fs := cli.NewFlagSet("test")
	wf, ff := cfg.SetupFlagGroups(fs)
	if len(wf) != int(WarnCount) || len(ff) != int(FeatCount) {
		t.Fatalf("got %d warning and %d feature entries", len(wf), len(ff))
	}
	if err := fs.Parse([]string{"-Felse", "-Wno-infinite-loop", "-Wextra", "in.json"}); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyStd("pl0"); err != nil {
		t.Fatal(err)
	}
	cfg.ApplyFlagGroups(wf, ff)

	if !cfg.IsFeatureEnabled(FeatElse) {
		t.Errorf("-Felse did not override -std=pl0")
	}
	if cfg.IsFeatureEnabled(FeatNot) {
		t.Errorf("'not' enabled without a flag under pl0")
	}
	if cfg.IsWarningEnabled(WarnInfiniteLoop) {
		t.Errorf("-Wno-infinite-loop ignored")
	}
	if !cfg.IsWarningEnabled(WarnExtra) {
		t.Errorf("-Wextra ignored")
	}
	if !cfg.IsWarningEnabled(WarnEmptyBody) {
		t.Errorf("untouched warning was disabled")
	}
}

func TestNameMaps(t *testing.T) {
	cfg := NewConfig()
	for name, ft := range cfg.FeatureMap {
		if cfg.Features[ft].Name != name {
			t.Errorf("FeatureMap[%q] = %v named %q", name, ft, cfg.Features[ft].Name)
		}
	}
	if wt, ok := cfg.WarningMap["constant-cond"]; !ok || wt != WarnConstantCond {
		t.Errorf("WarningMap[constant-cond] = %v, %v", wt, ok)
	}
}
