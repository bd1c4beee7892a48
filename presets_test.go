package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPresets(t *testing.T) {
	presets := DefaultPresets()
	for _, name := range []string{"easy", "medium", "hard"} {
		if _, ok := presets[name]; !ok {
			t.Fatalf("missing built-in preset %q", name)
		}
	}

	hard, err := StrategyForPreset(presets, "hard")
	if err != nil {
		t.Fatalf("hard preset: %v", err)
	}
	if hard.Style != StyleMinimax || hard.Depth != 6 || hard.ForkScan != ForkScanAllRows {
		t.Fatalf("hard preset misconfigured: %+v", hard)
	}

	easy, err := StrategyForPreset(presets, "easy")
	if err != nil {
		t.Fatalf("easy preset: %v", err)
	}
	if easy.Style != StyleWeighted {
		t.Fatalf("easy preset should sample, got style %s", easy.Style)
	}
}

func TestLoadPresetsMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	content := `presets:
  easy:
    style: greedy
    depth: 1
  blitz:
    style: minimax
    depth: 4
    fork_scan: all_rows
    seed: 99
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}

	easy, err := StrategyForPreset(presets, "easy")
	if err != nil {
		t.Fatalf("easy preset: %v", err)
	}
	if easy.Style != StyleGreedy || easy.Depth != 1 {
		t.Fatalf("file did not override easy: %+v", easy)
	}

	blitz, err := StrategyForPreset(presets, "blitz")
	if err != nil {
		t.Fatalf("blitz preset: %v", err)
	}
	if blitz.Style != StyleMinimax || blitz.Depth != 4 || blitz.ForkScan != ForkScanAllRows || blitz.TieBreakSeed != 99 {
		t.Fatalf("new preset not loaded: %+v", blitz)
	}

	// Untouched defaults survive the merge.
	if _, err := StrategyForPreset(presets, "hard"); err != nil {
		t.Fatalf("hard preset lost in merge: %v", err)
	}
}

func TestLoadPresetsEmptyPath(t *testing.T) {
	presets, err := LoadPresets("")
	if err != nil {
		t.Fatalf("LoadPresets(\"\"): %v", err)
	}
	if len(presets) != len(DefaultPresets()) {
		t.Fatalf("empty path should return the defaults")
	}
}

func TestPresetRejectsUnknownValues(t *testing.T) {
	if _, err := (Preset{Style: "psychic"}).StrategyConfig(); err == nil {
		t.Fatalf("unknown style accepted")
	}
	if _, err := (Preset{ForkScan: "sideways"}).StrategyConfig(); err == nil {
		t.Fatalf("unknown fork scan scope accepted")
	}
	if _, err := StrategyForPreset(DefaultPresets(), "nightmare"); err == nil {
		t.Fatalf("unknown preset name accepted")
	}
}

func TestPresetZeroValuesKeepDefaults(t *testing.T) {
	config, err := (Preset{}).StrategyConfig()
	if err != nil {
		t.Fatalf("empty preset: %v", err)
	}
	defaults := DefaultStrategyConfig()
	if config.Depth != defaults.Depth || config.TieBreakSeed != defaults.TieBreakSeed || config.TacticalScan != defaults.TacticalScan {
		t.Fatalf("empty preset drifted from the defaults: %+v", config)
	}
}
