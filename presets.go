package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is the YAML-facing shape of a StrategyConfig. Named presets map
// difficulty levels to styles: easy samples, medium is greedy, hard
// searches.
type Preset struct {
	Style        string `yaml:"style"`
	Depth        int    `yaml:"depth"`
	TacticalScan *bool  `yaml:"tactical_scan"`
	ForkScan     string `yaml:"fork_scan"`
	Seed         uint64 `yaml:"seed"`
}

type presetFile struct {
	Presets map[string]Preset `yaml:"presets"`
}

func DefaultPresets() map[string]Preset {
	on := true
	return map[string]Preset{
		"easy": {
			Style:        "weighted",
			Depth:        2,
			TacticalScan: &on,
			ForkScan:     "bottom_row",
			Seed:         1,
		},
		"medium": {
			Style:        "greedy",
			Depth:        2,
			TacticalScan: &on,
			ForkScan:     "bottom_row",
			Seed:         2,
		},
		"hard": {
			Style:        "minimax",
			Depth:        6,
			TacticalScan: &on,
			ForkScan:     "all_rows",
			Seed:         3,
		},
	}
}

// LoadPresets reads named presets from a YAML file and merges them over the
// defaults. An empty path returns the defaults unchanged.
func LoadPresets(path string) (map[string]Preset, error) {
	presets := DefaultPresets()
	if path == "" {
		return presets, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for name, preset := range file.Presets {
		presets[name] = preset
	}
	return presets, nil
}

func (p Preset) StrategyConfig() (StrategyConfig, error) {
	config := DefaultStrategyConfig()
	switch p.Style {
	case "", "minimax":
		config.Style = StyleMinimax
	case "greedy":
		config.Style = StyleGreedy
	case "weighted":
		config.Style = StyleWeighted
	default:
		return StrategyConfig{}, fmt.Errorf("unknown style %q", p.Style)
	}
	if p.Depth > 0 {
		config.Depth = p.Depth
	}
	if p.TacticalScan != nil {
		config.TacticalScan = *p.TacticalScan
	}
	switch p.ForkScan {
	case "", "bottom_row":
		config.ForkScan = ForkScanBottomRow
	case "all_rows":
		config.ForkScan = ForkScanAllRows
	default:
		return StrategyConfig{}, fmt.Errorf("unknown fork scan scope %q", p.ForkScan)
	}
	if p.Seed != 0 {
		config.TieBreakSeed = p.Seed
	}
	return config, nil
}

// StrategyForPreset resolves a preset name against the loaded set.
func StrategyForPreset(presets map[string]Preset, name string) (StrategyConfig, error) {
	preset, ok := presets[name]
	if !ok {
		return StrategyConfig{}, fmt.Errorf("unknown preset %q", name)
	}
	return preset.StrategyConfig()
}
