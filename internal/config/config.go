// Package config loads the engine's TOML configuration file, applying
// documented defaults for any field the file omits or that is missing
// entirely.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Engine holds every tunable the runtime core reads at startup.
type Engine struct {
	Loop  LoopConfig  `toml:"loop"`
	Audio AudioConfig `toml:"audio"`
	Atlas AtlasConfig `toml:"atlas"`
	Asset AssetConfig `toml:"asset"`
	Debug DebugConfig `toml:"debug"`
}

type LoopConfig struct {
	TargetFPS      int `toml:"target_fps"`
	MaxSkipFrames  int `toml:"max_skip_frames"`
	MaxSkipMsec    int `toml:"max_skip_msec"`
}

type AudioConfig struct {
	SampleRate         int     `toml:"sample_rate"`
	Channels           int     `toml:"channels"`
	StreamingBlockSecs float64 `toml:"streaming_block_seconds"`
	MasterVolume       float64 `toml:"master_volume"`
}

type AtlasConfig struct {
	PageSize int `toml:"page_size"`
}

type AssetConfig struct {
	SearchPaths []string `toml:"search_paths"`
}

type DebugConfig struct {
	MaxLogEntries    int      `toml:"max_log_entries"`
	EnabledComponents []string `toml:"enabled_components"`
}

// defaultEngine mirrors the constants a teacher component would hardcode
// (ROMBankSizeBytes-style), just collected under one struct instead of
// scattered package constants.
func defaultEngine() *Engine {
	return &Engine{
		Loop: LoopConfig{
			TargetFPS:     60,
			MaxSkipFrames: 5,
			MaxSkipMsec:   200,
		},
		Audio: AudioConfig{
			SampleRate:         44100,
			Channels:           2,
			StreamingBlockSecs: 2.0,
			MasterVolume:       1.0,
		},
		Atlas: AtlasConfig{
			PageSize: 2048,
		},
		Debug: DebugConfig{
			MaxLogEntries: 2048,
		},
	}
}

// LoadEngineConfig reads and decodes path. A missing file is not an error —
// it returns the defaults, matching AssetLoader's non-exceptional-failure
// philosophy for absent providers.
func LoadEngineConfig(path string) (*Engine, error) {
	cfg := defaultEngine()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
