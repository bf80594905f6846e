package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEngineConfigReturnsDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadEngineConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if cfg.Loop.TargetFPS != 60 {
		t.Fatalf("TargetFPS = %d, want default 60", cfg.Loop.TargetFPS)
	}
	if cfg.Atlas.PageSize != 2048 {
		t.Fatalf("PageSize = %d, want default 2048", cfg.Atlas.PageSize)
	}
}

func TestLoadEngineConfigOverridesOnlySpecifiedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	content := "[loop]\ntarget_fps = 30\n\n[audio]\nmaster_volume = 0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if cfg.Loop.TargetFPS != 30 {
		t.Fatalf("TargetFPS = %d, want 30", cfg.Loop.TargetFPS)
	}
	if cfg.Audio.MasterVolume != 0.5 {
		t.Fatalf("MasterVolume = %v, want 0.5", cfg.Audio.MasterVolume)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Audio.SampleRate != 44100 {
		t.Fatalf("SampleRate = %d, want default 44100", cfg.Audio.SampleRate)
	}
	if cfg.Atlas.PageSize != 2048 {
		t.Fatalf("PageSize = %d, want default 2048", cfg.Atlas.PageSize)
	}
}
