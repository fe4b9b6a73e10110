package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	vc := cfg.Visualizer
	if vc.BinNums != 29 || vc.FrequencyThreshold != 1750 || vc.SamplingInterval != 0.05 {
		t.Fatalf("unexpected visualizer defaults %+v", vc)
	}
	if vc.AlphaDecay != 0.30 || vc.AlphaRise != 0.70 || vc.Mode != "bars" || vc.LegacyFloor {
		t.Fatalf("unexpected smoothing defaults %+v", vc)
	}
	if !cfg.Playback.Autoplay || cfg.Playback.Volume != 0.8 || cfg.Playback.SeekStep != 5*time.Second {
		t.Fatalf("unexpected playback defaults %+v", cfg.Playback)
	}
	if cfg.TickInterval() != 25*time.Millisecond {
		t.Fatalf("expected 25ms tick, got %v", cfg.TickInterval())
	}
	opts := cfg.Options()
	if opts.Bins != 29 || opts.FrequencyThreshold != 1750 || opts.Interval != 0.05 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestReadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barviz.yaml")
	body := strings.Join([]string{
		"log_level: debug",
		"visualizer:",
		"  bin_nums: 12",
		"  mode: mirror",
		"  legacy_floor: true",
		"playback:",
		"  seek_step: 10s",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := viper.New()
	if err := ReadFile(v, path); err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Visualizer.BinNums != 12 || cfg.Visualizer.Mode != "mirror" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if !cfg.Visualizer.LegacyFloor || !cfg.Options().LegacyFloor {
		t.Fatal("expected legacy_floor from file")
	}
	if cfg.Playback.SeekStep != 10*time.Second {
		t.Fatalf("expected 10s seek step, got %v", cfg.Playback.SeekStep)
	}
	if cfg.Visualizer.FrequencyThreshold != 1750 {
		t.Fatalf("expected default threshold to survive, got %d", cfg.Visualizer.FrequencyThreshold)
	}
}

func TestReadFileMissingExplicitPath(t *testing.T) {
	err := ReadFile(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("BARVIZ_VISUALIZER_BIN_NUMS", "7")
	v := viper.New()
	ConfigureEnv(v)
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Visualizer.BinNums != 7 {
		t.Fatalf("expected env override 7, got %d", cfg.Visualizer.BinNums)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"bins":      func(c *Config) { c.Visualizer.BinNums = 0 },
		"threshold": func(c *Config) { c.Visualizer.FrequencyThreshold = -1 },
		"interval":  func(c *Config) { c.Visualizer.SamplingInterval = 0 },
		"alpha":     func(c *Config) { c.Visualizer.AlphaRise = 1.5 },
		"divisor":   func(c *Config) { c.Visualizer.TickDivisor = 0 },
		"mode":      func(c *Config) { c.Visualizer.Mode = "plasma" },
		"volume":    func(c *Config) { c.Playback.Volume = 2 },
		"seek":      func(c *Config) { c.Playback.SeekStep = 0 },
		"log level": func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		cfg, err := Load(viper.New())
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
