// Package config holds barviz's runtime configuration, read through viper
// from flags, BARVIZ_* environment variables and an optional YAML file.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/olivier-w/barviz/internal/spectrum"
	"github.com/olivier-w/barviz/internal/visualizer"
)

// EnvPrefix is the prefix of environment overrides, e.g. BARVIZ_VISUALIZER_BIN_NUMS.
const EnvPrefix = "BARVIZ"

// Config represents the application configuration
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`

	Visualizer VisualizerConfig `mapstructure:"visualizer" yaml:"visualizer"`
	Playback   PlaybackConfig   `mapstructure:"playback" yaml:"playback"`
}

// VisualizerConfig controls binning, smoothing and rendering.
type VisualizerConfig struct {
	BinNums            int     `mapstructure:"bin_nums" yaml:"bin_nums"`
	FrequencyThreshold int     `mapstructure:"frequency_threshold" yaml:"frequency_threshold"`
	SamplingInterval   float64 `mapstructure:"sampling_interval" yaml:"sampling_interval"`
	AlphaDecay         float64 `mapstructure:"alpha_decay" yaml:"alpha_decay"`
	AlphaRise          float64 `mapstructure:"alpha_rise" yaml:"alpha_rise"`
	TickDivisor        int     `mapstructure:"tick_divisor" yaml:"tick_divisor"`
	LegacyFloor        bool    `mapstructure:"legacy_floor" yaml:"legacy_floor"`
	Mode               string  `mapstructure:"mode" yaml:"mode"`
}

// PlaybackConfig controls the audio transport.
type PlaybackConfig struct {
	Autoplay bool          `mapstructure:"autoplay" yaml:"autoplay"`
	Volume   float64       `mapstructure:"volume" yaml:"volume"`
	SeekStep time.Duration `mapstructure:"seek_step" yaml:"seek_step"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", DefaultLogFile())

	v.SetDefault("visualizer.bin_nums", 29)
	v.SetDefault("visualizer.frequency_threshold", 1750)
	v.SetDefault("visualizer.sampling_interval", 0.05)
	v.SetDefault("visualizer.alpha_decay", 0.30)
	v.SetDefault("visualizer.alpha_rise", 0.70)
	v.SetDefault("visualizer.tick_divisor", 2)
	v.SetDefault("visualizer.legacy_floor", false)
	v.SetDefault("visualizer.mode", "bars")

	v.SetDefault("playback.autoplay", true)
	v.SetDefault("playback.volume", 0.8)
	v.SetDefault("playback.seek_step", 5*time.Second)
}

// DefaultLogFile is where logs go when nothing else is configured. The
// terminal belongs to the UI.
func DefaultLogFile() string {
	return filepath.Join(os.TempDir(), "barviz.log")
}

// ConfigureEnv makes v read BARVIZ_* variables, mapping "." and "-" to "_".
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// ReadFile reads the config file at path, or searches the default locations
// when path is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "barviz"))
	}
	v.AddConfigPath("./configs")
	v.SetConfigName("barviz")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load applies defaults, decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late, inside a load job
// or the render loop.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	vc := c.Visualizer
	if vc.BinNums <= 0 {
		return fmt.Errorf("visualizer.bin_nums must be positive, got %d", vc.BinNums)
	}
	if vc.FrequencyThreshold <= 0 {
		return fmt.Errorf("visualizer.frequency_threshold must be positive, got %d", vc.FrequencyThreshold)
	}
	if math.IsNaN(vc.SamplingInterval) || vc.SamplingInterval <= 0 {
		return fmt.Errorf("visualizer.sampling_interval must be positive, got %v", vc.SamplingInterval)
	}
	if !validAlpha(vc.AlphaDecay) || !validAlpha(vc.AlphaRise) {
		return fmt.Errorf("visualizer alphas must be in (0, 1], got decay=%v rise=%v", vc.AlphaDecay, vc.AlphaRise)
	}
	if vc.TickDivisor <= 0 {
		return fmt.Errorf("visualizer.tick_divisor must be positive, got %d", vc.TickDivisor)
	}
	if !slices.Contains(visualizer.ModeNames(), vc.Mode) {
		return fmt.Errorf("unknown visualizer.mode %q (available: %s)", vc.Mode, strings.Join(visualizer.ModeNames(), ", "))
	}

	if c.Playback.Volume < 0 || c.Playback.Volume > 1 {
		return fmt.Errorf("playback.volume must be in [0, 1], got %v", c.Playback.Volume)
	}
	if c.Playback.SeekStep <= 0 {
		return fmt.Errorf("playback.seek_step must be positive, got %v", c.Playback.SeekStep)
	}
	return nil
}

func validAlpha(a float64) bool {
	return a > 0 && a <= 1
}

// Options returns the binning options for this configuration.
func (c *Config) Options() spectrum.Options {
	return spectrum.Options{
		Bins:               c.Visualizer.BinNums,
		FrequencyThreshold: c.Visualizer.FrequencyThreshold,
		Interval:           c.Visualizer.SamplingInterval,
		LegacyFloor:        c.Visualizer.LegacyFloor,
	}
}

// TickInterval returns the render tick period.
func (c *Config) TickInterval() time.Duration {
	return visualizer.TickInterval(c.Visualizer.SamplingInterval, c.Visualizer.TickDivisor)
}
