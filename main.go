package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/olivier-w/barviz/internal/audio"
	"github.com/olivier-w/barviz/internal/config"
	"github.com/olivier-w/barviz/internal/logging"
	"github.com/olivier-w/barviz/internal/media"
	"github.com/olivier-w/barviz/internal/player"
	"github.com/olivier-w/barviz/internal/queue"
	"github.com/olivier-w/barviz/internal/session"
	"github.com/olivier-w/barviz/internal/ui"
	"github.com/olivier-w/barviz/internal/visualizer"
)

// app carries what every command needs once flags are parsed.
type app struct {
	v          *viper.Viper
	configFile string
	noAutoplay bool

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "barviz [flags] FILE...",
		Short: "Play audio files with a synchronized spectrum bar visualizer",
		Long: `barviz decodes each file, bins its spectrum into bars ahead of time and
plays it back with the bars following the playback position.

Files may be mp3, wav, flac or ogg, or m3u/m3u8/pls playlists of them.
A single file queues the other audio files in its directory.`,
		Args:              cobra.MinimumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
		RunE: a.runPlayer,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "",
		"config file (default is $HOME/.config/barviz/barviz.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", config.DefaultLogFile(), `log destination: a file path, "stderr" or "stdout"`)
	flags.Int("bins", 29, "number of bars")
	flags.Int("freq-threshold", 1750, "highest frequency (Hz) shown by the bars")
	flags.Float64("interval", 0.05, "seconds of audio per frame")
	flags.String("mode", "bars", fmt.Sprintf("visualizer mode (%s)", strings.Join(visualizer.ModeNames(), ", ")))
	flags.Bool("legacy-floor", false, "floor bar values like older output")
	root.Flags().BoolVar(&a.noAutoplay, "no-autoplay", false, "start paused")

	bindFlags(a.v, flags, map[string]string{
		"log-level":      "log_level",
		"log-file":       "log_file",
		"bins":           "visualizer.bin_nums",
		"freq-threshold": "visualizer.frequency_threshold",
		"interval":       "visualizer.sampling_interval",
		"mode":           "visualizer.mode",
		"legacy-floor":   "visualizer.legacy_floor",
	})

	root.AddCommand(newAnalyzeCmd(a), newConfigCmd(a))
	return root
}

// bindFlags binds each flag to its viper key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	config.ConfigureEnv(a.v)
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if a.noAutoplay {
		cfg.Playback.Autoplay = false
	}
	a.cfg = cfg

	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	a.logger = logger.With(zap.String("command", cmd.Name()))
	a.closeLog = closeLog
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("using config file", zap.String("path", used))
	}
	return nil
}

func (a *app) teardown() error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}

func (a *app) runPlayer(cmd *cobra.Command, args []string) error {
	paths, start, err := resolveQueue(args)
	if err != nil {
		return err
	}
	q := queue.New(paths)
	q.SetCurrentIndex(start)

	cfg := a.cfg
	s, err := session.New(audio.NewFileSource(), openPlayer(cfg.Playback.Volume), session.Options{
		Spectrum:   cfg.Options(),
		AlphaDecay: cfg.Visualizer.AlphaDecay,
		AlphaRise:  cfg.Visualizer.AlphaRise,
		Autoplay:   cfg.Playback.Autoplay,
	}, a.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := ui.New(ctx, s, q, ui.Options{
		TickInterval: cfg.TickInterval(),
		SeekStep:     cfg.Playback.SeekStep,
		Mode:         cfg.Visualizer.Mode,
		Bins:         cfg.Visualizer.BinNums,
	}, a.logger)

	a.logger.Info("starting",
		zap.Int("tracks", q.Len()),
		zap.Duration("tick", cfg.TickInterval()),
		zap.String("mode", cfg.Visualizer.Mode))
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}
	a.logger.Info("stopped", zap.Uint64("stale_jobs", s.StaleJobs()))
	return nil
}

// resolveQueue expands playlists and, for a single audio file, queues the
// rest of its directory starting at that file.
func resolveQueue(args []string) ([]string, int, error) {
	if len(args) == 1 && !media.IsPlaylistExt(filepath.Ext(args[0])) {
		info, err := os.Stat(args[0])
		if err != nil {
			return nil, 0, err
		}
		if info.IsDir() {
			return nil, 0, fmt.Errorf("%s is a directory", args[0])
		}
		if !media.IsSupportedExt(filepath.Ext(args[0])) {
			return nil, 0, fmt.Errorf("unsupported format %s (supported: %s)", filepath.Ext(args[0]), media.SupportedExtsList())
		}
		if files, idx := media.SiblingFiles(args[0]); files != nil {
			return files, idx, nil
		}
		return args, 0, nil
	}
	paths, err := media.ExpandArgs(args)
	if err != nil {
		return nil, 0, err
	}
	return paths, 0, nil
}

func openPlayer(volume float64) session.TransportOpener {
	return func(path string, track *audio.Track) (session.Transport, error) {
		p, err := player.New(track, player.ReadMetadata(path), volume)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
