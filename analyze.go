package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/olivier-w/barviz/internal/audio"
	"github.com/olivier-w/barviz/internal/spectrum"
	"github.com/olivier-w/barviz/internal/util"
)

// analysis is the serialized result of `barviz analyze`.
type analysis struct {
	Path            string      `json:"path" yaml:"path"`
	Duration        string      `json:"duration" yaml:"duration"`
	DurationSeconds float64     `json:"duration_seconds" yaml:"duration_seconds"`
	SampleRate      int         `json:"sample_rate" yaml:"sample_rate"`
	Channels        int         `json:"channels" yaml:"channels"`
	Window          int         `json:"window" yaml:"window"`
	SamplesPerBar   int         `json:"samples_per_bar" yaml:"samples_per_bar"`
	Interval        float64     `json:"interval" yaml:"interval"`
	Bins            int         `json:"bins" yaml:"bins"`
	YMax            float64     `json:"y_max" yaml:"y_max"`
	Frames          [][]float64 `json:"frames,omitempty" yaml:"frames,omitempty"`
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Print a track's duration, sample rate and frame matrix",
		Long: `analyze decodes FILE and bins it with the current visualizer settings.
The default text output is a summary; json and yaml include every frame.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			res, err := a.analyze(cmd, args[0])
			if err != nil {
				return err
			}
			if out == "" {
				return writeAnalysis(cmd.OutOrStdout(), res, format)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			if err := writeAnalysis(f, res, format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format (text, json, yaml)")
	cmd.Flags().StringVar(&out, "out", "", "write output to this file instead of stdout")
	return cmd
}

func (a *app) analyze(cmd *cobra.Command, path string) (*analysis, error) {
	ctx := cmd.Context()
	track, err := audio.NewFileSource().Load(ctx, path)
	if err != nil {
		return nil, err
	}
	wf := track.Waveform()

	plan, err := spectrum.NewPlan(wf.SampleRate, a.cfg.Options())
	if err != nil {
		return nil, err
	}
	m, err := plan.Bin(ctx, wf)
	if err != nil {
		return nil, err
	}
	yMax := spectrum.YMax(m, a.cfg.Visualizer.LegacyFloor)

	a.logger.Info("analyzed",
		zap.String("path", path),
		zap.Int("frames", m.Rows()),
		zap.Float64("y_max", yMax))

	frames := make([][]float64, m.Rows())
	for i, f := range m.Frames {
		frames[i] = f
	}
	return &analysis{
		Path:            path,
		Duration:        util.FormatDuration(track.Duration()),
		DurationSeconds: wf.Duration(),
		SampleRate:      track.SampleRate,
		Channels:        track.Channels,
		Window:          plan.Window,
		SamplesPerBar:   plan.SamplesPerBar,
		Interval:        m.Interval,
		Bins:            m.Bins,
		YMax:            yMax,
		Frames:          frames,
	}, nil
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case "text", "", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown output format %q (text, json, yaml)", format)
}

func writeAnalysis(w io.Writer, res *analysis, format string) error {
	switch strings.ToLower(format) {
	case "text", "":
		_, err := fmt.Fprintf(w,
			"%s\n  duration  %s\n  rate      %s, %d ch\n  window    %d samples (%d per bar)\n  frames    %d x %d bars every %gs\n  y max     %g\n",
			res.Path, res.Duration, util.FormatSampleRate(res.SampleRate), res.Channels,
			res.Window, res.SamplesPerBar, len(res.Frames), res.Bins, res.Interval, res.YMax)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (text, json, yaml)", format)
	}
}
