package spectrum

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// indexEpsilon keeps positions that are decimal multiples of the interval
// (0.15 / 0.05) on the boundary frame instead of one below it.
const indexEpsilon = 1e-9

// Options controls how a waveform is reduced to bars.
type Options struct {
	Bins               int     // displayed bars per frame
	FrequencyThreshold int     // upper bound of the analyzed spectrum in Hz
	Interval           float64 // seconds of audio per frame
	// LegacyFloor floors the per-bar magnitude after dividing by Interval,
	// matching the integer division of older output.
	LegacyFloor bool
}

// Plan holds the sizes derived from Options for one sample rate.
type Plan struct {
	SampleRate    int
	Window        int // raw samples per analysis frame
	Half          int // usable half of the FFT output
	BinsPerHalf   int
	SamplesPerBar int // raw FFT bins summed into one bar
	Options       Options
}

// NewPlan validates opts against sampleRate and derives the FFT sizes.
func NewPlan(sampleRate int, opts Options) (Plan, error) {
	switch {
	case sampleRate <= 0:
		return Plan{}, &ConfigurationError{Field: "sample rate", Reason: fmt.Sprintf("%d must be positive", sampleRate)}
	case opts.Bins <= 0:
		return Plan{}, &ConfigurationError{Field: "bin count", Reason: fmt.Sprintf("%d must be positive", opts.Bins)}
	case opts.FrequencyThreshold <= 0:
		return Plan{}, &ConfigurationError{Field: "frequency threshold", Reason: fmt.Sprintf("%d Hz must be positive", opts.FrequencyThreshold)}
	case !(opts.Interval > 0):
		return Plan{}, &ConfigurationError{Field: "sampling interval", Reason: fmt.Sprintf("%gs must be positive", opts.Interval)}
	}

	window := int(math.Round(float64(sampleRate) * opts.Interval))
	if window < 1 {
		return Plan{}, &ConfigurationError{
			Field:  "sampling interval",
			Reason: fmt.Sprintf("%gs holds no samples at %d Hz", opts.Interval, sampleRate),
		}
	}
	half := window / 2
	binsPerHalf := (sampleRate * opts.Bins) / (opts.FrequencyThreshold * 2)
	if binsPerHalf < 1 {
		return Plan{}, &ConfigurationError{
			Field:  "frequency threshold",
			Reason: fmt.Sprintf("%d Hz is too high for %d bars at %d Hz", opts.FrequencyThreshold, opts.Bins, sampleRate),
		}
	}
	samplesPerBar := half / binsPerHalf
	if samplesPerBar < 1 {
		return Plan{}, &ConfigurationError{
			Field:  "bin count",
			Reason: fmt.Sprintf("%d bars leave less than one FFT bin per bar (window %d, threshold %d Hz)", opts.Bins, window, opts.FrequencyThreshold),
		}
	}

	return Plan{
		SampleRate:    sampleRate,
		Window:        window,
		Half:          half,
		BinsPerHalf:   binsPerHalf,
		SamplesPerBar: samplesPerBar,
		Options:       opts,
	}, nil
}

// Frames returns how many whole frames fit in duration seconds.
func (p Plan) Frames(duration float64) int {
	return Index(duration, p.Options.Interval)
}

// Index returns floor(seconds / interval), never negative.
func Index(seconds, interval float64) int {
	if !(interval > 0) || !(seconds > 0) {
		return 0
	}
	return int(math.Floor(seconds/interval + indexEpsilon))
}

// Bin reduces wf to a FrameMatrix: one FFT per Interval-long slice, with the
// magnitudes of SamplesPerBar consecutive FFT bins summed into each bar.
// The last slice is zero-padded when the waveform ends inside it.
func Bin(ctx context.Context, wf Waveform, opts Options) (*FrameMatrix, error) {
	plan, err := NewPlan(wf.SampleRate, opts)
	if err != nil {
		return nil, err
	}
	return plan.Bin(ctx, wf)
}

// Bin runs the plan over wf. wf.SampleRate must match the plan.
func (p Plan) Bin(ctx context.Context, wf Waveform) (*FrameMatrix, error) {
	if wf.SampleRate != p.SampleRate {
		return nil, &ConfigurationError{
			Field:  "sample rate",
			Reason: fmt.Sprintf("waveform is %d Hz, plan expects %d Hz", wf.SampleRate, p.SampleRate),
		}
	}

	rows := p.Frames(wf.Duration())
	bins := p.Options.Bins
	m := &FrameMatrix{
		Frames:   make([]Frame, rows),
		Bins:     bins,
		Interval: p.Options.Interval,
	}

	slice := make([]float64, p.Window)
	span := p.SamplesPerBar * bins
	if span > p.Window {
		span = p.Window
	}
	mags := make([]float64, span)
	values := make([]float64, rows*bins)

	for i := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := i * p.Window
		n := 0
		if start < len(wf.Samples) {
			n = copy(slice, wf.Samples[start:])
		}
		clear(slice[n:])

		coeffs := fft.FFTReal(slice)
		for k := range mags {
			mags[k] = cmplx.Abs(coeffs[k])
		}

		frame := Frame(values[i*bins : (i+1)*bins : (i+1)*bins])
		for x := range bins {
			lo := min(p.SamplesPerBar*x, span)
			hi := min(p.SamplesPerBar*(x+1), span)
			v := floats.Sum(mags[lo:hi]) / p.Options.Interval
			if p.Options.LegacyFloor {
				v = math.Floor(v)
			}
			frame[x] = v
		}
		m.Frames[i] = frame
	}
	return m, nil
}

// YMax returns the normalization ceiling of m: a third of its largest value,
// so the tallest spikes clip and typical loudness fills the chart. It is 0
// for an empty or silent matrix.
func YMax(m *FrameMatrix, legacyFloor bool) float64 {
	if m.Rows() == 0 {
		return 0
	}
	peak := 0.0
	for _, f := range m.Frames {
		if len(f) == 0 {
			continue
		}
		peak = math.Max(peak, floats.Max(f))
	}
	y := peak / 3
	if legacyFloor {
		y = math.Floor(y)
	}
	return y
}
