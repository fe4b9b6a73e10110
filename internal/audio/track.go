package audio

import (
	"fmt"
	"time"

	"github.com/olivier-w/barviz/internal/spectrum"
)

// Track is a fully decoded file: interleaved signed 16-bit samples.
type Track struct {
	Samples    []int16
	Channels   int
	SampleRate int
}

// Frames returns the number of sample frames (samples per channel).
func (t *Track) Frames() int {
	if t == nil || t.Channels <= 0 {
		return 0
	}
	return len(t.Samples) / t.Channels
}

// Duration returns the playing time of the track.
func (t *Track) Duration() time.Duration {
	if t == nil || t.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(t.Frames()) / float64(t.SampleRate) * float64(time.Second))
}

// Waveform mixes the track down to mono floats in [-1, 1].
func (t *Track) Waveform() spectrum.Waveform {
	frames := t.Frames()
	out := make([]float64, frames)
	for i := range frames {
		sum := 0
		base := i * t.Channels
		for ch := range t.Channels {
			sum += int(t.Samples[base+ch])
		}
		out[i] = float64(sum) / float64(t.Channels) / 32768.0
	}
	return spectrum.Waveform{Samples: out, SampleRate: t.SampleRate}
}

// DecodeError reports a file that could not be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
