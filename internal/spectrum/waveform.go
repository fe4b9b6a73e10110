package spectrum

// Waveform is a mono sample sequence at a fixed rate.
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the length of the waveform in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Frame holds one magnitude per displayed bar.
type Frame []float64

// FrameMatrix is the per-frame bar decomposition of a whole track. Every frame
// has exactly Bins values and covers Interval seconds of audio.
type FrameMatrix struct {
	Frames   []Frame
	Bins     int
	Interval float64
}

// Rows returns the number of frames.
func (m *FrameMatrix) Rows() int {
	if m == nil {
		return 0
	}
	return len(m.Frames)
}
