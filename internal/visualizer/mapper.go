package visualizer

import (
	"errors"
	"math"
	"time"

	"github.com/olivier-w/barviz/internal/spectrum"
)

// FrameIndex maps a playback position in seconds to the frame covering it.
// It floors rather than rounds: 0.10s at a 0.05s interval is frame 2.
func FrameIndex(position, interval float64) int {
	return spectrum.Index(position, interval)
}

// TickInterval returns how often the render tick should fire: the frame
// interval divided by divisor (at least 1).
func TickInterval(interval float64, divisor int) time.Duration {
	if divisor < 1 {
		divisor = 1
	}
	d := time.Duration(math.Round(interval / float64(divisor) * float64(time.Second)))
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

// FrameMapper turns a polled playback position into smoothed bar heights.
// It always selects from the position it is given, never from the last frame
// it emitted, so pause, seek and resume need no special handling.
type FrameMapper struct {
	matrix  *spectrum.FrameMatrix
	clamper *Clamper
	smooth  *Smoother
	scratch []float64
	last    int
}

// NewFrameMapper builds a mapper over m. yMax is the track's normalization
// ceiling; when it is degenerate the mapper still works and emits all-zero
// bars, and the DegenerateInputError is returned alongside it so the caller
// can report it.
func NewFrameMapper(m *spectrum.FrameMatrix, yMax float64, legacy bool, smooth *Smoother) (*FrameMapper, error) {
	if m == nil {
		return nil, errors.New("visualizer: nil frame matrix")
	}
	if smooth == nil {
		return nil, errors.New("visualizer: nil smoother")
	}
	smooth.Reset()
	fm := &FrameMapper{
		matrix:  m,
		smooth:  smooth,
		scratch: make([]float64, m.Bins),
		last:    -1,
	}
	c, err := NewClamper(yMax, legacy)
	if err != nil {
		return fm, err
	}
	fm.clamper = c
	return fm, nil
}

// Next returns the bar heights for position (seconds). ok is false once the
// position is past the last frame: the track has ended and the tick should stop.
func (fm *FrameMapper) Next(position float64) (bars []float64, ok bool) {
	idx := FrameIndex(position, fm.matrix.Interval)
	if idx >= fm.matrix.Rows() {
		return nil, false
	}
	fm.last = idx
	if fm.clamper == nil {
		clear(fm.scratch)
	} else {
		fm.clamper.Clamp(fm.scratch, fm.matrix.Frames[idx])
	}
	return fm.smooth.Update(fm.scratch), true
}

// Index returns the frame selected by the last successful Next, or -1.
func (fm *FrameMapper) Index() int { return fm.last }

// Rows returns the number of frames in the underlying matrix.
func (fm *FrameMapper) Rows() int { return fm.matrix.Rows() }

// Degenerate reports whether the track had nothing to normalize against.
func (fm *FrameMapper) Degenerate() bool { return fm.clamper == nil }
