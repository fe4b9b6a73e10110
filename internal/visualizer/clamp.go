package visualizer

import (
	"fmt"
	"math"
)

// ceilingDivisor sets the soft ceiling at yMax - yMax/80 so the loudest bars
// stop just short of the top of the chart.
const ceilingDivisor = 80

// DegenerateInputError is returned when a track has nothing to normalize
// against (silent or empty audio).
type DegenerateInputError struct {
	YMax float64
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("visualizer: degenerate normalization ceiling %g", e.YMax)
}

// Clamper clips frames at a soft ceiling below yMax and scales them to [0, 1].
type Clamper struct {
	yMax    float64
	ceiling float64
}

// NewClamper returns a Clamper for a track whose ceiling is yMax. With legacy
// set, the headroom below yMax is floored like older output.
func NewClamper(yMax float64, legacy bool) (*Clamper, error) {
	if !(yMax > 0) || math.IsInf(yMax, 0) {
		return nil, &DegenerateInputError{YMax: yMax}
	}
	headroom := yMax / ceilingDivisor
	if legacy {
		headroom = math.Floor(headroom)
	}
	return &Clamper{yMax: yMax, ceiling: yMax - headroom}, nil
}

// Clamp writes the clipped, normalized values of src into dst, which must be
// at least as long as src.
func (c *Clamper) Clamp(dst, src []float64) {
	for i, v := range src {
		if v > c.ceiling {
			v = c.ceiling
		}
		if v < 0 {
			v = 0
		}
		dst[i] = v / c.yMax
	}
}

// Ceiling returns the largest normalized value Clamp can produce.
func (c *Clamper) Ceiling() float64 {
	return c.ceiling / c.yMax
}

// Clamp returns frame clipped at yMax - yMax/80 and divided by yMax.
func Clamp(frame []float64, yMax float64) ([]float64, error) {
	c, err := NewClamper(yMax, false)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(frame))
	c.Clamp(out, frame)
	return out, nil
}
