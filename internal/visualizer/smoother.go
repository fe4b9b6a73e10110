package visualizer

import "fmt"

// Smoother applies per-bar exponential smoothing with a fast attack and a
// slower release, the same shape the VU meters use. It holds one writer's
// state; calls must not overlap.
type Smoother struct {
	alphaDecay float64
	alphaRise  float64
	value      []float64
}

// NewSmoother returns a zeroed Smoother for n bars. Both coefficients must be
// in (0, 1].
func NewSmoother(n int, alphaDecay, alphaRise float64) (*Smoother, error) {
	if n <= 0 {
		return nil, fmt.Errorf("smoother: bar count %d must be positive", n)
	}
	if !(alphaDecay > 0 && alphaDecay <= 1) {
		return nil, fmt.Errorf("smoother: alpha decay %g outside (0, 1]", alphaDecay)
	}
	if !(alphaRise > 0 && alphaRise <= 1) {
		return nil, fmt.Errorf("smoother: alpha rise %g outside (0, 1]", alphaRise)
	}
	return &Smoother{
		alphaDecay: alphaDecay,
		alphaRise:  alphaRise,
		value:      make([]float64, n),
	}, nil
}

// Update folds raw into the smoothed state and returns a copy of it. Values
// past the configured bar count are ignored.
func (s *Smoother) Update(raw []float64) []float64 {
	for b := range s.value {
		if b >= len(raw) {
			break
		}
		alpha := s.alphaDecay
		if raw[b] >= s.value[b] {
			alpha = s.alphaRise
		}
		s.value[b] = raw[b]*alpha + s.value[b]*(1-alpha)
	}
	out := make([]float64, len(s.value))
	copy(out, s.value)
	return out
}

// Reset zeroes the state, e.g. when a new track is loaded.
func (s *Smoother) Reset() {
	clear(s.value)
}

// Len returns the number of smoothed bars.
func (s *Smoother) Len() int { return len(s.value) }
