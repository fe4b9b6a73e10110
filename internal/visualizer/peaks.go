package visualizer

import "github.com/charmbracelet/harmonica"

// peakField eases one cap per bar toward the bar top with a damped spring.
type peakField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newPeakField(fps int, frequency, damping float64) peakField {
	return peakField{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (p *peakField) resize(n int) {
	if len(p.pos) == n {
		return
	}
	p.pos = make([]float64, n)
	p.vel = make([]float64, n)
}

// step moves cap i toward target and returns its new height in [0, 1].
// Caps jump up with the bar and only the fall is eased.
func (p *peakField) step(i int, target float64) float64 {
	if target >= p.pos[i] {
		p.pos[i] = target
		p.vel[i] = 0
		return target
	}
	pos, vel := p.spring.Update(p.pos[i], p.vel[i], target)
	p.pos[i] = clamp01(pos)
	p.vel[i] = vel
	return p.pos[i]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
