package visualizer

import (
	"math"
	"testing"
)

func TestSmootherUsesRiseAndDecay(t *testing.T) {
	s, err := NewSmoother(2, 0.3, 0.7)
	if err != nil {
		t.Fatalf("NewSmoother returned error: %v", err)
	}

	got := s.Update([]float64{1, 0})
	if math.Abs(got[0]-0.7) > 1e-12 || got[1] != 0 {
		t.Fatalf("expected [0.7 0] after rise, got %v", got)
	}

	got = s.Update([]float64{0, 0})
	if math.Abs(got[0]-0.49) > 1e-12 {
		t.Fatalf("expected 0.49 after decay, got %v", got[0])
	}
}

func TestSmootherMovesTowardInputWithoutOvershoot(t *testing.T) {
	s, _ := NewSmoother(3, 0.3, 0.7)
	targets := []float64{0.9, 0.2, 0.5}

	prev := make([]float64, 3)
	for range 5 {
		got := s.Update(targets)
		for b := range targets {
			if math.Abs(targets[b]-got[b]) > math.Abs(targets[b]-prev[b]) {
				t.Fatalf("bar %d moved away from target: prev %f, got %f", b, prev[b], got[b])
			}
			if got[b] > targets[b]+1e-12 {
				t.Fatalf("bar %d overshot target %f: %f", b, targets[b], got[b])
			}
		}
		prev = got
	}

	// Falling toward a lower value must not undershoot either.
	low := []float64{0, 0, 0}
	for range 5 {
		got := s.Update(low)
		for b := range got {
			if got[b] < 0 {
				t.Fatalf("bar %d undershot 0: %f", b, got[b])
			}
		}
	}
}

func TestSmootherConvergesWithinBound(t *testing.T) {
	const alphaRise = 0.7
	const eps = 1e-6
	s, _ := NewSmoother(1, 0.3, alphaRise)

	// From zero, the gap after k rising steps is (1-alpha)^k.
	bound := int(math.Ceil(math.Log(eps) / math.Log(1-alphaRise)))
	var got []float64
	for range bound {
		got = s.Update([]float64{1})
	}
	if 1-got[0] > eps {
		t.Fatalf("expected convergence within %d calls, still %g away", bound, 1-got[0])
	}
}

func TestSmootherResetClearsState(t *testing.T) {
	s, _ := NewSmoother(2, 0.3, 0.7)
	s.Update([]float64{1, 1})
	s.Reset()
	got := s.Update([]float64{0, 0})
	if got[0] != 0 || got[1] != 0 {
		t.Fatalf("expected zero state after reset, got %v", got)
	}
}

func TestSmootherReturnsCopy(t *testing.T) {
	s, _ := NewSmoother(1, 0.3, 0.7)
	got := s.Update([]float64{1})
	got[0] = 42
	next := s.Update([]float64{1})
	if next[0] > 1 {
		t.Fatalf("expected internal state unaffected by caller, got %f", next[0])
	}
}

func TestNewSmootherValidatesCoefficients(t *testing.T) {
	bad := [][3]float64{
		{0, 0.3, 0.7},
		{2, 0, 0.7},
		{2, 0.3, 1.5},
		{2, math.NaN(), 0.7},
	}
	for _, c := range bad {
		if _, err := NewSmoother(int(c[0]), c[1], c[2]); err == nil {
			t.Fatalf("expected error for %v", c)
		}
	}
	if _, err := NewSmoother(1, 1, 1); err != nil {
		t.Fatalf("expected alpha 1 to be accepted, got %v", err)
	}
}
