package visualizer

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/olivier-w/barviz/internal/spectrum"
)

func TestFrameIndexFloors(t *testing.T) {
	if got := FrameIndex(0.12, 0.05); got != 2 {
		t.Fatalf("expected frame 2 at 0.12s, got %d", got)
	}
	if got := FrameIndex(0.10, 0.05); got != 2 {
		t.Fatalf("expected frame 2 at boundary 0.10s, got %d", got)
	}
	if got := FrameIndex(0.0999, 0.05); got != 1 {
		t.Fatalf("expected frame 1 at 0.0999s, got %d", got)
	}
}

func TestTickInterval(t *testing.T) {
	if got := TickInterval(0.05, 2); got != 25*time.Millisecond {
		t.Fatalf("expected 25ms, got %v", got)
	}
	if got := TickInterval(0.05, 0); got != 50*time.Millisecond {
		t.Fatalf("expected divisor clamp to 1, got %v", got)
	}
}

func testMatrix() *spectrum.FrameMatrix {
	return &spectrum.FrameMatrix{
		Frames: []spectrum.Frame{
			{0, 0},
			{30, 0},
			{0, 30},
		},
		Bins:     2,
		Interval: 0.05,
	}
}

func TestFrameMapperSelectsFromPosition(t *testing.T) {
	s, _ := NewSmoother(2, 1, 1)
	fm, err := NewFrameMapper(testMatrix(), 10, false, s)
	if err != nil {
		t.Fatalf("NewFrameMapper returned error: %v", err)
	}

	bars, ok := fm.Next(0.06)
	if !ok {
		t.Fatal("expected frame at 0.06s")
	}
	if fm.Index() != 1 {
		t.Fatalf("expected index 1, got %d", fm.Index())
	}
	ceiling := 1 - 1.0/80
	if math.Abs(bars[0]-ceiling) > 1e-12 || bars[1] != 0 {
		t.Fatalf("expected [%f 0], got %v", ceiling, bars)
	}

	// Seeking backwards selects from the new position.
	bars, ok = fm.Next(0.01)
	if !ok || fm.Index() != 0 || bars[0] != 0 {
		t.Fatalf("expected frame 0 after seek back, got %v (index %d)", bars, fm.Index())
	}
}

func TestFrameMapperSignalsEndOfTrack(t *testing.T) {
	s, _ := NewSmoother(2, 0.3, 0.7)
	fm, _ := NewFrameMapper(testMatrix(), 10, false, s)
	if _, ok := fm.Next(0.15); ok {
		t.Fatal("expected end of track at frame 3 of 3")
	}
	if _, ok := fm.Next(0.149); !ok {
		t.Fatal("expected last frame to be selectable")
	}
}

func TestFrameMapperDegradesToZeroBars(t *testing.T) {
	s, _ := NewSmoother(2, 0.3, 0.7)
	fm, err := NewFrameMapper(testMatrix(), 0, false, s)
	var degenerate *DegenerateInputError
	if !errors.As(err, &degenerate) {
		t.Fatalf("expected DegenerateInputError, got %v", err)
	}
	if fm == nil || !fm.Degenerate() {
		t.Fatal("expected a usable degenerate mapper")
	}
	bars, ok := fm.Next(0.06)
	if !ok {
		t.Fatal("expected frame")
	}
	for _, v := range bars {
		if v != 0 {
			t.Fatalf("expected zero bars, got %v", bars)
		}
	}
}

func TestNewFrameMapperResetsSmoother(t *testing.T) {
	s, _ := NewSmoother(2, 0.3, 0.7)
	s.Update([]float64{1, 1})
	fm, _ := NewFrameMapper(testMatrix(), 10, false, s)
	bars, _ := fm.Next(0)
	if bars[0] != 0 || bars[1] != 0 {
		t.Fatalf("expected smoother state from previous track to be cleared, got %v", bars)
	}
}
