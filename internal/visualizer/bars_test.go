package visualizer

import (
	"strings"
	"testing"
)

func TestBarChartFullAndEmptyBars(t *testing.T) {
	c := NewBarChart()
	c.Update([]float64{1, 0}, 8, 4)

	rows := strings.Split(c.View(), "\n")
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for i, row := range rows {
		r := []rune(row)
		if r[0] != '█' {
			t.Fatalf("expected full block in row %d, got %q", i, row)
		}
		if r[len(r)-1] != ' ' {
			t.Fatalf("expected empty cell in row %d, got %q", i, row)
		}
	}
}

func TestBarChartPeakCapLingers(t *testing.T) {
	c := NewBarChart()
	c.Update([]float64{1}, 4, 4)
	c.Update([]float64{0}, 4, 4)

	if !strings.ContainsRune(c.View(), peakChar) {
		t.Fatalf("expected a falling peak cap after the bar dropped, got %q", c.View())
	}
}

func TestMirrorIsSymmetric(t *testing.T) {
	m := NewMirror()
	m.Update([]float64{1, 0.5}, 8, 4)
	rows := strings.Split(m.View(), "\n")
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0] != rows[3] || rows[1] != rows[2] {
		t.Fatalf("expected mirrored rows, got %q", rows)
	}
}

func TestModeIndex(t *testing.T) {
	if got := ModeIndex("mirror"); Modes()[got].Name() != "mirror" {
		t.Fatalf("expected mirror mode, got %q", Modes()[got].Name())
	}
	if got := ModeIndex("nope"); got != 0 {
		t.Fatalf("expected fallback to first mode, got %d", got)
	}
}

func TestModeNames(t *testing.T) {
	names := ModeNames()
	if len(names) != 3 || names[0] != "bars" || names[1] != "mirror" || names[2] != "waterfall" {
		t.Fatalf("unexpected mode names %v", names)
	}
}

func TestWaterfallScrollsNewestOnTop(t *testing.T) {
	w := NewWaterfall()
	w.Update([]float64{1, 0}, 8, 3)
	w.Update([]float64{0, 1}, 8, 3)

	rows := strings.Split(w.View(), "\n")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	top, second := []rune(rows[0]), []rune(rows[1])
	if top[0] != ' ' || top[len(top)-1] != '@' {
		t.Fatalf("expected newest frame on top, got %q", rows[0])
	}
	if second[0] != '@' || second[len(second)-1] != ' ' {
		t.Fatalf("expected previous frame below, got %q", rows[1])
	}
	if strings.TrimSpace(rows[2]) != "" {
		t.Fatalf("expected empty oldest row, got %q", rows[2])
	}
}
