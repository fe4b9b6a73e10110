package visualizer

import "strings"

var waterfallChars = []rune{' ', '.', ':', '-', '=', '+', '*', '#', '%', '@'}

// Waterfall renders a scrolling history of bar heights, newest frame on top,
// with intensity shown by character density.
type Waterfall struct {
	history [][]float64
	output  string
}

// NewWaterfall creates a waterfall visualizer.
func NewWaterfall() *Waterfall {
	return &Waterfall{}
}

func (w *Waterfall) Name() string { return "waterfall" }

func (w *Waterfall) Update(bars []float64, width, height int) {
	if height < 1 {
		height = 1
	}
	cols := len(bars)
	if cols == 0 {
		w.output = ""
		return
	}

	if len(w.history) != height || len(w.history[0]) != cols {
		w.history = make([][]float64, height)
		for r := range height {
			w.history[r] = make([]float64, cols)
		}
	}
	for r := height - 1; r > 0; r-- {
		copy(w.history[r], w.history[r-1])
	}
	for b, v := range bars {
		w.history[0][b] = clamp01(v)
	}

	colWidth, gap := columnLayout(width, cols)
	var out strings.Builder
	for r := range height {
		if r > 0 {
			out.WriteByte('\n')
		}
		for b := range cols {
			if b > 0 && gap > 0 {
				out.WriteByte(' ')
			}
			idx := int(w.history[r][b] * float64(len(waterfallChars)-1))
			ch := waterfallChars[min(idx, len(waterfallChars)-1)]
			for range colWidth - gap {
				out.WriteRune(ch)
			}
		}
	}
	w.output = out.String()
}

func (w *Waterfall) View() string {
	return w.output
}
