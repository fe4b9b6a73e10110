package visualizer

import "strings"

var barChars = []rune(" ▁▂▃▄▅▆▇█")

const peakChar = '▔'

// BarChart renders bar heights as vertical bars rising from the bottom, with
// falling peak caps.
type BarChart struct {
	peaks  peakField
	output string
}

// NewBarChart creates a bar chart visualizer.
func NewBarChart() *BarChart {
	return &BarChart{peaks: newPeakField(40, 4.0, 1.0)}
}

func (c *BarChart) Name() string { return "bars" }

func (c *BarChart) Update(bars []float64, width, height int) {
	if height < 1 {
		height = 1
	}
	cols := len(bars)
	if cols == 0 {
		c.output = ""
		return
	}
	colWidth, gap := columnLayout(width, cols)

	c.peaks.resize(cols)
	caps := make([]float64, cols)
	for b, v := range bars {
		caps[b] = c.peaks.step(b, clamp01(v))
	}

	rows := make([]string, height)
	for row := range height {
		var line strings.Builder
		rowFromBottom := float64(height - 1 - row)
		for b := range cols {
			if b > 0 && gap > 0 {
				line.WriteByte(' ')
			}
			level := clamp01(bars[b]) * float64(height)
			ch := cellRune(level, rowFromBottom)
			capLevel := caps[b] * float64(height)
			if ch == ' ' && capLevel >= 1 && int(capLevel-0.5) == int(rowFromBottom) {
				ch = peakChar
			}
			for range colWidth - gap {
				line.WriteRune(ch)
			}
		}
		rows[row] = line.String()
	}
	c.output = strings.Join(rows, "\n")
}

func (c *BarChart) View() string {
	return c.output
}

// Mirror renders bars growing up and down from the middle row.
type Mirror struct {
	output string
}

// NewMirror creates a mirrored bar visualizer.
func NewMirror() *Mirror {
	return &Mirror{}
}

func (m *Mirror) Name() string { return "mirror" }

func (m *Mirror) Update(bars []float64, width, height int) {
	if height < 2 {
		height = 2
	}
	cols := len(bars)
	if cols == 0 {
		m.output = ""
		return
	}
	colWidth, gap := columnLayout(width, cols)
	half := height / 2

	upper := make([]string, half)
	for row := range half {
		var line strings.Builder
		rowFromCenter := float64(half - 1 - row)
		for b := range cols {
			if b > 0 && gap > 0 {
				line.WriteByte(' ')
			}
			ch := cellRune(clamp01(bars[b])*float64(half), rowFromCenter)
			for range colWidth - gap {
				line.WriteRune(ch)
			}
		}
		upper[row] = line.String()
	}

	rows := make([]string, 0, height)
	rows = append(rows, upper...)
	// Partial blocks only fill from the bottom, so the lower half uses whole
	// cells.
	for row := range height - half {
		var line strings.Builder
		for b := range cols {
			if b > 0 && gap > 0 {
				line.WriteByte(' ')
			}
			ch := ' '
			if clamp01(bars[b])*float64(half) > float64(row)+0.5 {
				ch = barChars[len(barChars)-1]
			}
			for range colWidth - gap {
				line.WriteRune(ch)
			}
		}
		rows = append(rows, line.String())
	}
	m.output = strings.Join(rows, "\n")
}

func (m *Mirror) View() string {
	return m.output
}

// columnLayout spreads cols bars across width cells.
func columnLayout(width, cols int) (colWidth, gap int) {
	colWidth = (width - 2) / cols
	if colWidth < 1 {
		colWidth = 1
	}
	gap = 1
	if colWidth <= 1 {
		gap = 0
	}
	return colWidth, gap
}

// cellRune picks the block for the cell rowFromBottom rows above the base of
// a bar that is level cells tall.
func cellRune(level, rowFromBottom float64) rune {
	switch {
	case level >= rowFromBottom+1:
		return barChars[len(barChars)-1]
	case level > rowFromBottom:
		frac := level - rowFromBottom
		return barChars[int(frac*float64(len(barChars)-1))]
	default:
		return barChars[0]
	}
}
