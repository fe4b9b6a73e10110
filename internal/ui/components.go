package ui

import (
	"fmt"
	"strings"
)

// renderProgressBar draws elapsed/total as a line with a head marker.
func renderProgressBar(elapsed, total float64, width int) string {
	if width < 10 {
		width = 10
	}
	barWidth := width - 2

	var ratio float64
	if total > 0 {
		ratio = min(max(elapsed/total, 0), 1)
	}

	filled := int(ratio * float64(barWidth-1))
	return strings.Repeat("━", filled) + "●" + strings.Repeat("─", barWidth-1-filled)
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}
