package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(hasQueue bool) string {
	s := "space pause  ←/→ seek  +/- volume  v viz  r repeat"
	if hasQueue {
		s += "  n/p track"
	}
	s += "  q quit"
	return s
}
