package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/barviz/internal/session"
)

// tickMsg drives the visualizer. chain identifies the tick chain that
// scheduled it; ticks from a superseded chain are dropped so only one chain
// runs at a time.
type tickMsg struct {
	chain uint64
	at    time.Time
}

// loadedMsg carries the result of a background load.
type loadedMsg struct {
	result session.LoadResult
}

func tickCmd(chain uint64, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg{chain: chain, at: t}
	})
}

func waitForLoad(ch <-chan session.LoadResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return loadedMsg{result: res}
	}
}
