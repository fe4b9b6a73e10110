package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/olivier-w/barviz/internal/logging"
	"github.com/olivier-w/barviz/internal/queue"
	"github.com/olivier-w/barviz/internal/session"
	"github.com/olivier-w/barviz/internal/util"
	"github.com/olivier-w/barviz/internal/visualizer"
)

const volumeStep = 0.05

// Optional transport capabilities. player.Player has all of them.
type (
	seeker interface{ Seek(delta time.Duration) }

	volumer interface {
		Volume() float64
		AdjustVolume(delta float64)
	}

	restarter interface{ Restart() }
)

// Options configures the Model.
type Options struct {
	TickInterval time.Duration
	SeekStep     time.Duration
	Mode         string
	Bins         int
}

// Model is the Bubbletea model for the barviz TUI.
type Model struct {
	ctx     context.Context
	session *session.Session
	queue   *queue.Queue
	opts    Options
	logger  *zap.Logger

	modes   []visualizer.Visualizer
	mode    int
	spinner spinner.Model

	loading bool
	chain   uint64
	ended   bool
	track   session.Track
	elapsed time.Duration
	playing bool
	volume  float64
	repeat  RepeatMode
	status  string
	isError bool

	width    int
	height   int
	quitting bool
}

// New creates a Model that plays the files in q through s.
func New(ctx context.Context, s *session.Session, q *queue.Queue, opts Options, logger *zap.Logger) Model {
	modes := visualizer.Modes()
	return Model{
		ctx:     ctx,
		session: s,
		queue:   q,
		opts:    opts,
		logger:  logging.OrNop(logger),
		modes:   modes,
		mode:    visualizer.ModeIndex(opts.Mode),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		loading: q.Len() > 0,
	}
}

func (m Model) Init() tea.Cmd {
	cur := m.queue.Current()
	if cur == nil {
		return nil
	}
	m.queue.SetTrackState(m.queue.CurrentIndex(), queue.Loading)
	return tea.Batch(
		waitForLoad(m.session.Load(m.ctx, cur.Path)),
		m.spinner.Tick,
		tea.SetWindowTitle(windowTitle(cur.Title, false)),
	)
}

// loadCurrent starts loading the queue's current track. The previous track
// keeps playing until the new one is applied.
func (m Model) loadCurrent() (Model, tea.Cmd) {
	cur := m.queue.Current()
	if cur == nil {
		return m, nil
	}
	m.queue.SetTrackState(m.queue.CurrentIndex(), queue.Loading)
	m.status = ""
	m.isError = false
	cmds := []tea.Cmd{waitForLoad(m.session.Load(m.ctx, cur.Path))}
	if !m.loading {
		m.loading = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case loadedMsg:
		return m.handleLoaded(msg)

	case tickMsg:
		if msg.chain != m.chain {
			return m, nil
		}
		return m.handleTick()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) handleLoaded(msg loadedMsg) (Model, tea.Cmd) {
	res := msg.result
	idx := m.queue.IndexOf(res.Path)

	err := m.session.Apply(res)
	if errors.Is(err, session.ErrStaleJob) {
		return m, nil
	}
	m.loading = false

	var degenerate *visualizer.DegenerateInputError
	if err != nil && !errors.As(err, &degenerate) {
		m.queue.SetTrackState(idx, queue.Failed)
		m.status = fmt.Sprintf("Cannot play %s: %v", res.Path, err)
		m.isError = true
		return m, nil
	}
	if degenerate != nil {
		m.status = "Track is silent, bars stay flat"
		m.isError = false
	}

	tr, info := m.session.Current()
	m.track = info
	m.queue.SetTrackState(idx, queue.Playing)
	m.queue.SetTrackTitle(idx, info.Title)
	m.ended = false
	m.playing = tr.Playing()
	if v, ok := tr.(volumer); ok {
		m.volume = v.Volume()
	}
	return m, tea.Batch(m.startTicks(), tea.SetWindowTitle(windowTitle(info.Title, !m.playing)))
}

// startTicks begins a new tick chain, abandoning any chain in flight.
func (m *Model) startTicks() tea.Cmd {
	m.chain++
	return tickCmd(m.chain, m.opts.TickInterval)
}

func (m Model) handleTick() (Model, tea.Cmd) {
	tr, _ := m.session.Current()
	if tr == nil {
		return m, nil
	}
	m.elapsed = tr.Position()
	m.playing = tr.Playing()
	if v, ok := tr.(volumer); ok {
		m.volume = v.Volume()
	}

	frame := m.session.Tick()
	if frame.Done && m.loading {
		// A newer track is on its way; it decides what plays next.
		tr.Pause()
		m.ended = true
		m.playing = false
		return m, nil
	}
	if frame.Done {
		return m.handleTrackEnd(tr)
	}
	m.modes[m.mode].Update(frame.Bars, m.vizWidth(), m.vizHeight())
	return m, tickCmd(m.chain, m.opts.TickInterval)
}

func (m Model) handleTrackEnd(tr session.Transport) (Model, tea.Cmd) {
	m.queue.SetTrackState(m.queue.CurrentIndex(), queue.Done)
	m.logger.Debug("track ended", zap.String("path", m.track.Path), zap.String("repeat", m.repeat.String()))

	if m.repeat == RepeatOne {
		if r, ok := tr.(restarter); ok {
			r.Restart()
			m.queue.SetTrackState(m.queue.CurrentIndex(), queue.Playing)
			m.elapsed = 0
			return m, m.startTicks()
		}
	}
	if m.queue.Advance(m.repeat == RepeatAll) {
		return m.loadCurrent()
	}

	tr.Pause()
	m.ended = true
	m.playing = false
	m.elapsed = m.track.Duration
	m.modes[m.mode].Update(make([]float64, m.opts.Bins), m.vizWidth(), m.vizHeight())
	return m, tea.SetWindowTitle(windowTitle(m.track.Title, true))
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.session.Close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case "v":
		m.mode = (m.mode + 1) % len(m.modes)
		return m, nil
	case "r":
		m.repeat = m.repeat.Next()
		return m, nil
	case "n":
		if m.queue.Advance(m.repeat == RepeatAll) {
			return m.loadCurrent()
		}
		return m, nil
	case "p":
		if m.queue.Previous() {
			return m.loadCurrent()
		}
		return m, nil
	}

	tr, _ := m.session.Current()
	if tr == nil {
		return m, nil
	}
	switch msg.String() {
	case " ":
		if m.ended {
			m.ended = false
			if r, ok := tr.(restarter); ok {
				r.Restart()
			} else {
				tr.Play()
			}
			m.queue.SetTrackState(m.queue.CurrentIndex(), queue.Playing)
			m.playing = true
			return m, tea.Batch(m.startTicks(), tea.SetWindowTitle(windowTitle(m.track.Title, false)))
		}
		if tr.Playing() {
			tr.Pause()
		} else {
			tr.Play()
		}
		m.playing = tr.Playing()
		return m, tea.SetWindowTitle(windowTitle(m.track.Title, !m.playing))
	case "left", "h":
		if s, ok := tr.(seeker); ok {
			s.Seek(-m.opts.SeekStep)
			m.elapsed = tr.Position()
		}
	case "right", "l":
		if s, ok := tr.(seeker); ok {
			s.Seek(m.opts.SeekStep)
			m.elapsed = tr.Position()
		}
	case "+", "=", "up", "k":
		if v, ok := tr.(volumer); ok {
			v.AdjustVolume(volumeStep)
			m.volume = v.Volume()
		}
	case "-", "down", "j":
		if v, ok := tr.(volumer); ok {
			v.AdjustVolume(-volumeStep)
			m.volume = v.Volume()
		}
	}
	return m, nil
}

func (m Model) vizWidth() int {
	w := m.width - 4
	if w < 10 {
		w = 46
	}
	return w
}

// vizHeight leaves room for the header, track lines, progress, status and help.
func (m Model) vizHeight() int {
	h := m.height - 13
	if h < 4 {
		h = 4
	}
	return h
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + headerStyle.Render("barviz") + "\n\n")

	title := m.track.Title
	if title == "" {
		if cur := m.queue.Current(); cur != nil {
			title = cur.Title
		}
	}
	b.WriteString("  " + titleStyle.Render(title) + "\n")
	b.WriteString("  " + infoStyle.Render(m.trackInfo()) + "\n\n")

	for _, line := range strings.Split(m.modes[m.mode].View(), "\n") {
		b.WriteString("  " + vizStyle.Render(line) + "\n")
	}
	b.WriteString("\n")

	elapsed := util.FormatDuration(m.elapsed)
	total := util.FormatDuration(m.track.Duration)
	barWidth := w - len(elapsed) - len(total) - 6
	bar := renderProgressBar(m.elapsed.Seconds(), m.track.Duration.Seconds(), barWidth)
	b.WriteString(fmt.Sprintf("  %s %s %s\n\n", timeStyle.Render(elapsed), bar, timeStyle.Render(total)))

	b.WriteString("  " + m.statusLine(w) + "\n")
	if m.status != "" {
		style := helpStyle
		if m.isError {
			style = errorStyle
		}
		b.WriteString("  " + style.Render(m.status) + "\n")
	}
	b.WriteString("\n")
	b.WriteString("  " + helpStyle.Render(helpText(m.queue.Len() > 1)) + "\n")
	return b.String()
}

func (m Model) trackInfo() string {
	parts := []string{}
	if m.track.SampleRate > 0 {
		parts = append(parts, util.FormatSampleRate(m.track.SampleRate))
	}
	parts = append(parts, fmt.Sprintf("%d bars", m.opts.Bins), m.modes[m.mode].Name())
	if m.queue.Len() > 1 {
		parts = append(parts, fmt.Sprintf("%d/%d", m.queue.CurrentIndex()+1, m.queue.Len()))
	}
	return strings.Join(parts, "  ·  ")
}

func (m Model) statusLine(w int) string {
	icon, text := "▶", "playing"
	switch {
	case m.loading:
		icon, text = m.spinner.View(), "loading"
	case m.ended:
		icon, text = "■", "finished"
	case !m.playing:
		icon, text = "❚❚", "paused"
	}
	left := fmt.Sprintf("%s  %s", icon, text)
	if r := m.repeat.Icon(); r != "" {
		left += "  " + r
	}
	right := renderVolumePercent(m.volume)
	gap := w - len([]rune(left)) - len(right) - 4
	if gap < 2 {
		gap = 2
	}
	return statusStyle.Render(left) + strings.Repeat(" ", gap) + statusStyle.Render(right)
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " - barviz"
	}
	return "▶ " + title + " - barviz"
}
