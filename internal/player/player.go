package player

import (
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/olivier-w/barviz/internal/audio"
)

// output is the part of *oto.Player the Player drives.
type output interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(float64)
	BufferedSize() int
}

// Player plays a decoded track and reports its position.
type Player struct {
	reader    *trackReader
	out       output
	newOutput func(io.Reader) (output, error)
	meta      Metadata
	volume    float64
	paused    bool
	closed    bool
	mu        sync.Mutex
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   playbackSampleRate,
			ChannelCount: playbackChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

func otoOutput(r io.Reader) (output, error) {
	ctx, err := initOto()
	if err != nil {
		return nil, err
	}
	return ctx.NewPlayer(r), nil
}

// New creates a paused Player for track. volume is clamped to [0, 1].
func New(track *audio.Track, meta Metadata, volume float64) (*Player, error) {
	return newPlayer(track, meta, volume, otoOutput)
}

func newPlayer(track *audio.Track, meta Metadata, volume float64, newOutput func(io.Reader) (output, error)) (*Player, error) {
	p := &Player{
		reader:    newTrackReader(track),
		newOutput: newOutput,
		meta:      meta,
		volume:    clampVolume(volume),
		paused:    true,
	}
	out, err := newOutput(p.reader)
	if err != nil {
		return nil, err
	}
	out.SetVolume(p.volume)
	p.out = out
	return p, nil
}

// Play starts or resumes playback. Playing past the end restarts the track.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.reader.Done() && p.out.BufferedSize() == 0 {
		p.restartLocked()
	}
	p.out.Play()
	p.paused = false
}

// Pause pauses playback without toggling.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.out.Pause()
	p.paused = true
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	if p.Playing() {
		p.Pause()
		return
	}
	p.Play()
}

// Playing reports whether audio is currently being produced.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.paused {
		return false
	}
	return p.out.IsPlaying()
}

// Position returns the audible playback position: frames handed to the
// output minus what is still buffered there.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := p.reader.Position()
	if p.out != nil {
		pos -= framesToDuration(int64(p.out.BufferedSize() / playbackFrameSize))
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.reader.Duration()
}

// Seek moves playback by delta from the current position.
func (p *Player) Seek(delta time.Duration) {
	target := p.Position() + delta

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.reader.SeekTo(target)
	p.resetOutputLocked()
}

// Restart plays the track again from the beginning.
func (p *Player) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.paused = false
	p.restartLocked()
	p.out.Play()
}

func (p *Player) restartLocked() {
	p.reader.SeekTo(0)
	p.resetOutputLocked()
}

// resetOutputLocked recreates the output to flush its buffer.
func (p *Player) resetOutputLocked() {
	out, err := p.newOutput(p.reader)
	if err != nil {
		return
	}
	p.out.Pause()
	out.SetVolume(p.volume)
	p.out = out
	if !p.paused {
		p.out.Play()
	}
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(v)
	if p.out != nil {
		p.out.SetVolume(p.volume)
	}
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.SetVolume(p.Volume() + delta)
}

// Title returns the display title of the track.
func (p *Player) Title() string {
	return p.meta.Title
}

// Metadata returns the track's tag information.
func (p *Player) Metadata() Metadata {
	return p.meta
}

// Close stops playback. It is safe to call more than once.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.out != nil {
		p.out.Pause()
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
