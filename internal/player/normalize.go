package player

import (
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/olivier-w/barviz/internal/audio"
)

const (
	playbackSampleRate     = 48000
	playbackChannels       = 2
	playbackBytesPerSample = 2
	playbackFrameSize      = playbackChannels * playbackBytesPerSample
)

// trackReader presents a decoded track as a 48 kHz stereo s16le stream,
// resampling linearly and upmixing mono. It counts emitted frames so the
// player can report its position.
type trackReader struct {
	track       *audio.Track
	totalFrames int64 // output frames
	mu          sync.Mutex
	outPos      int64 // next output frame
}

func newTrackReader(t *audio.Track) *trackReader {
	src := int64(t.Frames())
	total := src * playbackSampleRate / int64(t.SampleRate)
	if src > 0 && total == 0 {
		total = 1
	}
	return &trackReader{track: t, totalFrames: total}
}

func (r *trackReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outPos >= r.totalFrames {
		return 0, io.EOF
	}
	frames := len(p) / playbackFrameSize
	if remaining := r.totalFrames - r.outPos; int64(frames) > remaining {
		frames = int(remaining)
	}
	for i := range frames {
		left, right := r.frameAt(r.outPos)
		off := i * playbackFrameSize
		binary.LittleEndian.PutUint16(p[off:], uint16(left))
		binary.LittleEndian.PutUint16(p[off+2:], uint16(right))
		r.outPos++
	}
	return frames * playbackFrameSize, nil
}

// frameAt returns the interpolated stereo frame for output frame n.
func (r *trackReader) frameAt(n int64) (int16, int16) {
	rate := int64(r.track.SampleRate)
	srcNum := n * rate
	src := srcNum / playbackSampleRate
	frac := srcNum % playbackSampleRate

	l0, r0 := r.sourceFrame(src)
	if frac == 0 {
		return l0, r0
	}
	l1, r1 := r.sourceFrame(src + 1)
	return interpolateSample(l0, l1, frac), interpolateSample(r0, r1, frac)
}

// sourceFrame returns the left/right pair of source frame i, holding the last
// frame past the end.
func (r *trackReader) sourceFrame(i int64) (int16, int16) {
	t := r.track
	frames := int64(t.Frames())
	if i >= frames {
		i = frames - 1
	}
	if i < 0 {
		return 0, 0
	}
	base := int(i) * t.Channels
	left := t.Samples[base]
	if t.Channels == 1 {
		return left, left
	}
	return left, t.Samples[base+1]
}

func interpolateSample(a, b int16, fracNum int64) int16 {
	if fracNum == 0 || a == b {
		return a
	}
	diff := int64(int32(b) - int32(a))
	return int16(int64(int32(a)) + (diff*fracNum+playbackSampleRate/2)/playbackSampleRate)
}

// Position returns the playback time of the next frame to be emitted.
func (r *trackReader) Position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return framesToDuration(r.outPos)
}

// Duration returns the playing time of the whole stream.
func (r *trackReader) Duration() time.Duration {
	return framesToDuration(r.totalFrames)
}

// SeekTo moves to pos, clamped to the stream.
func (r *trackReader) SeekTo(pos time.Duration) {
	frame := int64(pos.Seconds() * playbackSampleRate)
	r.mu.Lock()
	defer r.mu.Unlock()
	if frame < 0 {
		frame = 0
	}
	if frame > r.totalFrames {
		frame = r.totalFrames
	}
	r.outPos = frame
}

// Done reports whether every frame has been emitted.
func (r *trackReader) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outPos >= r.totalFrames
}

func framesToDuration(frames int64) time.Duration {
	return time.Duration(frames) * time.Second / playbackSampleRate
}
