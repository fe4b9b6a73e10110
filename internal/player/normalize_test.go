package player

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/olivier-w/barviz/internal/audio"
)

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestTrackReaderUpmixesMono(t *testing.T) {
	r := newTrackReader(&audio.Track{
		Samples:    []int16{1000, -2000, 3000},
		Channels:   1,
		SampleRate: playbackSampleRate,
	})

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	want := pcm16(1000, 1000, -2000, -2000, 3000, 3000)
	if !bytes.Equal(out, want) {
		t.Fatalf("upmixed PCM mismatch:\n got %v\nwant %v", out, want)
	}
	if !r.Done() {
		t.Fatal("expected reader to be done")
	}
}

func TestTrackReaderResamplesToPlaybackRate(t *testing.T) {
	r := newTrackReader(&audio.Track{
		Samples:    []int16{0, 0, 1000, 1000},
		Channels:   2,
		SampleRate: playbackSampleRate / 2,
	})

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	want := pcm16(0, 0, 500, 500, 1000, 1000, 1000, 1000)
	if !bytes.Equal(out, want) {
		t.Fatalf("resampled PCM mismatch:\n got %v\nwant %v", out, want)
	}
}

func TestTrackReaderPositionAndSeek(t *testing.T) {
	r := newTrackReader(&audio.Track{
		Samples:    make([]int16, playbackSampleRate*2),
		Channels:   2,
		SampleRate: playbackSampleRate,
	})
	if r.Duration() != time.Second {
		t.Fatalf("expected 1s duration, got %v", r.Duration())
	}

	buf := make([]byte, playbackSampleRate/4*playbackFrameSize)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := r.Position(); got != 250*time.Millisecond {
		t.Fatalf("expected position 250ms, got %v", got)
	}

	r.SeekTo(-time.Second)
	if got := r.Position(); got != 0 {
		t.Fatalf("expected negative seek to clamp to 0, got %v", got)
	}
	r.SeekTo(5 * time.Second)
	if got := r.Position(); got != time.Second {
		t.Fatalf("expected seek past end to clamp to 1s, got %v", got)
	}
	if n, err := r.Read(buf); n != 0 || err != io.EOF {
		t.Fatalf("expected EOF at end, got n=%d err=%v", n, err)
	}
}
