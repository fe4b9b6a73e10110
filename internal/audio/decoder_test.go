package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWAV(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav encoder: %v", err)
	}
}

func TestFileSourceLoadsWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	data := make([]int, 0, 2*8000)
	for i := range 8000 {
		data = append(data, i%100, -(i % 100))
	}
	writeWAV(t, path, 8000, 2, data)

	track, err := NewFileSource().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if track.SampleRate != 8000 || track.Channels != 2 {
		t.Fatalf("unexpected format: %d Hz, %d channels", track.SampleRate, track.Channels)
	}
	if track.Frames() != 8000 {
		t.Fatalf("expected 8000 frames, got %d", track.Frames())
	}
	if track.Duration() != time.Second {
		t.Fatalf("expected 1s duration, got %v", track.Duration())
	}
	if track.Samples[2] != 1 || track.Samples[3] != -1 {
		t.Fatalf("unexpected samples %v", track.Samples[:4])
	}
}

func TestFileSourceRejectsUnsupportedExtension(t *testing.T) {
	_, err := NewFileSource().Load(context.Background(), "notes.txt")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestFileSourceRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("definitely not RIFF"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := NewFileSource().Load(context.Background(), path)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Path != path {
		t.Fatalf("expected path %q in error, got %q", path, decodeErr.Path)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource().Load(context.Background(), filepath.Join(t.TempDir(), "gone.mp3"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestFileSourceHonorsCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, 8000, 1, make([]int, 8000))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileSource().Load(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		t.Fatal("expected cancellation not to be reported as a decode error")
	}
}

func TestTrackWaveformMixesToMono(t *testing.T) {
	track := &Track{
		Samples:    []int16{32767, 32767, -16384, 16384, 0, -32768},
		Channels:   2,
		SampleRate: 4,
	}
	wf := track.Waveform()
	if wf.SampleRate != 4 || len(wf.Samples) != 3 {
		t.Fatalf("unexpected waveform shape: %d Hz, %d samples", wf.SampleRate, len(wf.Samples))
	}
	if wf.Samples[1] != 0 {
		t.Fatalf("expected opposite channels to cancel, got %f", wf.Samples[1])
	}
	if wf.Samples[2] != -0.5 {
		t.Fatalf("expected -0.5, got %f", wf.Samples[2])
	}
	if wf.Duration() != 0.75 {
		t.Fatalf("expected 0.75s, got %f", wf.Duration())
	}
}
