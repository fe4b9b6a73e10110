package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/olivier-w/barviz/internal/media"
)

const chunkSamples = 1 << 15

// FileSource decodes whole audio files into memory.
type FileSource struct{}

// NewFileSource returns a FileSource.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Load decodes the file at path. Decoding stops early with ctx.Err() when ctx
// is cancelled. Any other failure is a *DecodeError.
func (s *FileSource) Load(ctx context.Context, path string) (*Track, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("unsupported format %q (supported: %s)", ext, media.SupportedExtsList())}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	var t *Track
	switch ext {
	case ".mp3":
		t, err = decodeMP3(ctx, f)
	case ".wav":
		t, err = decodeWAV(ctx, f)
	case ".flac":
		t, err = decodeFLAC(ctx, f)
	case ".ogg":
		t, err = decodeOGG(ctx, f)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, &DecodeError{Path: path, Err: err}
	}
	if t.Frames() == 0 {
		return nil, &DecodeError{Path: path, Err: errors.New("no audio frames")}
	}
	return t, nil
}

// --- MP3 ---

func decodeMP3(ctx context.Context, r io.Reader) (*Track, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	// go-mp3 always produces 16-bit LE stereo.
	samples := make([]int16, 0, max(dec.Length()/2, 0))
	buf := make([]byte, chunkSamples*2)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := io.ReadFull(dec, buf)
		for i := 0; i+1 < n; i += 2 {
			samples = append(samples, int16(binary.LittleEndian.Uint16(buf[i:])))
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return &Track{Samples: samples, Channels: 2, SampleRate: dec.SampleRate()}, nil
}

// --- WAV ---

func decodeWAV(ctx context.Context, r io.ReadSeeker) (*Track, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 {
		return nil, fmt.Errorf("invalid WAV channel count %d", channels)
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", bitDepth)
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: channels, SampleRate: int(dec.SampleRate)},
		Data:   make([]int, chunkSamples),
	}
	var samples []int16
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := dec.PCMBuffer(buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading WAV samples: %w", err)
		}
		if n == 0 {
			break
		}
		for _, v := range buf.Data[:n] {
			samples = append(samples, wavTo16(v, bitDepth))
		}
	}
	return &Track{Samples: samples, Channels: channels, SampleRate: int(dec.SampleRate)}, nil
}

func wavTo16(v, bitDepth int) int16 {
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		v = (v - 128) << 8
	case 24:
		v >>= 8
	case 32:
		v >>= 16
	}
	return clamp16(v)
}

// --- FLAC ---

func decodeFLAC(ctx context.Context, r io.Reader) (*Track, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bps := int(info.BitsPerSample)
	samples := make([]int16, 0, int(info.NSamples)*channels)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding FLAC frame: %w", err)
		}

		n := int(frame.Subframes[0].NSamples)
		for i := range n {
			for ch := range channels {
				sample := int(frame.Subframes[ch].Samples[i])
				switch {
				case bps > 16:
					sample >>= (bps - 16)
				case bps < 16:
					sample <<= (16 - bps)
				}
				samples = append(samples, clamp16(sample))
			}
		}
	}
	return &Track{Samples: samples, Channels: channels, SampleRate: int(info.SampleRate)}, nil
}

// --- OGG Vorbis ---

func decodeOGG(ctx context.Context, r io.Reader) (*Track, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}

	channels := reader.Channels()
	capHint := reader.Length() * int64(channels)
	if capHint < 0 {
		capHint = 0
	}
	samples := make([]int16, 0, capHint)
	buf := make([]float32, chunkSamples*channels)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := reader.Read(buf)
		for _, s := range buf[:n] {
			if s > 1.0 {
				s = 1.0
			} else if s < -1.0 {
				s = -1.0
			}
			samples = append(samples, int16(s*32767))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding OGG: %w", err)
		}
	}
	return &Track{Samples: samples, Channels: channels, SampleRate: reader.SampleRate()}, nil
}

func clamp16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
