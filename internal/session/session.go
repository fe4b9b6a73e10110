// Package session owns the currently loaded track: its transport, its frame
// matrix and the mapper that turns playback position into bar heights. Loads
// run off the UI goroutine; their results come back over a one-shot channel
// and are applied only if no newer load has started since.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/olivier-w/barviz/internal/audio"
	"github.com/olivier-w/barviz/internal/logging"
	"github.com/olivier-w/barviz/internal/spectrum"
	"github.com/olivier-w/barviz/internal/visualizer"
)

// ErrStaleJob is returned by Apply for a result superseded by a newer load.
var ErrStaleJob = errors.New("session: stale load result")

// AudioSource decodes a file into PCM.
type AudioSource interface {
	Load(ctx context.Context, path string) (*audio.Track, error)
}

// Transport is a playing (or paused) track. Position is authoritative for
// frame selection.
type Transport interface {
	Position() time.Duration
	Duration() time.Duration
	Playing() bool
	Play()
	Pause()
	Title() string
	Close()
}

// TransportOpener starts a transport for a decoded track. It must not begin
// playback; the session decides when to Play.
type TransportOpener func(path string, track *audio.Track) (Transport, error)

// Options configures binning and smoothing for every load.
type Options struct {
	Spectrum   spectrum.Options
	AlphaDecay float64
	AlphaRise  float64
	Autoplay   bool
}

// LoadResult is the outcome of one load job.
type LoadResult struct {
	Generation uint64
	Path       string
	Transport  Transport
	Matrix     *spectrum.FrameMatrix
	YMax       float64
	SampleRate int
	Err        error
}

// Frame is what one render tick produces.
type Frame struct {
	Bars  []float64
	Index int
	Done  bool
}

// Track describes the applied track.
type Track struct {
	Path       string
	Title      string
	Duration   time.Duration
	SampleRate int
	Frames     int
	YMax       float64
	Degenerate bool
}

// Session coordinates load jobs and per-tick frame mapping. Load may be
// called from any goroutine. Apply, Tick, Current and Close must be called
// from the single goroutine that owns rendering.
type Session struct {
	source AudioSource
	open   TransportOpener
	opts   Options
	logger *zap.Logger

	generation atomic.Uint64
	stale      atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc

	smoother  *visualizer.Smoother
	transport Transport
	mapper    *visualizer.FrameMapper
	track     Track
}

// New returns an empty Session. The spectrum options are checked when a
// track is binned since they depend on its sample rate.
func New(source AudioSource, open TransportOpener, opts Options, logger *zap.Logger) (*Session, error) {
	if source == nil || open == nil {
		return nil, errors.New("session: source and transport opener are required")
	}
	smoother, err := visualizer.NewSmoother(opts.Spectrum.Bins, opts.AlphaDecay, opts.AlphaRise)
	if err != nil {
		return nil, err
	}
	return &Session{
		source:   source,
		open:     open,
		opts:     opts,
		logger:   logging.OrNop(logger),
		smoother: smoother,
	}, nil
}

// Generation returns the generation of the most recent load.
func (s *Session) Generation() uint64 {
	return s.generation.Load()
}

// StaleJobs returns how many results Apply has discarded as stale.
func (s *Session) StaleJobs() uint64 {
	return s.stale.Load()
}

// Load starts decoding and binning path in the background and cancels any
// load still in flight. The returned channel yields exactly one result and
// is then closed.
func (s *Session) Load(ctx context.Context, path string) <-chan LoadResult {
	jobCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	gen := s.generation.Add(1)
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Debug("load started", zap.String("path", path), zap.Uint64("generation", gen))

	out := make(chan LoadResult, 1)
	go func() {
		defer close(out)
		defer cancel()
		res := s.run(jobCtx, path)
		res.Generation = gen
		res.Path = path
		out <- res
	}()
	return out
}

func (s *Session) run(ctx context.Context, path string) LoadResult {
	start := time.Now()
	track, err := s.source.Load(ctx, path)
	if err != nil {
		return LoadResult{Err: err}
	}

	matrix, err := spectrum.Bin(ctx, track.Waveform(), s.opts.Spectrum)
	if err != nil {
		return LoadResult{Err: err}
	}
	yMax := spectrum.YMax(matrix, s.opts.Spectrum.LegacyFloor)

	if err := ctx.Err(); err != nil {
		return LoadResult{Err: err}
	}
	transport, err := s.open(path, track)
	if err != nil {
		return LoadResult{Err: fmt.Errorf("opening transport: %w", err)}
	}

	s.logger.Debug("load finished",
		zap.String("path", path),
		zap.Int("frames", matrix.Rows()),
		zap.Float64("y_max", yMax),
		zap.Duration("elapsed", time.Since(start)))
	return LoadResult{
		Transport:  transport,
		Matrix:     matrix,
		YMax:       yMax,
		SampleRate: track.SampleRate,
	}
}

// Apply installs res as the current track. A result from a superseded load
// is discarded with ErrStaleJob and its transport closed. A failed load
// leaves the current track untouched and returns its error. A track with
// nothing to normalize against is still applied and plays with flat bars;
// the *visualizer.DegenerateInputError is returned for reporting.
func (s *Session) Apply(res LoadResult) error {
	if current := s.generation.Load(); res.Generation != current {
		if res.Transport != nil {
			res.Transport.Close()
		}
		s.stale.Add(1)
		s.logger.Debug("discarded stale load",
			zap.String("path", res.Path),
			zap.Uint64("generation", res.Generation),
			zap.Uint64("current", current))
		return ErrStaleJob
	}
	if res.Err != nil {
		s.logger.Error("load failed", zap.String("path", res.Path), zap.Error(res.Err))
		return res.Err
	}

	mapper, mapErr := visualizer.NewFrameMapper(res.Matrix, res.YMax, s.opts.Spectrum.LegacyFloor, s.smoother)
	if mapper == nil {
		res.Transport.Close()
		return mapErr
	}
	if mapErr != nil {
		s.logger.Warn("track has no dynamic range, bars stay flat",
			zap.String("path", res.Path), zap.Error(mapErr))
	}

	if s.transport != nil {
		s.transport.Close()
	}
	s.transport = res.Transport
	s.mapper = mapper
	s.track = Track{
		Path:       res.Path,
		Title:      res.Transport.Title(),
		Duration:   res.Transport.Duration(),
		SampleRate: res.SampleRate,
		Frames:     res.Matrix.Rows(),
		YMax:       res.YMax,
		Degenerate: mapper.Degenerate(),
	}
	if s.opts.Autoplay {
		s.transport.Play()
	}
	s.logger.Info("track applied",
		zap.String("path", res.Path),
		zap.Uint64("generation", res.Generation),
		zap.Duration("duration", s.track.Duration),
		zap.Int("sample_rate", res.SampleRate))
	return mapErr
}

// Tick maps the transport's current position to bar heights. Done is set
// once the position is past the last frame, or when nothing is loaded.
func (s *Session) Tick() Frame {
	if s.mapper == nil {
		return Frame{Index: -1, Done: true}
	}
	bars, ok := s.mapper.Next(s.transport.Position().Seconds())
	if !ok {
		return Frame{Index: s.mapper.Index(), Done: true}
	}
	return Frame{Bars: bars, Index: s.mapper.Index()}
}

// Current returns the applied track's transport and description, or nil if
// nothing has been applied yet.
func (s *Session) Current() (Transport, Track) {
	return s.transport, s.track
}

// Close cancels any load in flight and closes the current transport.
func (s *Session) Close() {
	s.mu.Lock()
	s.generation.Add(1)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	if s.transport != nil {
		s.transport.Close()
		s.transport = nil
	}
	s.mapper = nil
}
