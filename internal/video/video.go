// Package video supplies the frames that drive the particle field.
package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrDeviceAcquisition reports that no frames could be obtained from the
// configured device.
var ErrDeviceAcquisition = errors.New("video: device acquisition failed")

// Source yields the most recent frame without blocking. The returned image
// belongs to the source and stays valid until the next call. Frame returns
// nil until a first frame exists.
type Source interface {
	Frame() *image.RGBA
	Close() error
}

type Kind string

const (
	KindWebcam  Kind = "webcam"
	KindPattern Kind = "pattern"
	KindNone    Kind = "none"
)

type Config struct {
	Kind Kind

	// Frames are scaled to Width x Height, normally the particle grid.
	Width  int
	Height int

	Device        string // empty picks the platform default
	Format        string // ffmpeg input format, empty picks the platform default
	FFmpeg        string // ffmpeg executable
	CaptureWidth  int
	CaptureHeight int

	// Open fails when the device produced nothing by then.
	FirstFrameTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Kind:              KindWebcam,
		Width:             120,
		Height:            90,
		FFmpeg:            "ffmpeg",
		CaptureWidth:      640,
		CaptureHeight:     480,
		FirstFrameTimeout: 10 * time.Second,
	}
}

func (c Config) Validate() error {
	switch c.Kind {
	case KindWebcam, KindPattern, KindNone:
	default:
		return fmt.Errorf("video: unknown source kind %q", c.Kind)
	}
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("video: invalid frame size %dx%d", c.Width, c.Height)
	}
	if c.Kind == KindWebcam && (c.CaptureWidth < 1 || c.CaptureHeight < 1) {
		return fmt.Errorf("video: invalid capture size %dx%d", c.CaptureWidth, c.CaptureHeight)
	}
	return nil
}

// Open acquires the configured source. KindNone yields a nil source and no
// error.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case KindPattern:
		return NewPattern(cfg.Width, cfg.Height), nil
	case KindWebcam:
		return OpenWebcam(ctx, cfg, log)
	}
	return nil, nil
}

// Result is the outcome of an asynchronous Open.
type Result struct {
	Source Source
	Err    error
}

// Pending tracks an acquisition running in the background. Poll is safe from
// any goroutine.
type Pending struct {
	res atomic.Pointer[Result]
}

// OpenAsync starts Open on its own goroutine.
func OpenAsync(ctx context.Context, cfg Config, log *zap.Logger) *Pending {
	p := &Pending{}
	go func() {
		src, err := Open(ctx, cfg, log)
		p.res.Store(&Result{Source: src, Err: err})
	}()
	return p
}

// Ready wraps an already known result.
func Ready(src Source, err error) *Pending {
	p := &Pending{}
	p.res.Store(&Result{Source: src, Err: err})
	return p
}

// Poll returns the result once acquisition finished, or nil.
func (p *Pending) Poll() *Result {
	return p.res.Load()
}
