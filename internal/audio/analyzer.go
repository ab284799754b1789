package audio

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"

	"pulsefield/internal/spectrum"
)

var ErrInvalidConfig = errors.New("audio: invalid analyzer config")

// AnalyzerConfig mirrors the knobs of a browser AnalyserNode.
type AnalyzerConfig struct {
	FFTSize     int
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
}

func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		FFTSize:     2048,
		Smoothing:   0.8,
		MinDecibels: -100,
		MaxDecibels: -30,
	}
}

func (c AnalyzerConfig) Validate() error {
	if c.FFTSize < 32 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("%w: fft size %d is not a power of two >= 32", ErrInvalidConfig, c.FFTSize)
	}
	if c.Smoothing < 0 || c.Smoothing > 1 || math.IsNaN(c.Smoothing) {
		return fmt.Errorf("%w: smoothing %v outside [0,1]", ErrInvalidConfig, c.Smoothing)
	}
	if !(c.MinDecibels < c.MaxDecibels) {
		return fmt.Errorf("%w: min decibels %v >= max decibels %v", ErrInvalidConfig, c.MinDecibels, c.MaxDecibels)
	}
	return nil
}

// Bins is the snapshot length for this config.
func (c AnalyzerConfig) Bins() int { return c.FFTSize / 2 }

// Analyzer turns the newest tap samples into a byte magnitude snapshot.
// It is used from the frame goroutine only.
type Analyzer struct {
	cfg AnalyzerConfig
	tap *Tap

	fft      *fourier.FFT
	win      []float64
	samples  []float64
	coeffs   []complex128
	smoothed []float64
	snap     spectrum.Snapshot

	lastWritten uint64
	captured    bool
}

// NewAnalyzer reads from tap, which must hold at least FFTSize samples.
func NewAnalyzer(cfg AnalyzerConfig, tap *Tap) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tap == nil {
		return nil, errors.New("audio: analyzer needs a tap")
	}
	if tap.Size() < cfg.FFTSize {
		return nil, fmt.Errorf("%w: tap holds %d samples, need %d", ErrInvalidConfig, tap.Size(), cfg.FFTSize)
	}
	n := cfg.FFTSize
	return &Analyzer{
		cfg:      cfg,
		tap:      tap,
		fft:      fourier.NewFFT(n),
		win:      window.Blackman(n),
		samples:  make([]float64, n),
		coeffs:   make([]complex128, n/2+1),
		smoothed: make([]float64, n/2),
		snap:     make(spectrum.Snapshot, n/2),
	}, nil
}

func (a *Analyzer) Config() AnalyzerConfig { return a.cfg }

// Capture returns the current snapshot. The returned slice is owned by the
// analyzer and overwritten by the next call. When nothing new reached the
// tap since the previous call the previous snapshot comes back unchanged.
func (a *Analyzer) Capture() spectrum.Snapshot {
	written := a.tap.Latest(a.samples)
	if a.captured && written == a.lastWritten {
		return a.snap
	}
	a.captured = true
	a.lastWritten = written

	for i, w := range a.win {
		a.samples[i] *= w
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.samples)

	n := float64(a.cfg.FFTSize)
	tau := a.cfg.Smoothing
	span := a.cfg.MaxDecibels - a.cfg.MinDecibels
	for k := range a.smoothed {
		mag := cmplx.Abs(a.coeffs[k]) / n
		s := tau*a.smoothed[k] + (1-tau)*mag
		if math.IsNaN(s) || math.IsInf(s, 0) {
			s = 0
		}
		a.smoothed[k] = s
		a.snap[k] = toByte(s, a.cfg.MinDecibels, span)
	}
	return a.snap
}

func toByte(mag, minDB, span float64) uint8 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := math.Floor(255 * (db - minDB) / span)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
