package audio

import (
	"errors"
	"io"
	"math"
	"testing"
)

func feedSine(t *testing.T, tap *Tap, freq float64, frames int) {
	t.Helper()
	buf := make([]byte, frames*BytesPerFrame)
	for i := 0; i < frames; i++ {
		v := 0.5 * math.Sin(2*math.Pi*freq*float64(i)/SampleRate)
		putStereo(buf, i, v, v)
	}
	if _, err := io.ReadFull(tap.Wrap(&loopReader{data: buf}), make([]byte, len(buf))); err != nil {
		t.Fatalf("feed: %v", err)
	}
}

func argmax(s []uint8) int {
	best := 0
	for i, v := range s {
		if v > s[best] {
			best = i
		}
	}
	return best
}

func TestAnalyzerConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*AnalyzerConfig)
		ok   bool
	}{
		{"default", func(*AnalyzerConfig) {}, true},
		{"fft 32", func(c *AnalyzerConfig) { c.FFTSize = 32 }, true},
		{"fft 16", func(c *AnalyzerConfig) { c.FFTSize = 16 }, false},
		{"fft not power of two", func(c *AnalyzerConfig) { c.FFTSize = 1000 }, false},
		{"smoothing above one", func(c *AnalyzerConfig) { c.Smoothing = 1.5 }, false},
		{"smoothing negative", func(c *AnalyzerConfig) { c.Smoothing = -0.1 }, false},
		{"decibels inverted", func(c *AnalyzerConfig) { c.MinDecibels = -20 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAnalyzerConfig()
			tt.mod(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewAnalyzerRejectsSmallTap(t *testing.T) {
	if _, err := NewAnalyzer(DefaultAnalyzerConfig(), NewTap(1024)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewAnalyzer() error = %v, want ErrInvalidConfig", err)
	}
}

func TestAnalyzerSilence(t *testing.T) {
	cfg := DefaultAnalyzerConfig()
	a, err := NewAnalyzer(cfg, NewTap(cfg.FFTSize))
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	snap := a.Capture()
	if len(snap) != cfg.Bins() {
		t.Fatalf("len(Capture()) = %d, want %d", len(snap), cfg.Bins())
	}
	for k, v := range snap {
		if v != 0 {
			t.Fatalf("Capture()[%d] = %d on silence, want 0", k, v)
		}
	}
}

func TestAnalyzerSinePeak(t *testing.T) {
	cfg := DefaultAnalyzerConfig()
	tap := NewTap(cfg.FFTSize)
	a, err := NewAnalyzer(cfg, tap)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	const bin = 64
	feedSine(t, tap, bin*SampleRate/float64(cfg.FFTSize), cfg.FFTSize)
	snap := a.Capture()
	if got := argmax(snap); got != bin {
		t.Errorf("peak bin = %d, want %d", got, bin)
	}
	if snap[bin] == 0 {
		t.Errorf("Capture()[%d] = 0, want a non-zero level", bin)
	}
}

func TestAnalyzerReusesStaleSnapshot(t *testing.T) {
	cfg := DefaultAnalyzerConfig()
	tap := NewTap(cfg.FFTSize)
	a, err := NewAnalyzer(cfg, tap)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	freq := 64 * SampleRate / float64(cfg.FFTSize)
	feedSine(t, tap, freq, cfg.FFTSize)
	first := append([]uint8(nil), a.Capture()...)

	second := a.Capture()
	for k := range first {
		if second[k] != first[k] {
			t.Fatalf("stale Capture()[%d] = %d, want %d", k, second[k], first[k])
		}
	}

	// Smoothing keeps rising toward the steady level while new audio arrives.
	feedSine(t, tap, freq, cfg.FFTSize)
	third := a.Capture()
	if third[64] <= first[64] {
		t.Errorf("Capture()[64] after new audio = %d, want > %d", third[64], first[64])
	}
}

func TestToByte(t *testing.T) {
	tests := []struct {
		mag  float64
		want uint8
	}{
		{0, 0},
		{1e-6, 0},
		{1e-5, 0},
		{math.Pow(10, -65.0/20), 127},
		{math.Pow(10, -29.0/20), 255},
		{1, 255},
	}
	for _, tt := range tests {
		if got := toByte(tt.mag, -100, 70); got != tt.want {
			t.Errorf("toByte(%v) = %d, want %d", tt.mag, got, tt.want)
		}
	}
}
