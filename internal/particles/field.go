// Package particles holds the webcam-driven point grid.
package particles

import (
	"fmt"
	"image"

	"pulsefield/internal/spectrum"
)

// Grid defaults: the webcam is sampled at this resolution, one point per
// pixel.
const (
	DefaultGridWidth  = 120
	DefaultGridHeight = 90
)

// Loudness range mapped onto the growth factor.
const (
	LoudnessMin = 0
	LoudnessMax = 100
)

// Point is one grid cell. X and Z are fixed at construction; Y and the
// color are rewritten every frame.
type Point struct {
	X, Y, Z float32
	R, G, B float32
}

// Growth controls how far dark pixels rise.
type Growth struct {
	Min, Max float64
	Value    float64
}

// Config sizes the grid.
type Config struct {
	Width, Height int
	Scale         float64
	Growth        Growth
}

// DefaultConfig returns a 120x90 grid with a growth cap of 20.
func DefaultConfig() Config {
	return Config{
		Width:  DefaultGridWidth,
		Height: DefaultGridHeight,
		Scale:  10,
		Growth: Growth{Min: 0, Max: 20},
	}
}

// Field is a fixed-size grid of points. It is never resized.
type Field struct {
	W, H   int
	Points []Point
	Scale  float64
	Growth Growth

	loudness float64
}

// NewField lays out a W×H grid centred on the origin in the XZ plane, every
// point white and flat.
func NewField(cfg Config) (*Field, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("particles: invalid grid %dx%d", cfg.Width, cfg.Height)
	}
	f := &Field{
		W:      cfg.Width,
		H:      cfg.Height,
		Points: make([]Point, cfg.Width*cfg.Height),
		Scale:  cfg.Scale,
		Growth: cfg.Growth,
	}
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			f.Points[y*f.W+x] = Point{
				X: float32(-x) + float32(f.W)/2,
				Z: float32(y) - float32(f.H)/2,
				R: 1, G: 1, B: 1,
			}
		}
	}
	return f, nil
}

// SetGrowth rescales loudness (0..100) onto [Growth.Min, Growth.Max].
func (f *Field) SetGrowth(overallAvg float64) error {
	v, err := spectrum.Modulate(overallAvg, LoudnessMin, LoudnessMax, f.Growth.Min, f.Growth.Max)
	if err != nil {
		return err
	}
	f.Growth.Value = v
	f.loudness = overallAvg
	return nil
}

// SetGrowthCap moves the upper growth bound and rescales the current value
// from the last loudness, so the next Update already respects the new cap.
func (f *Field) SetGrowthCap(max float64) error {
	f.Growth.Max = max
	return f.SetGrowth(f.loudness)
}

// Update samples frame once per cell (nearest neighbour) and sets height
// from inverse brightness and color from the pixel. A nil frame leaves the
// field untouched.
func (f *Field) Update(frame *image.RGBA) {
	if frame == nil {
		return
	}
	b := frame.Bounds()
	fw, fh := b.Dx(), b.Dy()
	if fw == 0 || fh == 0 {
		return
	}
	growth := f.Growth.Value
	for y := 0; y < f.H; y++ {
		sy := b.Min.Y + y*fh/f.H
		for x := 0; x < f.W; x++ {
			i := frame.PixOffset(b.Min.X+x*fw/f.W, sy)
			px := frame.Pix[i : i+3]
			r := float32(px[0]) / 255
			g := float32(px[1]) / 255
			bl := float32(px[2]) / 255
			gray := (r + g + bl) / 3

			p := &f.Points[y*f.W+x]
			p.Y = (1 - gray) * float32(growth)
			p.R, p.G, p.B = r, g, bl
		}
	}
}

// VertexStride is the number of floats RenderData emits per point.
const VertexStride = 6

// RenderData appends the interleaved [x, y, z, r, g, b] stream to buf[:0].
func (f *Field) RenderData(buf []float32) []float32 {
	buf = buf[:0]
	for _, p := range f.Points {
		buf = append(buf, p.X, p.Y, p.Z, p.R, p.G, p.B)
	}
	return buf
}
