package video

import (
	"image"
	"math"
)

// Pattern is a synthetic source: slow moving rings over a diagonal
// gradient. Each call to Frame advances one step.
type Pattern struct {
	img  *image.RGBA
	step int
}

func NewPattern(w, h int) *Pattern {
	return &Pattern{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (p *Pattern) Frame() *image.RGBA {
	b := p.img.Bounds()
	w, h := b.Dx(), b.Dy()
	t := float64(p.step) / 60
	p.step++
	cx := float64(w) * (0.5 + 0.3*math.Cos(t*0.7))
	cy := float64(h) * (0.5 + 0.3*math.Sin(t*0.9))
	for y := 0; y < h; y++ {
		row := p.img.Pix[y*p.img.Stride:]
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			ring := 0.5 + 0.5*math.Sin(d*0.35-t*3)
			grad := float64(x+y) / float64(w+h)
			o := x * 4
			row[o] = uint8(255 * ring)
			row[o+1] = uint8(255 * (0.3*ring + 0.7*grad))
			row[o+2] = uint8(255 * (1 - grad))
			row[o+3] = 255
		}
	}
	return p.img
}

func (p *Pattern) Close() error { return nil }
