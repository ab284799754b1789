package stage

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"pulsefield/internal/effects"
	"pulsefield/internal/spectrum"
)

type fakeRenderer struct {
	calls     []string
	vertices  []float32
	scale     float64
	camera    mgl32.Mat4
	frames    [][]effects.PassID
	size      [2]int
	renderErr error
}

func (r *fakeRenderer) DrawParticles(v []float32, scale float64) {
	r.calls = append(r.calls, "particles")
	r.vertices = append(r.vertices[:0], v...)
	r.scale = scale
}

func (r *fakeRenderer) SetCamera(m mgl32.Mat4) {
	r.calls = append(r.calls, "camera")
	r.camera = m
}

func (r *fakeRenderer) Composite(passes []effects.Pass) error {
	r.calls = append(r.calls, "composite")
	ids := make([]effects.PassID, len(passes))
	for i, p := range passes {
		ids[i] = p.ID
	}
	r.frames = append(r.frames, ids)
	return r.renderErr
}

func (r *fakeRenderer) Resize(w, h int) { r.size = [2]int{w, h} }

type fakeAnalyzer struct {
	snap     spectrum.Snapshot
	captures int
}

func (a *fakeAnalyzer) Capture() spectrum.Snapshot {
	a.captures++
	return a.snap
}

type fakePlayer struct {
	tracks  []int
	toggles int
	stops   int
}

func (p *fakePlayer) SwitchTrack(i int) error {
	p.tracks = append(p.tracks, i)
	return nil
}

func (p *fakePlayer) TogglePlayback() error {
	p.toggles++
	return nil
}

func (p *fakePlayer) Stop() error {
	p.stops++
	return nil
}

// solidSource serves one uniformly colored frame.
type solidSource struct {
	img    *image.RGBA
	closed bool
}

func newSolidSource(w, h int, c color.RGBA) *solidSource {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return &solidSource{img: img}
}

func (s *solidSource) Frame() *image.RGBA { return s.img }
func (s *solidSource) Close() error {
	s.closed = true
	return nil
}
