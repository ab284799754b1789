package effects

import (
	"errors"
	"reflect"
	"testing"
)

type recordingCompositor struct {
	frames  [][]PassID
	values  []map[PassID]float64
	err     error
	resized [2]int
}

func (r *recordingCompositor) Composite(passes []Pass) error {
	ids := make([]PassID, len(passes))
	vals := make(map[PassID]float64)
	for i, p := range passes {
		ids[i] = p.ID
		if specs := Specs(p.ID); len(specs) > 0 {
			vals[p.ID] = p.Value(specs[0].Name)
		}
	}
	r.frames = append(r.frames, ids)
	r.values = append(r.values, vals)
	return r.err
}

func (r *recordingCompositor) Resize(w, h int) { r.resized = [2]int{w, h} }

func newTestChain(t *testing.T) (*Chain, *recordingCompositor) {
	t.Helper()
	comp := &recordingCompositor{}
	c, err := NewChain(DefaultConfig(), comp)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	return c, comp
}

func TestNewChainStartsWithRender(t *testing.T) {
	c, _ := newTestChain(t)
	if got := c.Active(); !reflect.DeepEqual(got, []PassID{PassRender}) {
		t.Errorf("Active() = %v, want [render]", got)
	}
}

func TestNewChainRejectsNilCompositor(t *testing.T) {
	if _, err := NewChain(DefaultConfig(), nil); err == nil {
		t.Error("NewChain(nil compositor) succeeded, want error")
	}
}

func TestAddPassIsIdempotent(t *testing.T) {
	c, _ := newTestChain(t)
	for i := 0; i < 3; i++ {
		if err := c.AddPass(PassBloom); err != nil {
			t.Fatalf("AddPass: %v", err)
		}
	}
	if got := c.Active(); !reflect.DeepEqual(got, []PassID{PassRender, PassBloom}) {
		t.Errorf("Active() = %v, want [render bloom]", got)
	}
}

func TestRemoveAbsentPassIsNoop(t *testing.T) {
	for _, id := range []PassID{PassFilm, PassRender} {
		c, comp := newTestChain(t)
		if err := c.RemovePass(id); err != nil {
			t.Fatalf("RemovePass(%v): %v", id, err)
		}
		if got := c.Active(); !reflect.DeepEqual(got, []PassID{PassRender}) {
			t.Errorf("after RemovePass(%v) Active() = %v, want [render]", id, got)
		}
		if err := c.Render(); err != nil {
			t.Errorf("Render after RemovePass(%v): %v", id, err)
		}
		if len(comp.frames) != 1 || comp.frames[0][0] != PassRender {
			t.Errorf("after RemovePass(%v) composited %v, want render first", id, comp.frames)
		}
	}
}

func TestAddPassKeepsPipelineOrder(t *testing.T) {
	c, _ := newTestChain(t)
	for _, id := range []PassID{PassGammaCorrection, PassBloom, PassSepia, PassFilm} {
		if err := c.AddPass(id); err != nil {
			t.Fatalf("AddPass(%v): %v", id, err)
		}
	}
	want := []PassID{PassRender, PassSepia, PassFilm, PassBloom, PassGammaCorrection}
	if got := c.Active(); !reflect.DeepEqual(got, want) {
		t.Errorf("Active() = %v, want %v", got, want)
	}
}

func TestUnknownPass(t *testing.T) {
	c, _ := newTestChain(t)
	for _, id := range []PassID{-1, passCount, 99} {
		if err := c.AddPass(id); !errors.Is(err, ErrUnknownPass) {
			t.Errorf("AddPass(%d) error = %v, want ErrUnknownPass", id, err)
		}
		if err := c.RemovePass(id); !errors.Is(err, ErrUnknownPass) {
			t.Errorf("RemovePass(%d) error = %v, want ErrUnknownPass", id, err)
		}
	}
}

func TestSetParameterClamps(t *testing.T) {
	c, _ := newTestChain(t)
	tests := []struct {
		id   PassID
		name string
		in   float64
		want float64
	}{
		{PassAfterimage, ParamDamp, 1.7, 1},
		{PassAfterimage, ParamDamp, -0.2, 0},
		{PassDotScreen, ParamScale, 0.3, 1},
		{PassDotScreen, ParamScale, 25, 20},
		{PassRGBShift, ParamAmount, 0.01, 0.01},
		{PassPixelate, ParamPixelSize, 7.6, 8},
		{PassFilm, ParamScanlinesCount, 4096, 2048},
		{PassFilm, ParamGrayscale, 0.5, 1},
		{PassFilm, ParamGrayscale, 0, 0},
		{PassBloom, ParamStrength, 5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.id.String()+"."+tt.name, func(t *testing.T) {
			if err := c.SetParameter(tt.id, tt.name, tt.in); err != nil {
				t.Fatalf("SetParameter: %v", err)
			}
			got, err := c.Parameter(tt.id, tt.name)
			if err != nil {
				t.Fatalf("Parameter: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parameter after SetParameter(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetParameterUnknownName(t *testing.T) {
	c, _ := newTestChain(t)
	if err := c.SetParameter(PassBloom, "damp", 1); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("SetParameter(bloom, damp) error = %v, want ErrUnknownParameter", err)
	}
	if err := c.SetParameter(PassRender, ParamAmount, 1); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("SetParameter(render, amount) error = %v, want ErrUnknownParameter", err)
	}
	if _, err := c.Parameter(PassFilm, "bogus"); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("Parameter(film, bogus) error = %v, want ErrUnknownParameter", err)
	}
}

func TestDefaultsSeeded(t *testing.T) {
	c, _ := newTestChain(t)
	got, _ := c.Parameter(PassFilm, ParamScanlinesCount)
	if got != 649 {
		t.Errorf("film scanlinesCount = %v, want 649", got)
	}
	got, _ = c.Parameter(PassBloom, ParamExposure)
	if got != 0.7619 {
		t.Errorf("bloom exposure = %v, want 0.7619", got)
	}
}

func TestRenderPassesActiveSetInOrder(t *testing.T) {
	c, comp := newTestChain(t)
	_ = c.AddPass(PassRGBShift)
	_ = c.AddPass(PassAfterimage)
	_ = c.SetParameter(PassAfterimage, ParamDamp, 0.75)
	if err := c.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []PassID{PassRender, PassAfterimage, PassRGBShift}
	if !reflect.DeepEqual(comp.frames[0], want) {
		t.Errorf("composited %v, want %v", comp.frames[0], want)
	}
	if got := comp.values[0][PassAfterimage]; got != 0.75 {
		t.Errorf("afterimage damp seen by compositor = %v, want 0.75", got)
	}
}

func TestRenderPropagatesCompositorError(t *testing.T) {
	c, comp := newTestChain(t)
	boom := errors.New("gpu lost")
	comp.err = boom
	if err := c.Render(); !errors.Is(err, boom) {
		t.Errorf("Render error = %v, want %v", err, boom)
	}
}

func TestResizeForwards(t *testing.T) {
	c, comp := newTestChain(t)
	c.Resize(640, 480)
	if comp.resized != [2]int{640, 480} {
		t.Errorf("compositor resized to %v, want [640 480]", comp.resized)
	}
}

func TestPassViewAccessors(t *testing.T) {
	p := Pass{ID: PassFilm, values: []float64{0.37, 0.025, 649, 1}}
	if p.Int(ParamScanlinesCount) != 649 {
		t.Errorf("Int(scanlinesCount) = %d, want 649", p.Int(ParamScanlinesCount))
	}
	if !p.Flag(ParamGrayscale) {
		t.Error("Flag(grayscale) = false, want true")
	}
	if p.Value("missing") != 0 {
		t.Errorf("Value(missing) = %v, want 0", p.Value("missing"))
	}
}
