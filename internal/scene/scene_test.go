package scene

import (
	"errors"
	"reflect"
	"testing"

	"pulsefield/internal/effects"
)

type nopCompositor struct{}

func (nopCompositor) Composite([]effects.Pass) error { return nil }
func (nopCompositor) Resize(int, int)                {}

func newController(t *testing.T, cfg Config) (*Controller, *effects.Chain) {
	t.Helper()
	chain, err := effects.NewChain(effects.DefaultConfig(), nopCompositor{})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	c, err := NewController(cfg, chain)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c, chain
}

func activeCopy(chain *effects.Chain) []effects.PassID {
	return append([]effects.PassID(nil), chain.Active()...)
}

func TestSelectScene1FromFreshChain(t *testing.T) {
	c, chain := newController(t, DefaultConfig())
	if err := c.Select(Scene1); err != nil {
		t.Fatalf("Select: %v", err)
	}
	want := []effects.PassID{effects.PassRender, effects.PassPixelate, effects.PassBloom}
	if got := chain.Active(); !reflect.DeepEqual(got, want) {
		t.Errorf("Active() = %v, want %v", got, want)
	}
	if got := c.Particles(); got != (Particles{Scale: 1, GrowthCap: 5}) {
		t.Errorf("Particles() = %+v, want {Scale:1 GrowthCap:5}", got)
	}
}

func TestSceneTable(t *testing.T) {
	tests := []struct {
		scene     Index
		passes    []effects.PassID
		particles Particles
	}{
		{Scene0, []effects.PassID{effects.PassRender, effects.PassAfterimage, effects.PassDotScreen, effects.PassRGBShift}, Particles{10, 10}},
		{Scene1, []effects.PassID{effects.PassRender, effects.PassPixelate, effects.PassBloom}, Particles{1, 5}},
		{Scene2, []effects.PassID{effects.PassRender, effects.PassSepia, effects.PassFilm, effects.PassBloom}, Particles{10, 20}},
	}
	for _, tt := range tests {
		c, chain := newController(t, DefaultConfig())
		if err := c.Select(tt.scene); err != nil {
			t.Fatalf("Select(%d): %v", tt.scene, err)
		}
		if got := chain.Active(); !reflect.DeepEqual(got, tt.passes) {
			t.Errorf("scene %d: Active() = %v, want %v", tt.scene, got, tt.passes)
		}
		if got := c.Particles(); got != tt.particles {
			t.Errorf("scene %d: Particles() = %+v, want %+v", tt.scene, got, tt.particles)
		}
	}
}

func TestSelectIsIdempotent(t *testing.T) {
	for k := Scene0; k < Count; k++ {
		once, onceChain := newController(t, DefaultConfig())
		twice, twiceChain := newController(t, DefaultConfig())
		_ = once.Select(k)
		_ = twice.Select(k)
		_ = twice.Select(k)
		if !reflect.DeepEqual(onceChain.Active(), twiceChain.Active()) {
			t.Errorf("scene %d: once %v, twice %v", k, onceChain.Active(), twiceChain.Active())
		}
		if once.Particles() != twice.Particles() {
			t.Errorf("scene %d: particles once %+v, twice %+v", k, once.Particles(), twice.Particles())
		}
	}
}

func TestTransitionDependsOnlyOnTarget(t *testing.T) {
	direct, directChain := newController(t, DefaultConfig())
	_ = direct.Select(Scene0)

	path, pathChain := newController(t, DefaultConfig())
	for _, s := range []Index{Scene0, Scene2, Scene0} {
		if err := path.Select(s); err != nil {
			t.Fatalf("Select(%d): %v", s, err)
		}
	}
	if !reflect.DeepEqual(directChain.Active(), pathChain.Active()) {
		t.Errorf("0->2->0 gives %v, direct 0 gives %v", pathChain.Active(), directChain.Active())
	}
	if direct.Particles() != path.Particles() {
		t.Errorf("0->2->0 particles %+v, direct %+v", path.Particles(), direct.Particles())
	}
}

func TestAllPathsReachSameState(t *testing.T) {
	want := make(map[Index][]effects.PassID)
	for k := Scene0; k < Count; k++ {
		c, chain := newController(t, DefaultConfig())
		_ = c.Select(k)
		want[k] = activeCopy(chain)
	}
	for a := Scene0; a < Count; a++ {
		for b := Scene0; b < Count; b++ {
			c, chain := newController(t, DefaultConfig())
			_ = c.Select(a)
			_ = c.Select(b)
			if got := chain.Active(); !reflect.DeepEqual(got, want[b]) {
				t.Errorf("%d->%d: Active() = %v, want %v", a, b, got, want[b])
			}
		}
	}
}

func TestNoDuplicatePasses(t *testing.T) {
	c, chain := newController(t, DefaultConfig())
	seq := []Index{0, 1, 1, 2, 0, 2, 2, 1, 0, 0, 2, 1}
	for _, s := range seq {
		_ = c.Select(s)
		seen := make(map[effects.PassID]bool)
		for _, id := range chain.Active() {
			if seen[id] {
				t.Fatalf("after Select(%d): duplicate %v in %v", s, id, chain.Active())
			}
			seen[id] = true
		}
	}
}

func TestInvalidIndexLeavesStateUnchanged(t *testing.T) {
	c, chain := newController(t, DefaultConfig())
	_ = c.Select(Scene2)
	before := activeCopy(chain)
	for _, i := range []Index{-1, 3, 42} {
		if err := c.Select(i); !errors.Is(err, ErrInvalidSceneIndex) {
			t.Errorf("Select(%d) error = %v, want ErrInvalidSceneIndex", i, err)
		}
		if err := c.Request(i); !errors.Is(err, ErrInvalidSceneIndex) {
			t.Errorf("Request(%d) error = %v, want ErrInvalidSceneIndex", i, err)
		}
	}
	if got := chain.Active(); !reflect.DeepEqual(got, before) {
		t.Errorf("Active() = %v, want unchanged %v", got, before)
	}
	if cur, _ := c.Current(); cur != Scene2 {
		t.Errorf("Current() = %d, want 2", cur)
	}
}

func TestGammaCorrectionFlag(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GammaCorrection = true
	c, chain := newController(t, cfg)
	for _, s := range []Index{Scene0, Scene1, Scene2, Scene0} {
		_ = c.Select(s)
		active := chain.Active()
		if last := active[len(active)-1]; last != effects.PassGammaCorrection {
			t.Errorf("scene %d: last pass = %v, want gamma-correction", s, last)
		}
		if active[0] != effects.PassRender {
			t.Errorf("scene %d: first pass = %v, want render", s, active[0])
		}
	}

	off, offChain := newController(t, DefaultConfig())
	_ = offChain.AddPass(effects.PassGammaCorrection)
	_ = off.Select(Scene1)
	if offChain.Has(effects.PassGammaCorrection) {
		t.Error("gamma pass active with GammaCorrection disabled")
	}
}

func TestRequestLastWriteWins(t *testing.T) {
	c, chain := newController(t, DefaultConfig())
	_ = c.Select(Scene0)
	_ = c.Request(Scene1)
	_ = c.Request(Scene2)
	changed, err := c.Apply()
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !changed {
		t.Error("Apply() changed = false, want true")
	}
	if cur, _ := c.Current(); cur != Scene2 {
		t.Errorf("Current() = %d, want 2", cur)
	}
	if !chain.Has(effects.PassFilm) {
		t.Errorf("film not active after switching to scene 2: %v", chain.Active())
	}

	changed, err = c.Apply()
	if err != nil || changed {
		t.Errorf("second Apply() = %v, %v; want false, nil", changed, err)
	}
}

func TestRequestCurrentSceneIsNotAChange(t *testing.T) {
	c, _ := newController(t, DefaultConfig())
	_ = c.Select(Scene1)
	_ = c.Request(Scene1)
	changed, err := c.Apply()
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if changed {
		t.Error("Apply() changed = true for the active scene, want false")
	}
}

func TestConfigValidateRejectsBasePasses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Presets[1].Passes = append(cfg.Presets[1].Passes, effects.PassRender)
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted render as a scene pass")
	}
	cfg = DefaultConfig()
	cfg.Presets[2].Passes = []effects.PassID{effects.PassID(99)}
	if err := cfg.Validate(); !errors.Is(err, effects.ErrUnknownPass) {
		t.Errorf("Validate error = %v, want ErrUnknownPass", err)
	}
}
