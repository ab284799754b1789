// Package scene selects which effect passes and particle parameters are
// live. Each scene is a complete preset; switching is a total
// reconfiguration of the effect chain, never an incremental diff.
package scene

import (
	"errors"
	"fmt"
	"sync/atomic"

	"pulsefield/internal/effects"
)

var ErrInvalidSceneIndex = errors.New("scene: invalid scene index")

// Index names one of the three scenes.
type Index int

const (
	Scene0 Index = iota
	Scene1
	Scene2

	Count = 3
)

// Valid reports whether i names a scene.
func (i Index) Valid() bool { return i >= 0 && i < Count }

// Preset pairs a pass set with particle parameters.
type Preset struct {
	Passes        []effects.PassID
	ParticleScale float64
	GrowthCap     float64

	// BloomCeiling bounds the audio-driven bloom strength.
	BloomCeiling float64
}

// Config holds the three presets plus the gamma correction switch. When
// GammaCorrection is set the gamma pass is kept last in every scene; when
// clear it is never active.
type Config struct {
	Presets         [Count]Preset
	GammaCorrection bool
}

// DefaultConfig returns the installation's three looks.
func DefaultConfig() Config {
	return Config{
		Presets: [Count]Preset{
			Scene0: {
				Passes:        []effects.PassID{effects.PassAfterimage, effects.PassDotScreen, effects.PassRGBShift},
				ParticleScale: 10,
				GrowthCap:     10,
				BloomCeiling:  2,
			},
			Scene1: {
				Passes:        []effects.PassID{effects.PassPixelate, effects.PassBloom},
				ParticleScale: 1,
				GrowthCap:     5,
				BloomCeiling:  0.5,
			},
			Scene2: {
				Passes:        []effects.PassID{effects.PassSepia, effects.PassFilm, effects.PassBloom},
				ParticleScale: 10,
				GrowthCap:     20,
				BloomCeiling:  2,
			},
		},
	}
}

// Validate checks that every preset only names scene passes.
func (c Config) Validate() error {
	for i, p := range c.Presets {
		for _, id := range p.Passes {
			if !id.Valid() {
				return fmt.Errorf("scene %d: %w: %d", i, effects.ErrUnknownPass, int(id))
			}
			if id == effects.PassRender || id == effects.PassGammaCorrection {
				return fmt.Errorf("scene %d: %s is not a scene pass", i, id)
			}
		}
		if p.GrowthCap < 0 {
			return fmt.Errorf("scene %d: negative growth cap %g", i, p.GrowthCap)
		}
	}
	return nil
}

// Particles are the particle parameters a scene imposes.
type Particles struct {
	Scale     float64
	GrowthCap float64
}

const noRequest = -1

// Controller is the scene state machine. Select and Apply must run on the
// frame goroutine; Request may be called from anywhere.
type Controller struct {
	cfg       Config
	chain     *effects.Chain
	current   Index
	selected  bool
	particles Particles
	pending   atomic.Int32
}

// NewController builds a controller with no scene selected yet.
func NewController(cfg Config, chain *effects.Chain) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if chain == nil {
		return nil, errors.New("scene: nil effect chain")
	}
	c := &Controller{cfg: cfg, chain: chain}
	c.pending.Store(noRequest)
	return c, nil
}

// Current returns the active scene; ok is false before the first Select.
func (c *Controller) Current() (Index, bool) { return c.current, c.selected }

// Particles returns the particle parameters of the active scene.
func (c *Controller) Particles() Particles { return c.particles }

// Preset returns the active scene's preset.
func (c *Controller) Preset() Preset { return c.cfg.Presets[c.current] }

// Select switches to scene i. Selecting the active scene does nothing; an
// invalid index leaves everything untouched.
func (c *Controller) Select(i Index) error {
	if !i.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSceneIndex, int(i))
	}
	if c.selected && c.current == i {
		return nil
	}

	target := c.cfg.Presets[i]
	var want [effects.PassGammaCorrection + 1]bool
	for _, id := range target.Passes {
		want[id] = true
	}

	// Removals first, so no pass is ever present twice mid-transition.
	for id := effects.PassRender + 1; id < effects.PassGammaCorrection; id++ {
		if want[id] {
			continue
		}
		if err := c.chain.RemovePass(id); err != nil {
			return err
		}
	}
	for _, id := range target.Passes {
		if err := c.chain.AddPass(id); err != nil {
			return err
		}
	}
	var err error
	if c.cfg.GammaCorrection {
		err = c.chain.AddPass(effects.PassGammaCorrection)
	} else {
		err = c.chain.RemovePass(effects.PassGammaCorrection)
	}
	if err != nil {
		return err
	}

	c.particles = Particles{Scale: target.ParticleScale, GrowthCap: target.GrowthCap}
	c.current = i
	c.selected = true
	return nil
}

// Request records a scene change to be applied by the next Apply. Later
// requests overwrite earlier ones.
func (c *Controller) Request(i Index) error {
	if !i.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSceneIndex, int(i))
	}
	c.pending.Store(int32(i))
	return nil
}

// Apply consumes the pending request, if any. changed reports whether the
// active scene switched.
func (c *Controller) Apply() (changed bool, err error) {
	p := c.pending.Swap(noRequest)
	if p == noRequest {
		return false, nil
	}
	prev, had := c.current, c.selected
	if err := c.Select(Index(p)); err != nil {
		return false, err
	}
	return !had || prev != c.current, nil
}
