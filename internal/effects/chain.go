package effects

import (
	"errors"
	"fmt"
)

// Compositor is the rendering side of the chain: it rasterizes the active
// passes, in order, into the final image.
type Compositor interface {
	Composite(passes []Pass) error
	Resize(width, height int)
}

// Pass is the compositor's read-only view of one active pass. It is only
// valid for the duration of a Composite call.
type Pass struct {
	ID     PassID
	values []float64
}

// Value returns the current value of a parameter, or 0 if the pass does not
// declare it.
func (p Pass) Value(name string) float64 {
	if !p.ID.Valid() {
		return 0
	}
	if i := specIndex(p.ID, name); i >= 0 {
		return p.values[i]
	}
	return 0
}

// Int returns an integer parameter.
func (p Pass) Int(name string) int { return int(p.Value(name)) }

// Flag returns a boolean parameter.
func (p Pass) Flag(name string) bool { return p.Value(name) != 0 }

// Chain is the ordered set of active passes plus the parameters of every
// known pass. Parameters of inactive passes are retained, so a pass resumes
// with its last value when it is added back. A Chain is not safe for
// concurrent use.
type Chain struct {
	comp   Compositor
	values [passCount][]float64
	active []PassID
	views  []Pass
}

// NewChain builds a chain holding only the render pass.
func NewChain(cfg Config, comp Compositor) (*Chain, error) {
	if comp == nil {
		return nil, errors.New("effects: nil compositor")
	}
	c := &Chain{
		comp:   comp,
		active: make([]PassID, 0, passCount),
		views:  make([]Pass, 0, passCount),
	}
	for id := PassID(0); id < passCount; id++ {
		specs := paramSpecs[id]
		vals := make([]float64, len(specs))
		for i, s := range specs {
			vals[i] = s.Default
		}
		c.values[id] = vals
	}
	for _, s := range cfg.seeds() {
		if err := c.SetParameter(s.id, s.name, s.value); err != nil {
			return nil, err
		}
	}
	c.active = append(c.active, PassRender)
	return c, nil
}

// Active returns the active passes in render order. The slice is owned by
// the chain and changes on the next Add/Remove.
func (c *Chain) Active() []PassID { return c.active }

// Has reports whether id is active.
func (c *Chain) Has(id PassID) bool { return c.indexOf(id) >= 0 }

func (c *Chain) indexOf(id PassID) int {
	for i, a := range c.active {
		if a == id {
			return i
		}
	}
	return -1
}

// AddPass activates id. Adding an active pass does nothing. The pass is
// placed by pipeline rank, so render stays first and gamma correction last.
func (c *Chain) AddPass(id PassID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPass, int(id))
	}
	if c.Has(id) {
		return nil
	}
	at := len(c.active)
	for i, a := range c.active {
		if a > id {
			at = i
			break
		}
	}
	c.active = append(c.active, 0)
	copy(c.active[at+1:], c.active[at:])
	c.active[at] = id
	return nil
}

// RemovePass deactivates id. Removing an inactive pass does nothing, and
// the render pass always stays first.
func (c *Chain) RemovePass(id PassID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPass, int(id))
	}
	if id == PassRender {
		return nil
	}
	i := c.indexOf(id)
	if i < 0 {
		return nil
	}
	c.active = append(c.active[:i], c.active[i+1:]...)
	return nil
}

// SetParameter overwrites a parameter, clamping it into its declared range.
func (c *Chain) SetParameter(id PassID, name string, value float64) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPass, int(id))
	}
	i := specIndex(id, name)
	if i < 0 {
		return fmt.Errorf("%w: %s.%s", ErrUnknownParameter, id, name)
	}
	c.values[id][i] = paramSpecs[id][i].Clamp(value)
	return nil
}

// Parameter returns the current value of a parameter.
func (c *Chain) Parameter(id PassID, name string) (float64, error) {
	if !id.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownPass, int(id))
	}
	i := specIndex(id, name)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s.%s", ErrUnknownParameter, id, name)
	}
	return c.values[id][i], nil
}

// Render composites the active passes. Compositor failures are returned.
func (c *Chain) Render() error {
	c.views = c.views[:0]
	for _, id := range c.active {
		c.views = append(c.views, Pass{ID: id, values: c.values[id]})
	}
	if err := c.comp.Composite(c.views); err != nil {
		return fmt.Errorf("effects: composite: %w", err)
	}
	return nil
}

// Resize forwards a viewport change to the compositor.
func (c *Chain) Resize(width, height int) {
	c.comp.Resize(width, height)
}
