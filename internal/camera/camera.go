// Package camera implements the follow camera that orbits the particle grid.
package camera

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Action selects a fixed vantage point or mouse-follow.
type Action int

const (
	ActionOther Action = iota
	ActionLeft
	ActionTop
	ActionRight
	ActionFree
)

var actionNames = map[Action]string{
	ActionOther: "other",
	ActionLeft:  "left",
	ActionTop:   "top",
	ActionRight: "right",
	ActionFree:  "free",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// ParseAction maps a name to an Action.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return ActionOther, fmt.Errorf("camera: unknown action %q", name)
}

// Lens and clip defaults.
const (
	FilmGauge = 35.0 // mm, horizontal film size of a cinematic camera
	Near      = 1.0
	Far       = 2000.0
	// MousePixelsPerUnit converts cursor offsets from the viewport centre into
	// world units.
	MousePixelsPerUnit = 100.0
)

// Config is the camera's live-tunable state.
type Config struct {
	Velocity    float64 // easing per frame, [0,1]
	Radius      float64 // base height, [5,100]
	FocalLength float64 // mm, [1,25]
}

// DefaultConfig matches the installation's stock framing.
func DefaultConfig() Config {
	return Config{Velocity: 0.05, Radius: 10, FocalLength: 3}
}

// Validate checks the declared ranges.
func (c Config) Validate() error {
	if c.Velocity < 0 || c.Velocity > 1 {
		return fmt.Errorf("camera: velocity %g outside [0,1]", c.Velocity)
	}
	if c.Radius < 5 || c.Radius > 100 {
		return fmt.Errorf("camera: radius %g outside [5,100]", c.Radius)
	}
	if c.FocalLength < 1 || c.FocalLength > 25 {
		return fmt.Errorf("camera: focal length %g outside [1,25]", c.FocalLength)
	}
	return nil
}

// Rig is the follow camera. It always looks at the origin.
type Rig struct {
	cfg            Config
	Action         Action
	X, Y, Z        float64
	MouseX, MouseY float64

	// grid extent, used by the fixed vantage points
	gridW, gridH float64

	// viewport, used by mouse mapping and aspect
	width, height int
}

// NewRig places the camera above the grid at Radius.
func NewRig(cfg Config, gridW, gridH, width, height int) (*Rig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Rig{
		cfg:   cfg,
		Y:     cfg.Radius,
		gridW: float64(gridW),
		gridH: float64(gridH),
	}
	r.Resize(width, height)
	return r, nil
}

// Config returns the current configuration.
func (r *Rig) Config() Config { return r.cfg }

// SetAction switches vantage point.
func (r *Rig) SetAction(a Action) { r.Action = a }

// Resize records the viewport size.
func (r *Rig) Resize(width, height int) {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	r.width, r.height = width, height
}

// Aspect returns width/height of the viewport.
func (r *Rig) Aspect() float64 { return float64(r.width) / float64(r.height) }

// MouseMove maps a cursor position in window pixels to camera target
// offsets around the viewport centre.
func (r *Rig) MouseMove(cx, cy float64) {
	r.MouseX = (cx - float64(r.width)/2) / MousePixelsPerUnit
	r.MouseY = (cy - float64(r.height)/2) / MousePixelsPerUnit
}

// Update advances the camera one frame.
func (r *Rig) Update() {
	radius := r.cfg.Radius
	switch r.Action {
	case ActionTop:
		r.X, r.Y, r.Z = 0, radius*2, 0
	case ActionLeft:
		r.X, r.Y, r.Z = -r.gridW/4, radius*4, r.gridH/4
	case ActionRight:
		r.X, r.Y, r.Z = r.gridW/4, radius*4, r.gridH/4
	default:
		v := r.cfg.Velocity
		r.X += (r.MouseX - r.X) * v
		r.Y += (r.MouseY*radius - r.Y) * v
		r.Z = 1
	}
}

// FOV returns the vertical field of view in degrees for the configured
// focal length.
func (r *Rig) FOV() float64 {
	filmHeight := FilmGauge / math.Max(r.Aspect(), 1)
	return 2 * math.Atan(0.5*filmHeight/r.cfg.FocalLength) * 180 / math.Pi
}

// ViewProjection returns projection * view, looking at the origin.
func (r *Rig) ViewProjection() mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(float32(r.FOV())), float32(r.Aspect()), Near, Far)
	eye := mgl32.Vec3{float32(r.X), float32(r.Y), float32(r.Z)}
	up := mgl32.Vec3{0, 1, 0}
	// Looking straight down makes up parallel to the view direction.
	if r.X == 0 && r.Z == 0 {
		up = mgl32.Vec3{0, 0, -1}
	}
	view := mgl32.LookAtV(eye, mgl32.Vec3{}, up)
	return proj.Mul4(view)
}
