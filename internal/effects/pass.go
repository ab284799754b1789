// Package effects holds the ordered set of post-processing passes and the
// live parameters of each pass.
package effects

import (
	"errors"
	"math"
)

var (
	ErrUnknownPass      = errors.New("effects: unknown pass")
	ErrUnknownParameter = errors.New("effects: unknown parameter")
)

// PassID identifies one compositing stage.
type PassID int

const (
	PassRender PassID = iota
	PassAfterimage
	PassDotScreen
	PassRGBShift
	PassPixelate
	PassSepia
	PassFilm
	PassBloom
	PassGammaCorrection

	passCount
)

// The pipeline rank of a pass is its PassID: scene passes are always kept in
// this order between render and gamma correction.

var passNames = [passCount]string{
	PassRender:          "render",
	PassAfterimage:      "afterimage",
	PassDotScreen:       "dot-screen",
	PassRGBShift:        "rgb-shift",
	PassPixelate:        "pixelate",
	PassSepia:           "sepia",
	PassFilm:            "film",
	PassBloom:           "bloom",
	PassGammaCorrection: "gamma-correction",
}

func (id PassID) String() string {
	if !id.Valid() {
		return "unknown"
	}
	return passNames[id]
}

// Valid reports whether id is part of the pass catalogue.
func (id PassID) Valid() bool { return id >= 0 && id < passCount }

// ParamKind tells how a parameter value is interpreted.
type ParamKind uint8

const (
	KindFloat ParamKind = iota
	KindInt
	KindBool
)

// ParamSpec declares one tunable parameter of a pass.
type ParamSpec struct {
	Name     string
	Kind     ParamKind
	Min, Max float64
	Default  float64
}

// Clamp forces v into the declared range; ints are rounded and bools become
// 0 or 1.
func (s ParamSpec) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return s.Default
	}
	switch s.Kind {
	case KindBool:
		if v != 0 {
			return 1
		}
		return 0
	case KindInt:
		v = math.Round(v)
	}
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Parameter names.
const (
	ParamDamp               = "damp"
	ParamScale              = "scale"
	ParamAngle              = "angle"
	ParamAmount             = "amount"
	ParamPixelSize          = "pixelSize"
	ParamNormalEdgeStrength = "normalEdgeStrength"
	ParamDepthEdgeStrength  = "depthEdgeStrength"
	ParamStrength           = "strength"
	ParamRadius             = "radius"
	ParamThreshold          = "threshold"
	ParamExposure           = "exposure"
	ParamNoiseIntensity     = "noiseIntensity"
	ParamScanlinesIntensity = "scanlinesIntensity"
	ParamScanlinesCount     = "scanlinesCount"
	ParamGrayscale          = "grayscale"
)

var paramSpecs = [passCount][]ParamSpec{
	PassAfterimage: {
		{Name: ParamDamp, Min: 0, Max: 1, Default: 0},
	},
	PassDotScreen: {
		{Name: ParamScale, Min: 1, Max: 20, Default: 10},
		{Name: ParamAngle, Min: 0, Max: 2 * math.Pi, Default: 1.57},
	},
	PassRGBShift: {
		{Name: ParamAmount, Min: 0, Max: 0.1, Default: 0.0015},
		{Name: ParamAngle, Min: 0, Max: 2 * math.Pi, Default: 0},
	},
	PassPixelate: {
		{Name: ParamPixelSize, Kind: KindInt, Min: 1, Max: 64, Default: 10},
		{Name: ParamNormalEdgeStrength, Min: 0, Max: 2, Default: 0},
		{Name: ParamDepthEdgeStrength, Min: 0, Max: 1, Default: 0},
	},
	PassSepia: {
		{Name: ParamAmount, Min: 0, Max: 2, Default: 2},
	},
	PassFilm: {
		{Name: ParamNoiseIntensity, Min: 0, Max: 3, Default: 0.37},
		{Name: ParamScanlinesIntensity, Min: 0, Max: 1, Default: 0.025},
		{Name: ParamScanlinesCount, Kind: KindInt, Min: 0, Max: 2048, Default: 649},
		{Name: ParamGrayscale, Kind: KindBool, Min: 0, Max: 1, Default: 0},
	},
	PassBloom: {
		{Name: ParamStrength, Min: 0, Max: 3, Default: 0},
		{Name: ParamRadius, Min: 0, Max: 1, Default: 1},
		{Name: ParamThreshold, Min: 0, Max: 1, Default: 0},
		{Name: ParamExposure, Min: 0.1, Max: 2, Default: 0.7619},
	},
}

// Specs returns the declared parameters of a pass (nil for passes without
// parameters or unknown ids). The slice must not be modified.
func Specs(id PassID) []ParamSpec {
	if !id.Valid() {
		return nil
	}
	return paramSpecs[id]
}

func specIndex(id PassID, name string) int {
	for i, s := range paramSpecs[id] {
		if s.Name == name {
			return i
		}
	}
	return -1
}
