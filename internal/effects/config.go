package effects

// AfterimageConfig configures the frame-persistence pass.
type AfterimageConfig struct {
	Damp float64
}

// DotScreenConfig configures the halftone dot pass.
type DotScreenConfig struct {
	Scale float64
	Angle float64
}

// RGBShiftConfig configures the chromatic offset pass.
type RGBShiftConfig struct {
	Amount float64
	Angle  float64
}

// PixelateConfig configures block pixelation.
type PixelateConfig struct {
	PixelSize          int
	NormalEdgeStrength float64
	DepthEdgeStrength  float64
}

// SepiaConfig configures sepia toning.
type SepiaConfig struct {
	Amount float64
}

// FilmConfig configures film grain and scanlines.
type FilmConfig struct {
	NoiseIntensity     float64
	ScanlinesIntensity float64
	ScanlinesCount     int
	Grayscale          bool
}

// BloomConfig configures the glow pass.
type BloomConfig struct {
	Strength  float64
	Radius    float64
	Threshold float64
	Exposure  float64
}

// Config seeds the parameters of every pass. Out-of-range values are
// clamped when the chain is built.
type Config struct {
	Afterimage AfterimageConfig
	DotScreen  DotScreenConfig
	RGBShift   RGBShiftConfig
	Pixelate   PixelateConfig
	Sepia      SepiaConfig
	Film       FilmConfig
	Bloom      BloomConfig
}

// DefaultConfig returns the installation's stock look.
func DefaultConfig() Config {
	return Config{
		Afterimage: AfterimageConfig{Damp: 0},
		DotScreen:  DotScreenConfig{Scale: 10, Angle: 1.57},
		RGBShift:   RGBShiftConfig{Amount: 0.0015},
		Pixelate:   PixelateConfig{PixelSize: 10},
		Sepia:      SepiaConfig{Amount: 2},
		Film: FilmConfig{
			NoiseIntensity:     0.37,
			ScanlinesIntensity: 0.025,
			ScanlinesCount:     649,
		},
		Bloom: BloomConfig{
			Strength:  0,
			Radius:    1,
			Threshold: 0,
			Exposure:  0.7619,
		},
	}
}

type seed struct {
	id    PassID
	name  string
	value float64
}

func (c Config) seeds() []seed {
	grayscale := 0.0
	if c.Film.Grayscale {
		grayscale = 1
	}
	return []seed{
		{PassAfterimage, ParamDamp, c.Afterimage.Damp},
		{PassDotScreen, ParamScale, c.DotScreen.Scale},
		{PassDotScreen, ParamAngle, c.DotScreen.Angle},
		{PassRGBShift, ParamAmount, c.RGBShift.Amount},
		{PassRGBShift, ParamAngle, c.RGBShift.Angle},
		{PassPixelate, ParamPixelSize, float64(c.Pixelate.PixelSize)},
		{PassPixelate, ParamNormalEdgeStrength, c.Pixelate.NormalEdgeStrength},
		{PassPixelate, ParamDepthEdgeStrength, c.Pixelate.DepthEdgeStrength},
		{PassSepia, ParamAmount, c.Sepia.Amount},
		{PassFilm, ParamNoiseIntensity, c.Film.NoiseIntensity},
		{PassFilm, ParamScanlinesIntensity, c.Film.ScanlinesIntensity},
		{PassFilm, ParamScanlinesCount, float64(c.Film.ScanlinesCount)},
		{PassFilm, ParamGrayscale, grayscale},
		{PassBloom, ParamStrength, c.Bloom.Strength},
		{PassBloom, ParamRadius, c.Bloom.Radius},
		{PassBloom, ParamThreshold, c.Bloom.Threshold},
		{PassBloom, ParamExposure, c.Bloom.Exposure},
	}
}
