package stage

import (
	"pulsefield/internal/effects"
	"pulsefield/internal/spectrum"
)

// ModulationConfig maps frequency features onto effect parameters. Growth
// and bloom take their output ceiling from the active scene.
type ModulationConfig struct {
	AfterimageDamp spectrum.Mapping // from upperAvgFr
	RGBShiftAmount spectrum.Mapping // from upperMaxFr
	DotScreenScale spectrum.Mapping // from lowerAvgFr
	BloomStrength  spectrum.Range   // input range of upperAvgFr
}

func DefaultModulationConfig() ModulationConfig {
	return ModulationConfig{
		AfterimageDamp: spectrum.Mapping{In: spectrum.Range{Min: 0, Max: 0.1}, Out: spectrum.Range{Min: 0.5, Max: 1}},
		RGBShiftAmount: spectrum.Mapping{In: spectrum.Range{Min: 0, Max: 0.36}, Out: spectrum.Range{Min: 0, Max: 0.02}},
		DotScreenScale: spectrum.Mapping{In: spectrum.Range{Min: 0, Max: 0.32}, Out: spectrum.Range{Min: 20, Max: 1}},
		BloomStrength:  spectrum.Range{Min: 0, Max: 0.1},
	}
}

func (c ModulationConfig) Validate() error {
	for _, m := range []spectrum.Mapping{
		c.AfterimageDamp,
		c.RGBShiftAmount,
		c.DotScreenScale,
		{In: c.BloomStrength, Out: spectrum.Range{Min: 0, Max: 1}},
	} {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type binding struct {
	pass    effects.PassID
	param   string
	feature func(spectrum.Features) float64
	mapping spectrum.Mapping
}

// bindings expands the config for a scene whose bloom ceiling is given.
func (c ModulationConfig) bindings(bloomCeiling float64) [4]binding {
	return [4]binding{
		{effects.PassAfterimage, effects.ParamDamp, upperAvg, c.AfterimageDamp},
		{effects.PassRGBShift, effects.ParamAmount, upperMax, c.RGBShiftAmount},
		{effects.PassDotScreen, effects.ParamScale, lowerAvg, c.DotScreenScale},
		{effects.PassBloom, effects.ParamStrength, upperAvg, spectrum.Mapping{
			In:  c.BloomStrength,
			Out: spectrum.Range{Min: 0, Max: bloomCeiling},
		}},
	}
}

func upperAvg(f spectrum.Features) float64 { return f.UpperAvgFr }
func upperMax(f spectrum.Features) float64 { return f.UpperMaxFr }
func lowerAvg(f spectrum.Features) float64 { return f.LowerAvgFr }
