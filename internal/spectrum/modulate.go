package spectrum

import "fmt"

// Range is a closed numeric interval. Min may exceed Max for inverted
// mappings.
type Range struct {
	Min, Max float64
}

// Mapping rescales a feature from In to Out.
type Mapping struct {
	In, Out Range
}

// Apply runs Modulate with the mapping's ranges.
func (m Mapping) Apply(v float64) (float64, error) {
	return Modulate(v, m.In.Min, m.In.Max, m.Out.Min, m.Out.Max)
}

// Validate reports whether the input range can be divided by.
func (m Mapping) Validate() error {
	if m.In.Min == m.In.Max {
		return fmt.Errorf("%w: [%g, %g]", ErrDegenerateRange, m.In.Min, m.In.Max)
	}
	return nil
}

// Fractionate returns where v sits inside [min, max] as a fraction
// (0 at min, 1 at max, unclamped).
func Fractionate(v, min, max float64) (float64, error) {
	if min == max {
		return 0, fmt.Errorf("%w: [%g, %g]", ErrDegenerateRange, min, max)
	}
	return (v - min) / (max - min), nil
}

// Modulate linearly rescales v from [inMin, inMax] to [outMin, outMax].
// The result is not clamped; values outside the input range overshoot.
func Modulate(v, inMin, inMax, outMin, outMax float64) (float64, error) {
	f, err := Fractionate(v, inMin, inMax)
	if err != nil {
		return 0, err
	}
	return outMin + f*(outMax-outMin), nil
}
