// Package spectrum reduces byte frequency snapshots to a handful of scalar
// features and maps those features onto visual parameter ranges.
package spectrum

import "errors"

var (
	ErrInvalidSnapshotLength = errors.New("spectrum: snapshot too short to split into halves")
	ErrDegenerateRange       = errors.New("spectrum: input range has zero width")
)

// Snapshot holds one frame of byte frequency magnitudes (0..255 per bin).
// The analyzer reuses the backing array, so a snapshot is only valid until
// the next capture.
type Snapshot []uint8

// Features are the per-frame scalars every visual parameter is driven by.
// The *Fr values are already divided by the length of their half of the
// spectrum, which keeps them comparable across analyzer resolutions.
type Features struct {
	OverallAvg float64 // mean of the full snapshot
	LowerMaxFr float64 // bass peak / len(lower)
	LowerAvgFr float64 // bass mean / len(lower)
	UpperMaxFr float64 // treble peak / len(upper)
	UpperAvgFr float64 // treble mean / len(upper)
}
