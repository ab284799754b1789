package spectrum

import "fmt"

// Split returns the lower and upper halves of s. The lower half is
// [0, n/2-1) and the upper half is [n/2-1, n-1): the boundary bin belongs to
// the upper half and the last bin belongs to neither. Both halves alias s.
func Split(s Snapshot) (lower, upper Snapshot) {
	n := len(s)
	mid := n/2 - 1
	if mid < 0 {
		mid = 0
	}
	end := n - 1
	if end < mid {
		end = mid
	}
	return s[:mid], s[mid:end]
}

// Extractor turns snapshots into Features. It holds no per-frame state and
// never allocates; the zero value is ready to use.
type Extractor struct{}

// Extract computes the features of one snapshot.
func (Extractor) Extract(s Snapshot) (Features, error) {
	lower, upper := Split(s)
	if len(lower) == 0 || len(upper) == 0 {
		return Features{}, fmt.Errorf("%w: length %d", ErrInvalidSnapshotLength, len(s))
	}

	lowerMax, lowerSum := maxSum(lower)
	upperMax, upperSum := maxSum(upper)
	_, total := maxSum(s)

	nl := float64(len(lower))
	nu := float64(len(upper))
	return Features{
		OverallAvg: total / float64(len(s)),
		LowerMaxFr: lowerMax / nl,
		LowerAvgFr: lowerSum / nl / nl,
		UpperMaxFr: upperMax / nu,
		UpperAvgFr: upperSum / nu / nu,
	}, nil
}

func maxSum(s Snapshot) (float64, float64) {
	var mx uint8
	var sum int
	for _, v := range s {
		if v > mx {
			mx = v
		}
		sum += int(v)
	}
	return float64(mx), float64(sum)
}
