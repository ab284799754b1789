package spectrum

import (
	"errors"
	"math"
	"testing"
)

func TestSplitPartitionSizes(t *testing.T) {
	for n := 3; n <= 2048; n++ {
		s := make(Snapshot, n)
		lower, upper := Split(s)
		if got := len(lower) + len(upper); got != n-1 {
			t.Fatalf("n=%d: len(lower)+len(upper) = %d, want %d", n, got, n-1)
		}
		if len(lower) == 0 || len(upper) == 0 {
			t.Fatalf("n=%d: empty half (lower=%d upper=%d)", n, len(lower), len(upper))
		}
	}
}

func TestSplitBoundaryBelongsToUpper(t *testing.T) {
	s := Snapshot{10, 20, 30, 40, 50}
	lower, upper := Split(s)
	if len(lower) != 2 || lower[0] != 10 || lower[1] != 20 {
		t.Errorf("lower = %v, want [10 20]", lower)
	}
	if len(upper) != 2 || upper[0] != 30 || upper[1] != 40 {
		t.Errorf("upper = %v, want [30 40]", upper)
	}
}

func TestExtractScenario(t *testing.T) {
	f, err := Extractor{}.Extract(Snapshot{10, 20, 30, 40, 50})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := Features{
		OverallAvg: 30,
		LowerMaxFr: 10,
		LowerAvgFr: 7.5,
		UpperMaxFr: 20,
		UpperAvgFr: 17.5,
	}
	if f != want {
		t.Errorf("Extract = %+v, want %+v", f, want)
	}
}

func TestExtractRejectsShortSnapshots(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		_, err := Extractor{}.Extract(make(Snapshot, n))
		if !errors.Is(err, ErrInvalidSnapshotLength) {
			t.Errorf("Extract(len %d) error = %v, want ErrInvalidSnapshotLength", n, err)
		}
	}
}

func TestExtractComparableAcrossResolutions(t *testing.T) {
	small := make(Snapshot, 64)
	large := make(Snapshot, 2048)
	for i := range small {
		small[i] = 200
	}
	for i := range large {
		large[i] = 200
	}
	fs, _ := Extractor{}.Extract(small)
	fl, _ := Extractor{}.Extract(large)
	if fs.OverallAvg != fl.OverallAvg {
		t.Errorf("OverallAvg differs: %v vs %v", fs.OverallAvg, fl.OverallAvg)
	}
	// A flat spectrum averages to the same per-bin value before the length
	// division, so the ratio tracks the ratio of half lengths.
	ratio := fs.LowerAvgFr / fl.LowerAvgFr
	wantRatio := float64(1023) / float64(31)
	if math.Abs(ratio-wantRatio) > 1e-9 {
		t.Errorf("LowerAvgFr ratio = %v, want %v", ratio, wantRatio)
	}
}

func TestExtractDoesNotAllocate(t *testing.T) {
	s := make(Snapshot, 1024)
	for i := range s {
		s[i] = uint8(i)
	}
	allocs := testing.AllocsPerRun(100, func() {
		_, _ = Extractor{}.Extract(s)
	})
	if allocs != 0 {
		t.Errorf("Extract allocated %v times per run, want 0", allocs)
	}
}
