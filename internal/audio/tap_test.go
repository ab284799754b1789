package audio

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
)

func stereoBytes(values ...float64) []byte {
	buf := make([]byte, len(values)*BytesPerFrame)
	for i, v := range values {
		putStereo(buf, i, v, v)
	}
	return buf
}

func TestTapLatestOrder(t *testing.T) {
	tap := NewTap(4)
	r := tap.Wrap(bytes.NewReader(stereoBytes(1, 2, 3, 4, 5, 6)))
	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	dst := make([]float64, 3)
	if n := tap.Latest(dst); n != 6 {
		t.Errorf("Latest() written = %d, want 6", n)
	}
	want := []float64{4, 5, 6}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("Latest()[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestTapLatestLongerThanRing(t *testing.T) {
	tap := NewTap(2)
	if _, err := io.ReadAll(tap.Wrap(bytes.NewReader(stereoBytes(7, 8, 9)))); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	dst := []float64{-1, -1, -1, -1}
	tap.Latest(dst)
	want := []float64{0, 0, 8, 9}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("Latest()[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestTapSplitFrames(t *testing.T) {
	tap := NewTap(8)
	r := tap.Wrap(iotest.OneByteReader(bytes.NewReader(stereoBytes(0.25, -0.5, 0.75))))
	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got := tap.Written(); got != 3 {
		t.Fatalf("Written() = %d, want 3", got)
	}
	dst := make([]float64, 3)
	tap.Latest(dst)
	want := []float64{0.25, -0.5, 0.75}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("Latest()[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestTapMixesToMono(t *testing.T) {
	tap := NewTap(1)
	buf := make([]byte, BytesPerFrame)
	putStereo(buf, 0, 1, 0)
	if _, err := io.ReadAll(tap.Wrap(bytes.NewReader(buf))); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	dst := make([]float64, 1)
	tap.Latest(dst)
	if dst[0] != 0.5 {
		t.Errorf("mono sample = %v, want 0.5", dst[0])
	}
}
