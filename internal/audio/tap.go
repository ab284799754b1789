package audio

import (
	"io"
	"sync"
)

// Tap keeps a mono ring buffer of everything that passes through the readers
// it wraps. The oto pull goroutine writes; the frame goroutine reads.
type Tap struct {
	mu      sync.Mutex
	buf     []float64
	pos     int
	written uint64
}

// NewTap allocates a ring of size samples.
func NewTap(size int) *Tap {
	if size < 1 {
		size = 1
	}
	return &Tap{buf: make([]float64, size)}
}

// Size returns the ring capacity in samples.
func (t *Tap) Size() int { return len(t.buf) }

func (t *Tap) push(frames []byte) {
	t.mu.Lock()
	for o := 0; o+BytesPerFrame <= len(frames); o += BytesPerFrame {
		l, r := frameAt(frames[o:])
		t.buf[t.pos] = (l + r) / 2
		t.pos++
		if t.pos == len(t.buf) {
			t.pos = 0
		}
		t.written++
	}
	t.mu.Unlock()
}

// Latest fills dst with the newest len(dst) samples, oldest first, and
// returns the total number of samples ever written. Slots never written are
// zero.
func (t *Tap) Latest(dst []float64) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(dst)
	size := len(t.buf)
	if n > size {
		clear(dst[:n-size])
		dst = dst[n-size:]
		n = size
	}
	start := t.pos - n
	if start < 0 {
		start += size
	}
	for i := range dst {
		dst[i] = t.buf[(start+i)%size]
	}
	return t.written
}

// Written returns the total number of samples seen.
func (t *Tap) Written() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.written
}

// Wrap returns a reader that copies everything read from r into the tap.
// r must produce float32 LE stereo frames.
func (t *Tap) Wrap(r io.Reader) io.Reader {
	return &tapReader{tap: t, r: r}
}

type tapReader struct {
	tap   *Tap
	r     io.Reader
	carry [BytesPerFrame]byte
	nc    int
}

func (tr *tapReader) Read(p []byte) (int, error) {
	n, err := tr.r.Read(p)
	if n == 0 {
		return n, err
	}
	b := p[:n]
	// Finish a frame split across reads.
	if tr.nc > 0 {
		k := copy(tr.carry[tr.nc:], b)
		tr.nc += k
		b = b[k:]
		if tr.nc < BytesPerFrame {
			return n, err
		}
		tr.tap.push(tr.carry[:])
		tr.nc = 0
	}
	whole := len(b) - len(b)%BytesPerFrame
	tr.tap.push(b[:whole])
	tr.nc = copy(tr.carry[:], b[whole:])
	return n, err
}
