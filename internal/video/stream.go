package video

import (
	"fmt"
	"image"
	"io"
	"sync"
)

// stream decodes fixed-size raw RGBA frames from r on its own goroutine and
// keeps the newest one.
type stream struct {
	mu     sync.Mutex
	latest *image.RGBA
	seq    uint64
	err    error

	out    *image.RGBA
	outSeq uint64

	first chan struct{}
	done  chan struct{}
}

func newStream(r io.Reader, w, h int) *stream {
	s := &stream{
		latest: image.NewRGBA(image.Rect(0, 0, w, h)),
		out:    image.NewRGBA(image.Rect(0, 0, w, h)),
		first:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run(r, w, h)
	return s
}

func (s *stream) run(r io.Reader, w, h int) {
	defer close(s.done)
	scratch := make([]byte, w*h*4)
	for {
		if _, err := io.ReadFull(r, scratch); err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			if s.seq == 0 {
				close(s.first)
			}
			return
		}
		s.mu.Lock()
		copy(s.latest.Pix, scratch)
		s.seq++
		if s.seq == 1 {
			close(s.first)
		}
		s.mu.Unlock()
	}
}

// Frame copies the newest decoded frame into the caller-facing buffer.
func (s *stream) Frame() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == 0 {
		return nil
	}
	if s.seq != s.outSeq {
		copy(s.out.Pix, s.latest.Pix)
		s.outSeq = s.seq
	}
	return s.out
}

// Err returns the error that ended the stream, if any.
func (s *stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// waitFirst blocks until a frame arrived, the stream ended or timeout fires.
func (s *stream) waitFirst(timeout <-chan struct{}) error {
	select {
	case <-s.first:
	case <-timeout:
		return fmt.Errorf("%w: no frame received", ErrDeviceAcquisition)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == 0 {
		return fmt.Errorf("%w: %v", ErrDeviceAcquisition, s.err)
	}
	return nil
}
