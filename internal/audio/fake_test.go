package audio

import (
	"errors"
	"io"
	"sync"
)

type fakeVoice struct {
	r        io.Reader
	playing  bool
	volume   float64
	closed   bool
	closeErr error
}

func (v *fakeVoice) Play()                 { v.playing = true }
func (v *fakeVoice) Pause()                { v.playing = false }
func (v *fakeVoice) IsPlaying() bool       { return v.playing }
func (v *fakeVoice) SetVolume(vol float64) { v.volume = vol }
func (v *fakeVoice) Close() error {
	v.closed = true
	return v.closeErr
}

// pull reads n frames from the voice's stream the way the output would.
func (v *fakeVoice) pull(n int) error {
	_, err := io.ReadFull(v.r, make([]byte, n*BytesPerFrame))
	return err
}

type fakeBackend struct {
	mu        sync.Mutex
	voices    []*fakeVoice
	suspended bool
	calls     []string
}

func (b *fakeBackend) NewVoice(r io.Reader) Voice {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := &fakeVoice{r: r}
	b.voices = append(b.voices, v)
	b.calls = append(b.calls, "new")
	return v
}

func (b *fakeBackend) Suspend() error {
	b.suspended = true
	b.calls = append(b.calls, "suspend")
	return nil
}

func (b *fakeBackend) Resume() error {
	b.suspended = false
	b.calls = append(b.calls, "resume")
	return nil
}

func (b *fakeBackend) last() *fakeVoice {
	if len(b.voices) == 0 {
		return nil
	}
	return b.voices[len(b.voices)-1]
}

var errTrackOpen = errors.New("track unavailable")

type brokenTrack struct{}

func (brokenTrack) Name() string { return "broken" }

func (brokenTrack) Open() (io.Reader, error) { return nil, errTrackOpen }

type constTrack struct {
	name  string
	value float64
}

func (c constTrack) Name() string { return c.name }

func (c constTrack) Open() (io.Reader, error) {
	buf := make([]byte, 64*BytesPerFrame)
	for i := 0; i < 64; i++ {
		putStereo(buf, i, c.value, c.value)
	}
	return &loopReader{data: buf}, nil
}
