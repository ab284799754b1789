package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Track is one playable piece. Open returns a fresh stream of float32 LE
// stereo frames at SampleRate, starting from the beginning.
type Track interface {
	Name() string
	Open() (io.Reader, error)
}

// PCMTrack is a fully decoded track that loops forever.
type PCMTrack struct {
	name string
	pcm  []byte
}

func (t *PCMTrack) Name() string { return t.name }

func (t *PCMTrack) Open() (io.Reader, error) {
	if len(t.pcm) == 0 {
		return nil, fmt.Errorf("audio: track %q is empty", t.name)
	}
	return &loopReader{data: t.pcm}, nil
}

// Frames reports the track length in stereo frames.
func (t *PCMTrack) Frames() int { return len(t.pcm) / BytesPerFrame }

// LoadWAV decodes a PCM WAV file into a looping track.
func LoadWAV(path string) (*PCMTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()
	t, err := DecodeWAV(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", path, err)
	}
	return t, nil
}

// DecodeWAV decodes WAV data from r.
func DecodeWAV(name string, r io.ReadSeeker) (*PCMTrack, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, errors.New("not a valid wav file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	bits := int(d.BitDepth)
	if buf.SourceBitDepth > 0 {
		bits = buf.SourceBitDepth
	}
	pcm, err := encodeIntBuffer(buf, bits)
	if err != nil {
		return nil, err
	}
	return &PCMTrack{name: name, pcm: pcm}, nil
}

// encodeIntBuffer normalizes, resamples and interleaves buf as stereo float32.
func encodeIntBuffer(buf *goaudio.IntBuffer, bits int) ([]byte, error) {
	if buf == nil || buf.Format == nil {
		return nil, errors.New("missing pcm format")
	}
	ch := buf.Format.NumChannels
	rate := buf.Format.SampleRate
	if ch < 1 || rate < 1 {
		return nil, fmt.Errorf("unsupported format: %d channels at %d Hz", ch, rate)
	}
	if bits < 8 || bits > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bits)
	}
	frames := len(buf.Data) / ch
	if frames == 0 {
		return nil, errors.New("no samples")
	}
	scale := float64(int64(1) << (bits - 1))
	// 8-bit WAV is unsigned.
	offset := 0.0
	if bits == 8 {
		offset = 128
	}
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := (float64(buf.Data[i*ch]) - offset) / scale
		r := l
		if ch > 1 {
			r = (float64(buf.Data[i*ch+1]) - offset) / scale
		}
		left[i], right[i] = l, r
	}

	outFrames := frames
	if rate != SampleRate {
		outFrames = int(int64(frames) * SampleRate / int64(rate))
		if outFrames < 1 {
			outFrames = 1
		}
	}
	out := make([]byte, outFrames*BytesPerFrame)
	step := float64(rate) / SampleRate
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * step
		j := int(pos)
		if j >= frames-1 {
			putStereo(out, i, left[frames-1], right[frames-1])
			continue
		}
		f := pos - float64(j)
		putStereo(out, i,
			left[j]+(left[j+1]-left[j])*f,
			right[j]+(right[j+1]-right[j])*f)
	}
	return out, nil
}

type loopReader struct {
	data []byte
	pos  int
}

func (l *loopReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		k := copy(p[n:], l.data[l.pos:])
		n += k
		l.pos += k
		if l.pos == len(l.data) {
			l.pos = 0
		}
	}
	return n, nil
}

// Tracks fills up to count slots: the loaded files first, then procedural
// tracks for whatever is missing.
func Tracks(paths []string, count int) ([]Track, error) {
	if len(paths) > count {
		return nil, fmt.Errorf("audio: %d tracks given, at most %d supported", len(paths), count)
	}
	out := make([]Track, 0, count)
	for _, p := range paths {
		t, err := LoadWAV(p)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	for i := len(out); i < count; i++ {
		out = append(out, NewSynthTrack(Style(i%int(styleCount))))
	}
	return out, nil
}
