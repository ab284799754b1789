// Package audio plays the installation's tracks and analyses what is
// playing.
package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

const (
	SampleRate   = 44100
	ChannelCount = 2

	// Every reader fed to oto produces interleaved float32 LE stereo frames.
	BytesPerFrame = 4 * ChannelCount
)

// Voice is one playing stream. oto.Player satisfies it.
type Voice interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	Close() error
}

// Backend creates voices and gates the whole output. *Context is the oto
// implementation.
type Backend interface {
	NewVoice(r io.Reader) Voice
	Suspend() error
	Resume() error
}

// Context is the shared audio output.
type Context struct {
	ctx   *oto.Context
	ready chan struct{}
}

// NewContext opens the audio device.
func NewContext() (*Context, error) {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("audio: open output: %w", err)
	}
	return &Context{ctx: ctx, ready: ready}, nil
}

// WaitReady blocks until the device is running or the timeout expires.
func (c *Context) WaitReady(timeout time.Duration) error {
	select {
	case <-c.ready:
		return nil
	case <-time.After(timeout):
		return errors.New("audio: output not ready")
	}
}

func (c *Context) NewVoice(r io.Reader) Voice { return c.ctx.NewPlayer(r) }
func (c *Context) Suspend() error             { return c.ctx.Suspend() }
func (c *Context) Resume() error              { return c.ctx.Resume() }

// putStereo writes one float32 LE stereo frame at frame index i.
func putStereo(buf []byte, i int, left, right float64) {
	lv := math.Float32bits(float32(left))
	rv := math.Float32bits(float32(right))
	o := i * BytesPerFrame
	buf[o] = byte(lv)
	buf[o+1] = byte(lv >> 8)
	buf[o+2] = byte(lv >> 16)
	buf[o+3] = byte(lv >> 24)
	buf[o+4] = byte(rv)
	buf[o+5] = byte(rv >> 8)
	buf[o+6] = byte(rv >> 16)
	buf[o+7] = byte(rv >> 24)
}

// frameAt decodes the stereo frame starting at b[0].
func frameAt(b []byte) (left, right float64) {
	lv := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	rv := uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24
	return float64(math.Float32frombits(lv)), float64(math.Float32frombits(rv))
}

// Silent is a Backend for machines without an audio device. Its voices
// never pull from their readers, so the analyzer sees silence.
type Silent struct{}

func (Silent) NewVoice(io.Reader) Voice { return &silentVoice{} }
func (Silent) Suspend() error           { return nil }
func (Silent) Resume() error            { return nil }

type silentVoice struct{ playing bool }

func (v *silentVoice) Play()             { v.playing = true }
func (v *silentVoice) Pause()            { v.playing = false }
func (v *silentVoice) IsPlaying() bool   { return v.playing }
func (v *silentVoice) SetVolume(float64) {}
func (v *silentVoice) Close() error      { return nil }
