package audio

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var ErrInvalidTrack = errors.New("audio: invalid track index")

// Player plays one of a fixed set of tracks through a Backend. Everything it
// plays passes through its Tap.
type Player struct {
	mu      sync.Mutex
	backend Backend
	tap     *Tap
	tracks  []Track
	volume  float64
	log     *zap.Logger

	current int
	voice   Voice
}

// NewPlayer selects the first track without starting playback.
func NewPlayer(backend Backend, tap *Tap, tracks []Track, volume float64, log *zap.Logger) (*Player, error) {
	if backend == nil || tap == nil {
		return nil, errors.New("audio: player needs a backend and a tap")
	}
	if len(tracks) == 0 {
		return nil, errors.New("audio: player needs at least one track")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{backend: backend, tap: tap, tracks: tracks, volume: volume, log: log}, nil
}

// Tap returns the tap fed by every voice of this player.
func (p *Player) Tap() *Tap { return p.tap }

// Track returns the selected track index.
func (p *Player) Track() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Player) TrackCount() int { return len(p.tracks) }

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.voice != nil && p.voice.IsPlaying()
}

// Play resumes the current voice, opening the track from the start when
// nothing is loaded.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playLocked()
}

func (p *Player) playLocked() error {
	if p.voice == nil {
		r, err := p.tracks[p.current].Open()
		if err != nil {
			return fmt.Errorf("audio: open track %d: %w", p.current, err)
		}
		p.voice = p.backend.NewVoice(p.tap.Wrap(r))
		p.voice.SetVolume(p.volume)
	}
	p.voice.Play()
	return nil
}

// Pause halts the current voice keeping its position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.voice != nil {
		p.voice.Pause()
	}
}

// Stop halts playback and rewinds; the next Play starts the track over.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log.Info("playback stopped", zap.Int("track", p.current))
	return p.closeVoiceLocked()
}

func (p *Player) closeVoiceLocked() error {
	if p.voice == nil {
		return nil
	}
	v := p.voice
	p.voice = nil
	v.Pause()
	if err := v.Close(); err != nil {
		return fmt.Errorf("audio: close voice: %w", err)
	}
	return nil
}

// TogglePlayback pauses a playing track and suspends output, or resumes
// output and plays.
func (p *Player) TogglePlayback() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.voice != nil && p.voice.IsPlaying() {
		p.voice.Pause()
		if err := p.backend.Suspend(); err != nil {
			return fmt.Errorf("audio: suspend: %w", err)
		}
		p.log.Debug("playback paused", zap.Int("track", p.current))
		return nil
	}
	if err := p.backend.Resume(); err != nil {
		return fmt.Errorf("audio: resume: %w", err)
	}
	p.log.Debug("playback resumed", zap.Int("track", p.current))
	return p.playLocked()
}

// SwitchTrack replaces the current track with track i and starts it. A
// request for the current track is ignored.
func (p *Player) SwitchTrack(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.tracks) {
		return fmt.Errorf("%w: %d", ErrInvalidTrack, i)
	}
	if i == p.current {
		return nil
	}
	if err := p.backend.Suspend(); err != nil {
		return fmt.Errorf("audio: suspend: %w", err)
	}
	if err := p.closeVoiceLocked(); err != nil {
		return p.resumeAfter(err)
	}
	prev := p.current
	p.current = i
	if err := p.playLocked(); err != nil {
		p.current = prev
		return p.resumeAfter(err)
	}
	if err := p.backend.Resume(); err != nil {
		return fmt.Errorf("audio: resume: %w", err)
	}
	p.log.Info("track switched", zap.Int("track", i), zap.String("name", p.tracks[i].Name()))
	return nil
}

// resumeAfter undoes a Suspend on a failed switch and returns err.
func (p *Player) resumeAfter(err error) error {
	if rerr := p.backend.Resume(); rerr != nil {
		return errors.Join(err, fmt.Errorf("audio: resume: %w", rerr))
	}
	return err
}

// Close releases the current voice.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeVoiceLocked()
}
