// Package stage owns the per-frame pipeline: video into particles, audio
// into features, features into effect parameters, and the final composite.
package stage

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"pulsefield/internal/camera"
	"pulsefield/internal/effects"
	"pulsefield/internal/particles"
	"pulsefield/internal/scene"
	"pulsefield/internal/spectrum"
	"pulsefield/internal/video"
)

// Renderer draws the particle scene and composites the pass chain.
type Renderer interface {
	effects.Compositor
	// DrawParticles replaces the particle vertex stream, laid out as
	// particles.VertexStride floats per point.
	DrawParticles(vertices []float32, scale float64)
	SetCamera(viewProjection mgl32.Mat4)
}

// Analyzer produces one snapshot per call without blocking.
type Analyzer interface {
	Capture() spectrum.Snapshot
}

// Playback is the part of the audio player the stage drives.
type Playback interface {
	SwitchTrack(i int) error
	TogglePlayback() error
	Stop() error
}

type Config struct {
	Modulation   ModulationConfig
	Grid         particles.Config
	InitialScene scene.Index
}

func DefaultConfig() Config {
	return Config{
		Modulation: DefaultModulationConfig(),
		Grid:       particles.DefaultConfig(),
	}
}

// Deps are the collaborators a Stage drives. Video may be nil when no
// source was requested.
type Deps struct {
	Chain    *effects.Chain
	Scenes   *scene.Controller
	Analyzer Analyzer
	Player   Playback
	Renderer Renderer
	Camera   *camera.Rig
	Video    *video.Pending
}

// Stage is the frame context. Tick and Emit must run on the frame goroutine.
type Stage struct {
	cfg Config
	Deps

	Events *EventBus

	// OnVideoFailure runs once when video acquisition fails.
	OnVideoFailure func(error)

	extractor spectrum.Extractor
	field     *particles.Field
	source    video.Source
	vertices  []float32

	extractFailing  bool
	modulateFailing bool

	log *zap.Logger
}

func New(cfg Config, d Deps, log *zap.Logger) (*Stage, error) {
	if d.Chain == nil || d.Scenes == nil || d.Analyzer == nil || d.Player == nil ||
		d.Renderer == nil || d.Camera == nil {
		return nil, errors.New("stage: missing collaborator")
	}
	if err := cfg.Modulation.Validate(); err != nil {
		return nil, fmt.Errorf("stage: modulation: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Stage{cfg: cfg, Deps: d, Events: NewEventBus(), log: log}
	if err := s.Scenes.Select(cfg.InitialScene); err != nil {
		return nil, err
	}
	if err := s.Player.SwitchTrack(int(cfg.InitialScene)); err != nil {
		return nil, err
	}
	s.subscribe()
	return s, nil
}

// Field returns the particle field, nil until a video source is adopted.
func (s *Stage) Field() *particles.Field { return s.field }

// Emit dispatches a control event.
func (s *Stage) Emit(e Event) { s.Events.Emit(e) }

// Tick runs one frame. Only a render failure is returned; analysis and
// modulation problems skip their step and are logged.
func (s *Stage) Tick() error {
	s.applySceneRequest()
	s.adoptVideo()

	if s.field != nil {
		s.field.Update(s.source.Frame())
		s.vertices = s.field.RenderData(s.vertices)
		s.Renderer.DrawParticles(s.vertices, s.field.Scale)
	}

	features, err := s.extractor.Extract(s.Analyzer.Capture())
	analysed := s.report(&s.extractFailing, "feature extraction", err)

	s.Camera.Update()
	s.Renderer.SetCamera(s.Camera.ViewProjection())

	if analysed {
		s.report(&s.modulateFailing, "modulation", s.modulate(features))
	}

	return s.Chain.Render()
}

func (s *Stage) applySceneRequest() {
	changed, err := s.Scenes.Apply()
	if err != nil {
		s.log.Warn("scene change failed", zap.Error(err))
		return
	}
	if !changed {
		return
	}
	cur, _ := s.Scenes.Current()
	s.syncParticles()
	if err := s.Player.SwitchTrack(int(cur)); err != nil {
		s.log.Warn("track switch failed", zap.Int("track", int(cur)), zap.Error(err))
	}
	s.log.Info("scene selected", zap.Int("scene", int(cur)), zap.Stringers("passes", s.Chain.Active()))
}

func (s *Stage) syncParticles() {
	if s.field == nil {
		return
	}
	p := s.Scenes.Particles()
	s.field.Scale = p.Scale
	if err := s.field.SetGrowthCap(p.GrowthCap); err != nil {
		s.log.Warn("growth cap", zap.Float64("cap", p.GrowthCap), zap.Error(err))
	}
}

func (s *Stage) adoptVideo() {
	if s.Video == nil {
		return
	}
	res := s.Video.Poll()
	if res == nil {
		return
	}
	s.Video = nil
	if res.Err != nil {
		err := res.Err
		if !errors.Is(err, video.ErrDeviceAcquisition) {
			err = fmt.Errorf("%w: %v", video.ErrDeviceAcquisition, err)
		}
		s.log.Error("video unavailable, particles disabled", zap.Error(err))
		if s.OnVideoFailure != nil {
			s.OnVideoFailure(err)
		}
		return
	}
	if res.Source == nil {
		return
	}
	field, err := particles.NewField(s.cfg.Grid)
	if err != nil {
		s.log.Error("particle field", zap.Error(err))
		_ = res.Source.Close()
		return
	}
	s.source = res.Source
	s.field = field
	s.syncParticles()
	s.log.Info("video ready", zap.Int("grid_width", field.W), zap.Int("grid_height", field.H))
}

// modulate pushes the audio-driven values for this frame. It stops at the
// first failing mapping.
func (s *Stage) modulate(f spectrum.Features) error {
	if s.field != nil {
		if err := s.field.SetGrowth(f.OverallAvg); err != nil {
			return fmt.Errorf("growth: %w", err)
		}
	}
	for _, b := range s.cfg.Modulation.bindings(s.Scenes.Preset().BloomCeiling) {
		v, err := b.mapping.Apply(b.feature(f))
		if err != nil {
			return fmt.Errorf("%s %s: %w", b.pass, b.param, err)
		}
		if err := s.Chain.SetParameter(b.pass, b.param, v); err != nil {
			return err
		}
	}
	return nil
}

// report logs the first failure of a streak and reports whether err is nil.
func (s *Stage) report(failing *bool, step string, err error) bool {
	if err == nil {
		if *failing {
			s.log.Info(step + " recovered")
		}
		*failing = false
		return true
	}
	if !*failing {
		s.log.Warn(step+" failed, skipping", zap.Error(err))
	}
	*failing = true
	return false
}

// Close releases the video source.
func (s *Stage) Close() error {
	if s.source == nil {
		return nil
	}
	return s.source.Close()
}

func (s *Stage) subscribe() {
	s.Events.Subscribe(EventTypeSelectScene, func(e Event) {
		ev := e.(EventSelectScene)
		if err := s.Scenes.Request(ev.Index); err != nil {
			s.log.Warn("scene request rejected", zap.Error(err))
		}
	})
	s.Events.Subscribe(EventTypeCameraAction, func(e Event) {
		s.Camera.SetAction(e.(EventCameraAction).Action)
	})
	s.Events.Subscribe(EventTypeMouseMove, func(e Event) {
		ev := e.(EventMouseMove)
		s.Camera.MouseMove(ev.X, ev.Y)
	})
	s.Events.Subscribe(EventTypeResize, func(e Event) {
		ev := e.(EventResize)
		if ev.W <= 0 || ev.H <= 0 {
			return
		}
		s.Camera.Resize(ev.W, ev.H)
		s.Chain.Resize(ev.W, ev.H)
	})
	s.Events.Subscribe(EventTypeTogglePlayback, func(Event) {
		if err := s.Player.TogglePlayback(); err != nil {
			s.log.Warn("toggle playback", zap.Error(err))
		}
	})
	s.Events.Subscribe(EventTypeStopPlayback, func(Event) {
		if err := s.Player.Stop(); err != nil {
			s.log.Warn("stop playback", zap.Error(err))
		}
	})
}
