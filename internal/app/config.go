package app

import (
	"errors"
	"fmt"

	"pulsefield/internal/audio"
	"pulsefield/internal/camera"
	"pulsefield/internal/effects"
	"pulsefield/internal/particles"
	"pulsefield/internal/scene"
	"pulsefield/internal/stage"
	"pulsefield/internal/video"
)

// Config gathers every component's configuration.
type Config struct {
	Width, Height int
	Title         string

	Tracks []string
	Volume float64

	Analyzer   audio.AnalyzerConfig
	Video      video.Config
	Grid       particles.Config
	Camera     camera.Config
	Effects    effects.Config
	Scenes     scene.Config
	Modulation stage.ModulationConfig
	Scene      scene.Index
}

func DefaultConfig() Config {
	return Config{
		Width:      1280,
		Height:     720,
		Title:      "pulsefield",
		Volume:     1,
		Analyzer:   audio.DefaultAnalyzerConfig(),
		Video:      video.DefaultConfig(),
		Grid:       particles.DefaultConfig(),
		Camera:     camera.DefaultConfig(),
		Effects:    effects.DefaultConfig(),
		Scenes:     scene.DefaultConfig(),
		Modulation: stage.DefaultModulationConfig(),
	}
}

func (c Config) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("app: invalid window size %dx%d", c.Width, c.Height)
	}
	if len(c.Tracks) > int(scene.Count) {
		return fmt.Errorf("app: %d tracks given, at most %d", len(c.Tracks), scene.Count)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("app: volume %v outside [0,1]", c.Volume)
	}
	if !c.Scene.Valid() {
		return fmt.Errorf("app: %w: %d", scene.ErrInvalidSceneIndex, int(c.Scene))
	}
	if c.Grid.Width != c.Video.Width || c.Grid.Height != c.Video.Height {
		return errors.New("app: video frame size must match the particle grid")
	}
	return errors.Join(
		c.Analyzer.Validate(),
		c.Video.Validate(),
		c.Camera.Validate(),
		c.Scenes.Validate(),
		c.Modulation.Validate(),
	)
}
