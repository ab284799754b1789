// Package app opens the window and devices, wires the stage together and
// runs the frame loop.
package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"pulsefield/internal/audio"
	"pulsefield/internal/camera"
	"pulsefield/internal/effects"
	"pulsefield/internal/render"
	"pulsefield/internal/scene"
	"pulsefield/internal/stage"
	"pulsefield/internal/video"
)

const audioReadyTimeout = 2 * time.Second

// Run blocks until the window is closed or a frame fails to render.
func Run(cfg Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	runtime.LockOSThread()

	window, err := initWindow(cfg.Width, cfg.Height, cfg.Title)
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	log.Info("opengl ready", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var pending *video.Pending
	if cfg.Video.Kind != video.KindNone {
		pending = video.OpenAsync(ctx, cfg.Video, log.Named("video"))
	}

	tap := audio.NewTap(cfg.Analyzer.FFTSize)
	analyzer, err := audio.NewAnalyzer(cfg.Analyzer, tap)
	if err != nil {
		return err
	}
	tracks, err := audio.Tracks(cfg.Tracks, int(scene.Count))
	if err != nil {
		return err
	}
	player, err := audio.NewPlayer(openAudio(log), tap, tracks, cfg.Volume, log.Named("audio"))
	if err != nil {
		return err
	}
	defer player.Close()

	fbW, fbH := window.GetFramebufferSize()
	rend, err := render.New(fbW, fbH)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	defer rend.Destroy()

	chain, err := effects.NewChain(cfg.Effects, rend)
	if err != nil {
		return err
	}
	scenes, err := scene.NewController(cfg.Scenes, chain)
	if err != nil {
		return err
	}
	rig, err := camera.NewRig(cfg.Camera, cfg.Grid.Width, cfg.Grid.Height, fbW, fbH)
	if err != nil {
		return err
	}
	st, err := stage.New(stage.Config{
		Modulation:   cfg.Modulation,
		Grid:         cfg.Grid,
		InitialScene: cfg.Scene,
	}, stage.Deps{
		Chain:    chain,
		Scenes:   scenes,
		Analyzer: analyzer,
		Player:   player,
		Renderer: rend,
		Camera:   rig,
		Video:    pending,
	}, log.Named("stage"))
	if err != nil {
		return err
	}
	defer st.Close()
	st.OnVideoFailure = func(error) {
		window.SetTitle(cfg.Title + " - camera unavailable")
	}

	if err := player.Play(); err != nil {
		log.Warn("playback failed to start", zap.Error(err))
	}

	input := NewInput()
	for !window.ShouldClose() {
		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
			continue
		}
		input.Poll(window, st)
		if err := st.Tick(); err != nil {
			return fmt.Errorf("frame: %w", err)
		}
		window.SwapBuffers()
	}
	return nil
}

// openAudio falls back to a silent backend when no output device works.
func openAudio(log *zap.Logger) audio.Backend {
	ctx, err := audio.NewContext()
	if err == nil {
		err = ctx.WaitReady(audioReadyTimeout)
	}
	if err != nil {
		log.Warn("audio unavailable, continuing without sound", zap.Error(err))
		return audio.Silent{}
	}
	return ctx
}
