package app

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"pulsefield/internal/camera"
	"pulsefield/internal/scene"
	"pulsefield/internal/stage"
)

// keyEvents binds the control surface keys.
var keyEvents = []struct {
	key   glfw.Key
	event stage.Event
}{
	{glfw.Key1, stage.EventSelectScene{Index: scene.Scene0}},
	{glfw.Key2, stage.EventSelectScene{Index: scene.Scene1}},
	{glfw.Key3, stage.EventSelectScene{Index: scene.Scene2}},
	{glfw.KeyQ, stage.EventStopPlayback{}},
	{glfw.KeyW, stage.EventTogglePlayback{}},
	{glfw.KeyA, stage.EventCameraAction{Action: camera.ActionLeft}},
	{glfw.KeyS, stage.EventCameraAction{Action: camera.ActionTop}},
	{glfw.KeyD, stage.EventCameraAction{Action: camera.ActionRight}},
	{glfw.KeyF, stage.EventCameraAction{Action: camera.ActionFree}},
}

type Input struct {
	prevKeys map[glfw.Key]bool
	prevX    float64
	prevY    float64
	prevW    int
	prevH    int
}

func NewInput() *Input {
	return &Input{prevKeys: make(map[glfw.Key]bool), prevX: -1, prevY: -1}
}

func (in *Input) JustPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

// Poll turns this frame's key edges, cursor motion and framebuffer size
// into stage events.
func (in *Input) Poll(window *glfw.Window, s *stage.Stage) {
	for _, b := range keyEvents {
		if in.JustPressed(window, b.key) {
			s.Emit(b.event)
		}
	}

	fbW, fbH := window.GetFramebufferSize()
	if (fbW != in.prevW || fbH != in.prevH) && fbW > 0 && fbH > 0 {
		in.prevW, in.prevH = fbW, fbH
		s.Emit(stage.EventResize{W: fbW, H: fbH})
	}

	cx, cy := window.GetCursorPos()
	winW, winH := window.GetSize()
	if winW > 0 && winH > 0 {
		// Cursor is in window coordinates; the camera works in framebuffer pixels.
		cx *= float64(fbW) / float64(winW)
		cy *= float64(fbH) / float64(winH)
	}
	if cx != in.prevX || cy != in.prevY {
		in.prevX, in.prevY = cx, cy
		s.Emit(stage.EventMouseMove{X: cx, Y: cy})
	}
}
