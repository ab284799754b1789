package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// target is an offscreen color buffer with an optional depth texture.
type target struct {
	fbo   uint32
	color uint32
	depth uint32
	w, h  int32
}

func newTarget(w, h int, withDepth bool) (*target, error) {
	t := &target{w: int32(w), h: int32(h)}
	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	gl.GenTextures(1, &t.color)
	gl.BindTexture(gl.TEXTURE_2D, t.color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, t.w, t.h, 0, gl.RGBA, gl.FLOAT, nil)
	setSampling()
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.color, 0)

	if withDepth {
		gl.GenTextures(1, &t.depth)
		gl.BindTexture(gl.TEXTURE_2D, t.depth)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, t.w, t.h, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
		setSampling()
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.depth, 0)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return t, nil
}

func setSampling() {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func (t *target) bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, t.w, t.h)
}

func (t *target) clear() {
	t.bind()
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// copyTo blits the color buffer into dst, or into the default framebuffer
// when dst is nil.
func (t *target) copyTo(dst *target, w, h int32) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
	var fbo uint32
	if dst != nil {
		fbo, w, h = dst.fbo, dst.w, dst.h
	}
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, fbo)
	gl.BlitFramebuffer(0, 0, t.w, t.h, 0, 0, w, h, gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (t *target) destroy() {
	if t == nil {
		return
	}
	for _, id := range []uint32{t.color, t.depth} {
		if id != 0 {
			gl.DeleteTextures(1, &id)
		}
	}
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
	}
}
