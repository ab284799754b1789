// Package render draws the particle field with OpenGL 4.1 and runs the
// post-processing passes over it.
package render

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"pulsefield/internal/effects"
	"pulsefield/internal/particles"
)

// glOffset converts a byte offset to unsafe.Pointer for VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

// program is a linked fullscreen pass with its uniform locations.
type program struct {
	id       uint32
	uniforms map[string]int32
}

func newProgram(fragSrc string, names ...string) (*program, error) {
	id, err := linkProgram(quadVertSrc, fragSrc)
	if err != nil {
		return nil, err
	}
	p := &program{id: id, uniforms: make(map[string]int32, len(names)+2)}
	gl.UseProgram(id)
	for _, n := range append([]string{"uInput", "uResolution"}, names...) {
		p.uniforms[n] = gl.GetUniformLocation(id, gl.Str(n+"\x00"))
	}
	gl.Uniform1i(p.uniforms["uInput"], 0)
	return p, nil
}

func (p *program) use(w, h int32) {
	gl.UseProgram(p.id)
	gl.Uniform2f(p.uniforms["uResolution"], float32(w), float32(h))
}

func (p *program) set1f(name string, v float64) { gl.Uniform1f(p.uniforms[name], float32(v)) }
func (p *program) set1i(name string, v int32)   { gl.Uniform1i(p.uniforms[name], v) }

// Renderer implements the stage renderer on the current GL context.
type Renderer struct {
	// Particle program.
	particleProg  uint32
	particleVAO   uint32
	particleVBO   uint32
	pUViewProj    int32
	pUScale       int32
	pUHalfHeight  int32
	particleCount int32
	particleScale float64
	viewProj      mgl32.Mat4

	// Fullscreen quad.
	quadVAO uint32
	quadVBO uint32

	passes      map[effects.PassID]*program
	bloomBright *program
	bloomBlur   *program

	scene   *target // particle scene with depth
	ping    [2]*target
	history *target
	bloom   [2]*target

	width, height int32
	started       time.Time
	resizeErr     error
}

func New(width, height int) (*Renderer, error) {
	r := &Renderer{passes: make(map[effects.PassID]*program), started: time.Now()}
	if err := r.init(); err != nil {
		r.Destroy()
		return nil, err
	}
	if err := r.allocate(width, height); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init() error {
	prog, err := linkProgram(particleVertSrc, particleFragSrc)
	if err != nil {
		return fmt.Errorf("particle program: %w", err)
	}
	r.particleProg = prog
	gl.UseProgram(prog)
	r.pUViewProj = gl.GetUniformLocation(prog, gl.Str("uViewProj\x00"))
	r.pUScale = gl.GetUniformLocation(prog, gl.Str("uScale\x00"))
	r.pUHalfHeight = gl.GetUniformLocation(prog, gl.Str("uHalfHeight\x00"))

	// Particle VAO/VBO: streaming buffer, particles.VertexStride floats
	// per point (x, y, z, r, g, b).
	gl.GenVertexArrays(1, &r.particleVAO)
	gl.GenBuffers(1, &r.particleVBO)
	gl.BindVertexArray(r.particleVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.particleVBO)
	stride := int32(particles.VertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, glOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, glOffset(3*4))

	// Quad VAO/VBO: two triangles covering clip space.
	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	quad := [12]float32{
		-1, -1, 1, -1, 1, 1,
		-1, -1, 1, 1, -1, 1,
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(&quad[0]), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, glOffset(0))
	gl.BindVertexArray(0)

	type spec struct {
		id       effects.PassID
		src      string
		uniforms []string
	}
	for _, s := range []spec{
		{effects.PassAfterimage, afterimageFragSrc, []string{"uHistory", "uDamp"}},
		{effects.PassDotScreen, dotScreenFragSrc, []string{"uScale", "uAngle"}},
		{effects.PassRGBShift, rgbShiftFragSrc, []string{"uAmount", "uAngle"}},
		{effects.PassPixelate, pixelateFragSrc, []string{"uDepth", "uPixelSize", "uNormalEdge", "uDepthEdge"}},
		{effects.PassSepia, sepiaFragSrc, []string{"uAmount"}},
		{effects.PassFilm, filmFragSrc, []string{"uTime", "uNoise", "uScanIntensity", "uScanCount", "uGrayscale"}},
		{effects.PassBloom, bloomCompositeFragSrc, []string{"uBloom", "uStrength", "uExposure"}},
		{effects.PassGammaCorrection, gammaFragSrc, nil},
	} {
		p, err := newProgram(s.src, s.uniforms...)
		if err != nil {
			return fmt.Errorf("%s program: %w", s.id, err)
		}
		r.passes[s.id] = p
	}
	if r.bloomBright, err = newProgram(bloomBrightFragSrc, "uThreshold"); err != nil {
		return fmt.Errorf("bloom bright program: %w", err)
	}
	if r.bloomBlur, err = newProgram(bloomBlurFragSrc, "uDirection", "uSpread"); err != nil {
		return fmt.Errorf("bloom blur program: %w", err)
	}

	gl.UseProgram(r.passes[effects.PassAfterimage].id)
	r.passes[effects.PassAfterimage].set1i("uHistory", 1)
	gl.UseProgram(r.passes[effects.PassPixelate].id)
	r.passes[effects.PassPixelate].set1i("uDepth", 1)
	gl.UseProgram(r.passes[effects.PassBloom].id)
	r.passes[effects.PassBloom].set1i("uBloom", 1)

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	return nil
}

// allocate (re)creates every offscreen target at the given size.
func (r *Renderer) allocate(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("render: invalid size %dx%d", width, height)
	}
	r.releaseTargets()
	r.width, r.height = int32(width), int32(height)

	var err error
	if r.scene, err = newTarget(width, height, true); err != nil {
		return fmt.Errorf("render: scene target: %w", err)
	}
	for i := range r.ping {
		if r.ping[i], err = newTarget(width, height, false); err != nil {
			return fmt.Errorf("render: ping-pong target: %w", err)
		}
	}
	if r.history, err = newTarget(width, height, false); err != nil {
		return fmt.Errorf("render: history target: %w", err)
	}
	r.history.clear()
	bw, bh := max(width/2, 1), max(height/2, 1)
	for i := range r.bloom {
		if r.bloom[i], err = newTarget(bw, bh, false); err != nil {
			return fmt.Errorf("render: bloom target: %w", err)
		}
	}
	return nil
}

func (r *Renderer) releaseTargets() {
	r.scene.destroy()
	r.history.destroy()
	for i := range r.ping {
		r.ping[i].destroy()
		r.ping[i] = nil
	}
	for i := range r.bloom {
		r.bloom[i].destroy()
		r.bloom[i] = nil
	}
	r.scene, r.history = nil, nil
}

// DrawParticles replaces the vertex stream drawn by the render pass.
func (r *Renderer) DrawParticles(vertices []float32, scale float64) {
	r.particleScale = scale
	r.particleCount = int32(len(vertices) / particles.VertexStride)
	if r.particleCount == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, r.particleVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STREAM_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (r *Renderer) SetCamera(viewProjection mgl32.Mat4) { r.viewProj = viewProjection }

// Resize reallocates the targets. A failure is reported by the next
// Composite.
func (r *Renderer) Resize(width, height int) {
	if int32(width) == r.width && int32(height) == r.height {
		return
	}
	r.resizeErr = r.allocate(width, height)
}

// Composite draws the particle scene and runs passes in order, then shows
// the result. The first pass must be the render pass.
func (r *Renderer) Composite(passes []effects.Pass) error {
	if r.resizeErr != nil {
		return r.resizeErr
	}
	if len(passes) == 0 || passes[0].ID != effects.PassRender {
		return errors.New("render: chain does not start with the render pass")
	}
	r.drawScene()
	src := r.scene
	next := 0
	for _, p := range passes[1:] {
		dst := r.ping[next]
		if err := r.runPass(p, src, dst); err != nil {
			return err
		}
		src = dst
		next = 1 - next
	}
	src.copyTo(nil, r.width, r.height)
	return nil
}

func (r *Renderer) drawScene() {
	r.scene.clear()
	if r.particleCount == 0 {
		return
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.UseProgram(r.particleProg)
	gl.UniformMatrix4fv(r.pUViewProj, 1, false, &r.viewProj[0])
	gl.Uniform1f(r.pUScale, float32(r.particleScale))
	gl.Uniform1f(r.pUHalfHeight, float32(r.height)/2)
	gl.BindVertexArray(r.particleVAO)
	gl.DrawArrays(gl.POINTS, 0, r.particleCount)
	gl.BindVertexArray(0)
	gl.Disable(gl.DEPTH_TEST)
}

func (r *Renderer) drawQuad(input uint32, dst *target) {
	dst.bind()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, input)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func bindAux(tex uint32) {
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.ActiveTexture(gl.TEXTURE0)
}

func (r *Renderer) runPass(p effects.Pass, src, dst *target) error {
	prog, ok := r.passes[p.ID]
	if !ok {
		return fmt.Errorf("render: %w: %s", effects.ErrUnknownPass, p.ID)
	}
	if p.ID == effects.PassBloom {
		r.bloomPrepass(p, src)
	}
	prog.use(dst.w, dst.h)
	switch p.ID {
	case effects.PassAfterimage:
		prog.set1f("uDamp", p.Value(effects.ParamDamp))
		bindAux(r.history.color)
	case effects.PassDotScreen:
		prog.set1f("uScale", p.Value(effects.ParamScale))
		prog.set1f("uAngle", p.Value(effects.ParamAngle))
	case effects.PassRGBShift:
		prog.set1f("uAmount", p.Value(effects.ParamAmount))
		prog.set1f("uAngle", p.Value(effects.ParamAngle))
	case effects.PassPixelate:
		prog.set1f("uPixelSize", float64(p.Int(effects.ParamPixelSize)))
		prog.set1f("uNormalEdge", p.Value(effects.ParamNormalEdgeStrength))
		prog.set1f("uDepthEdge", p.Value(effects.ParamDepthEdgeStrength))
		bindAux(r.scene.depth)
	case effects.PassSepia:
		prog.set1f("uAmount", p.Value(effects.ParamAmount))
	case effects.PassFilm:
		prog.set1f("uTime", time.Since(r.started).Seconds())
		prog.set1f("uNoise", p.Value(effects.ParamNoiseIntensity))
		prog.set1f("uScanIntensity", p.Value(effects.ParamScanlinesIntensity))
		prog.set1f("uScanCount", float64(p.Int(effects.ParamScanlinesCount)))
		var gray int32
		if p.Flag(effects.ParamGrayscale) {
			gray = 1
		}
		prog.set1i("uGrayscale", gray)
	case effects.PassBloom:
		prog.set1f("uStrength", p.Value(effects.ParamStrength))
		prog.set1f("uExposure", p.Value(effects.ParamExposure))
		bindAux(r.bloom[0].color)
	}
	r.drawQuad(src.color, dst)
	if p.ID == effects.PassAfterimage {
		dst.copyTo(r.history, 0, 0)
	}
	return nil
}

// bloomPrepass extracts bright areas of src into bloom[0] and blurs them.
func (r *Renderer) bloomPrepass(p effects.Pass, src *target) {
	a, b := r.bloom[0], r.bloom[1]
	r.bloomBright.use(a.w, a.h)
	r.bloomBright.set1f("uThreshold", p.Value(effects.ParamThreshold))
	r.drawQuad(src.color, a)

	spread := 1 + 3*p.Value(effects.ParamRadius)
	r.bloomBlur.use(b.w, b.h)
	r.bloomBlur.set1f("uSpread", spread)
	gl.Uniform2f(r.bloomBlur.uniforms["uDirection"], 1/float32(a.w), 0)
	r.drawQuad(a.color, b)
	gl.Uniform2f(r.bloomBlur.uniforms["uDirection"], 0, 1/float32(a.h))
	r.drawQuad(b.color, a)
}

// Destroy releases every GL object.
func (r *Renderer) Destroy() {
	r.releaseTargets()
	for _, id := range []uint32{r.particleVBO, r.quadVBO} {
		if id != 0 {
			gl.DeleteBuffers(1, &id)
		}
	}
	for _, id := range []uint32{r.particleVAO, r.quadVAO} {
		if id != 0 {
			gl.DeleteVertexArrays(1, &id)
		}
	}
	if r.particleProg != 0 {
		gl.DeleteProgram(r.particleProg)
	}
	for _, p := range r.passes {
		gl.DeleteProgram(p.id)
	}
	for _, p := range []*program{r.bloomBright, r.bloomBlur} {
		if p != nil {
			gl.DeleteProgram(p.id)
		}
	}
}
