package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Particle vertex shader: one point per grid cell, perspective-attenuated.
const particleVertSrc = `#version 410 core

layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aColor;

uniform mat4 uViewProj;
uniform float uScale;
uniform float uHalfHeight;

out vec3 vColor;

void main() {
    gl_Position = uViewProj * vec4(aPos, 1.0);
    float gray = (aColor.r + aColor.g + aColor.b) / 3.0;
    float size = uScale * (0.5 * gray + 0.5);
    gl_PointSize = size * uHalfHeight / max(gl_Position.w, 0.0001);
    vColor = aColor;
}
` + "\x00"

// Round points.
const particleFragSrc = `#version 410 core

in vec3 vColor;
out vec4 FragColor;

void main() {
    if (length(gl_PointCoord - vec2(0.5)) > 0.5) discard;
    FragColor = vec4(vColor, 1.0);
}
` + "\x00"

// Fullscreen quad shared by every pass.
const quadVertSrc = `#version 410 core

layout(location = 0) in vec2 aPos; // -1..1

out vec2 vUV;

void main() {
    vUV = aPos * 0.5 + 0.5;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

const passHeader = `#version 410 core

uniform sampler2D uInput;
uniform vec2 uResolution;

in vec2 vUV;
out vec4 FragColor;
`

const afterimageFragSrc = passHeader + `
uniform sampler2D uHistory;
uniform float uDamp;

void main() {
    vec4 fresh = texture(uInput, vUV);
    vec4 old = texture(uHistory, vUV);
    old *= uDamp * step(vec4(0.1), old);
    FragColor = max(fresh, old);
}
` + "\x00"

const dotScreenFragSrc = passHeader + `
uniform float uScale;
uniform float uAngle;

float pattern() {
    float s = sin(uAngle);
    float c = cos(uAngle);
    vec2 tex = vUV * vec2(256.0) - vec2(0.5);
    vec2 p = vec2(c * tex.x - s * tex.y, s * tex.x + c * tex.y) * uScale;
    return (sin(p.x) * sin(p.y)) * 4.0;
}

void main() {
    vec4 color = texture(uInput, vUV);
    float avg = (color.r + color.g + color.b) / 3.0;
    FragColor = vec4(vec3(avg * 10.0 - 5.0 + pattern()), color.a);
}
` + "\x00"

const rgbShiftFragSrc = passHeader + `
uniform float uAmount;
uniform float uAngle;

void main() {
    vec2 offset = uAmount * vec2(cos(uAngle), sin(uAngle));
    vec4 r = texture(uInput, vUV + offset);
    vec4 ga = texture(uInput, vUV);
    vec4 b = texture(uInput, vUV - offset);
    FragColor = vec4(r.r, ga.g, b.b, ga.a);
}
` + "\x00"

const pixelateFragSrc = passHeader + `
uniform sampler2D uDepth;
uniform float uPixelSize;
uniform float uNormalEdge;
uniform float uDepthEdge;

float luma(vec3 c) { return dot(c, vec3(0.299, 0.587, 0.114)); }

void main() {
    vec2 block = uPixelSize / uResolution;
    vec2 uv = block * (floor(vUV / block) + 0.5);
    vec4 color = texture(uInput, uv);

    float d = texture(uDepth, uv).r;
    float dx = texture(uDepth, uv + vec2(block.x, 0.0)).r;
    float dy = texture(uDepth, uv + vec2(0.0, block.y)).r;
    float depthEdge = clamp((abs(d - dx) + abs(d - dy)) * 50.0, 0.0, 1.0);

    float l = luma(color.rgb);
    float lx = luma(texture(uInput, uv + vec2(block.x, 0.0)).rgb);
    float ly = luma(texture(uInput, uv + vec2(0.0, block.y)).rgb);
    float normalEdge = clamp(abs(l - lx) + abs(l - ly), 0.0, 1.0);

    color.rgb *= 1.0 - uDepthEdge * depthEdge;
    color.rgb += uNormalEdge * normalEdge * 0.5;
    FragColor = color;
}
` + "\x00"

const sepiaFragSrc = passHeader + `
uniform float uAmount;

void main() {
    vec4 color = texture(uInput, vUV);
    vec3 c = color.rgb;
    vec3 s;
    s.r = dot(c, vec3(1.0 - 0.607 * uAmount, 0.769 * uAmount, 0.189 * uAmount));
    s.g = dot(c, vec3(0.349 * uAmount, 1.0 - 0.314 * uAmount, 0.168 * uAmount));
    s.b = dot(c, vec3(0.272 * uAmount, 0.534 * uAmount, 1.0 - 0.869 * uAmount));
    FragColor = vec4(min(vec3(1.0), s), color.a);
}
` + "\x00"

const filmFragSrc = passHeader + `
uniform float uTime;
uniform float uNoise;
uniform float uScanIntensity;
uniform float uScanCount;
uniform bool uGrayscale;

float rand(vec2 co) {
    return fract(sin(dot(co, vec2(12.9898, 78.233))) * 43758.5453);
}

void main() {
    vec4 base = texture(uInput, vUV);
    float dx = rand(vUV + mod(uTime, 3.14));
    vec3 c = base.rgb + base.rgb * clamp(0.1 + dx, 0.0, 1.0);
    vec2 sc = vec2(sin(vUV.y * uScanCount), cos(vUV.y * uScanCount));
    c += base.rgb * vec3(sc.x, sc.y, sc.x) * uScanIntensity;
    c = base.rgb + clamp(uNoise, 0.0, 1.0) * (c - base.rgb);
    if (uGrayscale) {
        c = vec3(c.r * 0.3 + c.g * 0.59 + c.b * 0.11);
    }
    FragColor = vec4(c, base.a);
}
` + "\x00"

const bloomBrightFragSrc = passHeader + `
uniform float uThreshold;

void main() {
    vec4 color = texture(uInput, vUV);
    float l = dot(color.rgb, vec3(0.299, 0.587, 0.114));
    FragColor = vec4(color.rgb * smoothstep(uThreshold, uThreshold + 0.01, l), 1.0);
}
` + "\x00"

// Separable 9-tap gaussian; uDirection is one texel along x or y.
const bloomBlurFragSrc = passHeader + `
uniform vec2 uDirection;
uniform float uSpread;

void main() {
    const float w[5] = float[](0.227027, 0.1945946, 0.1216216, 0.054054, 0.016216);
    vec2 offset = uDirection * uSpread;
    vec3 sum = texture(uInput, vUV).rgb * w[0];
    for (int i = 1; i < 5; i++) {
        sum += texture(uInput, vUV + offset * float(i)).rgb * w[i];
        sum += texture(uInput, vUV - offset * float(i)).rgb * w[i];
    }
    FragColor = vec4(sum, 1.0);
}
` + "\x00"

const bloomCompositeFragSrc = passHeader + `
uniform sampler2D uBloom;
uniform float uStrength;
uniform float uExposure;

void main() {
    vec4 base = texture(uInput, vUV);
    vec3 glow = texture(uBloom, vUV).rgb * uStrength * uExposure;
    FragColor = vec4(base.rgb + glow, base.a);
}
` + "\x00"

const gammaFragSrc = passHeader + `
void main() {
    vec4 color = texture(uInput, vUV);
    FragColor = vec4(pow(max(color.rgb, vec3(0.0)), vec3(1.0 / 2.2)), color.a);
}
` + "\x00"

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(buf))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile shader: %s", strings.TrimRight(buf, "\x00"))
	}
	return shader, nil
}

func linkProgram(vertSrc, fragSrc string) (uint32, error) {
	vs, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(buf))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(buf, "\x00"))
	}
	return program, nil
}
