package graphics

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Blitter uploads the CPU framebuffer as a texture and draws it over the
// whole window with a fullscreen quad.
type Blitter struct {
	program uint32
	vao     uint32
	vbo     uint32
	texture uint32
	w, h    int
}

const blitVertexSrc = `#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
out vec2 uv;
void main() {
	uv = aUV;
	gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

const blitFragmentSrc = `#version 410 core
in vec2 uv;
out vec4 color;
uniform sampler2D frame;
void main() {
	color = texture(frame, uv);
}
` + "\x00"

// NewBlitter compiles the blit program and allocates the quad and texture.
// Requires a current GL context.
func NewBlitter(w, h int) (*Blitter, error) {
	program, err := compileProgram(blitVertexSrc, blitFragmentSrc)
	if err != nil {
		return nil, err
	}

	// x, y, u, v. The framebuffer's row 0 is the top of the image, so V
	// flips here rather than in the tracer.
	quad := []float32{
		-1, -1, 0, 1,
		1, -1, 1, 1,
		1, 1, 1, 0,
		1, 1, 1, 0,
		-1, 1, 0, 0,
		-1, -1, 0, 1,
	}

	b := &Blitter{program: program, w: w, h: h}
	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 16, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 16, gl.PtrOffset(8))
	gl.EnableVertexAttribArray(1)

	gl.GenTextures(1, &b.texture)
	gl.BindTexture(gl.TEXTURE_2D, b.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	return b, nil
}

// Draw uploads fb and renders the quad.
func (b *Blitter) Draw(fb *Framebuffer) {
	gl.UseProgram(b.program)
	gl.BindTexture(gl.TEXTURE_2D, b.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(b.w), int32(b.h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(fb.Pix()))
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

// Destroy releases GL objects.
func (b *Blitter) Destroy() {
	gl.DeleteTextures(1, &b.texture)
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteProgram(b.program)
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("graphics: failed to link program: %v", log)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("graphics: failed to compile shader: %v", log)
	}

	return shader, nil
}
