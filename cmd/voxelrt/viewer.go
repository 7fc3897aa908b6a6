package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxelrt/internal/graphics"
)

func setupWindow(width, height int) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(width, height, "voxelrt", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, err
	}

	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return window, nil
}

// runViewer opens a window and re-traces the frame every iteration,
// blitting the CPU framebuffer as a fullscreen texture.
func runViewer(s *session) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	w, h := s.fb.Size()
	window, err := setupWindow(w, h)
	if err != nil {
		return err
	}

	blitter, err := graphics.NewBlitter(w, h)
	if err != nil {
		return err
	}
	defer blitter.Destroy()

	in := newInputState(window, s)

	lastTime := time.Now()
	fpsFrames, fps := 0, 0.0
	fpsMark := lastTime

	for !window.ShouldClose() {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		fpsFrames++
		if now.Sub(fpsMark) >= time.Second {
			fps = float64(fpsFrames) / now.Sub(fpsMark).Seconds()
			fpsFrames = 0
			fpsMark = now
		}

		in.apply(dt)

		stats, err := s.renderFrame(context.Background())
		if err != nil {
			return err
		}
		s.overlay(stats, fps)

		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		blitter.Draw(s.fb)

		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}
