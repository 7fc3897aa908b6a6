package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxelrt/internal/config"
)

const (
	mouseSensitivity = 0.1
	flySpeed         = 24.0 // world units per second
	fastMultiplier   = 4.0
)

// inputState wires mouse-look and fly-camera movement into the session.
type inputState struct {
	window *glfw.Window
	s      *session

	lastX, lastY float64
	firstMouse   bool
}

func newInputState(window *glfw.Window, s *session) *inputState {
	in := &inputState{window: window, s: s, firstMouse: true}

	window.SetCursorPosCallback(in.onCursor)
	window.SetKeyCallback(in.onKey)
	return in
}

func (in *inputState) onCursor(_ *glfw.Window, x, y float64) {
	if in.firstMouse {
		in.lastX, in.lastY = x, y
		in.firstMouse = false
		return
	}
	dx := x - in.lastX
	dy := in.lastY - y
	in.lastX, in.lastY = x, y

	cam := in.s.cam
	cam.Yaw += float32(dx * mouseSensitivity)
	cam.Pitch += float32(dy * mouseSensitivity)
	cam.ClampPitch()
}

func (in *inputState) onKey(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyF1:
		config.SetDebugMode((config.GetDebugMode() + 1) % 3)
	case glfw.KeyF2:
		config.SetMetaSkip(!config.GetMetaSkip())
	case glfw.KeyF3:
		in.s.comp.Shadows = !in.s.comp.Shadows
	}
}

// apply advances the camera from held movement keys.
func (in *inputState) apply(dt float64) {
	speed := float32(flySpeed * dt)
	if in.window.GetKey(glfw.KeyLeftControl) == glfw.Press {
		speed *= fastMultiplier
	}

	cam := in.s.cam
	forward, right, _ := cam.Basis()
	if in.window.GetKey(glfw.KeyW) == glfw.Press {
		cam.Position = cam.Position.Add(forward.Mul(speed))
	}
	if in.window.GetKey(glfw.KeyS) == glfw.Press {
		cam.Position = cam.Position.Sub(forward.Mul(speed))
	}
	if in.window.GetKey(glfw.KeyD) == glfw.Press {
		cam.Position = cam.Position.Add(right.Mul(speed))
	}
	if in.window.GetKey(glfw.KeyA) == glfw.Press {
		cam.Position = cam.Position.Sub(right.Mul(speed))
	}
	if in.window.GetKey(glfw.KeySpace) == glfw.Press {
		cam.Position[1] += speed
	}
	if in.window.GetKey(glfw.KeyLeftShift) == glfw.Press {
		cam.Position[1] -= speed
	}
}
