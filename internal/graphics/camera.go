// Package graphics holds the CPU-side presentation pieces: the fly camera
// that generates primary rays, the RGBA framebuffer the tracer writes into,
// and the OpenGL blitter that puts a frame on screen.
package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a fly camera. Yaw and pitch are in degrees, matching the
// mouse-look convention.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	FOV      float32
}

// NewCamera returns a camera with a 60 degree field of view looking down
// the negative Z axis.
func NewCamera(pos mgl32.Vec3) *Camera {
	return &Camera{Position: pos, Yaw: -90, FOV: 60}
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(pitch) * math.Cos(yaw)),
		float32(math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Sin(yaw)),
	}.Normalize()
}

// Basis returns the forward, right and up unit vectors.
func (c *Camera) Basis() (forward, right, up mgl32.Vec3) {
	forward = c.Forward()
	right = forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// Ray returns the unit direction of the primary ray through pixel (px, py)
// of a w by h image.
func (c *Camera) Ray(px, py, w, h int) mgl32.Vec3 {
	f, r, u := c.Basis()
	tanHalf := float32(math.Tan(float64(mgl32.DegToRad(c.FOV)) / 2))
	aspect := float32(w) / float32(h)

	nx := (2*(float32(px)+0.5)/float32(w) - 1) * tanHalf * aspect
	ny := (1 - 2*(float32(py)+0.5)/float32(h)) * tanHalf
	return f.Add(r.Mul(nx)).Add(u.Mul(ny)).Normalize()
}

// ClampPitch keeps the pitch away from the poles.
func (c *Camera) ClampPitch() {
	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}
}
