package graphics

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Framebuffer is the CPU render target. Pixels are RGBA8.
type Framebuffer struct {
	img *image.RGBA
	w   int
	h   int
}

// NewFramebuffer allocates a w by h framebuffer.
func NewFramebuffer(w, h int) *Framebuffer {
	return &Framebuffer{img: image.NewRGBA(image.Rect(0, 0, w, h)), w: w, h: h}
}

// Size returns width and height.
func (f *Framebuffer) Size() (int, int) { return f.w, f.h }

// Pix exposes the raw RGBA bytes for texture upload.
func (f *Framebuffer) Pix() []uint8 { return f.img.Pix }

// SetRGB writes a linear color, clamped to [0,1], at (x, y).
func (f *Framebuffer) SetRGB(x, y int, c mgl32.Vec3) {
	i := f.img.PixOffset(x, y)
	f.img.Pix[i+0] = toByte(c[0])
	f.img.Pix[i+1] = toByte(c[1])
	f.img.Pix[i+2] = toByte(c[2])
	f.img.Pix[i+3] = 0xFF
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// DrawText renders an overlay line at pixel (x, y) using the built-in
// 7x13 face. Meant for the stats HUD, not for pretty typography.
func (f *Framebuffer) DrawText(x, y int, s string) {
	d := font.Drawer{
		Dst:  f.img,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// WritePNG dumps the framebuffer to path.
func (f *Framebuffer) WritePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("graphics: create %s: %w", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, f.img); err != nil {
		return fmt.Errorf("graphics: encode %s: %w", path, err)
	}
	return nil
}
