// Package trace walks camera rays through the resident world: chunk-grid
// DDA stepping, per-chunk SVDAG descent and transparency compositing.
package trace

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// invEps clamps near-zero direction components before inversion so rays
// parallel to an axis degrade to a huge-but-finite slab parameter instead
// of NaNs.
const invEps = 1e-9

// invDir returns the epsilon-clamped componentwise inverse of dir.
func invDir(dir mgl32.Vec3) [3]float32 {
	var inv [3]float32
	for a := 0; a < 3; a++ {
		d := dir[a]
		if d > -invEps && d < invEps {
			d = float32(math.Copysign(invEps, float64(d)))
		}
		inv[a] = 1 / d
	}
	return inv
}

// rayAABB is the slab test: entry and exit parameters of the ray against
// the box, and whether the intervals overlap at all. Callers clamp tn to
// their own near bound.
func rayAABB(origin mgl32.Vec3, inv [3]float32, bmin, bmax mgl32.Vec3) (tn, tf float32, hit bool) {
	tn = float32(math.Inf(-1))
	tf = float32(math.Inf(1))
	for a := 0; a < 3; a++ {
		t1 := (bmin[a] - origin[a]) * inv[a]
		t2 := (bmax[a] - origin[a]) * inv[a]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tn {
			tn = t1
		}
		if t2 < tf {
			tf = t2
		}
	}
	return tn, tf, tn <= tf
}
