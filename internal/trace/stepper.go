package trace

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelrt/internal/world"
)

// StepKind classifies one chunk-walk result.
type StepKind uint8

const (
	// StepChunk yields a resident chunk slot to traverse.
	StepChunk StepKind = iota
	// StepMiss means the chunk is not resident: a load request was emitted
	// and the walk terminates for this frame with the partial distance.
	StepMiss
	// StepDone means the ray ran out of distance or step budget.
	StepDone
)

// StepResult is one element of the lazily-consumed chunk sequence.
type StepResult struct {
	Kind  StepKind
	Slot  int
	Coord world.ChunkCoord
	// Enter is the parametric distance traveled when the chunk boundary was
	// crossed; on StepMiss/StepDone it is the partial distance covered.
	Enter float32
}

// Stepper is the immutable chunk-walk configuration shared by all ray
// workers. MaxSteps bounds worst-case per-pixel work deterministically and
// is lowered under memory pressure; SkipEmpty consults the meta grid to
// avoid hash probes for empty space.
type Stepper struct {
	Reg       *world.Registry
	Req       *world.RequestQueue
	MaxSteps  int
	SkipEmpty bool
}

// Walk holds the per-ray 3D DDA state: per-axis step sign, parametric
// increment (chunkEdge / |dir|) and pending boundary parameters.
type Walk struct {
	s     *Stepper
	coord world.ChunkCoord
	step  [3]int32
	tMax  [3]float32
	tDel  [3]float32

	t       float32
	maxDist float32
	steps   int

	// Per-ray counters, aggregated by the caller.
	Skips   int
	Lookups int
}

// Walk starts a chunk walk from origin along dir, bounded by maxDist.
func (s *Stepper) Walk(origin, dir mgl32.Vec3, maxDist float32) *Walk {
	edge := float32(s.Reg.Edge)
	w := &Walk{s: s, maxDist: maxDist, coord: world.CoordOf(origin[0], origin[1], origin[2], s.Reg.Edge)}
	inv := invDir(dir)
	cell := [3]int32{w.coord.X, w.coord.Y, w.coord.Z}
	for a := 0; a < 3; a++ {
		w.tDel[a] = edge * float32(math.Abs(float64(inv[a])))
		if dir[a] >= 0 {
			w.step[a] = 1
			w.tMax[a] = (float32(cell[a]+1)*edge - origin[a]) * inv[a]
		} else {
			w.step[a] = -1
			w.tMax[a] = (float32(cell[a])*edge - origin[a]) * inv[a]
		}
	}
	return w
}

// Traveled returns the distance covered so far.
func (w *Walk) Traveled() float32 { return w.t }

// Next produces the next resident chunk along the ray. Chunks inside
// definitely-empty meta cells are skipped without a hash lookup; a missing
// chunk emits a bounds-checked request and ends the walk (never blocks on
// loading).
func (w *Walk) Next() StepResult {
	for {
		if w.t > w.maxDist || w.steps >= w.s.MaxSteps {
			return StepResult{Kind: StepDone, Coord: w.coord, Enter: w.t}
		}
		c := w.coord
		if w.s.SkipEmpty && w.s.Reg.Meta() != nil && w.s.Reg.Meta().DefinitelyEmpty(c) {
			w.Skips++
			w.advance()
			continue
		}
		w.Lookups++
		if slot, ok := w.s.Reg.Lookup(c); ok {
			res := StepResult{Kind: StepChunk, Slot: slot, Coord: c, Enter: w.t}
			w.advance()
			return res
		}
		if w.s.Req != nil {
			w.s.Req.Request(c)
		}
		return StepResult{Kind: StepMiss, Coord: c, Enter: w.t}
	}
}

// advance steps the DDA along the axis with the smallest pending boundary
// parameter; ties break on fixed x, y, z priority so the chunk order is a
// strict total order.
func (w *Walk) advance() {
	axis := 0
	if w.tMax[1] < w.tMax[axis] {
		axis = 1
	}
	if w.tMax[2] < w.tMax[axis] {
		axis = 2
	}
	w.t = w.tMax[axis]
	switch axis {
	case 0:
		w.coord.X += w.step[0]
	case 1:
		w.coord.Y += w.step[1]
	case 2:
		w.coord.Z += w.step[2]
	}
	w.tMax[axis] += w.tDel[axis]
	w.steps++
}
