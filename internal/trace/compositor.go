package trace

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelrt/internal/voxel"
	"voxelrt/internal/world"
)

const (
	// exitEps nudges re-march origins past a volume boundary.
	exitEps = 1e-3
	// contEps is the gap tolerance when gluing contiguous same-material
	// volumes together during thickness measurement.
	contEps = 1e-2
)

// Compositor turns the chain of hits along a ray into a final color:
// transparent materials accumulate front-to-back as layers whose opacity
// follows from the material's absorption and the measured thickness of
// contiguous same-material volume; a solid hit is lit with a single
// directional term and ends the chain.
type Compositor struct {
	Stepper   *Stepper
	Materials *voxel.Table

	MaxLayers       int
	ThicknessProbes int
	OpacityCutoff   float32

	SkyColor mgl32.Vec3
	LightDir mgl32.Vec3 // unit vector from surface toward the light
	Ambient  float32

	// Shadows probes the opaque-only DAGs from solid hits toward the light.
	Shadows    bool
	ShadowDist float32
	ShadowTint float32
}

// ShadeInfo carries per-ray diagnostics for the debug readback.
type ShadeInfo struct {
	Hole        bool
	Layers      int
	ChunkSteps  int
	Skips       int
	Lookups     int
	NodeSteps   int32
	HitCoord    world.ChunkCoord
	HitMaterial voxel.Material
	HitDistance float32
}

type marchResult struct {
	hit   Hit // Distance/Exit rebased to absolute ray parameters
	coord world.ChunkCoord
	hole  bool
	found bool
}

// marchAt re-enters the stepping+traversal pipeline at parametric offset
// tBase along the ray and reports the first hit with absolute distances.
func (c *Compositor) marchAt(origin, dir mgl32.Vec3, tBase, maxDist float32, opaque bool, info *ShadeInfo) marchResult {
	o := origin.Add(dir.Mul(tBase))
	w := c.Stepper.Walk(o, dir, maxDist-tBase)
	for {
		st := w.Next()
		switch st.Kind {
		case StepChunk:
			hit := Traverse(c.Stepper.Reg, st.Slot, o, dir, maxDist-tBase, opaque)
			if info != nil {
				info.ChunkSteps++
				info.NodeSteps += hit.Steps
			}
			if hit.Distance >= 0 {
				hit.Distance += tBase
				hit.Exit += tBase
				c.collect(w, info)
				return marchResult{hit: hit, coord: st.Coord, found: true}
			}
		case StepMiss:
			c.collect(w, info)
			return marchResult{hole: true, coord: st.Coord}
		case StepDone:
			c.collect(w, info)
			return marchResult{}
		}
	}
}

func (c *Compositor) collect(w *Walk, info *ShadeInfo) {
	if info != nil {
		info.Skips += w.Skips
		info.Lookups += w.Lookups
	}
}

// Shade computes the final color of the ray. Missing chunks resolve to the
// sky color for this frame; they self-heal once the streamer installs them.
func (c *Compositor) Shade(origin, dir mgl32.Vec3, maxDist float32) (mgl32.Vec3, ShadeInfo) {
	var info ShadeInfo
	var acc mgl32.Vec3
	accA := float32(0)
	cursor := float32(0)

	for layer := 0; layer < c.MaxLayers; layer++ {
		m := c.marchAt(origin, dir, cursor, maxDist, false, &info)
		if !m.found {
			info.Hole = m.hole
			acc = acc.Add(c.SkyColor.Mul(1 - accA))
			accA = 1
			break
		}
		if layer == 0 {
			info.HitCoord = m.coord
			info.HitMaterial = m.hit.Material
			info.HitDistance = m.hit.Distance
		}
		info.Layers++
		def := c.Materials.Get(m.hit.Material)

		if !def.Transparent {
			acc = acc.Add(c.litColor(def, m.hit, origin, dir).Mul(1 - accA))
			accA = 1
			break
		}

		// Transparent layer: glue contiguous same-material volumes together
		// to measure thickness, bounded against degenerate thin stacks.
		entry, exit := m.hit.Distance, m.hit.Exit
		for probe := 0; probe < c.ThicknessProbes; probe++ {
			n := c.marchAt(origin, dir, exit+exitEps, maxDist, false, &info)
			if !n.found || n.hit.Material != m.hit.Material ||
				n.hit.Distance > exit+exitEps+contEps {
				break
			}
			exit = n.hit.Exit
		}

		alpha := 1 - float32(math.Exp(-float64(def.Absorption)*float64(exit-entry)))
		acc = acc.Add(def.Color.Mul(alpha * (1 - accA)))
		accA += (1 - accA) * alpha
		if accA >= c.OpacityCutoff {
			break
		}
		cursor = exit + exitEps
	}

	if accA < 1 {
		acc = acc.Add(c.SkyColor.Mul(1 - accA))
	}
	return acc, info
}

func (c *Compositor) litColor(def voxel.MaterialDef, hit Hit, origin, dir mgl32.Vec3) mgl32.Vec3 {
	diffuse := hit.Normal.Dot(c.LightDir)
	if diffuse < 0 {
		diffuse = 0
	}
	if c.Shadows && diffuse > 0 {
		p := origin.Add(dir.Mul(hit.Distance)).Add(hit.Normal.Mul(exitEps * 4))
		if c.occluded(p) {
			diffuse *= c.ShadowTint
		}
	}
	return def.Color.Mul(c.Ambient + (1-c.Ambient)*diffuse)
}

// occluded probes the opaque-only DAGs from p toward the light. Holes and
// budget exhaustion count as unoccluded; a wrong-but-bright pixel beats a
// flickering dark one while chunks stream in.
func (c *Compositor) occluded(p mgl32.Vec3) bool {
	m := c.marchAt(p, c.LightDir, 0, c.ShadowDist, true, nil)
	return m.found
}
