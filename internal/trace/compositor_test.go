package trace_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelrt/internal/trace"
	"voxelrt/internal/voxel"
	"voxelrt/internal/world"
)

func testCompositor(reg *world.Registry, q *world.RequestQueue) *trace.Compositor {
	return &trace.Compositor{
		Stepper:         &trace.Stepper{Reg: reg, Req: q, MaxSteps: 64, SkipEmpty: true},
		Materials:       voxel.DefaultTable(),
		MaxLayers:       4,
		ThicknessProbes: 8,
		OpacityCutoff:   0.98,
		SkyColor:        mgl32.Vec3{0.53, 0.81, 0.92},
		LightDir:        mgl32.Vec3{0, 1, 0},
		Ambient:         0.35,
	}
}

func TestShadeSolidDirectLight(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	registerGrid(t, reg, world.ChunkCoord{}, slabGrid(t, 16))
	comp := testCompositor(reg, world.NewRequestQueue(4))

	// Straight down onto the slab: the normal faces the light exactly, so
	// ambient + diffuse sums to one and the pixel is the raw material color.
	col, info := comp.Shade(mgl32.Vec3{16.5, 30, 16.5}, mgl32.Vec3{0, -1, 0}, 100)

	stone := comp.Materials.Get(voxel.MaterialStone).Color
	assert.InDelta(t, stone.X(), col.X(), 1e-4)
	assert.InDelta(t, stone.Y(), col.Y(), 1e-4)
	assert.InDelta(t, stone.Z(), col.Z(), 1e-4)

	assert.False(t, info.Hole)
	assert.Equal(t, 1, info.Layers)
	assert.Equal(t, voxel.MaterialStone, info.HitMaterial)
	assert.InDelta(t, 14.0, float64(info.HitDistance), 1e-3)
	assert.Equal(t, world.ChunkCoord{}, info.HitCoord)
}

func TestShadeHoleResolvesToSky(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	registerEmpty(t, reg, world.ChunkCoord{}, 32)
	q := world.NewRequestQueue(4)
	comp := testCompositor(reg, q)

	col, info := comp.Shade(mgl32.Vec3{16, 16, 16}, mgl32.Vec3{1, 0, 0}, 100)

	assert.True(t, info.Hole)
	assert.Equal(t, comp.SkyColor, col)
	assert.Equal(t, int32(1), q.Pending(world.ChunkCoord{X: 1}),
		"the hole must request the missing chunk")
}

func TestShadeMissResolvesToSky(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	registerEmpty(t, reg, world.ChunkCoord{}, 32)
	comp := testCompositor(reg, world.NewRequestQueue(4))

	// Distance bound expires inside resident empty space: sky, but no hole.
	col, info := comp.Shade(mgl32.Vec3{16, 16, 16}, mgl32.Vec3{1, 0, 0}, 10)

	assert.False(t, info.Hole)
	assert.Equal(t, comp.SkyColor, col)
}

func TestShadeWaterLayerOverStone(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	g := slabGrid(t, 8)
	fillBox(g, 0, 8, 0, 32, 12, 32, voxel.MaterialWater)
	registerGrid(t, reg, world.ChunkCoord{}, g)
	comp := testCompositor(reg, world.NewRequestQueue(4))

	col, info := comp.Shade(mgl32.Vec3{16.5, 30, 16.5}, mgl32.Vec3{0, -1, 0}, 100)

	require.Equal(t, 2, info.Layers, "water layer then solid floor")
	assert.Equal(t, voxel.MaterialWater, info.HitMaterial)
	assert.InDelta(t, 18.0, float64(info.HitDistance), 1e-3, "water surface at y = 12")

	water := comp.Materials.Get(voxel.MaterialWater)
	stone := comp.Materials.Get(voxel.MaterialStone)
	alpha := 1 - float32(math.Exp(-float64(water.Absorption)*4.0))
	want := water.Color.Mul(alpha).Add(stone.Color.Mul(1 - alpha))

	assert.InDelta(t, want.X(), col.X(), 5e-3)
	assert.InDelta(t, want.Y(), col.Y(), 5e-3)
	assert.InDelta(t, want.Z(), col.Z(), 5e-3)
}

func TestShadeGluesContiguousVolume(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	// Deep water column: 16 units thick, spanning several leaf sizes so the
	// thickness probes must glue volumes across leaf boundaries.
	g := slabGrid(t, 8)
	fillBox(g, 0, 8, 0, 32, 24, 32, voxel.MaterialWater)
	registerGrid(t, reg, world.ChunkCoord{}, g)
	comp := testCompositor(reg, world.NewRequestQueue(4))

	col, info := comp.Shade(mgl32.Vec3{16.5, 30, 16.5}, mgl32.Vec3{0, -1, 0}, 100)

	require.Equal(t, 2, info.Layers)
	water := comp.Materials.Get(voxel.MaterialWater)
	stone := comp.Materials.Get(voxel.MaterialStone)
	alpha := 1 - float32(math.Exp(-float64(water.Absorption)*16.0))
	want := water.Color.Mul(alpha).Add(stone.Color.Mul(1 - alpha))

	assert.InDelta(t, want.X(), col.X(), 1e-2)
	assert.InDelta(t, want.Y(), col.Y(), 1e-2)
	assert.InDelta(t, want.Z(), col.Z(), 1e-2)
}

func TestShadeShadowProbe(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	g := slabGrid(t, 8)
	fillBox(g, 16, 16, 16, 24, 24, 24, voxel.MaterialStone) // floating block
	registerGrid(t, reg, world.ChunkCoord{}, g)

	comp := testCompositor(reg, world.NewRequestQueue(4))
	comp.LightDir = mgl32.Vec3{1, 1, 0}.Normalize()
	comp.Shadows = true
	comp.ShadowDist = 100
	comp.ShadowTint = 0.35

	// Both rays land on the floor; only the first one's light path crosses
	// the floating block.
	shadowed, _ := comp.Shade(mgl32.Vec3{12.5, 30, 20.5}, mgl32.Vec3{0, -1, 0}, 100)
	lit, _ := comp.Shade(mgl32.Vec3{12.5, 30, 4.5}, mgl32.Vec3{0, -1, 0}, 100)

	assert.Less(t, shadowed.X(), lit.X())
	assert.Less(t, shadowed.Y(), lit.Y())
	assert.Less(t, shadowed.Z(), lit.Z())

	// With shadows off the two points shade identically.
	comp.Shadows = false
	a, _ := comp.Shade(mgl32.Vec3{12.5, 30, 20.5}, mgl32.Vec3{0, -1, 0}, 100)
	b, _ := comp.Shade(mgl32.Vec3{12.5, 30, 4.5}, mgl32.Vec3{0, -1, 0}, 100)
	assert.InDelta(t, a.X(), b.X(), 1e-4)
	assert.InDelta(t, a.Y(), b.Y(), 1e-4)
	assert.InDelta(t, a.Z(), b.Z(), 1e-4)
}

func TestShadeLayerBound(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	g := slabGrid(t, 8)
	fillBox(g, 0, 8, 0, 32, 12, 32, voxel.MaterialWater)
	registerGrid(t, reg, world.ChunkCoord{}, g)
	comp := testCompositor(reg, world.NewRequestQueue(4))
	comp.MaxLayers = 1

	// Only the water layer fits the budget; the remainder fills with sky.
	col, info := comp.Shade(mgl32.Vec3{16.5, 30, 16.5}, mgl32.Vec3{0, -1, 0}, 100)

	assert.Equal(t, 1, info.Layers)
	water := comp.Materials.Get(voxel.MaterialWater)
	alpha := 1 - float32(math.Exp(-float64(water.Absorption)*4.0))
	want := water.Color.Mul(alpha).Add(comp.SkyColor.Mul(1 - alpha))
	assert.InDelta(t, want.X(), col.X(), 5e-3)
	assert.InDelta(t, want.Y(), col.Y(), 5e-3)
	assert.InDelta(t, want.Z(), col.Z(), 5e-3)
}
