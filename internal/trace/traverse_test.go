package trace_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelrt/internal/svdag"
	"voxelrt/internal/trace"
	"voxelrt/internal/voxel"
	"voxelrt/internal/world"
)

func TestTraverseSlabTopFace(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	slot := registerGrid(t, reg, world.ChunkCoord{}, slabGrid(t, 16))

	origin := mgl32.Vec3{16.5, 40, 16.5}
	dir := mgl32.Vec3{0, -1, 0}
	hit := trace.Traverse(reg, slot, origin, dir, 100, false)

	require.GreaterOrEqual(t, hit.Distance, float32(0), "ray aimed at the slab must hit")
	assert.InDelta(t, 24.0, hit.Distance, 1e-3, "slab top is 24 units below the origin")
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, hit.Normal)
	assert.Equal(t, voxel.MaterialStone, hit.Material)
	// The bottom half of the chunk collapses into size-16 leaves, so the
	// leaf box exits at y = 0.
	assert.InDelta(t, 40.0, hit.Exit, 1e-3)
	assert.Greater(t, hit.Steps, int32(0))
}

func TestTraverseSideFaceNormal(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	slot := registerGrid(t, reg, world.ChunkCoord{}, slabGrid(t, 16))

	origin := mgl32.Vec3{-10, 8, 16.5}
	dir := mgl32.Vec3{1, 0, 0}
	hit := trace.Traverse(reg, slot, origin, dir, 100, false)

	require.GreaterOrEqual(t, hit.Distance, float32(0))
	assert.InDelta(t, 10.0, hit.Distance, 1e-3)
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, hit.Normal)
}

func TestTraverseOriginInsideSolid(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	slot := registerGrid(t, reg, world.ChunkCoord{}, slabGrid(t, 16))

	origin := mgl32.Vec3{16.5, 8, 16.5}
	hit := trace.Traverse(reg, slot, origin, mgl32.Vec3{0, -1, 0}, 100, false)

	require.GreaterOrEqual(t, hit.Distance, float32(0))
	assert.Equal(t, float32(0), hit.Distance, "entry behind the origin clamps to zero")
	assert.Equal(t, voxel.MaterialStone, hit.Material)
}

func TestTraverseMisses(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	slot := registerGrid(t, reg, world.ChunkCoord{}, slabGrid(t, 16))

	// Pointing away from the chunk.
	hit := trace.Traverse(reg, slot, mgl32.Vec3{16.5, 40, 16.5}, mgl32.Vec3{0, 1, 0}, 100, false)
	assert.Equal(t, float32(-1), hit.Distance)

	// Geometry beyond the distance bound.
	hit = trace.Traverse(reg, slot, mgl32.Vec3{-10, 8, 16.5}, mgl32.Vec3{1, 0, 0}, 5, false)
	assert.Equal(t, float32(-1), hit.Distance)

	// Above the slab, grazing through air only.
	hit = trace.Traverse(reg, slot, mgl32.Vec3{-10, 24, 16.5}, mgl32.Vec3{1, 0, 0}, 100, false)
	assert.Equal(t, float32(-1), hit.Distance)
}

func TestTraverseEmptyChunk(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	slot := registerEmpty(t, reg, world.ChunkCoord{}, 32)

	hit := trace.Traverse(reg, slot, mgl32.Vec3{16, 40, 16}, mgl32.Vec3{0, -1, 0}, 100, false)
	assert.Equal(t, float32(-1), hit.Distance)
	assert.Equal(t, int32(0), hit.Steps)
}

func TestTraverseOpaqueVariantSkipsWater(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	g, err := voxel.NewGrid(32)
	require.NoError(t, err)
	g.Fill(voxel.MaterialWater)
	slot := registerGrid(t, reg, world.ChunkCoord{}, g)

	origin := mgl32.Vec3{16.5, 40, 16.5}
	dir := mgl32.Vec3{0, -1, 0}

	hit := trace.Traverse(reg, slot, origin, dir, 100, false)
	require.GreaterOrEqual(t, hit.Distance, float32(0))
	assert.Equal(t, voxel.MaterialWater, hit.Material)

	hit = trace.Traverse(reg, slot, origin, dir, 100, true)
	assert.Equal(t, float32(-1), hit.Distance, "occlusion DAG must prune transparent volume")
}

func TestTraverseNonOriginChunk(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	coord := world.ChunkCoord{X: -2, Y: 1, Z: 3}
	slot := registerGrid(t, reg, coord, slabGrid(t, 16))

	// Chunk spans x [-64,-32), y [32,64), z [96,128); slab top at y = 48.
	origin := mgl32.Vec3{-48, 70, 112.5}
	hit := trace.Traverse(reg, slot, origin, mgl32.Vec3{0, -1, 0}, 100, false)

	require.GreaterOrEqual(t, hit.Distance, float32(0))
	assert.InDelta(t, 22.0, hit.Distance, 1e-3)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, hit.Normal)
}

func TestTraverseFailSafeOnCyclicGraph(t *testing.T) {
	reg := world.NewRegistry(8, 16, nil)
	slot := registerSolid(t, reg, world.ChunkCoord{}, 8)

	// Rewire the root's eight children back onto the root itself. Descent
	// depth then grows without bound, so only the stack bound can stop it.
	ch := reg.Chunk(slot)
	rootRel := ch.Root - ch.Base
	require.Equal(t, svdag.TagInner, reg.Nodes[ch.Root])
	require.Equal(t, uint32(0xFF), reg.Nodes[ch.Root+1])
	for oct := uint32(0); oct < 8; oct++ {
		reg.Nodes[ch.Root+2+oct] = rootRel
	}

	hit := trace.Traverse(reg, slot, mgl32.Vec3{4, 4, 4}, mgl32.Vec3{1, 0, 0}, 100, false)

	assert.Equal(t, voxel.MaterialDebug, hit.Material,
		"a pathological graph must surface as a solid diagnostic hit, not a hang")
	assert.GreaterOrEqual(t, hit.Distance, float32(0))
	assert.Greater(t, hit.Steps, int32(0))
}

func TestTraverseDeterministic(t *testing.T) {
	reg := world.NewRegistry(32, 16, nil)
	g := slabGrid(t, 16)
	fillBox(g, 4, 16, 4, 12, 24, 12, voxel.MaterialDirt)
	fillBox(g, 20, 16, 20, 28, 20, 28, voxel.MaterialGrass)
	slot := registerGrid(t, reg, world.ChunkCoord{}, g)

	origin := mgl32.Vec3{0.3, 31.7, 0.9}
	dir := mgl32.Vec3{1, -0.7, 0.9}.Normalize()

	first := trace.Traverse(reg, slot, origin, dir, 200, false)
	for i := 0; i < 4; i++ {
		assert.Equal(t, first, trace.Traverse(reg, slot, origin, dir, 200, false))
	}
}
