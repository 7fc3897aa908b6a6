package voxel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelrt/internal/voxel"
)

func TestNewGridRequiresPowerOfTwo(t *testing.T) {
	for _, edge := range []int{1, 2, 8, 32, 64} {
		_, err := voxel.NewGrid(edge)
		assert.NoError(t, err, "edge %d", edge)
	}
	for _, edge := range []int{0, -8, 3, 7, 12, 33} {
		_, err := voxel.NewGrid(edge)
		assert.Error(t, err, "edge %d", edge)
	}
}

func TestGridSetAt(t *testing.T) {
	g, err := voxel.NewGrid(8)
	require.NoError(t, err)

	assert.True(t, g.IsEmpty())
	g.Set(3, 4, 5, voxel.MaterialGrass)
	assert.Equal(t, voxel.MaterialGrass, g.At(3, 4, 5))
	assert.Equal(t, voxel.MaterialAir, g.At(3, 4, 4))
	assert.False(t, g.IsEmpty())

	// Out of bounds reads are air, writes are dropped.
	assert.Equal(t, voxel.MaterialAir, g.At(-1, 0, 0))
	assert.Equal(t, voxel.MaterialAir, g.At(8, 0, 0))
	g.Set(8, 0, 0, voxel.MaterialStone)
	g.Set(0, -1, 0, voxel.MaterialStone)
	assert.Equal(t, voxel.MaterialAir, g.At(0, 0, 0))
}

func TestGridFillAndEqual(t *testing.T) {
	a, err := voxel.NewGrid(4)
	require.NoError(t, err)
	b, err := voxel.NewGrid(4)
	require.NoError(t, err)

	a.Fill(voxel.MaterialSand)
	assert.False(t, a.Equal(b))
	b.Fill(voxel.MaterialSand)
	assert.True(t, a.Equal(b))

	b.Set(0, 0, 0, voxel.MaterialAir)
	assert.False(t, a.Equal(b))

	assert.Equal(t, 64, a.VoxelCount())
}

func TestTableFallback(t *testing.T) {
	mats := voxel.DefaultTable()

	def := mats.Get(voxel.Material(200))
	assert.Equal(t, "unknown", def.Name)
	assert.False(t, def.Transparent)

	assert.True(t, mats.IsTransparent(voxel.MaterialWater))
	assert.False(t, mats.IsTransparent(voxel.MaterialStone))
	assert.False(t, mats.IsTransparent(voxel.Material(200)))
}
